//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package policydomain provides types for representing parsed policy bundle
// configurations.
//
// Policy bundles are defined in YAML files and loaded via the [registry]
// package. This package contains the intermediate model types used after
// parsing but before compilation into the runtime [model] types.
//
// # Key Types
//
//   - [Bundle]: Complete policy bundle with its policy definitions
//   - [PolicyDefinition]: A single policy definition with rule source text
//
// # Usage
//
// Policy bundles are typically loaded via the [registry.NewRegistry] function,
// which parses YAML files and returns validated [Bundle] instances.
//
// See the PolicyBundle concepts documentation for the YAML schema.
package policydomain

// IDSpec contains the identifier and content fingerprint for a bundle entity.
type IDSpec struct {
	// ID is the name identifying this entity within its bundle.
	ID string
	// Fingerprint is a SHA-256 hash of the entity's content for cache invalidation.
	Fingerprint []byte
}

// PolicyDefinition represents a rule policy parsed from YAML.
//
// The Resource and Action selectors are kept as uncompiled expression text;
// the [registry] package compiles them together with the rule source into
// runtime policies after validation.
type PolicyDefinition struct {
	IDSpec   IDSpec
	Resource string                 // Resource selector expression
	Action   string                 // Action selector expression
	Rule     string                 // Rule source text
	Metadata map[string]interface{} // Metadata carried into access log records
}

// Bundle is the complete representation of a parsed policy bundle.
//
// Bundle is created by parsing YAML policy bundle files and validated by
// the [registry] package. Policies retain their declaration order, which
// determines evaluation order at runtime.
type Bundle struct {
	Name             string                 // Policy bundle name
	MetadataDefaults map[string]interface{} // Defaults merged into each policy's metadata
	Policies         []PolicyDefinition     // Policy definitions in declaration order
}

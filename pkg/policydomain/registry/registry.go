//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package registry provides functionality for loading and validating
// policy bundles from YAML files.
//
// The registry is the primary entry point for loading policy bundles.
// It parses YAML files, validates policy definitions, and compiles rule
// text into executable policies.
//
// # Loading Policy Bundles
//
//	registry, err := registry.NewRegistry([]string{
//	    "./policies/base.yml",
//	    "./policies/application.yml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Using with the Policy Engine
//
//	backend := local.NewFactory(registry)
//	pe, _ := core.NewPolicyEngine(options.WithBackend(backend))
//
// # Validation
//
// The registry validates all policy definitions during loading. Use
// [Registry.ValidateWithSummary] for detailed error information, or
// [Registry.GetAllValidationErrors] for programmatic access.
package registry

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/policydomain"
	"github.com/manetu/ruleengine/pkg/policydomain/parsers"
	"github.com/manetu/ruleengine/pkg/policydomain/validation"
)

// BundleMap maps policy bundle names to their parsed intermediate models.
type BundleMap map[string]*policydomain.Bundle

// Registry manages loaded policy bundles and their validation state.
//
// Registry is created by [NewRegistry], which loads and validates policy
// bundle YAML files. The registry can then be used with the local backend
// to provide policy data to the engine.
type Registry struct {
	bundles   BundleMap
	ordered   []*policydomain.Bundle
	policies  []*model.Policy
	validator *validation.BundleValidator
}

func (r *Registry) verify() error {
	return r.validator.ValidateAll()
}

// ValidateWithSummary validates and returns a detailed summary of any errors
func (r *Registry) ValidateWithSummary() (bool, string) {
	return r.validator.ValidateWithSummary()
}

// GetAllValidationErrors returns all validation errors without stopping on first error
func (r *Registry) GetAllValidationErrors() []*validation.Error {
	return r.validator.GetAllValidationErrors()
}

// ValidateBundle validates a specific bundle and returns detailed errors
func (r *Registry) ValidateBundle(bundleName string) error {
	return r.validator.ValidateBundle(bundleName)
}

// GetBundles returns the bundle map for accessing bundle models
func (r *Registry) GetBundles() BundleMap {
	return r.bundles
}

// Export returns every compiled policy in bundle declaration order.
//
// Policies from earlier bundles appear before policies from later bundles,
// and within a bundle policies retain their declaration order. The engine's
// first-match evaluation honors this ordering.
func (r *Registry) Export() []*model.Policy {
	return r.policies
}

// NewRegistry loads and validates policy bundles from the specified paths.
//
// Each path should be a policy bundle YAML file. Bundles are loaded in the
// order provided, with later bundles taking precedence for name collisions.
// Validation accumulates every problem across all bundles before failing,
// and compilation caches the runtime policies for [Registry.Export].
//
// Returns an error if any bundle fails to parse, validate, or compile.
//
// Example:
//
//	registry, err := registry.NewRegistry([]string{
//	    "./policies/base.yml",
//	    "./policies/application.yml",
//	})
func NewRegistry(bundlePaths []string) (*Registry, error) {
	bundlesList := make([]*policydomain.Bundle, 0)
	for _, bundlepath := range bundlePaths {
		instance, err := parsers.Load(bundlepath)
		if err != nil {
			return nil, err
		}
		bundlesList = append(bundlesList, instance)
	}

	bundles := make(map[string]*policydomain.Bundle)
	for _, instance := range bundlesList {
		bundles[instance.Name] = instance
	}

	// Shadowed bundles drop out here; survivors keep declaration order.
	ordered := make([]*policydomain.Bundle, 0, len(bundlesList))
	for _, instance := range bundlesList {
		if bundles[instance.Name] == instance {
			ordered = append(ordered, instance)
		}
	}

	validator := validation.NewBundleValidator(bundles)

	r := &Registry{
		bundles:   bundles,
		ordered:   ordered,
		validator: validator,
	}

	if err := r.verify(); err != nil {
		return nil, err
	}

	if err := r.compileAll(); err != nil {
		return nil, err
	}
	return r, nil
}

// compileAll compiles every policy in every bundle, caching the results in
// declaration order.
func (r *Registry) compileAll() error {
	policies := make([]*model.Policy, 0)
	for _, bundle := range r.ordered {
		compiled, err := r.compileBundle(bundle)
		if err != nil {
			return fmt.Errorf("bundle %s: %w", bundle.Name, err)
		}
		policies = append(policies, compiled...)
	}
	r.policies = policies
	return nil
}

// compileBundle compiles all policies in a bundle
func (r *Registry) compileBundle(bundle *policydomain.Bundle) ([]*model.Policy, error) {
	policies := make([]*model.Policy, 0, len(bundle.Policies))
	for i := range bundle.Policies {
		def := &bundle.Policies[i]
		policy, err := r.compileDefinition(bundle, def)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", def.IDSpec.ID, err)
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// compileDefinition compiles a single policy definition, updating the
// definition's fingerprint to the canonical form
func (r *Registry) compileDefinition(bundle *policydomain.Bundle, def *policydomain.PolicyDefinition) (*model.Policy, error) {
	pattern, err := model.NewActionPattern(def.Resource, def.Action)
	if err != nil {
		return nil, err
	}

	mrn := fmt.Sprintf("mrn:%s:policy:%s", bundle.Name, def.IDSpec.ID)
	policy, err := model.NewPolicy(mrn, pattern, def.Rule)
	if err != nil {
		return nil, err
	}

	policy.Annotations = mergeMetadata(bundle.MetadataDefaults, def.Metadata)
	def.IDSpec.Fingerprint = policy.Fingerprint
	return policy, nil
}

// mergeMetadata merges bundle metadata defaults with per-policy metadata.
// Policy values win on key collisions. Values are deep-copied so bundle
// models and exported policies never share mutable state.
func mergeMetadata(defaults, metadata map[string]interface{}) model.Annotations {
	if len(defaults) == 0 && len(metadata) == 0 {
		return nil
	}

	merged := make(model.Annotations, len(defaults)+len(metadata))
	for k, v := range defaults {
		merged[k] = deepcopy.Copy(v)
	}
	for k, v := range metadata {
		merged[k] = deepcopy.Copy(v)
	}
	return merged
}

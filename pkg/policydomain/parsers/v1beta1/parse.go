//
//  Copyright © Manetu Inc. All rights reserved.
//

package v1beta1

import (
	"crypto/sha256"
	"io"
	"os"

	"github.com/manetu/ruleengine/pkg/policydomain"

	"gopkg.in/yaml.v3"
)

// PolicyDefinition represents a policy definition in v1beta1 format
type PolicyDefinition struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Resource    string                 `yaml:"resource"`
	Action      string                 `yaml:"action"`
	Rule        string                 `yaml:"rule"`
	Metadata    map[string]interface{} `yaml:"metadata"`
}

func exportDefinition(def PolicyDefinition) policydomain.PolicyDefinition {
	fingerprint := sha256.Sum256([]byte(def.Rule))

	resource := def.Resource
	if resource == "" {
		resource = ".*"
	}
	action := def.Action
	if action == "" {
		action = ".*"
	}

	return policydomain.PolicyDefinition{
		IDSpec: policydomain.IDSpec{
			ID:          def.Name,
			Fingerprint: fingerprint[:],
		},
		Resource: resource,
		Action:   action,
		Rule:     def.Rule,
		Metadata: def.Metadata,
	}
}

func exportDefinitions(defs []PolicyDefinition) []policydomain.PolicyDefinition {
	policies := make([]policydomain.PolicyDefinition, 0, len(defs))
	for _, def := range defs {
		policies = append(policies, exportDefinition(def))
	}

	return policies
}

// Bundle represents the intermediate v1beta1 YAML structure
type Bundle struct {
	Metadata struct {
		Name string `yaml:"name"`
	}
	Spec struct {
		MetadataDefaults map[string]interface{} `yaml:"metadata-defaults"`
		Policies         []PolicyDefinition     `yaml:"policies"`
	}
}

// Load loads a v1beta1 policy bundle from a file path
func Load(path string) (*policydomain.Bundle, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var intermediate Bundle

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, &intermediate)
	if err != nil {
		return nil, err
	}

	return &policydomain.Bundle{
		Name:             intermediate.Metadata.Name,
		MetadataDefaults: intermediate.Spec.MetadataDefaults,
		Policies:         exportDefinitions(intermediate.Spec.Policies),
	}, nil
}

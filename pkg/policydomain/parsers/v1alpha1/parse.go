//
//  Copyright © Manetu Inc. All rights reserved.
//

package v1alpha1

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/manetu/ruleengine/pkg/policydomain"

	"gopkg.in/yaml.v3"
)

// Match represents the resource/action selector pair in v1alpha1 format
type Match struct {
	Resource string `yaml:"resource"`
	Action   string `yaml:"action"`
}

// RuleDefinition represents a rule definition in v1alpha1 format
type RuleDefinition struct {
	Name  string `yaml:"name"`
	Match Match  `yaml:"match"`
	Rule  string `yaml:"rule"`
}

func exportDefinition(index int, def RuleDefinition) policydomain.PolicyDefinition {
	fingerprint := sha256.Sum256([]byte(def.Rule))

	// v1alpha1 rules were allowed to be anonymous
	name := def.Name
	if name == "" {
		name = fmt.Sprintf("rule-%d", index)
	}

	resource := def.Match.Resource
	if resource == "" {
		resource = ".*"
	}
	action := def.Match.Action
	if action == "" {
		action = ".*"
	}

	return policydomain.PolicyDefinition{
		IDSpec: policydomain.IDSpec{
			ID:          name,
			Fingerprint: fingerprint[:],
		},
		Resource: resource,
		Action:   action,
		Rule:     def.Rule,
	}
}

func exportDefinitions(defs []RuleDefinition) []policydomain.PolicyDefinition {
	policies := make([]policydomain.PolicyDefinition, 0, len(defs))
	for i, def := range defs {
		policies = append(policies, exportDefinition(i, def))
	}

	return policies
}

// Bundle represents the intermediate v1alpha1 YAML structure
type Bundle struct {
	Metadata struct {
		Name string `yaml:"name"`
	}
	Rules []RuleDefinition `yaml:"rules"`
}

// Load loads a v1alpha1 policy bundle from a file path
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
		Name:     intermediate.Metadata.Name,
		Policies: exportDefinitions(intermediate.Rules),
	}, nil
}

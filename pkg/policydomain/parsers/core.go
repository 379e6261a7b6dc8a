//
//  Copyright © Manetu Inc. All rights reserved.
//

package parsers

import (
	"fmt"
	"io"
	"os"

	"github.com/manetu/ruleengine/pkg/policydomain"
	"github.com/manetu/ruleengine/pkg/policydomain/parsers/v1alpha1"
	"github.com/manetu/ruleengine/pkg/policydomain/parsers/v1beta1"

	"gopkg.in/yaml.v3"
)

// Preamble represents the header information of a policy bundle file
type Preamble struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

// Load loads a policy bundle from a file path
func Load(path string) (*policydomain.Bundle, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var preamble Preamble

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, &preamble)
	if err != nil {
		return nil, err
	}

	if preamble.Kind != "PolicyBundle" {
		return nil, fmt.Errorf("expected PolicyBundle got %s", preamble.Kind)
	}

	switch preamble.APIVersion {
	case "ruleengine.manetu.io/v1alpha1":
		return v1alpha1.Load(path)
	case "ruleengine.manetu.io/v1beta1":
		return v1beta1.Load(path)
	}

	return nil, fmt.Errorf("unsupported PolicyBundle API Version %s", preamble.APIVersion)
}

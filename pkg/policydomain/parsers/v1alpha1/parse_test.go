//
//  Copyright © Manetu Inc. All rights reserved.
//

package v1alpha1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidPolicyBundle(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1alpha1
kind: PolicyBundle
metadata:
  name: legacy
rules:
  - name: echoer-get
    match:
      resource: "echoer.*"
      action: "handle_message"
    rule: '(= action.method "get")'
  - name: admin-block-guests
    match:
      resource: "admin"
    rule: '(!= subject.role "guest")'
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "legacy.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "legacy", bundle.Name)
	assert.Empty(t, bundle.MetadataDefaults)

	require.Len(t, bundle.Policies, 2)
	assert.Equal(t, "echoer-get", bundle.Policies[0].IDSpec.ID)
	assert.Equal(t, "echoer.*", bundle.Policies[0].Resource)
	assert.Equal(t, "handle_message", bundle.Policies[0].Action)
	assert.Equal(t, `(= action.method "get")`, bundle.Policies[0].Rule)

	// Omitted match fields default to match-anything
	assert.Equal(t, ".*", bundle.Policies[1].Action)
}

func TestLoad_AnonymousRules(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1alpha1
kind: PolicyBundle
metadata:
  name: legacy
rules:
  - match:
      resource: "a"
      action: "b"
    rule: 'true'
  - name: named
    match:
      resource: "c"
      action: "d"
    rule: 'true'
  - match:
      resource: "e"
      action: "f"
    rule: 'false'
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "anonymous.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)

	// Anonymous rules receive stable positional names
	require.Len(t, bundle.Policies, 3)
	assert.Equal(t, "rule-0", bundle.Policies[0].IDSpec.ID)
	assert.Equal(t, "named", bundle.Policies[1].IDSpec.ID)
	assert.Equal(t, "rule-2", bundle.Policies[2].IDSpec.ID)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/file.yml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "invalid.yml")
	err := os.WriteFile(tmpFile, []byte("invalid: yaml: : content"), 0644)
	require.NoError(t, err)

	_, err = Load(tmpFile)
	assert.Error(t, err)
}

func TestLoad_NoRules(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1alpha1
kind: PolicyBundle
metadata:
  name: empty
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "empty.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "empty", bundle.Name)
	assert.Empty(t, bundle.Policies)
}

func TestExportDefinition(t *testing.T) {
	def := RuleDefinition{
		Name: "test",
		Match: Match{
			Resource: "echoer.*",
			Action:   "handle_message",
		},
		Rule: `(= action.method "get")`,
	}

	result := exportDefinition(0, def)
	assert.Equal(t, "test", result.IDSpec.ID)
	assert.NotEmpty(t, result.IDSpec.Fingerprint)
	assert.Equal(t, "echoer.*", result.Resource)
	assert.Equal(t, "handle_message", result.Action)
	assert.Equal(t, def.Rule, result.Rule)
	assert.Nil(t, result.Metadata)
}

func TestExportDefinition_Anonymous(t *testing.T) {
	def := RuleDefinition{
		Match: Match{Resource: "a", Action: "b"},
		Rule:  "true",
	}

	result := exportDefinition(7, def)
	assert.Equal(t, "rule-7", result.IDSpec.ID)
}

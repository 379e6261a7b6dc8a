//
//  Copyright © Manetu Inc. All rights reserved.
//

package v1beta1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidPolicyBundle(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1beta1
kind: PolicyBundle
metadata:
  name: test-bundle
spec:
  metadata-defaults:
    owner: platform-team
    tier: standard
  policies:
    - name: echoer-get
      description: "Allow get requests to echoers"
      resource: "echoer.*"
      action: "handle_message"
      rule: '(eq action.method "get")'
      metadata:
        tier: gold
    - name: admin-any
      resource: "admin"
      action: ".*"
      rule: 'true'
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)

	// Verify name
	assert.Equal(t, "test-bundle", bundle.Name)

	// Verify metadata defaults land as native values
	assert.Equal(t, "platform-team", bundle.MetadataDefaults["owner"])
	assert.Equal(t, "standard", bundle.MetadataDefaults["tier"])

	// Verify policies retain declaration order
	require.Len(t, bundle.Policies, 2)
	assert.Equal(t, "echoer-get", bundle.Policies[0].IDSpec.ID)
	assert.Equal(t, "admin-any", bundle.Policies[1].IDSpec.ID)

	// Verify the first policy in full
	policy := bundle.Policies[0]
	assert.NotEmpty(t, policy.IDSpec.Fingerprint)
	assert.Equal(t, "echoer.*", policy.Resource)
	assert.Equal(t, "handle_message", policy.Action)
	assert.Equal(t, `(eq action.method "get")`, policy.Rule)
	assert.Equal(t, "gold", policy.Metadata["tier"])
}

func TestLoad_NativeMetadataTypes(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1beta1
kind: PolicyBundle
metadata:
  name: native-metadata-test
spec:
  policies:
    - name: test
      resource: ".*"
      action: ".*"
      rule: 'true'
      metadata:
        string_val: hello
        number_val: 42
        float_val: 3.14
        bool_val: true
        null_val: null
        array_val:
          - 1
          - 2
          - 3
        object_val:
          key: value
          nested:
            a: 1
            b: 2
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "native-metadata.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)
	require.Len(t, bundle.Policies, 1)

	metadata := bundle.Policies[0].Metadata

	// Test string value
	assert.Equal(t, "hello", metadata["string_val"])

	// Test number value
	assert.Equal(t, 42, metadata["number_val"])

	// Test float value
	assert.Equal(t, 3.14, metadata["float_val"])

	// Test boolean value
	assert.Equal(t, true, metadata["bool_val"])

	// Test null value
	assert.Nil(t, metadata["null_val"])

	// Test array value
	arrayVal, ok := metadata["array_val"].([]interface{})
	require.True(t, ok, "array_val should be a slice")
	assert.Len(t, arrayVal, 3)
	assert.Equal(t, 1, arrayVal[0])

	// Test object value
	objVal, ok := metadata["object_val"].(map[string]interface{})
	require.True(t, ok, "object_val should be a map")
	assert.Equal(t, "value", objVal["key"])
	nested, ok := objVal["nested"].(map[string]interface{})
	require.True(t, ok, "nested should be a map")
	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["b"])
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

func TestLoad_EmptySpec(t *testing.T) {
	content := `apiVersion: ruleengine.manetu.io/v1beta1
kind: PolicyBundle
metadata:
  name: empty-bundle
spec: {}
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "empty.yml")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	bundle, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "empty-bundle", bundle.Name)
	assert.Empty(t, bundle.Policies)
	assert.Empty(t, bundle.MetadataDefaults)
}

func TestExportDefinition(t *testing.T) {
	def := PolicyDefinition{
		Name:        "test",
		Description: "Test policy",
		Resource:    "echoer.*",
		Action:      "handle_message",
		Rule:        `(eq action.method "get")`,
		Metadata:    map[string]interface{}{"tier": "gold"},
	}

	result := exportDefinition(def)
	assert.Equal(t, "test", result.IDSpec.ID)
	assert.NotEmpty(t, result.IDSpec.Fingerprint)
	assert.Equal(t, "echoer.*", result.Resource)
	assert.Equal(t, "handle_message", result.Action)
	assert.Equal(t, def.Rule, result.Rule)
	assert.Equal(t, "gold", result.Metadata["tier"])
}

func TestExportDefinition_DefaultSelectors(t *testing.T) {
	def := PolicyDefinition{
		Name: "open",
		Rule: "true",
	}

	result := exportDefinition(def)
	assert.Equal(t, ".*", result.Resource)
	assert.Equal(t, ".*", result.Action)
}

func TestExportDefinitions(t *testing.T) {
	defs := []PolicyDefinition{
		{Name: "first", Rule: "true"},
		{Name: "second", Rule: "false"},
	}

	result := exportDefinitions(defs)
	require.Len(t, result, 2)
	assert.Equal(t, "first", result[0].IDSpec.ID)
	assert.Equal(t, "second", result[1].IDSpec.ID)
}

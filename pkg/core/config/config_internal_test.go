//
//  Copyright © Manetu Inc. All rights reserved.
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigPath(t *testing.T) {
	t.Run("with env var", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "/custom/config/path")
		assert.Equal(t, "/custom/config/path", getConfigPath())
	})

	t.Run("default", func(t *testing.T) {
		// t.Setenv registers the restore; the variable must be absent, not empty.
		t.Setenv(ConfigPathEnv, "")
		_ = os.Unsetenv(ConfigPathEnv)
		assert.Equal(t, ConfigDefaultPath, getConfigPath())
	})
}

func TestGetConfigFileName(t *testing.T) {
	t.Run("with env var", func(t *testing.T) {
		t.Setenv(ConfigFileNameEnv, "custom-config-name")
		assert.Equal(t, "custom-config-name", getConfigFileName())
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(ConfigFileNameEnv, "")
		_ = os.Unsetenv(ConfigFileNameEnv)
		assert.Equal(t, ConfigDefaultFilename, getConfigFileName())
	})
}

func TestParseDownwardAPIFile(t *testing.T) {
	t.Run("labels file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "labels")
		content := "app=\"ruleengine\"\n\ntier=\"backend\"\nmalformed line\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		m, err := parseDownwardAPIFile(path)
		require.NoError(t, err)

		// Blank lines and lines without a separator are skipped.
		assert.Equal(t, map[string]string{
			"app":  "ruleengine",
			"tier": "backend",
		}, m)
	})

	t.Run("missing file", func(t *testing.T) {
		m, err := parseDownwardAPIFile(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestGetAuditMetadata(t *testing.T) {
	podinfo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(podinfo, "labels"),
		[]byte("app=\"echoer\"\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(podinfo, "annotations"),
		[]byte("owner=\"platform\"\n"), 0600))

	t.Setenv("MRE_AUDIT_K8S_PODINFO", podinfo)
	t.Setenv("TEST_HOSTNAME", "pod-123")
	ResetConfig()
	defer ResetConfig()

	VConfig.Set(AuditEnv, map[string]string{"pod": "TEST_HOSTNAME"})
	resetK8sCache()

	metadata := GetAuditMetadata()
	assert.Equal(t, map[string]string{
		"pod":                  "pod-123",
		"k8s.label.app":        "echoer",
		"k8s.annotation.owner": "platform",
	}, metadata)
}

//
//  Copyright © Manetu Inc. All rights reserved.
//

package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	k8sLabels      map[string]string
	k8sAnnotations map[string]string
	k8sOnce        sync.Once
)

// resetK8sCache clears cached Downward API data so it will be re-read.
// Intended for testing only.
func resetK8sCache() {
	k8sLabels = nil
	k8sAnnotations = nil
	k8sOnce = sync.Once{}
}

// parseDownwardAPIFile reads a Kubernetes Downward API file and returns a map
// of key-value pairs. The expected format is one key="value" per line.
// Returns nil if the file does not exist.
func parseDownwardAPIFile(path string) (map[string]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is constructed from trusted config + fixed filenames
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		// Remove surrounding quotes from the value
		value = strings.Trim(value, "\"")
		result[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// loadK8sPodinfo reads the labels and annotations files once from the
// configured Downward API directory. Both maps stay nil when the files do
// not exist (i.e., not running in Kubernetes or the Downward API volume is
// not configured).
func loadK8sPodinfo() {
	k8sOnce.Do(func() {
		dir := VConfig.GetString(AuditK8sPodinfo)

		load := func(name string) map[string]string {
			p := filepath.Join(dir, name)
			m, err := parseDownwardAPIFile(p)
			if err != nil {
				logger.SysWarnf("failed to read k8s %s from %s: %v", name, p, err)
				return nil
			}
			return m
		}

		k8sLabels = load("labels")
		k8sAnnotations = load("annotations")
	})
}

// getK8sLabels returns cached Kubernetes pod labels from the Downward API file.
func getK8sLabels() map[string]string {
	loadK8sPodinfo()
	return k8sLabels
}

// getK8sAnnotations returns cached Kubernetes pod annotations from the Downward API file.
func getK8sAnnotations() map[string]string {
	loadK8sPodinfo()
	return k8sAnnotations
}

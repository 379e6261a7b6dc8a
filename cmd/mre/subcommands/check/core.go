//
//  Copyright © Manetu Inc. All rights reserved.
//

package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manetu/ruleengine/pkg/policydomain"
	"github.com/manetu/ruleengine/pkg/policydomain/parsers"
	"github.com/manetu/ruleengine/pkg/policydomain/validation"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Result represents the outcome of a YAML syntax check on a file.
type Result struct {
	File    string
	Valid   bool
	Error   error
	Message string
}

// Execute runs the check command with the provided context and CLI command.
func Execute(ctx context.Context, cmd *cli.Command) error {
	files := cmd.StringSlice("file")
	if len(files) == 0 {
		return fmt.Errorf("no files specified, use --file/-f to specify bundle files to check")
	}

	fmt.Println("Checking bundle files...")
	fmt.Println()

	hasYamlErrors := 0
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file))
		if ext != ".yml" && ext != ".yaml" {
			fmt.Printf("⚠ %s: Unsupported file type (only .yml, .yaml supported)\n\n", file)
			continue
		}

		yamlResult := checkFile(file)
		if !yamlResult.Valid {
			hasYamlErrors++
			fmt.Printf("✗ %s (YAML)\n", file)
			if yamlResult.Error != nil {
				fmt.Printf("  Error: %s\n", formatYAMLError(yamlResult.Error))
			} else {
				fmt.Printf("  Error: %s\n", yamlResult.Message)
			}
			fmt.Println()
		} else {
			fmt.Printf("✓ %s: Valid YAML\n", file)
		}
	}

	if hasYamlErrors > 0 {
		fmt.Println("---")
		fmt.Printf("Check completed: %d file(s) with YAML errors\n", hasYamlErrors)
		return fmt.Errorf("check failed: %d file(s) with YAML errors", hasYamlErrors)
	}

	bundleErrors := checkBundles(files)

	fmt.Println("---")
	if bundleErrors > 0 {
		fmt.Printf("Check completed: %d error(s)\n", bundleErrors)
		return fmt.Errorf("check failed: %d error(s)", bundleErrors)
	}

	fmt.Printf("All checks passed: %d file(s) validated successfully\n", len(files))
	return nil
}

// checkBundles loads every bundle and runs the aggregated validator over
// them, printing one entry per validation error. Returns the error count.
func checkBundles(files []string) int {
	bundles := make(validation.BundleMap)
	bundleToFile := make(map[string]string)
	loaded := make([]*policydomain.Bundle, 0, len(files))

	errorCount := 0
	for _, file := range files {
		bundle, err := parsers.Load(file)
		if err != nil {
			fmt.Printf("✗ %s\n", file)
			fmt.Printf("  Error: %s\n", err.Error())
			fmt.Println()
			errorCount++
			continue
		}
		bundles[bundle.Name] = bundle
		bundleToFile[bundle.Name] = file
		loaded = append(loaded, bundle)
	}

	validationErrors := validation.NewBundleValidator(bundles).GetAllValidationErrors()
	for _, verr := range validationErrors {
		file := bundleToFile[verr.Bundle]
		if file == "" {
			file = "unknown"
		}

		fmt.Printf("✗ %s (%s in %s '%s')\n", file, verr.Type, verr.Entity, verr.EntityID)
		fmt.Printf("  Error: %s\n", verr.Message)
		fmt.Println()
		errorCount++
	}

	if errorCount == 0 {
		for _, bundle := range loaded {
			for _, def := range bundle.Policies {
				fmt.Printf("✓ %s: Valid rule in policy '%s'\n", bundleToFile[bundle.Name], def.IDSpec.ID)
			}
		}
	}

	return errorCount
}

func checkFile(filepath string) Result {
	result := Result{
		File:  filepath,
		Valid: true,
	}

	content, err := os.ReadFile(filepath) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		result.Valid = false
		result.Message = fmt.Sprintf("Failed to read file: %v", err)
		return result
	}

	var data interface{}
	err = yaml.Unmarshal(content, &data)
	if err != nil {
		result.Valid = false
		result.Error = err
		return result
	}

	return result
}

func formatYAMLError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "yaml:") {
		return errStr
	}

	if yamlErr, ok := err.(*yaml.TypeError); ok {
		if len(yamlErr.Errors) > 0 {
			return strings.Join(yamlErr.Errors, "\n  ")
		}
	}

	return errStr
}

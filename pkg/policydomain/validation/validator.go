//
//  Copyright © Manetu Inc. All rights reserved.
//

package validation

import (
	"fmt"

	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/policydomain"
	"github.com/manetu/ruleengine/pkg/rule"
)

// BundleMap maps policy bundle names to their parsed intermediate models.
type BundleMap map[string]*policydomain.Bundle

// BundleValidator handles all validation logic for policy bundles
type BundleValidator struct {
	bundles BundleMap
}

// NewBundleValidator creates a validator for policy bundles
func NewBundleValidator(bundles BundleMap) *BundleValidator {
	return &BundleValidator{
		bundles: bundles,
	}
}

// ValidateAll performs complete validation of all bundles, accumulating all errors
func (bv *BundleValidator) ValidateAll() error {
	errors := NewValidationErrors()

	for name, bundle := range bv.bundles {
		bv.validateBundle(name, bundle, errors)
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// ValidateWithSummary validates and returns a detailed summary of any errors
func (bv *BundleValidator) ValidateWithSummary() (bool, string) {
	err := bv.ValidateAll()
	if err == nil {
		return true, "All validations passed successfully"
	}

	if validationErrors, ok := err.(*Errors); ok {
		return false, validationErrors.Summary()
	}

	// Fallback for non-ValidationErrors
	return false, fmt.Sprintf("Validation failed: %v", err)
}

// GetAllValidationErrors returns all validation errors without stopping on first error
func (bv *BundleValidator) GetAllValidationErrors() []*Error {
	err := bv.ValidateAll()
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(*Errors); ok {
		return validationErrors.Errors
	}

	// Fallback for non-ValidationErrors
	return []*Error{
		{
			Type:    "unknown",
			Message: err.Error(),
		},
	}
}

// ValidateBundle validates a specific bundle, accumulating errors
func (bv *BundleValidator) ValidateBundle(bundleName string) error {
	bundle, exists := bv.bundles[bundleName]
	if !exists {
		return fmt.Errorf("bundle '%s' not found", bundleName)
	}

	errors := NewValidationErrors()
	bv.validateBundle(bundleName, bundle, errors)

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// validateBundle validates a single bundle, accumulating errors
func (bv *BundleValidator) validateBundle(bundleName string, bundle *policydomain.Bundle, errors *Errors) {
	if bundle.Name == "" {
		errors.AddSchemaError(bundleName, "bundle", bundleName, "metadata.name", "bundle has no name")
	}

	bv.validateNames(bundleName, bundle, errors)
	bv.validateSelectors(bundleName, bundle, errors)
	bv.validateRules(bundleName, bundle, errors)
}

// validateNames checks that every policy is named and that names are unique
// within the bundle
func (bv *BundleValidator) validateNames(bundleName string, bundle *policydomain.Bundle, errors *Errors) {
	seen := make(map[string]bool)
	for i, def := range bundle.Policies {
		id := def.IDSpec.ID
		if id == "" {
			errors.AddSchemaError(bundleName, "policy", fmt.Sprintf("policy[%d]", i), "name", "policy has no name")
			continue
		}
		if seen[id] {
			errors.AddDuplicateError(bundleName, id, fmt.Sprintf("duplicate policy name '%s'", id))
			continue
		}
		seen[id] = true
	}
}

// validateSelectors checks that every resource/action selector pair compiles
func (bv *BundleValidator) validateSelectors(bundleName string, bundle *policydomain.Bundle, errors *Errors) {
	for _, def := range bundle.Policies {
		if _, err := model.NewActionPattern(def.Resource, def.Action); err != nil {
			errors.AddSelectorError(bundleName, def.IDSpec.ID, err.Error())
		}
	}
}

// validateRules checks that every rule compiles, retaining the structured
// parse or validation failure as the error cause
func (bv *BundleValidator) validateRules(bundleName string, bundle *policydomain.Bundle, errors *Errors) {
	for _, def := range bundle.Policies {
		if _, err := rule.Compile(def.Rule); err != nil {
			errors.AddRuleError(bundleName, def.IDSpec.ID, err)
		}
	}
}

//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package model defines the core data structures for policy evaluation.
//
// This package contains the runtime data types used by the rule engine and
// backend implementations. These types represent compiled policies and the
// action patterns that scope them, ready for evaluation against incoming
// requests.
//
// # Key Types
//
// Policy evaluation types:
//   - [Policy]: A compiled rule with its action pattern and metadata
//   - [PolicySet]: An ordered collection of policies guarding one operation
//   - [ActionPattern]: An anchored regular-expression pair scoping a policy
//
// Domain entity types:
//   - [Annotations]: Key-value metadata attached to policies
//
// # Relationship to policydomain Package
//
// The [policydomain] package contains the intermediate model parsed from YAML
// configuration files. This package (model) contains the runtime representation
// after rules have been compiled and are ready for evaluation.
package model

import (
	"crypto/sha256"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/manetu/ruleengine/pkg/rule"
)

// Annotations is a key-value map for storing metadata on policies.
//
// Annotations provide a flexible way to attach custom metadata to policies.
// Values can be any JSON-compatible type (strings, numbers, booleans, arrays,
// or nested objects). Annotations are carried into access log records for
// every decision the policy participates in.
type Annotations map[string]interface{}

// ActionPattern scopes a policy to the operations it governs.
//
// An ActionPattern holds a pair of regular expressions matched independently
// against a request's [rule.ActionID]: the resource pattern against the
// resource name, the action pattern against the action name. Both must match
// for the policy to apply. Patterns are anchored over the whole candidate
// string, so "echoer" does not match "echoer1"; write "echoer.*" for a
// prefix match.
type ActionPattern struct {
	// ResourceExpr is the source expression for the resource pattern.
	ResourceExpr string
	// ActionExpr is the source expression for the action pattern.
	ActionExpr string

	resource *regexp.Regexp
	action   *regexp.Regexp
}

// anchorPattern forces full-string matching unless the author anchored the
// pattern already.
func anchorPattern(pattern string) string {
	result := pattern
	if !strings.HasPrefix(result, "^") {
		result = "^" + result
	}
	if !strings.HasSuffix(result, "$") {
		result = result + "$"
	}
	return result
}

// NewActionPattern compiles the resource/action expression pair into an
// [ActionPattern]. Each expression is anchored before compilation.
func NewActionPattern(resourceExpr, actionExpr string) (*ActionPattern, error) {
	resource, err := regexp.Compile(anchorPattern(resourceExpr))
	if err != nil {
		return nil, errors.Wrapf(err, "resource pattern %q", resourceExpr)
	}

	action, err := regexp.Compile(anchorPattern(actionExpr))
	if err != nil {
		return nil, errors.Wrapf(err, "action pattern %q", actionExpr)
	}

	return &ActionPattern{
		ResourceExpr: resourceExpr,
		ActionExpr:   actionExpr,
		resource:     resource,
		action:       action,
	}, nil
}

// MustActionPattern is like [NewActionPattern] but panics on a bad
// expression. Intended for static patterns in tests and examples.
func MustActionPattern(resourceExpr, actionExpr string) *ActionPattern {
	p, err := NewActionPattern(resourceExpr, actionExpr)
	if err != nil {
		panic(err)
	}
	return p
}

// Matches reports whether both patterns match the given action identity.
func (p *ActionPattern) Matches(id rule.ActionID) bool {
	return p.resource.MatchString(id.Resource) && p.action.MatchString(id.Action)
}

// String renders the pattern pair in "resource:action" form for logs and
// access records.
func (p *ActionPattern) String() string {
	return p.ResourceExpr + ":" + p.ActionExpr
}

// Policy represents a compiled rule ready for evaluation.
//
// Policy pairs a validated [rule.Rule] with the [ActionPattern] declaring
// which operations it governs, along with identifying metadata.
//
// Fields:
//   - Mrn: The Manetu Resource Name uniquely identifying this policy
//   - Fingerprint: A SHA-256 hash of the canonical rule text for cache invalidation
//   - ActionID: The anchored pattern pair scoping this policy
//   - Rule: The compiled rule evaluated against requests in scope
//   - Source: The canonical text of the rule, suitable for display and storage
//   - Annotations: Metadata carried into access log records
type Policy struct {
	Mrn         string
	Fingerprint []byte
	ActionID    *ActionPattern
	Rule        rule.Rule
	Source      string
	Annotations Annotations
}

// NewPolicy compiles rule text into a [Policy] scoped by the given action
// pattern.
//
// The text is parsed and validated; any violation is returned unchanged from
// the compiler ([rule.ParseError] or [rule.ValidationErrors]). The stored
// Source and Fingerprint are derived from the canonical format, so two
// spellings of the same rule produce identical fingerprints.
func NewPolicy(mrn string, actionID *ActionPattern, text string) (*Policy, error) {
	compiled, err := rule.Compile(text)
	if err != nil {
		return nil, err
	}

	canonical := rule.Format(compiled)
	fingerprint := sha256.Sum256([]byte(canonical))

	return &Policy{
		Mrn:         mrn,
		Fingerprint: fingerprint[:],
		ActionID:    actionID,
		Rule:        compiled,
		Source:      canonical,
	}, nil
}

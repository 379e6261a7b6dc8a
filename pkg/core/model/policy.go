//
//  Copyright © Manetu Inc. All rights reserved.
//

// This file contains policy evaluation methods for the model package.

package model

import (
	"github.com/manetu/ruleengine/pkg/rule"
)

// Evaluate applies the policy's rule to the request, ignoring the action
// pattern. Evaluation is total: a missing attribute or a type mismatch
// fails the enclosing predicate rather than raising an error.
func (p *Policy) Evaluate(req *rule.Request) bool {
	return rule.Evaluate(p.Rule, req)
}

// Matches reports whether this policy authorizes the request.
//
// The action pattern is checked first; when the request's action identity
// falls outside the pattern the rule is never evaluated and the result is
// false. A policy's attribute conditions are thus never exercised by
// traffic outside its declared scope.
func (p *Policy) Matches(req *rule.Request) bool {
	if req == nil || !p.ActionID.Matches(req.ActionID) {
		return false
	}
	return p.Evaluate(req)
}

// PolicySet is an ordered collection of policies guarding one operation.
type PolicySet []*Policy

// Matches evaluates the set against the request and returns the first
// matching policy. The request is authorized when at least one policy in
// the set matches; policies after the match are not evaluated.
func (s PolicySet) Matches(req *rule.Request) (*Policy, bool) {
	for _, p := range s {
		if p.Matches(req) {
			return p, true
		}
	}
	return nil, false
}

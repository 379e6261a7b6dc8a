//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/ruleengine/pkg/rule"
)

func evalText(t *testing.T, text string, req *rule.Request) bool {
	t.Helper()
	return rule.Evaluate(compile(t, text), req)
}

func TestEvaluate_Literals(t *testing.T) {
	req := &rule.Request{}
	assert.True(t, rule.Evaluate(rule.True, req))
	assert.False(t, rule.Evaluate(rule.False, req))
	assert.True(t, evalText(t, "(not false)", req))
}

func TestEvaluate_Equality(t *testing.T) {
	req := &rule.Request{
		Subject: rule.Attributes{"foo": rule.Str("bar")},
	}

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "matching value",
			text:     `(eq subject.foo "bar")`,
			expected: true,
		},
		{
			name:     "mismatched value",
			text:     `(eq subject.foo "baz")`,
			expected: false,
		},
		{
			name:     "literal both sides",
			text:     `(eq "x" "x")`,
			expected: true,
		},
		{
			name:     "cross-type equality is false",
			text:     `(eq subject.foo true)`,
			expected: false,
		},
		{
			name:     "key against key",
			text:     "(eq subject.foo subject.foo)",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.text, req))
		})
	}
}

func TestEvaluate_NotEqual(t *testing.T) {
	req := &rule.Request{
		Subject: rule.Attributes{"foo": rule.Str("bar")},
	}

	t.Run("different values match", func(t *testing.T) {
		assert.True(t, evalText(t, `(neq subject.foo "baz")`, req))
	})

	t.Run("equal values do not match", func(t *testing.T) {
		assert.False(t, evalText(t, `(neq subject.foo "bar")`, req))
	})

	// An unresolvable operand fails the predicate itself; neq is negated
	// equality over resolved values, not the negation of the whole eq
	// evaluation. Wrapping eq with not observes the difference.
	t.Run("missing attribute does not match", func(t *testing.T) {
		assert.False(t, evalText(t, `(neq subject.missing "bar")`, req))
	})

	t.Run("not of eq on a missing attribute matches", func(t *testing.T) {
		assert.True(t, evalText(t, `(not (eq subject.missing "bar"))`, req))
	})
}

func TestEvaluate_Ordering(t *testing.T) {
	req := &rule.Request{
		Subject: rule.Attributes{
			"tier":    rule.Str("bronze"),
			"enabled": rule.Bool(true),
			"groups":  rule.Strings("a", "b"),
		},
	}

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "lexicographic less-than",
			text:     `(lt subject.tier "silver")`,
			expected: true,
		},
		{
			name:     "lexicographic greater-than",
			text:     `(gt subject.tier "alpha")`,
			expected: true,
		},
		{
			name:     "equal strings are not less",
			text:     `(lt subject.tier "bronze")`,
			expected: false,
		},
		{
			name:     "equal strings are not greater",
			text:     `(gt subject.tier "bronze")`,
			expected: false,
		},
		{
			name:     "prefix orders before its extension",
			text:     `(lt "ab" "abc")`,
			expected: true,
		},
		{
			name:     "byte order is case sensitive",
			text:     `(lt "Z" "a")`,
			expected: true,
		},
		{
			name:     "boolean-valued attribute fails closed",
			text:     `(lt subject.enabled "z")`,
			expected: false,
		},
		{
			name:     "list-valued attribute fails closed",
			text:     `(gt subject.groups "a")`,
			expected: false,
		},
		{
			name:     "missing attribute fails closed",
			text:     `(lt subject.absent "z")`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.text, req))
		})
	}
}

func TestEvaluate_Membership(t *testing.T) {
	req := &rule.Request{
		Subject: rule.Attributes{
			"foo":  rule.Str("baf"),
			"name": rule.Str("Ivan"),
		},
		Resource: rule.Attributes{
			"people": rule.Strings("Ivan", "Marya"),
			"owner":  rule.Str("Ivan"),
		},
	}

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "literal list containing the value",
			text:     `(member subject.foo ["bar" "baf"])`,
			expected: true,
		},
		{
			name:     "literal list missing the value",
			text:     `(member subject.name ["bar" "baf"])`,
			expected: false,
		},
		{
			name:     "key collection containing the value",
			text:     "(member subject.name resource.people)",
			expected: true,
		},
		{
			name:     "reversed containment does not match",
			text:     "(member resource.people subject.name)",
			expected: false,
		},
		{
			name:     "collection resolving to a non-list fails closed",
			text:     "(member subject.name resource.owner)",
			expected: false,
		},
		{
			name:     "missing element fails closed",
			text:     "(member subject.absent resource.people)",
			expected: false,
		},
		{
			name:     "missing collection fails closed",
			text:     "(member subject.name resource.absent)",
			expected: false,
		},
		{
			name:     "empty literal list",
			text:     "(member subject.name [])",
			expected: false,
		},
		{
			name:     "literal element against key collection",
			text:     `(member "Marya" resource.people)`,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.text, req))
		})
	}
}

func TestEvaluate_MissingAttributes(t *testing.T) {
	// A request with no subject attributes at all.
	req := &rule.Request{
		Action: rule.Attributes{"method": rule.Str("get")},
	}

	tests := []struct {
		name string
		text string
	}{
		{name: "eq", text: `(eq subject.foo "bar")`},
		{name: "neq", text: `(neq subject.foo "bar")`},
		{name: "lt", text: `(lt subject.foo "bar")`},
		{name: "gt", text: `(gt subject.foo "bar")`},
		{name: "member", text: `(member subject.foo ["bar"])`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, evalText(t, tt.text, req))
		})
	}

	t.Run("failure stays local to the predicate", func(t *testing.T) {
		// The broken branch denies itself; the sibling still matches.
		assert.True(t, evalText(t, `(or (eq subject.foo "bar") (eq action.method "get"))`, req))
	})
}

func TestEvaluate_Combinators(t *testing.T) {
	req := &rule.Request{
		Action:   rule.Attributes{"method": rule.Str("get")},
		Subject:  rule.Attributes{"name": rule.Str("Ivan")},
		Resource: rule.Attributes{"people": rule.Strings("Ivan", "Marya")},
	}

	conjunction := `(and (eq action.method "get") (member subject.name resource.people))`

	t.Run("conjunction matches", func(t *testing.T) {
		assert.True(t, evalText(t, conjunction, req))
	})

	t.Run("conjunction fails on changed attribute", func(t *testing.T) {
		post := &rule.Request{
			Action:   rule.Attributes{"method": rule.Str("post")},
			Subject:  req.Subject,
			Resource: req.Resource,
		}
		assert.False(t, evalText(t, conjunction, post))
	})

	t.Run("if selects the then branch", func(t *testing.T) {
		assert.True(t, evalText(t, `(if (eq action.method "get") true false)`, req))
	})

	t.Run("if selects the else branch", func(t *testing.T) {
		assert.False(t, evalText(t, `(if (eq action.method "post") true false)`, req))
	})

	t.Run("if condition fails closed into else", func(t *testing.T) {
		assert.True(t, evalText(t, `(if (eq subject.absent "x") false true)`, req))
	})

	t.Run("nested negation", func(t *testing.T) {
		assert.True(t, evalText(t, `(not (and (eq action.method "post") true))`, req))
	})
}

func TestEvaluate_NilInputs(t *testing.T) {
	t.Run("nil rule", func(t *testing.T) {
		assert.False(t, rule.Evaluate(nil, &rule.Request{}))
	})

	t.Run("nil request", func(t *testing.T) {
		assert.True(t, rule.Evaluate(rule.True, nil))
		assert.False(t, rule.Evaluate(compile(t, `(eq subject.foo "bar")`), nil))
	})
}

func TestRequest_Lookup(t *testing.T) {
	req := &rule.Request{
		Resource: rule.Attributes{"id": rule.Str("doc-1")},
		Action:   rule.Attributes{"method": rule.Str("get")},
		Subject:  rule.Attributes{"name": rule.Str("Ivan")},
	}

	tests := []struct {
		name     string
		key      rule.Key
		expected rule.Value
		found    bool
	}{
		{
			name:     "resource attribute",
			key:      rule.ResourceKey("id"),
			expected: rule.Str("doc-1"),
			found:    true,
		},
		{
			name:     "action attribute",
			key:      rule.ActionKey("method"),
			expected: rule.Str("get"),
			found:    true,
		},
		{
			name:     "subject attribute",
			key:      rule.SubjectKey("name"),
			expected: rule.Str("Ivan"),
			found:    true,
		},
		{
			name:  "absent attribute",
			key:   rule.SubjectKey("role"),
			found: false,
		},
		{
			name:  "name from another source",
			key:   rule.ResourceKey("name"),
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := req.Lookup(tt.key)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

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

// compile is a test helper asserting that text compiles cleanly.
func compile(t *testing.T, text string) rule.Rule {
	t.Helper()
	r, err := rule.Compile(text)
	require.NoError(t, err)
	return r
}

// validationErrors asserts that text parses but fails validation, and
// returns the aggregated violations.
func validationErrors(t *testing.T, text string) rule.ValidationErrors {
	t.Helper()
	raw, err := rule.Parse(text)
	require.NoError(t, err)

	r, err := rule.Validate(raw)
	assert.Nil(t, r)
	require.Error(t, err)

	var verrs rule.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func TestValidate_Conversions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected rule.Rule
	}{
		{
			name:     "literal",
			input:    "true",
			expected: rule.Literal(true),
		},
		{
			name:  "comparison",
			input: `(eq subject.foo "bar")`,
			expected: rule.Compare{
				Op:    rule.OpEq,
				Left:  rule.SubjectKey("foo"),
				Right: rule.Str("bar"),
			},
		},
		{
			name:  "membership with literal list",
			input: `(member subject.foo ["bar" "baf"])`,
			expected: rule.Member{
				Element:    rule.SubjectKey("foo"),
				Collection: rule.Strings("bar", "baf"),
			},
		},
		{
			name:  "membership with key collection",
			input: "(member subject.name resource.people)",
			expected: rule.Member{
				Element:    rule.SubjectKey("name"),
				Collection: rule.ResourceKey("people"),
			},
		},
		{
			name:  "boolean operand",
			input: "(eq resource.public true)",
			expected: rule.Compare{
				Op:    rule.OpEq,
				Left:  rule.ResourceKey("public"),
				Right: rule.Bool(true),
			},
		},
		{
			name:  "combinators",
			input: `(if (not false) (and true false) (or false true))`,
			expected: rule.If{
				Cond: rule.Not{Rule: rule.Literal(false)},
				Then: rule.And{Rules: []rule.Rule{rule.Literal(true), rule.Literal(false)}},
				Else: rule.Or{Rules: []rule.Rule{rule.Literal(false), rule.Literal(true)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := rule.Parse(tt.input)
			require.NoError(t, err)

			r, err := rule.Validate(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}
}

func TestValidate_CombinatorArity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		path    string
		message string
	}{
		{
			name:    "singleton and",
			input:   "(and true)",
			path:    "and",
			message: "at least two sub-rules",
		},
		{
			name:    "singleton or",
			input:   "(or false)",
			path:    "or",
			message: "at least two sub-rules",
		},
		{
			name:    "nested singleton",
			input:   "(not (and true))",
			path:    "not.and",
			message: "at least two sub-rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verrs := validationErrors(t, tt.input)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.path, verrs[0].Path)
			assert.Contains(t, verrs[0].Message, tt.message)
		})
	}
}

func TestValidate_OrderingOperands(t *testing.T) {
	t.Run("boolean literal rejected under lt", func(t *testing.T) {
		verrs := validationErrors(t, "(lt subject.x true)")
		require.Len(t, verrs, 1)
		assert.Equal(t, "lt.right", verrs[0].Path)
		assert.Contains(t, verrs[0].Message, "no order")
	})

	t.Run("boolean literal rejected under gt", func(t *testing.T) {
		verrs := validationErrors(t, "(gt false subject.x)")
		require.Len(t, verrs, 1)
		assert.Equal(t, "gt.left", verrs[0].Path)
	})

	t.Run("boolean literal permitted under eq", func(t *testing.T) {
		compile(t, "(eq subject.x true)")
	})

	t.Run("string operands permitted", func(t *testing.T) {
		compile(t, `(lt subject.tier "gold")`)
		compile(t, "(gt resource.a subject.b)")
	})
}

func TestValidate_Operands(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		path    string
		message string
	}{
		{
			name:    "list under comparison",
			input:   `(gt subject.x ["a"])`,
			path:    "gt.right",
			message: "membership collection",
		},
		{
			name:    "list as membership element",
			input:   `(member ["a"] subject.x)`,
			path:    "member.element",
			message: "membership collection",
		},
		{
			name:    "string as collection",
			input:   `(member subject.x "a")`,
			path:    "member.collection",
			message: "collection must be a key or a list of strings",
		},
		{
			name:    "boolean list element",
			input:   `(member subject.x ["a" true])`,
			path:    "member.collection[1]",
			message: "list element must be a string",
		},
		{
			name:    "nested list element",
			input:   `(member subject.x [["a"]])`,
			path:    "member.collection[0]",
			message: "list element must be a string",
		},
		{
			name:    "unknown source",
			input:   `(eq principal.foo "bar")`,
			path:    "eq.left",
			message: `unknown attribute source "principal"`,
		},
		{
			name:    "empty attribute name",
			input:   `(eq subject. "bar")`,
			path:    "eq.left",
			message: "invalid attribute name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verrs := validationErrors(t, tt.input)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.path, verrs[0].Path)
			assert.Contains(t, verrs[0].Message, tt.message)
		})
	}
}

func TestValidate_AggregatesViolations(t *testing.T) {
	// A single pass reports every violation, not just the first.
	verrs := validationErrors(t, `(and (or true) (lt subject.x true) (member subject.y ["a" false]))`)
	require.Len(t, verrs, 3)

	paths := make([]string, 0, len(verrs))
	for _, v := range verrs {
		paths = append(paths, v.Path)
	}
	assert.Equal(t, []string{
		"and[0].or",
		"and[1].lt.right",
		"and[2].member.collection[1]",
	}, paths)

	assert.Contains(t, verrs.Error(), "3 violations")
}

func TestValidate_HandBuiltTrees(t *testing.T) {
	t.Run("nil rule", func(t *testing.T) {
		r, err := rule.Validate(nil)
		assert.Nil(t, r)
		require.Error(t, err)
	})

	t.Run("nil sub-rules", func(t *testing.T) {
		raw := rule.RawAnd{Rules: []rule.RawRule{
			rule.RawNot{},
			rule.RawIf{Cond: rule.RawLiteral{Value: true}},
		}}
		_, err := rule.Validate(raw)
		require.Error(t, err)

		var verrs rule.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 3)
	})

	t.Run("nil operands", func(t *testing.T) {
		_, err := rule.Validate(rule.RawCompare{Op: rule.OpEq})
		require.Error(t, err)

		var verrs rule.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})

	t.Run("unknown operator", func(t *testing.T) {
		raw := rule.RawCompare{
			Op:    rule.CompareOp("between"),
			Left:  rule.RawStr("a"),
			Right: rule.RawStr("b"),
		}
		_, err := rule.Validate(raw)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown comparison operator")
	})

	t.Run("well-formed tree validates", func(t *testing.T) {
		raw := rule.RawMember{
			Element:    rule.RawKey{Source: "subject", Name: "name"},
			Collection: rule.RawList{rule.RawStr("Ivan"), rule.RawStr("Marya")},
		}
		r, err := rule.Validate(raw)
		require.NoError(t, err)
		assert.Equal(t, rule.Member{
			Element:    rule.SubjectKey("name"),
			Collection: rule.Strings("Ivan", "Marya"),
		}, r)
	})
}

func TestValidate_DepthLimit(t *testing.T) {
	raw := rule.RawRule(rule.RawLiteral{Value: true})
	for i := 0; i < rule.MaxDepth+1; i++ {
		raw = rule.RawNot{Rule: raw}
	}

	_, err := rule.Validate(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum depth")
}

func TestValidate_Idempotence(t *testing.T) {
	// Re-validating the serialized form of a validated rule never fails.
	texts := []string{
		"true",
		`(eq subject.foo "bar")`,
		`(member subject.foo ["bar" "baf"])`,
		`(and (eq action.method "get") (member subject.name resource.people))`,
		`(if (not false) (or true false) (neq subject.a resource.b))`,
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			first := compile(t, text)
			second := compile(t, rule.Format(first))
			assert.Equal(t, first, second)
		})
	}
}

func TestCompile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, err := rule.Compile(`(eq subject.foo "bar")`)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("parse failure", func(t *testing.T) {
		_, err := rule.Compile("(eq subject.foo")
		var perr *rule.ParseError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("validation failure", func(t *testing.T) {
		_, err := rule.Compile("(and true)")
		var verrs rule.ValidationErrors
		require.ErrorAs(t, err, &verrs)
	})
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() {
		rule.MustCompile("(not false)")
	})
	assert.Panics(t, func() {
		rule.MustCompile("(not)")
	})
}

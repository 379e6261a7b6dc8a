//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package rule implements the attribute rule language at the heart of the
// policy engine: a small prefix-notation DSL describing boolean conditions
// over request attributes.
//
// Rule text is compiled in two stages. [Parse] turns source text into a raw
// parse tree, rejecting anything outside the grammar with a [ParseError].
// [Validate] checks the raw tree's structural invariants and produces an
// immutable [Rule], reporting every violation it finds in a single pass as
// [ValidationErrors]. [Compile] combines the two stages.
//
// A validated [Rule] is applied to a [Request] with [Evaluate], which is
// total: it always produces a boolean and never an error. An attribute
// reference that does not resolve, or a resolved value whose type does not
// fit its operator, evaluates to false at the smallest enclosing predicate
// (fail closed) without disturbing sibling branches.
//
// [Format] renders a validated [Rule] back to canonical text such that
// Validate(Parse(Format(r))) reproduces r exactly. Canonical text is the
// persistence form for rules.
//
// # Grammar
//
//	rule    := "true" | "false"
//	         | "(" cmp operand operand ")"      cmp: eq neq lt gt ("=", "!=" accepted)
//	         | "(" "member" operand operand ")" ("in" accepted)
//	         | "(" "not" rule ")"
//	         | "(" "and" rule+ ")"
//	         | "(" "or" rule+ ")"
//	         | "(" "if" rule rule rule ")"
//	operand := key | value
//	key     := ("resource" | "action" | "subject") "." name
//	value   := string | "true" | "false" | list
//	list    := "[" value* "]"
//	string  := '"' bytes '"'                    escapes: \\ and \"
//
// Example:
//
//	(and (eq action.method "get") (member subject.name resource.people))
//
// Ordered comparison (lt, gt) is defined over byte-strings only, as
// lexicographic byte order. Boolean literals are rejected as ordering
// operands at validation time; a key that resolves to a non-string value
// makes the comparison false at evaluation time.
package rule

import (
	"strings"
)

// MaxDepth bounds rule nesting. [Parse] and [Validate] reject rules nested
// more deeply.
const MaxDepth = 64

// CompareOp enumerates the comparison operators in their canonical
// spellings.
type CompareOp string

// Comparison operators accepted by [Compare] rules.
const (
	OpEq  CompareOp = "eq"
	OpNeq CompareOp = "neq"
	OpLt  CompareOp = "lt"
	OpGt  CompareOp = "gt"
)

// Rule is a validated, immutable rule expression.
//
// The variant set is closed: [Literal], [Compare], [Member], [Not], [And],
// [Or] and [If] are the only implementations. Rules obtained from
// [Validate] or [Compile] satisfy every structural invariant. Rule values
// may also be constructed directly (programmatic policies, tests); such
// values are accepted by [Evaluate] and [Format] as-is, and
// [Validate]([Parse]([Format](r))) confirms their well-formedness.
type Rule interface {
	eval(req *Request) bool
	write(sb *strings.Builder)
}

// Literal is the constant rule, trivially true or false.
type Literal bool

// True and False are the two literal rules.
var (
	True  Rule = Literal(true)
	False Rule = Literal(false)
)

// Compare tests two operands under a comparison operator.
type Compare struct {
	Op    CompareOp
	Left  Operand
	Right Operand
}

// Member tests whether Element occurs in Collection under value equality.
// Collection is either a [Key] that must resolve to a [List] at evaluation
// time, or a literal [List].
type Member struct {
	Element    Operand
	Collection Operand
}

// Not negates its sub-rule.
type Not struct {
	Rule Rule
}

// And is the short-circuiting conjunction of two or more sub-rules,
// evaluated left to right.
type And struct {
	Rules []Rule
}

// Or is the short-circuiting disjunction of two or more sub-rules,
// evaluated left to right.
type Or struct {
	Rules []Rule
}

// If selects Then or Else based on the outcome of Cond.
type If struct {
	Cond Rule
	Then Rule
	Else Rule
}

// Compile parses and validates rule text, returning the immutable [Rule].
//
// A failure is either a [*ParseError] or a [ValidationErrors]; in both
// cases the text is rejected whole and must not be treated as any default
// verdict.
func Compile(text string) (Rule, error) {
	raw, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Validate(raw)
}

// MustCompile is like [Compile] but panics when the text does not compile.
// It simplifies initialization of rules known to be well formed.
func MustCompile(text string) Rule {
	r, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return r
}

//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

import (
	"fmt"
	"strings"
)

// ValidationError reports a single structural violation found by
// [Validate].
type ValidationError struct {
	// Path locates the failing sub-rule within the tree, e.g.
	// "and[1].member.collection[0]". An empty path refers to the rule as
	// a whole.
	Path string
	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid rule: %s", e.Message)
	}
	return fmt.Sprintf("invalid rule at %s: %s", e.Path, e.Message)
}

// ValidationErrors aggregates every violation found in one validation
// pass over a rule tree.
type ValidationErrors []*ValidationError

// Error implements the error interface, returning a multi-line summary of
// all violations.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "rule validation failed with %d violations:", len(e))
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks the structural invariants of a raw parse tree and
// returns the immutable [Rule] on success.
//
// The walk does not stop at the first problem: the returned error is a
// [ValidationErrors] naming every failing sub-rule by path, so a deeply
// nested rule reports all of its violations in a single pass. The checks
// are purely structural and type-level; attribute names are never resolved
// against a request.
//
// The invariants, per node:
//   - comparisons take exactly two operands, each a key or a scalar
//     literal; lt and gt additionally reject boolean literals
//   - membership takes an element (key or scalar) and a collection (key,
//     or literal list whose every element is a string)
//   - and/or take two or more sub-rules; a singleton is rejected, never
//     silently simplified
//   - keys name a known source and an attribute whose name survives a
//     format/parse round trip
//   - nesting does not exceed [MaxDepth]
func Validate(raw RawRule) (Rule, error) {
	v := validator{}
	r := v.rule(raw, "", 1)
	if len(v.errs) > 0 {
		return nil, v.errs
	}
	return r, nil
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) addf(path, format string, args ...interface{}) {
	v.errs = append(v.errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func joinPath(base, elem string) string {
	if base == "" {
		return elem
	}
	return base + "." + elem
}

func (v *validator) rule(raw RawRule, base string, depth int) Rule {
	if depth > MaxDepth {
		v.addf(base, "rule exceeds maximum depth %d", MaxDepth)
		return nil
	}
	switch n := raw.(type) {
	case RawLiteral:
		return Literal(n.Value)
	case RawCompare:
		return v.compare(n, joinPath(base, string(n.Op)))
	case RawMember:
		path := joinPath(base, "member")
		return Member{
			Element:    v.scalar(n.Element, joinPath(path, "element")),
			Collection: v.collection(n.Collection, joinPath(path, "collection")),
		}
	case RawNot:
		return Not{Rule: v.rule(n.Rule, joinPath(base, "not"), depth+1)}
	case RawAnd:
		return And{Rules: v.seq("and", n.Rules, joinPath(base, "and"), depth)}
	case RawOr:
		return Or{Rules: v.seq("or", n.Rules, joinPath(base, "or"), depth)}
	case RawIf:
		path := joinPath(base, "if")
		return If{
			Cond: v.rule(n.Cond, joinPath(path, "cond"), depth+1),
			Then: v.rule(n.Then, joinPath(path, "then"), depth+1),
			Else: v.rule(n.Else, joinPath(path, "else"), depth+1),
		}
	case nil:
		v.addf(base, "missing sub-rule")
	default:
		v.addf(base, "unsupported rule node %T", raw)
	}
	return nil
}

func (v *validator) compare(n RawCompare, path string) Rule {
	switch n.Op {
	case OpEq, OpNeq, OpLt, OpGt:
	default:
		v.addf(path, "unknown comparison operator %q", string(n.Op))
	}
	left := v.scalar(n.Left, joinPath(path, "left"))
	right := v.scalar(n.Right, joinPath(path, "right"))
	if n.Op == OpLt || n.Op == OpGt {
		if _, ok := left.(Bool); ok {
			v.addf(joinPath(path, "left"), "booleans have no order; ordered comparison requires strings")
		}
		if _, ok := right.(Bool); ok {
			v.addf(joinPath(path, "right"), "booleans have no order; ordered comparison requires strings")
		}
	}
	return Compare{Op: n.Op, Left: left, Right: right}
}

func (v *validator) seq(op string, rules []RawRule, path string, depth int) []Rule {
	if len(rules) < 2 {
		v.addf(path, "%q requires at least two sub-rules", op)
	}
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		out = append(out, v.rule(r, fmt.Sprintf("%s[%d]", path, i), depth+1))
	}
	return out
}

// scalar admits the operand shapes valid for comparisons and membership
// elements: a key reference or a scalar literal.
func (v *validator) scalar(raw RawOperand, path string) Operand {
	switch o := raw.(type) {
	case RawKey:
		return v.key(o, path)
	case RawStr:
		return Str(o)
	case RawBool:
		return Bool(o)
	case RawList:
		v.addf(path, "a list may only appear as a membership collection")
	case nil:
		v.addf(path, "missing operand")
	default:
		v.addf(path, "unsupported operand %T", raw)
	}
	return nil
}

// collection admits the operand shapes valid for a membership collection:
// a key reference or a literal list with every element type-checked to be
// a string.
func (v *validator) collection(raw RawOperand, path string) Operand {
	switch o := raw.(type) {
	case RawKey:
		return v.key(o, path)
	case RawList:
		list := make(List, 0, len(o))
		for i, elem := range o {
			s, ok := elem.(RawStr)
			if !ok {
				v.addf(fmt.Sprintf("%s[%d]", path, i), "list element must be a string")
				continue
			}
			list = append(list, Str(s))
		}
		return list
	case RawStr, RawBool:
		v.addf(path, "collection must be a key or a list of strings")
	case nil:
		v.addf(path, "missing operand")
	default:
		v.addf(path, "unsupported operand %T", raw)
	}
	return nil
}

func (v *validator) key(k RawKey, path string) Operand {
	source, ok := parseSource(k.Source)
	if !ok {
		v.addf(path, "unknown attribute source %q", k.Source)
		return nil
	}
	if !isAtomText(k.Name) {
		v.addf(path, "invalid attribute name %q", k.Name)
		return nil
	}
	return Key{Source: source, Name: k.Name}
}

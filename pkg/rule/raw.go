//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

// RawRule is the untyped parse tree produced by [Parse]. Its shape mirrors
// the grammar productions one to one; no structural invariants hold until
// [Validate] converts it into a [Rule]. A raw tree is transient and is not
// accepted by [Evaluate] or [Format].
type RawRule interface {
	isRawRule()
}

// RawOperand is an unvalidated comparison or membership operand.
type RawOperand interface {
	isRawOperand()
}

// RawValue is an unvalidated literal value.
type RawValue interface {
	RawOperand
	isRawValue()
}

// RawLiteral is an unvalidated constant rule.
type RawLiteral struct {
	Value bool
}

// RawCompare is an unvalidated comparison. The operands may still carry
// shapes the typed AST forbids, such as a list operand.
type RawCompare struct {
	Op    CompareOp
	Left  RawOperand
	Right RawOperand
}

// RawMember is an unvalidated membership test.
type RawMember struct {
	Element    RawOperand
	Collection RawOperand
}

// RawNot is an unvalidated negation.
type RawNot struct {
	Rule RawRule
}

// RawAnd is an unvalidated conjunction. The parser guarantees at least one
// sub-rule; the two-or-more invariant is enforced by [Validate].
type RawAnd struct {
	Rules []RawRule
}

// RawOr is an unvalidated disjunction. The parser guarantees at least one
// sub-rule; the two-or-more invariant is enforced by [Validate].
type RawOr struct {
	Rules []RawRule
}

// RawIf is an unvalidated ternary selection.
type RawIf struct {
	Cond RawRule
	Then RawRule
	Else RawRule
}

// RawKey is an unvalidated attribute reference. Source is carried verbatim
// from the text; [Validate] checks it against the known sources.
type RawKey struct {
	Source string
	Name   string
}

// RawStr is an unvalidated byte-string literal.
type RawStr string

// RawBool is an unvalidated boolean literal.
type RawBool bool

// RawList is an unvalidated list literal. Elements may be of any raw value
// shape, including nested lists; [Validate] requires every element to be a
// string.
type RawList []RawValue

func (RawLiteral) isRawRule() {}
func (RawCompare) isRawRule() {}
func (RawMember) isRawRule()  {}
func (RawNot) isRawRule()     {}
func (RawAnd) isRawRule()     {}
func (RawOr) isRawRule()      {}
func (RawIf) isRawRule()      {}

func (RawKey) isRawOperand()  {}
func (RawStr) isRawOperand()  {}
func (RawBool) isRawOperand() {}
func (RawList) isRawOperand() {}

func (RawStr) isRawValue()  {}
func (RawBool) isRawValue() {}
func (RawList) isRawValue() {}

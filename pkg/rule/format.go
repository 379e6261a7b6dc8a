//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

import (
	"strconv"
	"strings"
)

// Format renders a validated rule as canonical text, the inverse of
// [Parse] and [Validate] over the accepted grammar.
//
// The canonical form is deterministic: the same rule always formats to the
// same bytes, operators appear under their canonical spellings (eq, neq,
// member) regardless of how the rule was written, tokens are separated by
// single spaces, and strings carry only the two defined escapes. Stored
// policies are therefore byte-stable across any number of load/save
// cycles, and Validate(Parse(Format(r))) reproduces r exactly.
func Format(r Rule) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	r.write(&sb)
	return sb.String()
}

// Nil branches evaluate as false, so they format as false too, keeping the
// rendered text grammatical even for partially built trees.
func writeRule(sb *strings.Builder, r Rule) {
	if r == nil {
		sb.WriteString("false")
		return
	}
	r.write(sb)
}

func writeOperand(sb *strings.Builder, op Operand) {
	if op == nil {
		sb.WriteString("false")
		return
	}
	op.writeTo(sb)
}

func (l Literal) write(sb *strings.Builder) {
	sb.WriteString(strconv.FormatBool(bool(l)))
}

func (c Compare) write(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(string(c.Op))
	sb.WriteByte(' ')
	writeOperand(sb, c.Left)
	sb.WriteByte(' ')
	writeOperand(sb, c.Right)
	sb.WriteByte(')')
}

func (m Member) write(sb *strings.Builder) {
	sb.WriteString("(member ")
	writeOperand(sb, m.Element)
	sb.WriteByte(' ')
	writeOperand(sb, m.Collection)
	sb.WriteByte(')')
}

func (n Not) write(sb *strings.Builder) {
	sb.WriteString("(not ")
	writeRule(sb, n.Rule)
	sb.WriteByte(')')
}

func (a And) write(sb *strings.Builder) {
	writeSeq(sb, "and", a.Rules)
}

func (o Or) write(sb *strings.Builder) {
	writeSeq(sb, "or", o.Rules)
}

func (f If) write(sb *strings.Builder) {
	sb.WriteString("(if ")
	writeRule(sb, f.Cond)
	sb.WriteByte(' ')
	writeRule(sb, f.Then)
	sb.WriteByte(' ')
	writeRule(sb, f.Else)
	sb.WriteByte(')')
}

func writeSeq(sb *strings.Builder, op string, rules []Rule) {
	sb.WriteByte('(')
	sb.WriteString(op)
	for _, r := range rules {
		sb.WriteByte(' ')
		writeRule(sb, r)
	}
	sb.WriteByte(')')
}

func (k Key) writeTo(sb *strings.Builder) {
	sb.WriteString(string(k.Source))
	sb.WriteByte('.')
	sb.WriteString(k.Name)
}

func (v Str) writeTo(sb *strings.Builder) {
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
}

func (v Bool) writeTo(sb *strings.Builder) {
	sb.WriteString(strconv.FormatBool(bool(v)))
}

func (v List) writeTo(sb *strings.Builder) {
	sb.WriteByte('[')
	for i, item := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		item.writeTo(sb)
	}
	sb.WriteByte(']')
}

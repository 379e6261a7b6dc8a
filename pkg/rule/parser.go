//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

import (
	"fmt"
	"strings"
)

// ParseError reports rule text that does not conform to the grammar.
type ParseError struct {
	// Offset is the byte offset of the offending text within the input.
	Offset int
	// Token is the offending text itself, empty when the input ended
	// prematurely.
	Token string
	// Message describes the expectation that failed.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("parse error at offset %d near %q: %s", e.Offset, e.Token, e.Message)
}

// Parse converts rule source text into a raw parse tree.
//
// Parse is total over the grammar: input that does not conform yields a
// [*ParseError] naming the offending text and its offset, never a partial
// tree. Whitespace between tokens is insignificant; parentheses and
// brackets must balance exactly, and nothing may follow the rule.
//
// Parse enforces only the grammar, including per-operator arity. Semantic
// typing is left to [Validate]: for example, a list operand under an
// ordering comparison parses here and is rejected there.
func Parse(text string) (RawRule, error) {
	p := parser{lex: lexer{input: text}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	raw, err := p.rule(1)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, p.unexpected("expected end of input")
	}
	return raw, nil
}

// parser is a recursive-descent parser with one token of lookahead. It
// carries no state beyond the current position, so concurrent Parse calls
// are independent.
type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() *ParseError {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected(msg string) *ParseError {
	return &ParseError{Offset: p.tok.offset, Token: p.tok.text, Message: msg}
}

func (p *parser) rule(depth int) (RawRule, *ParseError) {
	if depth > MaxDepth {
		return nil, p.unexpected(fmt.Sprintf("rule exceeds maximum depth %d", MaxDepth))
	}
	switch p.tok.kind {
	case tokenAtom:
		if p.tok.text == "true" || p.tok.text == "false" {
			lit := RawLiteral{Value: p.tok.text == "true"}
			if err := p.advance(); err != nil {
				return nil, err
			}
			return lit, nil
		}
	case tokenLParen:
		return p.compound(depth)
	}
	return nil, p.unexpected("expected a rule")
}

func (p *parser) compound(depth int) (RawRule, *ParseError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokenAtom {
		return nil, p.unexpected("expected an operator")
	}
	opTok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch opTok.text {
	case "eq", "=":
		return p.comparison(OpEq, depth)
	case "neq", "!=":
		return p.comparison(OpNeq, depth)
	case "lt":
		return p.comparison(OpLt, depth)
	case "gt":
		return p.comparison(OpGt, depth)
	case "member", "in":
		element, err := p.operand(depth)
		if err != nil {
			return nil, err
		}
		collection, err := p.operand(depth)
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		return RawMember{Element: element, Collection: collection}, nil
	case "not":
		sub, err := p.rule(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		return RawNot{Rule: sub}, nil
	case "and", "or":
		rules, err := p.ruleSeq(opTok.text, depth)
		if err != nil {
			return nil, err
		}
		if opTok.text == "and" {
			return RawAnd{Rules: rules}, nil
		}
		return RawOr{Rules: rules}, nil
	case "if":
		cond, err := p.rule(depth + 1)
		if err != nil {
			return nil, err
		}
		then, err := p.rule(depth + 1)
		if err != nil {
			return nil, err
		}
		els, err := p.rule(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		return RawIf{Cond: cond, Then: then, Else: els}, nil
	}
	return nil, &ParseError{Offset: opTok.offset, Token: opTok.text, Message: "unknown operator"}
}

func (p *parser) comparison(op CompareOp, depth int) (RawRule, *ParseError) {
	left, err := p.operand(depth)
	if err != nil {
		return nil, err
	}
	right, err := p.operand(depth)
	if err != nil {
		return nil, err
	}
	if err := p.closeParen(); err != nil {
		return nil, err
	}
	return RawCompare{Op: op, Left: left, Right: right}, nil
}

func (p *parser) ruleSeq(op string, depth int) ([]RawRule, *ParseError) {
	var rules []RawRule
	for p.tok.kind != tokenRParen {
		if p.tok.kind == tokenEOF {
			return nil, p.unexpected("expected ')'")
		}
		sub, err := p.rule(depth + 1)
		if err != nil {
			return nil, err
		}
		rules = append(rules, sub)
	}
	if len(rules) == 0 {
		return nil, p.unexpected(fmt.Sprintf("%q requires at least one sub-rule", op))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (p *parser) operand(depth int) (RawOperand, *ParseError) {
	switch p.tok.kind {
	case tokenAtom:
		text := p.tok.text
		if text == "true" || text == "false" {
			b := RawBool(text == "true")
			if err := p.advance(); err != nil {
				return nil, err
			}
			return b, nil
		}
		if source, name, ok := strings.Cut(text, "."); ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return RawKey{Source: source, Name: name}, nil
		}
	case tokenString:
		s := RawStr(p.tok.str)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return s, nil
	case tokenLBracket:
		return p.list(depth)
	}
	return nil, p.unexpected("expected an attribute key or literal value")
}

func (p *parser) list(depth int) (RawList, *ParseError) {
	if depth+1 > MaxDepth {
		return nil, p.unexpected(fmt.Sprintf("rule exceeds maximum depth %d", MaxDepth))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	list := RawList{}
	for p.tok.kind != tokenRBracket {
		if p.tok.kind == tokenEOF {
			return nil, p.unexpected("expected ']'")
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) value(depth int) (RawValue, *ParseError) {
	switch p.tok.kind {
	case tokenAtom:
		if p.tok.text == "true" || p.tok.text == "false" {
			b := RawBool(p.tok.text == "true")
			if err := p.advance(); err != nil {
				return nil, err
			}
			return b, nil
		}
	case tokenString:
		s := RawStr(p.tok.str)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return s, nil
	case tokenLBracket:
		return p.list(depth)
	}
	return nil, p.unexpected("expected a literal value")
}

func (p *parser) closeParen() *ParseError {
	if p.tok.kind != tokenRParen {
		return p.unexpected("expected ')'")
	}
	return p.advance()
}

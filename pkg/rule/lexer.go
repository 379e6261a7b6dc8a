//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenString
	tokenAtom
)

// token is a single lexical element. text carries the raw source form for
// error reporting; str carries the decoded payload of a string token.
type token struct {
	kind   tokenKind
	text   string
	str    string
	offset int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, *ParseError) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, offset: start}, nil
	}
	switch c := l.input[l.pos]; c {
	case '(':
		l.pos++
		return token{kind: tokenLParen, text: "(", offset: start}, nil
	case ')':
		l.pos++
		return token{kind: tokenRParen, text: ")", offset: start}, nil
	case '[':
		l.pos++
		return token{kind: tokenLBracket, text: "[", offset: start}, nil
	case ']':
		l.pos++
		return token{kind: tokenRBracket, text: "]", offset: start}, nil
	case '"':
		return l.scanString()
	default:
		return l.scanAtom(), nil
	}
}

func (l *lexer) scanAtom() token {
	start := l.pos
	for l.pos < len(l.input) && !isDelimiter(l.input[l.pos]) {
		l.pos++
	}
	return token{kind: tokenAtom, text: l.input[start:l.pos], offset: start}
}

// scanString decodes a quoted byte-string. Only the two escape sequences
// \\ and \" are defined; any byte other than '"' and '\' stands for
// itself.
func (l *lexer) scanString() (token, *ParseError) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case '"':
			l.pos++
			return token{
				kind:   tokenString,
				text:   l.input[start:l.pos],
				str:    sb.String(),
				offset: start,
			}, nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return token{}, &ParseError{
					Offset:  start,
					Token:   l.input[start:],
					Message: "unterminated string",
				}
			}
			esc := l.input[l.pos+1]
			if esc != '\\' && esc != '"' {
				return token{}, &ParseError{
					Offset:  l.pos,
					Token:   l.input[l.pos : l.pos+2],
					Message: fmt.Sprintf(`invalid escape sequence \%c`, esc),
				}
			}
			sb.WriteByte(esc)
			l.pos += 2
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, &ParseError{
		Offset:  start,
		Token:   l.input[start:],
		Message: "unterminated string",
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '[' || c == ']' || c == '"' || isSpace(c)
}

// isAtomText reports whether s survives a format/parse round trip as a
// single atom: non-empty, no delimiters, no control bytes.
func isAtomText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDelimiter(c) || c < 0x21 || c == 0x7f {
			return false
		}
	}
	return true
}

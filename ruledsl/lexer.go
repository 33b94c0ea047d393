// Package ruledsl implements the hand-written lexer and recursive-descent
// parser for the two small rule-text grammars this engine understands: the
// data-rule grammar (obligation/attribute declarations inside a
// begin...end block) and the flow-rule grammar (propagate/edit/delete
// statements). No parser-generator or combinator library in the retrieved
// example pack targets this exact closed grammar shape, so this single
// piece is built directly on the standard library (strings/unicode
// scanning) rather than a third-party dependency.
package ruledsl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokFloat
	tokSym // punctuation / operators, Text holds the literal
)

type token struct {
	kind tokenKind
	text string
	ival int64
	fval float64
	pos  int
}

// lexer tokenizes rule text. It recognizes CNAME identifiers, ESCAPED_STRING
// literals, INT/SIGNED_NUMBER numerics, and the fixed punctuation set both
// grammars need: ( ) [ ] , . = != * -> .
type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) skipWS() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// next scans and returns the next token.
func (l *lexer) next() (token, error) {
	l.skipWS()
	start := l.pos
	r, ok := l.peekRune()
	if !ok {
		return token{kind: tokEOF, pos: start}, nil
	}

	switch {
	case r == '"':
		return l.scanString()
	case isIdentStart(r):
		return l.scanIdent(), nil
	case unicode.IsDigit(r) || (r == '-' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])):
		return l.scanNumber(), nil
	case r == '-' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '>':
		l.pos += 2
		return token{kind: tokSym, text: "->", pos: start}, nil
	case r == '!' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '=':
		l.pos += 2
		return token{kind: tokSym, text: "!=", pos: start}, nil
	case strings.ContainsRune("()[],.=*", r):
		l.pos++
		return token{kind: tokSym, text: string(r), pos: start}, nil
	default:
		return token{}, fmt.Errorf("unexpected character %q at offset %d", r, start)
	}
}

func (l *lexer) scanIdent() token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("unterminated string literal starting at offset %d", start)
		}
		r := l.src[l.pos]
		if r == '"' {
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		}
		if r == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			esc := l.src[l.pos]
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"', '\\':
				b.WriteRune(esc)
			default:
				b.WriteRune(esc)
			}
			l.pos++
			continue
		}
		b.WriteRune(r)
		l.pos++
	}
}

func (l *lexer) scanNumber() token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	isFloat := false
	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		isFloat = true
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	text := string(l.src[start:l.pos])
	if isFloat {
		f, _ := strconv.ParseFloat(text, 64)
		return token{kind: tokFloat, text: text, fval: f, pos: start}
	}
	i, _ := strconv.ParseInt(text, 10, 64)
	return token{kind: tokInt, text: text, ival: i, pos: start}
}

// tokenize scans src into a token slice terminated by a tokEOF token.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

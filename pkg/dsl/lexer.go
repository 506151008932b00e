package dsl

import (
	"fmt"
	"strings"
	"unicode"
)

/* A location in the source text. Line and Column are 1-based, Column counts bytes. */
type Position struct {
	Offset, Line, Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	/* Any run of characters that is not whitespace, a dash at the start, or a string literal. */
	tokWord
	tokString
	tokDash
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "word"
	case tokString:
		return "string literal"
	case tokDash:
		return `"-"`
	default:
		return fmt.Sprintf("tokenKind(%d)", uint8(k))
	}
}

type lexToken struct {
	kind tokenKind
	/* Raw source text of the token. */
	text string
	pos  Position
}

type lexer struct {
	src string
	/* Index into src of the next unread byte. */
	i   int
	pos Position
}

func newLexer(src string, start Position) *lexer {
	return &lexer{src: src, pos: start}
}

func (l *lexer) rest() string { return l.src[l.i:] }

func (l *lexer) advance(n int) {
	for i := l.i; i < l.i+n; i++ {
		if l.src[i] == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		} else {
			l.pos.Column++
		}
	}
	l.i += n
	l.pos.Offset += n
}

func (l *lexer) skipSpace() {
	n := len(l.rest()) - len(strings.TrimLeftFunc(l.rest(), unicode.IsSpace))
	l.advance(n)
}

func isWordEnd(r rune) bool {
	return unicode.IsSpace(r) || r == '"' || r == '`'
}

/* Returns the next token, or a *SyntaxError for an unterminated string literal. */
func (l *lexer) next() (lexToken, error) {
	l.skipSpace()
	start := l.pos
	rest := l.rest()
	if rest == "" {
		return lexToken{kind: tokEOF, pos: start}, nil
	}
	var kind tokenKind
	var n int
	switch rest[0] {
	case '-':
		kind, n = tokDash, 1
	case '"':
		kind = tokString
		n = interpretedStringLen(rest)
		if n < 0 {
			return lexToken{}, &SyntaxError{Pos: start, Token: firstLine(rest), Msg: "unterminated string literal"}
		}
	case '`':
		kind = tokString
		end := strings.IndexByte(rest[1:], '`')
		if end < 0 {
			return lexToken{}, &SyntaxError{Pos: start, Token: firstLine(rest), Msg: "unterminated raw string literal"}
		}
		n = end + 2
	default:
		kind = tokWord
		n = strings.IndexFunc(rest, isWordEnd)
		if n < 0 {
			n = len(rest)
		}
	}
	tok := lexToken{kind: kind, text: rest[:n], pos: start}
	l.advance(n)
	return tok, nil
}

/* Length of the interpreted string literal at the start of s including both quotes, or -1 if it is not closed on its line. */
func interpretedStringLen(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '"':
			return i + 1
		}
	}
	return -1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

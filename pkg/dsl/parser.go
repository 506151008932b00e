/*
Parses the quickerr shorthand:

	block      := visibility? IDENT message variant*
	visibility := "pub"
	message    := STRING_LITERAL
	variant    := "-" TYPE_PATH

Whitespace and line breaks only separate tokens.
*/
package dsl

import (
	"errors"
	"fmt"
	"strconv"

	"gitlab.com/kyle_anderson/quickerr/pkg/spec"
)

const visibilityKeyword = "pub"

/* Parses src, reporting positions as if src starts at line 1, column 1. */
func Parse(src string) (*spec.ErrorSpec, error) {
	return ParseAt(src, Position{Line: 1, Column: 1})
}

/*
Parses src, reporting positions relative to start. Returns a *SyntaxError if src
does not match the grammar, or a *spec.NameCollisionError if the variants derive
colliding case names.
*/
func ParseAt(src string, start Position) (*spec.ErrorSpec, error) {
	toks, err := tokenize(newLexer(src, start))
	if err != nil {
		return nil, err
	}
	p := parser{toks: toks}
	return p.block()
}

func tokenize(l *lexer) (toks []lexToken, err error) {
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

type parser struct {
	/* Always terminated by a tokEOF token. */
	toks []lexToken
	i    int
}

func (p *parser) peek(ahead int) lexToken {
	if i := p.i + ahead; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) take() lexToken {
	tok := p.peek(0)
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func unexpected(tok lexToken, msg string) *SyntaxError {
	if tok.kind == tokEOF {
		msg = "unexpected end of input: " + msg
	}
	return &SyntaxError{Pos: tok.pos, Token: tok.text, Msg: msg}
}

func (p *parser) block() (*spec.ErrorSpec, error) {
	visibility := spec.Private
	if first := p.peek(0); first.kind == tokWord && first.text == visibilityKeyword && p.peek(1).kind == tokWord {
		visibility = spec.Public
		p.take()
	}

	nameTok := p.take()
	if nameTok.kind != tokWord {
		return nil, unexpected(nameTok, "expected type name")
	}
	if _, err := spec.GoTypeName(visibility, nameTok.text); err != nil {
		return nil, invalid(nameTok, err)
	}

	msgTok := p.take()
	var message string
	switch msgTok.kind {
	case tokString:
		var err error
		if message, err = strconv.Unquote(msgTok.text); err != nil {
			return nil, &SyntaxError{Pos: msgTok.pos, Token: msgTok.text, Msg: "malformed message literal", Err: err}
		}
	case tokDash:
		return nil, unexpected(msgTok, "variant line before the message literal")
	default:
		return nil, unexpected(msgTok, "missing message literal")
	}

	var paths []string
	for tok := p.take(); tok.kind != tokEOF; tok = p.take() {
		switch tok.kind {
		case tokString:
			return nil, unexpected(tok, "only one message literal is allowed")
		case tokWord:
			return nil, unexpected(tok, `expected "-" before type reference`)
		}
		pathTok := p.take()
		if pathTok.kind != tokWord {
			return nil, unexpected(pathTok, `expected type reference after "-"`)
		}
		if _, err := spec.DeriveCaseName(pathTok.text); err != nil {
			return nil, invalid(pathTok, err)
		}
		paths = append(paths, pathTok.text)
	}
	return spec.New(visibility, nameTok.text, message, paths...)
}

/* Converts a validation failure from the spec package into a positioned syntax error. */
func invalid(tok lexToken, err error) *SyntaxError {
	msg := err.Error()
	var invalidErr *spec.InvalidError
	if errors.As(err, &invalidErr) {
		msg = fmt.Sprintf("malformed %s: %s", invalidErr.What, invalidErr.Reason)
	}
	return &SyntaxError{Pos: tok.pos, Token: tok.text, Msg: msg, Err: err}
}

package dsl

import "fmt"

/* Error returned when the input does not match the quickerr grammar. */
type SyntaxError struct {
	/* Position of the offending token. */
	Pos Position
	/* Source text of the offending token. Empty at the end of input. */
	Token string
	Msg   string
	/* Underlying validation failure, if any. */
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s", e.Pos, e.Description())
}

/* The error message without its position. */
func (e *SyntaxError) Description() string {
	if e.Token == "" {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error at %q: %s", e.Token, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

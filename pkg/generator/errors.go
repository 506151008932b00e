package generator

import (
	"errors"
	"fmt"
	"go/token"

	"gitlab.com/kyle_anderson/quickerr/pkg/dsl"
)

/* Errors outputted by the generator. */

type ErrParse struct{ nested error }

func (e *ErrParse) Error() string {
	return fmt.Sprintf(`generator: failed to parse source files: %v`, e.nested)
}
func (e *ErrParse) Unwrap() error {
	return e.nested
}

func ErrNoPackage(dir string) error {
	return fmt.Errorf(`generator: no Go package found in %q`, dir)
}

var errUnterminatedBlock = errors.New(`unterminated quickerr! block: missing "}"`)

/* Error for a single quickerr block that could not be parsed or generated. */
type ErrBlock struct {
	/* Position of the offending token when known, else of the block. */
	Pos token.Position
	Err error
}

func (e *ErrBlock) Unwrap() error { return e.Err }
func (e *ErrBlock) Error() string {
	var syntaxErr *dsl.SyntaxError
	if errors.As(e.Err, &syntaxErr) {
		return fmt.Sprintf(`%v: %s`, e.Pos, syntaxErr.Description())
	}
	return fmt.Sprintf(`%v: %v`, e.Pos, e.Err)
}

/* Error reported in check mode when an output file does not match what would be generated. */
type ErrStale struct {
	File, Reason string
}

func (e *ErrStale) Error() string {
	return fmt.Sprintf(`generated file %q is %s`, e.File, e.Reason)
}

type ErrFileProcessing struct {
	embedded              error
	inputFile, outputFile string
}

func (e *ErrFileProcessing) Unwrap() error { return e.embedded }
func (e *ErrFileProcessing) Error() string {
	return fmt.Sprintf(`failed to process input file %q to %q, err: %v`, e.inputFile, e.outputFile, e.embedded)
}

func (e *ErrFileProcessing) InputFile() string  { return e.inputFile }
func (e *ErrFileProcessing) OutputFile() string { return e.outputFile }

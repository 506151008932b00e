package generator

import (
	"errors"
	"go/ast"
	"go/token"
	"regexp"
	"strings"

	"gitlab.com/kyle_anderson/quickerr/pkg/dsl"
	"gitlab.com/kyle_anderson/quickerr/pkg/spec"
)

/* A quickerr block found in a source file. */
type block struct {
	/* Position of the quickerr! marker. */
	pos  token.Position
	doc  []string
	spec *spec.ErrorSpec
}

var (
	blockStartRegex = regexp.MustCompile(`(?m)^[ \t]*quickerr![ \t\r\n]*\{`)
	/* Same rule as go/ast uses for //go:generate style directives. */
	directiveRegex = regexp.MustCompile(`^//[a-z0-9]+:[a-z0-9]`)
)

/*
The text of a comment group with comment markers and directives blanked out, laid
out so that every byte keeps the line and column it has in the source file.
*/
type groupText struct {
	text      string
	filename  string
	startLine int
}

func newGroupText(fset *token.FileSet, group *ast.CommentGroup) groupText {
	var b strings.Builder
	first := fset.Position(group.Pos())
	line, col := first.Line, 1
	for _, c := range group.List {
		pos := fset.Position(c.Pos())
		for ; line < pos.Line; line++ {
			b.WriteByte('\n')
			col = 1
		}
		if pos.Column > col {
			b.WriteString(strings.Repeat(" ", pos.Column-col))
			col = pos.Column
		}
		text := blankMarkers(c.Text)
		b.WriteString(text)
		if i := strings.LastIndexByte(text, '\n'); i >= 0 {
			line += strings.Count(text, "\n")
			col = len(text) - i
		} else {
			col += len(text)
		}
	}
	return groupText{text: b.String(), filename: first.Filename, startLine: first.Line}
}

func blankMarkers(comment string) string {
	switch {
	case directiveRegex.MatchString(comment):
		return strings.Repeat(" ", len(comment))
	case strings.HasPrefix(comment, "//"):
		return "  " + comment[2:]
	default:
		return "  " + strings.TrimSuffix(comment[2:], "*/") + "  "
	}
}

func (g groupText) position(offset int) token.Position {
	before := g.text[:offset]
	return token.Position{
		Filename: g.filename,
		Line:     g.startLine + strings.Count(before, "\n"),
		Column:   offset - strings.LastIndexByte(before, '\n'),
	}
}

/* Finds the quickerr blocks in the comments of file, in source order. Stops at the first invalid block. */
func extractBlocks(fset *token.FileSet, file *ast.File) ([]block, error) {
	var blocks []block
	for _, group := range file.Comments {
		g := newGroupText(fset, group)
		rest := 0
		for {
			loc := blockStartRegex.FindStringIndex(g.text[rest:])
			if loc == nil {
				break
			}
			lineStart, bodyStart := rest+loc[0], rest+loc[1]
			markerPos := g.position(lineStart + strings.Index(g.text[lineStart:], "quickerr!"))
			bodyEnd := findBlockEnd(g.text, bodyStart)
			if bodyEnd < 0 {
				return nil, &ErrBlock{Pos: markerPos, Err: errUnterminatedBlock}
			}
			start := g.position(bodyStart)
			s, err := dsl.ParseAt(g.text[bodyStart:bodyEnd], dsl.Position{Offset: start.Offset, Line: start.Line, Column: start.Column})
			if err != nil {
				pos := markerPos
				var syntaxErr *dsl.SyntaxError
				if errors.As(err, &syntaxErr) {
					pos = token.Position{Filename: g.filename, Line: syntaxErr.Pos.Line, Column: syntaxErr.Pos.Column}
				}
				return nil, &ErrBlock{Pos: pos, Err: err}
			}
			blocks = append(blocks, block{pos: markerPos, doc: docLines(g.text[rest:lineStart]), spec: s})
			rest = bodyEnd + 1
		}
	}
	return blocks, nil
}

/* Returns the index of the "}" closing a block whose body starts at from, skipping string literals, or -1. */
func findBlockEnd(text string, from int) int {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '}':
			return i
		case '"':
			for i++; i < len(text) && text[i] != '"' && text[i] != '\n'; i++ {
				if text[i] == '\\' {
					i++
				}
			}
		case '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return -1
			}
			i += end + 1
		}
	}
	return -1
}

/* Splits comment text preceding a block into doc lines, dropping blank lines at either end. */
func docLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

package emitter

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"
)

/* Default first line of generated files, following the Go convention for generated code. */
const DefaultHeader = "Code generated by quickerrgen. DO NOT EDIT."

/* A complete generated Go source file. */
type File struct {
	/* Path the file will be written to. Used by goimports to resolve bare package qualifiers. */
	Name    string
	Package string
	/* First comment line, without the leading "//". DefaultHeader when empty. */
	Header string
	Units  []*Code
}

var fileTemplate = template.Must(template.New(`file`).Parse(`// {{ .Header }}

package {{ .Package }}
{{ if .Imports }}
import (
{{- range .Imports }}
	{{ if .Alias }}{{ .Alias }} {{ end }}{{ printf "%q" .Path }}
{{- end }}
)
{{ end }}
{{- range .Units }}
{{ printf "%s" .Source }}
{{- end }}
`))

/*
Assembles f into a formatted Go source file, adding imports for bare package
qualifiers. Units are emitted in the given order. Returns an *ImportAliasError
when units disagree on the alias of an import, or when one unit aliases an
import with a name another unit uses as a bare qualifier.
*/
func EmitFile(f File) ([]byte, error) {
	const errPrefix = `emitter.EmitFile: `
	merged, err := mergeImports(f.Units)
	if err != nil {
		return nil, err
	}
	header := f.Header
	if header == "" {
		header = DefaultHeader
	}
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, struct {
		Header, Package string
		Imports         []Import
		Units           []*Code
	}{header, f.Package, merged, f.Units}); err != nil {
		return nil, fmt.Errorf(errPrefix+`template execution error: %w`, err)
	}
	out, err := imports.Process(f.Name, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, fmt.Errorf(errPrefix+`failed to autoformat: %w`, err)
	}
	return out, nil
}

func mergeImports(units []*Code) ([]Import, error) {
	byPath := make(map[string]Import)
	byAlias := make(map[string]Import)
	for _, unit := range units {
		for _, imp := range unit.Imports {
			if prior, ok := byPath[imp.Path]; ok && prior.Alias != imp.Alias {
				return nil, &ImportAliasError{First: prior, Second: imp}
			}
			if imp.Alias != "" {
				if prior, ok := byAlias[imp.Alias]; ok && prior.Path != imp.Path {
					return nil, &ImportAliasError{First: prior, Second: imp}
				}
				byAlias[imp.Alias] = imp
			}
			byPath[imp.Path] = imp
		}
	}
	for _, unit := range units {
		for _, name := range unit.Qualifiers {
			if imp, ok := byAlias[name]; ok {
				return nil, &ImportAliasError{First: imp, Second: Import{Alias: name}}
			}
		}
	}
	merged := make([]Import, 0, len(byPath))
	for _, imp := range byPath {
		merged = append(merged, imp)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Path < merged[j].Path })
	return merged, nil
}

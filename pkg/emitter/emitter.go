/*
Turns a validated quickerr spec into Go declarations: the error type, its
Error, Unwrap and GoString methods and, for wrapping types, a kind enumeration,
typed accessors and one constructor per wrapped type.
*/
package emitter

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/kyle_anderson/go-utils/pkg/set"
	"gitlab.com/kyle_anderson/quickerr/pkg/spec"
)

/* An import needed by generated code. Alias is empty when the package name is used as is. */
type Import struct {
	Alias, Path string
}

/* Generated declarations for one spec. */
type Code struct {
	TypeName string
	/* Explicit imports, sorted by path. Packages referenced by a bare qualifier are left to goimports. */
	Imports []Import
	/* Package qualifiers used without an import path, such as fs in *fs.PathError, sorted. */
	Qualifiers []string
	/* gofmt-formatted declarations, with no package clause. */
	Source []byte
}

const fmtPath = "fmt"

type caseData struct {
	/* Case name as derived from the type path. */
	Name string
	/* Name with an upper-case first letter, used inside generated identifiers. */
	Export   string
	TypePath string
	/* Go type expression for the wrapped type. */
	Type  string
	Const string
	Ctor  string
}

type unitData struct {
	Doc      []string
	TypeName string
	KindType string
	/* Quoted Go string literal. */
	Message string
	Cases   []caseData
}

/*
Generates the declarations for s. doc lines, if any, replace the default doc
comment of the type. Returns a *spec.NameCollisionError if the generated
identifiers of two cases coincide, and any error from s.Validate.
*/
func Emit(s *spec.ErrorSpec, doc ...string) (*Code, error) {
	const errPrefix = `emitter.Emit: `
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, imports, err := newUnitData(s, doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	t := leafTemplate
	if !s.IsLeaf() {
		t = wrapTemplate
	}
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf(errPrefix+`template execution error: %w`, err)
	}
	source, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf(errPrefix+`failed to format %s: %w`, data.TypeName, err)
	}
	return &Code{TypeName: data.TypeName, Imports: imports, Qualifiers: qualifiers(s.Variants()), Source: source}, nil
}

func newUnitData(s *spec.ErrorSpec, doc []string) (*unitData, []Import, error) {
	data := &unitData{
		TypeName: s.TypeName(),
		Message:  strconv.Quote(s.Message()),
	}
	data.KindType = data.TypeName + "Kind"
	if s.IsLeaf() {
		data.Doc = docLines(doc, fmt.Sprintf("%s is the error %s. It wraps no other error.", data.TypeName, data.Message))
		return data, nil, nil
	}
	data.Doc = docLines(doc, fmt.Sprintf(
		"%s is the error %s, wrapping one of the errors enumerated by %s. Build it with the %sFrom functions.",
		data.TypeName, data.Message, data.KindType, data.TypeName))

	variants := s.Variants()
	aliases := assignAliases(variants)
	data.Cases = make([]caseData, len(variants))
	for i, v := range variants {
		c := caseData{Name: v.CaseName, Export: upperFirst(v.CaseName), TypePath: v.TypePath}
		c.Const = data.KindType + c.Export
		c.Ctor = data.TypeName + "From" + c.Export
		c.Type = typeExpr(v, aliases)
		data.Cases[i] = c
	}
	if err := checkExportCollisions(data.Cases); err != nil {
		return nil, nil, err
	}

	imports := []Import{{Path: fmtPath}}
	for path, alias := range aliases {
		imports = append(imports, Import{Alias: alias, Path: path})
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	return data, imports, nil
}

func qualifiers(variants []spec.VariantRef) []string {
	seen := set.NewComparable[string]()
	var names []string
	for _, v := range variants {
		if pkg := v.Package(); pkg != "" && !v.IsImportPath() && !seen.Contains(pkg) {
			seen.Add(pkg)
			names = append(names, pkg)
		}
	}
	sort.Strings(names)
	return names
}

func docLines(doc []string, fallback string) []string {
	if len(doc) == 0 {
		return []string{fallback}
	}
	return doc
}

func upperFirst(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}

/*
Cases whose names differ only in the case of their first letter produce the same
kind constant, accessor and constructor names.
*/
func checkExportCollisions(cases []caseData) error {
	byExport := make(map[string][]string, len(cases))
	var order []string
	for _, c := range cases {
		if len(byExport[c.Export]) == 1 {
			order = append(order, c.Export)
		}
		byExport[c.Export] = append(byExport[c.Export], c.TypePath)
	}
	if len(order) == 0 {
		return nil
	}
	err := &spec.NameCollisionError{Collisions: make([]spec.Collision, len(order))}
	for i, name := range order {
		err.Collisions[i] = spec.Collision{CaseName: name, Sources: byExport[name]}
	}
	return err
}

func typeExpr(v spec.VariantRef, aliases map[string]string) string {
	var b strings.Builder
	if v.Pointer() {
		b.WriteByte('*')
	}
	switch pkg := v.Package(); {
	case pkg == "":
	case v.IsImportPath():
		b.WriteString(aliases[pkg] + ".")
	default:
		b.WriteString(pkg + ".")
	}
	b.WriteString(v.CaseName)
	return b.String()
}

var majorVersionRegex = regexp.MustCompile(`^v[0-9]+$`)

/* Derives a package alias from the last meaningful element of an import path. */
func importAlias(path string) string {
	elems := strings.Split(path, "/")
	elem := elems[len(elems)-1]
	if majorVersionRegex.MatchString(elem) && len(elems) > 1 {
		elem = elems[len(elems)-2]
	}
	if i := strings.IndexByte(elem, '.'); i > 0 {
		elem = elem[:i]
	}
	elem = strings.TrimPrefix(elem, "go-")
	var b strings.Builder
	for _, r := range elem {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	alias := b.String()
	if !token.IsIdentifier(alias) {
		alias = "pkg" + alias
	}
	return alias
}

/*
Assigns each import path referenced by variants an alias distinct from other
paths, from "fmt" and from the bare qualifiers used by other variants. Paths are
visited in sorted order so that numbered aliases are stable.
*/
func assignAliases(variants []spec.VariantRef) map[string]string {
	taken := set.NewComparable[string](fmtPath)
	var paths []string
	for _, v := range variants {
		switch {
		case v.IsImportPath():
			paths = append(paths, v.Package())
		case v.Package() != "":
			taken.Add(v.Package())
		}
	}
	sort.Strings(paths)
	aliases := make(map[string]string, len(paths))
	for _, path := range paths {
		if _, ok := aliases[path]; ok {
			continue
		}
		base := importAlias(path)
		alias := base
		for n := 2; taken.Contains(alias); n++ {
			alias = base + strconv.Itoa(n)
		}
		taken.Add(alias)
		aliases[path] = alias
	}
	return aliases
}

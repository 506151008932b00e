/*
Provides the in-memory model of a single quickerr block: the error type to
generate, its message and the error types it wraps.
*/
package spec

import (
	"fmt"
	"go/token"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Visibility uint8

const (
	/* Unexported in the generated package. This is the default when no visibility is given. */
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Public:
		return "pub"
	default:
		return fmt.Sprintf("Visibility(%d)", uint8(v))
	}
}

/* A reference to an existing error type that the generated type may wrap. */
type VariantRef struct {
	/*
		Type reference as written, for example `A`, `*fs.PathError` or
		`github.com/foo/bar.Err`.
	*/
	TypePath string
	/* Derived from TypePath by DeriveCaseName. */
	CaseName string
}

/* Whether the wrapped type is referenced through a pointer. */
func (v VariantRef) Pointer() bool {
	return strings.HasPrefix(v.TypePath, "*")
}

/*
The package part of the type path with no pointer marker: either an import path
(contains a slash), a package qualifier, or empty for a type local to the
generated package.
*/
func (v VariantRef) Package() string {
	path := strings.TrimPrefix(v.TypePath, "*")
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return ""
}

/* Whether Package is a full import path rather than a qualifier already imported by the host package. */
func (v VariantRef) IsImportPath() bool {
	return strings.ContainsRune(v.Package(), '/')
}

/* Wrapping types number their cases with a uint8, zero being reserved for the zero value. */
const MaxVariants = 255

/*
The parsed representation of one quickerr block.
Values are created by New and never modified afterwards.
*/
type ErrorSpec struct {
	visibility Visibility
	name       string
	message    string
	variants   []VariantRef
}

func (s *ErrorSpec) Visibility() Visibility { return s.visibility }
func (s *ErrorSpec) Name() string           { return s.name }
func (s *ErrorSpec) Message() string        { return s.message }

/* Returns a copy of the variants in declaration order. */
func (s *ErrorSpec) Variants() []VariantRef {
	return append([]VariantRef(nil), s.variants...)
}

/* True for the leaf shape, which wraps nothing. */
func (s *ErrorSpec) IsLeaf() bool { return len(s.variants) == 0 }

/* The Go identifier declared for the type, with its first letter cased for its visibility. */
func (s *ErrorSpec) TypeName() string {
	name, _ := GoTypeName(s.visibility, s.name)
	return name
}

/*
Creates a validated ErrorSpec. Returns an *InvalidError if the name or a type
path is malformed, and a *NameCollisionError if two variants derive the same
case name or a variant derives the type's own name.
*/
func New(visibility Visibility, name, message string, typePaths ...string) (*ErrorSpec, error) {
	s := &ErrorSpec{visibility: visibility, name: name, message: message, variants: make([]VariantRef, len(typePaths))}
	for i, path := range typePaths {
		caseName, err := DeriveCaseName(path)
		if err != nil {
			return nil, err
		}
		s.variants[i] = VariantRef{TypePath: path, CaseName: caseName}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

/*
Re-checks the invariants New enforces. Useful to consumers handed an ErrorSpec
they did not build, such as the zero value or nil.
*/
func (s *ErrorSpec) Validate() error {
	if s == nil {
		return &InvalidError{What: "spec", Value: "<nil>", Reason: "no spec given"}
	}
	typeName, err := GoTypeName(s.visibility, s.name)
	if err != nil {
		return err
	}
	if len(s.variants) > MaxVariants {
		return &InvalidError{What: "variant count", Value: strconv.Itoa(len(s.variants)), Reason: fmt.Sprintf("at most %d types can be wrapped", MaxVariants)}
	}
	for _, v := range s.variants {
		if caseName, err := DeriveCaseName(v.TypePath); err != nil {
			return err
		} else if caseName != v.CaseName {
			return &InvalidError{What: "case name", Value: v.CaseName, Reason: fmt.Sprintf("does not match type reference %q", v.TypePath)}
		}
	}
	if err := checkCollisions(typeName, s.variants); err != nil {
		return err
	}
	return nil
}

/*
Applies Go's export rule to name: public names get an upper-case first letter,
private names a lower-case one.
*/
func GoTypeName(visibility Visibility, name string) (string, error) {
	if !token.IsIdentifier(name) {
		return "", &InvalidError{What: "identifier", Value: name, Reason: "not a valid Go identifier"}
	}
	first, size := utf8.DecodeRuneInString(name)
	var goName string
	if visibility == Public {
		upper := unicode.ToUpper(first)
		if !unicode.IsUpper(upper) {
			return "", &InvalidError{What: "identifier", Value: name, Reason: "cannot be exported"}
		}
		goName = string(upper) + name[size:]
	} else {
		goName = string(unicode.ToLower(first)) + name[size:]
	}
	if token.IsKeyword(goName) {
		return "", &InvalidError{What: "identifier", Value: name, Reason: fmt.Sprintf("becomes the Go keyword %q", goName)}
	}
	return goName, nil
}

var importPathElemRegex = regexp.MustCompile(`^[\w.~+-]+$`)

/*
Derives the case name of a variant from its type path: the final segment after
the last dot, with any pointer marker dropped. Returns an *InvalidError for
malformed type paths.
*/
func DeriveCaseName(typePath string) (string, error) {
	malformed := func(reason string) error {
		return &InvalidError{What: "type reference", Value: typePath, Reason: reason}
	}
	path := strings.TrimPrefix(typePath, "*")
	if path == "" {
		return "", malformed("empty")
	}
	pkg, name := "", path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		pkg, name = path[:i], path[i+1:]
		if pkg == "" {
			return "", malformed("missing package before '.'")
		}
	}
	if !token.IsIdentifier(name) {
		return "", malformed(fmt.Sprintf("%q is not a valid type name", name))
	}
	switch {
	case pkg == "":
	case strings.ContainsRune(pkg, '/'):
		for _, elem := range strings.Split(pkg, "/") {
			if !importPathElemRegex.MatchString(elem) {
				return "", malformed(fmt.Sprintf("invalid import path %q", pkg))
			}
		}
	case !token.IsIdentifier(pkg):
		return "", malformed(fmt.Sprintf("%q is not a package name or import path", pkg))
	}
	return name, nil
}

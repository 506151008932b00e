package spec

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/kyle_anderson/go-utils/pkg/set"
)

/* Error returned when a name or type reference given to New is malformed. */
type InvalidError struct {
	What, Value, Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("spec: invalid %s %q: %s", e.What, e.Value, e.Reason)
}

/* One case name claimed by more than one source. */
type Collision struct {
	CaseName string
	/* Type paths deriving CaseName, in declaration order. The type's own name is listed first when it collides. */
	Sources []string
}

/* Error returned when derived case names are not pairwise distinct, or one equals the type's own name. */
type NameCollisionError struct {
	Collisions []Collision
}

func (e *NameCollisionError) Error() string {
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		parts[i] = fmt.Sprintf("%s (from %s)", c.CaseName, strings.Join(c.Sources, ", "))
	}
	return "spec: colliding case names: " + strings.Join(parts, "; ")
}

/* Names of the colliding cases, in order of first appearance. */
func (e *NameCollisionError) Names() []string {
	names := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		names[i] = c.CaseName
	}
	return names
}

/*
typeName is the declared Go name of the type. A case name matching it up to the
case of the first letter collides with it, as generated identifiers upper-case
case names.
*/
func checkCollisions(typeName string, variants []VariantRef) *NameCollisionError {
	sources := make(map[string][]string, len(variants)+1)
	sources[typeName] = []string{typeName}
	var order []string
	collided := set.NewComparable[string]()
	for _, v := range variants {
		name := v.CaseName
		if upperFirst(name) == upperFirst(typeName) {
			name = typeName
		}
		prior := sources[name]
		if len(prior) > 0 && !collided.Contains(name) {
			collided.Add(name)
			order = append(order, name)
		}
		sources[name] = append(prior, v.TypePath)
	}
	if len(order) == 0 {
		return nil
	}
	err := &NameCollisionError{Collisions: make([]Collision, len(order))}
	for i, name := range order {
		err.Collisions[i] = Collision{CaseName: name, Sources: sources[name]}
	}
	return err
}

func upperFirst(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}

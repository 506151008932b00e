package emitter

import "fmt"

/*
Error returned when two blocks of one file import the same path under different
names, or different paths under one name. Second has an empty Path when the
name is a bare package qualifier, resolved by goimports, that First would capture.
*/
type ImportAliasError struct {
	First, Second Import
}

func (e *ImportAliasError) Error() string {
	if e.Second.Path == "" {
		return fmt.Sprintf(`emitter: import %s %q shadows the package qualifier %s used by another type`, e.First.Alias, e.First.Path, e.Second.Alias)
	}
	return fmt.Sprintf(`emitter: conflicting imports %s %q and %s %q`, e.First.Alias, e.First.Path, e.Second.Alias, e.Second.Path)
}

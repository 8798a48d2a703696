package check

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/names"
)

// UnknownVariableError reports a reference to an unbound name during
// inference (spec.md §7).
type UnknownVariableError struct {
	Name names.Name
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable: %s", e.Name)
}

// UnknownTypeError reports a reference to an ADT with no entry in the
// type map.
type UnknownTypeError struct {
	Name names.Name
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Name)
}

// UnknownConstructorError reports a reference to a constructor not
// declared on the named ADT.
type UnknownConstructorError struct {
	Type, Ctor names.Name
}

func (e *UnknownConstructorError) Error() string {
	return fmt.Sprintf("unknown constructor: %s::%s", e.Type, e.Ctor)
}

package codegen

import "fmt"

// InternalBoundError is raised when a locally-nameless Bound reference
// survives to code generation uninstantiated — a bug in lowering or in
// this package's own Instantiate bookkeeping, never a user-facing
// diagnostic (spec.md §4.7 "A Bound name reaching this stage is a
// bug").
type InternalBoundError struct{ Index int }

func (e *InternalBoundError) Error() string {
	return fmt.Sprintf("codegen: internal error: Bound(%d) reached code generation uninstantiated", e.Index)
}

// UnknownDeclarationError is raised when a Free reference names no
// registered declaration or runtime primitive.
type UnknownDeclarationError struct{ Name string }

func (e *UnknownDeclarationError) Error() string {
	return fmt.Sprintf("codegen: reference to undeclared function %q", e.Name)
}

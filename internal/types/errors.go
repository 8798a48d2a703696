package types

import "fmt"

// OccursCheckError reports a cyclic unification attempt: Unknown would
// have to be solved to a type that itself contains that Unknown.
type OccursCheckError struct {
	Unknown int
	Type    Monotype
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check: ?%d occurs in %s", e.Unknown, e.Type)
}

// UnifyMismatchError reports a constructor/function shape mismatch or
// head-constructor disagreement during unification.
type UnifyMismatchError struct {
	Left, Right Monotype
}

func (e *UnifyMismatchError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

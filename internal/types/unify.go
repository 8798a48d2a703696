package types

// Unify attempts to make t1 and t2 equal under s, recording any new
// bindings into s. It implements spec.md §4.2:
//
//  1. Zonk both sides.
//  2. Structural equality succeeds trivially.
//  3. Both Constructor: names must match, arguments unified pairwise.
//  4. Either side Unknown: solve it to the other side.
//  5. Both Function: unify argument and result pairwise.
//  6. Otherwise: UnifyMismatchError.
func (s *Substitution) Unify(t1, t2 Monotype) error {
	t1 = s.Apply(t1)
	t2 = s.Apply(t2)

	if structurallyEqual(t1, t2) {
		return nil
	}

	if u1, ok := t1.(Unknown); ok {
		return s.SolveType(u1.ID, t2)
	}
	if u2, ok := t2.(Unknown); ok {
		return s.SolveType(u2.ID, t1)
	}

	c1, c1ok := t1.(Constructor)
	c2, c2ok := t2.(Constructor)
	if c1ok && c2ok {
		if c1.Name != c2.Name || len(c1.Arguments) != len(c2.Arguments) {
			// Arity mismatches are impossible by construction (same name
			// implies same declared arity, spec.md §4.2); if encountered
			// anyway, it is a plain mismatch.
			return &UnifyMismatchError{Left: t1, Right: t2}
		}
		for i := range c1.Arguments {
			if err := s.Unify(c1.Arguments[i], c2.Arguments[i]); err != nil {
				return err
			}
		}
		return nil
	}

	f1, f1ok := t1.(Function)
	f2, f2ok := t2.(Function)
	if f1ok && f2ok {
		if err := s.Unify(f1.Arg, f2.Arg); err != nil {
			return err
		}
		return s.Unify(f1.Result, f2.Result)
	}

	return &UnifyMismatchError{Left: t1, Right: t2}
}

func structurallyEqual(t1, t2 Monotype) bool {
	switch a := t1.(type) {
	case Var:
		b, ok := t2.(Var)
		return ok && a.Name == b.Name
	case Unknown:
		b, ok := t2.(Unknown)
		return ok && a.ID == b.ID
	case Function:
		b, ok := t2.(Function)
		return ok && structurallyEqual(a.Arg, b.Arg) && structurallyEqual(a.Result, b.Result)
	case Constructor:
		b, ok := t2.(Constructor)
		if !ok || a.Name != b.Name || len(a.Arguments) != len(b.Arguments) {
			return false
		}
		for i := range a.Arguments {
			if !structurallyEqual(a.Arguments[i], b.Arguments[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

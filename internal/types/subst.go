package types

// Substitution is a mapping from unification-variable id to the
// monotype it has been solved to. Entries are added by solveType and
// never removed — inference has no backtracking (spec.md §5).
type Substitution struct {
	bindings map[int]Monotype
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[int]Monotype)}
}

// Apply recursively resolves every Unknown in t through the current
// substitution until it reaches a non-bound unknown or a non-unknown
// term. Structural types are rebuilt with their applied children. This
// is "zonking" (GLOSSARY).
func (s *Substitution) Apply(t Monotype) Monotype {
	switch v := t.(type) {
	case Unknown:
		if resolved, ok := s.bindings[v.ID]; ok {
			return s.Apply(resolved)
		}
		return v
	case Function:
		return Function{Arg: s.Apply(v.Arg), Result: s.Apply(v.Result)}
	case Constructor:
		if len(v.Arguments) == 0 {
			return v
		}
		args := make([]Monotype, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = s.Apply(a)
		}
		return Constructor{Name: v.Name, Arguments: args}
	default:
		return v
	}
}

// ApplyPolytype zonks a polytype's body, leaving its quantifier intact
// (the quantified variables are rigid TyVars, never Unknowns, so they
// are never touched by a Substitution).
func (s *Substitution) ApplyPolytype(p Polytype) Polytype {
	return Polytype{Vars: p.Vars, Body: s.Apply(p.Body)}
}

// occursCheck fails with OccursCheck when u appears anywhere inside t
// after zonking, unless t is itself Unknown(u') with u' != u — a direct
// unknown-to-unknown link is always allowed (spec.md §4.1).
func (s *Substitution) occursCheck(u int, t Monotype) error {
	zonked := s.Apply(t)
	if _, ok := zonked.(Unknown); ok {
		// A direct unknown-to-unknown link is always allowed, including
		// the reflexive case t == Unknown(u).
		return nil
	}
	for _, id := range Unknowns(zonked) {
		if id == u {
			return &OccursCheckError{Unknown: u, Type: zonked}
		}
	}
	return nil
}

// SolveType records u ↦ t after an occurs check.
func (s *Substitution) SolveType(u int, t Monotype) error {
	if err := s.occursCheck(u, t); err != nil {
		return err
	}
	s.bindings[u] = t
	return nil
}

package types

import "github.com/lucidlang/lucid/internal/names"

// FreshSupply hands out strictly increasing unification-variable ids.
// The checker owns exactly one of these per compiled program
// (spec.md §5).
type FreshSupply struct {
	next int
}

// Fresh returns a new Unknown with the next id.
func (f *FreshSupply) Fresh() Unknown {
	u := Unknown{ID: f.next}
	f.next++
	return u
}

// Instantiate replaces every quantified variable of p with a fresh
// Unknown, returning a monotype containing only fresh metavariables
// (spec.md §4.4).
func Instantiate(f *FreshSupply, p Polytype) Monotype {
	if len(p.Vars) == 0 {
		return p.Body
	}
	rename := make(map[names.TyVar]Monotype, len(p.Vars))
	for _, v := range p.Vars {
		rename[v] = f.Fresh()
	}
	return SubstituteVars(p.Body, rename)
}

// SubstituteVars replaces every rigid Var named in rename with its
// mapped monotype. Used both by Instantiate and by the checker when
// instantiating a data constructor's declared argument types against
// fresh unknowns for the enclosing ADT's type parameters.
func SubstituteVars(t Monotype, rename map[names.TyVar]Monotype) Monotype {
	switch v := t.(type) {
	case Var:
		if repl, ok := rename[v.Name]; ok {
			return repl
		}
		return v
	case Function:
		return Function{Arg: SubstituteVars(v.Arg, rename), Result: SubstituteVars(v.Result, rename)}
	case Constructor:
		if len(v.Arguments) == 0 {
			return v
		}
		args := make([]Monotype, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = SubstituteVars(a, rename)
		}
		return Constructor{Name: v.Name, Arguments: args}
	default:
		return v
	}
}

package types

import (
	"strconv"

	"github.com/lucidlang/lucid/internal/names"
)

// Generalise zonks t, then quantifies every free unknown in the result
// that is not also free in env, inventing fresh rigid TyVars via
// nameForIndex in the order the unknowns are first encountered in a
// left-to-right traversal of t (spec.md §4.4).
func Generalise(s *Substitution, env *Environment, t Monotype) Polytype {
	zonked := s.Apply(t)
	envUnknowns := map[int]bool{}
	for _, id := range env.Unknowns(s) {
		envUnknowns[id] = true
	}

	rename := make(map[int]names.TyVar)
	var vars []names.TyVar
	for _, id := range Unknowns(zonked) {
		if envUnknowns[id] {
			continue
		}
		v := nameForIndex(len(vars))
		rename[id] = v
		vars = append(vars, v)
	}

	body := substituteUnknowns(zonked, rename)
	return Polytype{Vars: vars, Body: body}
}

// nameForIndex produces the deterministic single-lowercase-letter
// naming a, b, c, ..., z, a1, b1, ... used for generalized type
// variables, in order of first encounter.
func nameForIndex(i int) names.TyVar {
	letter := rune('a' + i%26)
	suffix := i / 26
	if suffix == 0 {
		return names.TyVar(string(letter))
	}
	return names.TyVar(string(letter) + strconv.Itoa(suffix))
}

func substituteUnknowns(t Monotype, rename map[int]names.TyVar) Monotype {
	switch v := t.(type) {
	case Unknown:
		if name, ok := rename[v.ID]; ok {
			return Var{Name: name}
		}
		return v
	case Function:
		return Function{Arg: substituteUnknowns(v.Arg, rename), Result: substituteUnknowns(v.Result, rename)}
	case Constructor:
		if len(v.Arguments) == 0 {
			return v
		}
		args := make([]Monotype, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = substituteUnknowns(a, rename)
		}
		return Constructor{Name: v.Name, Arguments: args}
	default:
		return v
	}
}

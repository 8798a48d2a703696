package types

import (
	"sort"

	"github.com/lucidlang/lucid/internal/names"
)

// Environment maps names to polytypes with stack-like scoping. A
// binding's lifetime is exactly the dynamic extent of the syntactic
// scope that introduced it (spec.md §4.3).
type Environment struct {
	bindings map[names.Name]Polytype
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[names.Name]Polytype)}
}

// Lookup returns the polytype bound to n, if any.
func (e *Environment) Lookup(n names.Name) (Polytype, bool) {
	p, ok := e.bindings[n]
	return p, ok
}

// BindName binds n to p for the dynamic extent of action, then
// restores the environment to its prior state — removing the binding
// if n was previously unbound, reinstating the previous polytype
// otherwise. Restoration happens even if action panics, preserving
// stack discipline across nested lets and lambda bodies (spec.md §4.3,
// §9 "Scoped bindings").
func (e *Environment) BindName(n names.Name, p Polytype, action func() error) error {
	prev, had := e.bindings[n]
	e.bindings[n] = p
	defer func() {
		if had {
			e.bindings[n] = prev
		} else {
			delete(e.bindings, n)
		}
	}()
	return action()
}

// Bind installs a permanent binding, unscoped by any action — for
// prelude/builtin names that live for the whole program rather than
// one syntactic extent (spec.md §9 builtins seeded at CheckState
// construction).
func (e *Environment) Bind(n names.Name, p Polytype) {
	e.bindings[n] = p
}

// Unknowns returns the union of free unification-variable ids across
// every currently-bound polytype body, computed over zonked forms.
func (e *Environment) Unknowns(s *Substitution) []int {
	var sets [][]int
	for _, p := range e.bindings {
		sets = append(sets, Unknowns(s.Apply(p.Body)))
	}
	seen := map[int]bool{}
	var out []int
	for _, set := range sets {
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Ints(out)
	return out
}

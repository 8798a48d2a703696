// Package types implements the monotype/polytype model, substitutions,
// and the scoped type environment that internal/check builds inference
// on top of.
package types

import (
	"fmt"
	"strings"

	"github.com/lucidlang/lucid/internal/names"
)

// Monotype is a type without universal quantification.
type Monotype interface {
	fmt.Stringer
	isMonotype()
}

// Var is a rigid type variable. It only occurs inside a Polytype body
// or a data constructor's declared argument types.
type Var struct {
	Name names.TyVar
}

func (Var) isMonotype()      {}
func (v Var) String() string { return string(v.Name) }

// Unknown is a unification variable (metavariable), identified by a
// fresh integer handed out by the checker's fresh-name supply.
type Unknown struct {
	ID int
}

func (Unknown) isMonotype()      {}
func (u Unknown) String() string { return fmt.Sprintf("?%d", u.ID) }

// Function is an arrow type arg -> result.
type Function struct {
	Arg    Monotype
	Result Monotype
}

func (Function) isMonotype() {}
func (f Function) String() string {
	argStr := f.Arg.String()
	if _, ok := f.Arg.(Function); ok {
		argStr = "(" + argStr + ")"
	}
	return fmt.Sprintf("%s -> %s", argStr, f.Result.String())
}

// Constructor is an applied type constructor, e.g. Int, Bool,
// List<Int>, or a user-declared ADT applied to its type arguments.
type Constructor struct {
	Name      names.Name
	Arguments []Monotype
}

func (Constructor) isMonotype() {}
func (c Constructor) String() string {
	if len(c.Arguments) == 0 {
		return string(c.Name)
	}
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", c.Name, strings.Join(args, ", "))
}

// Int is the built-in 32-bit integer type.
func Int() Monotype { return Constructor{Name: "Int"} }

// Bool is the built-in boolean type.
func Bool() Monotype { return Constructor{Name: "Bool"} }

// Polytype is a (possibly empty) prenex universal over a monotype.
type Polytype struct {
	Vars []names.TyVar
	Body Monotype
}

func (p Polytype) String() string {
	if len(p.Vars) == 0 {
		return p.Body.String()
	}
	vars := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		vars[i] = string(v)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(vars, " "), p.Body)
}

// Mono wraps a monotype with no quantifier, for binding a name
// monomorphically (e.g. a lambda parameter).
func Mono(t Monotype) Polytype { return Polytype{Body: t} }

// DataConstructor is one constructor of a declared ADT. ArgTypes may
// reference the declaration's own TyArgs.
type DataConstructor struct {
	Name     names.Name
	ArgTypes []Monotype
}

// TypeInfo is the declaration-level information for one ADT: its type
// parameters and its constructors, in declaration order (constructors
// are assigned numeric tags 0, 1, ... in this order by the lowering
// pass, per spec.md §4.6).
type TypeInfo struct {
	TyArgs       []names.TyVar
	Constructors []DataConstructor
}

// ConstructorIndex returns the declaration-order tag of the named
// constructor, or -1 if it is not a constructor of this type.
func (ti TypeInfo) ConstructorIndex(ctor names.Name) int {
	for i, c := range ti.Constructors {
		if c.Name == ctor {
			return i
		}
	}
	return -1
}

// Constructor looks up a declared constructor by name.
func (ti TypeInfo) Constructor(ctor names.Name) (DataConstructor, bool) {
	for _, c := range ti.Constructors {
		if c.Name == ctor {
			return c, true
		}
	}
	return DataConstructor{}, false
}

// TypeMap maps an ADT's name to its declaration info.
type TypeMap map[names.Name]TypeInfo

// unknownsOf collects the free Unknown ids reachable in t, in
// left-to-right traversal order, without duplicates.
func unknownsOf(t Monotype, seen map[int]bool, out *[]int) {
	switch v := t.(type) {
	case Unknown:
		if !seen[v.ID] {
			seen[v.ID] = true
			*out = append(*out, v.ID)
		}
	case Function:
		unknownsOf(v.Arg, seen, out)
		unknownsOf(v.Result, seen, out)
	case Constructor:
		for _, a := range v.Arguments {
			unknownsOf(a, seen, out)
		}
	case Var:
		// no unknowns
	}
}

// Unknowns returns the free unification-variable ids in t, in
// traversal order, without duplicates.
func Unknowns(t Monotype) []int {
	var out []int
	unknownsOf(t, map[int]bool{}, &out)
	return out
}

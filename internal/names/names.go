// Package names holds the identifier types shared across the compiler:
// surface-level names, type variables, and locally-nameless references.
package names

import "fmt"

// Name is a structural identifier. Two Names are the same binding iff
// their string values are equal.
type Name string

func (n Name) String() string { return string(n) }

// TyVar is a rigid type-variable name. It only appears inside a
// Polytype's quantifier or inside a data constructor's declared
// argument types; alpha-conversion is irrelevant once a type has been
// generalized.
type TyVar string

func (v TyVar) String() string { return string(v) }

// LNName is a locally-nameless reference: either a de Bruijn index
// bound by the nearest enclosing binder (Bound) or a reference to a
// top-level declaration (Free).
type LNName struct {
	bound   bool
	index   int
	free    Name
}

// Bound builds a locally-nameless reference to the binder at the given
// de Bruijn index.
func Bound(index int) LNName { return LNName{bound: true, index: index} }

// Free builds a locally-nameless reference to a top-level name.
func Free(n Name) LNName { return LNName{bound: false, free: n} }

// IsBound reports whether this reference is a de Bruijn index.
func (n LNName) IsBound() bool { return n.bound }

// Index returns the de Bruijn index. Only valid when IsBound is true.
func (n LNName) Index() int { return n.index }

// FreeName returns the referenced top-level name. Only valid when
// IsBound is false.
func (n LNName) FreeName() Name { return n.free }

func (n LNName) String() string {
	if n.bound {
		return fmt.Sprintf("#%d", n.index)
	}
	return string(n.free)
}

package ir

import (
	"testing"

	"github.com/lucidlang/lucid/internal/names"
)

func TestInstantiateLetReplacesOutermostBound(t *testing.T) {
	// The body Bound(0) of Let(Int 1, Bound(0)), instantiated with
	// [GetLocal(3)] -> GetLocal(3).
	body := Var{Name: names.Bound(0)}
	got := Instantiate(body, []Expression{GetLocal{Index: 3}})
	gl, ok := got.(GetLocal)
	if !ok || gl.Index != 3 {
		t.Fatalf("got %#v, want GetLocal{3}", got)
	}
}

func TestInstantiateLiftsDeeperIndices(t *testing.T) {
	// A reference to a binder outside the one being instantiated must
	// shift down by the number of consumed replacements once this
	// level's binder is gone. Inside the Let body, Bound(0) is the Let's
	// own binder, Bound(1) the instantiated one, and Bound(2) the next
	// binder out, which becomes Bound(1).
	outer := Let{
		Expr: Int{Value: 1},
		Body: Var{Name: names.Bound(2)}, // refers past this Let's own binder and the instantiated one
	}
	got := Instantiate(outer, []Expression{GetLocal{Index: 0}})
	let, ok := got.(Let)
	if !ok {
		t.Fatalf("got %T, want Let", got)
	}
	v, ok := let.Body.(Var)
	if !ok || !v.Name.IsBound() || v.Name.Index() != 1 {
		t.Fatalf("got %#v, want Bound(1)", let.Body)
	}
}

func TestInstantiateUnaffectedByOwnBinder(t *testing.T) {
	// Within Let.Body, a reference to the Let's own binder (depth 0
	// relative to Body) must NOT be touched by a substitution aimed at
	// an enclosing level.
	inner := Let{
		Expr: Int{Value: 2},
		Body: Var{Name: names.Bound(0)}, // this Let's own binder, not the outer one
	}
	got := instantiateAt(inner, 0, []Expression{GetLocal{Index: 9}})
	let := got.(Let)
	v, ok := let.Body.(Var)
	if !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got %#v, want untouched Bound(0)", let.Body)
	}
}

func TestInstantiateAcrossMatchCaseBinders(t *testing.T) {
	// Match.Cases[0].Body references Bound(2): index 0,1 are this
	// case's own two binders, 2 refers past them to the enclosing
	// Declaration's own parameter.
	m := Match{
		Scrutinee: Var{Name: names.Bound(0)},
		Cases: []Case{
			{Tag: 1, Binders: 2, Body: Application{
				Func:     Var{Name: names.Bound(0)}, // case's own binder 0
				Argument: Var{Name: names.Bound(2)},  // escapes to enclosing scope
			}},
		},
	}
	got := Instantiate(m, []Expression{GetLocal{Index: 5}}).(Match)
	app := got.Cases[0].Body.(Application)

	if v, ok := app.Func.(Var); !ok || v.Name.Index() != 0 {
		t.Fatalf("case-local binder was disturbed: %#v", app.Func)
	}
	if gl, ok := app.Argument.(GetLocal); !ok || gl.Index != 5 {
		t.Fatalf("got %#v, want GetLocal{5}", app.Argument)
	}
	if gl, ok := got.Scrutinee.(GetLocal); !ok || gl.Index != 5 {
		t.Fatalf("scrutinee not instantiated: %#v", got.Scrutinee)
	}
}

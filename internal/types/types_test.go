package types

import (
	"testing"

	"github.com/lucidlang/lucid/internal/names"
)

func TestApplyIsIdempotent(t *testing.T) {
	s := NewSubstitution()
	a := Unknown{ID: 0}
	b := Unknown{ID: 1}
	if err := s.SolveType(a.ID, Function{Arg: b, Result: Int()}); err != nil {
		t.Fatalf("SolveType: %v", err)
	}
	if err := s.SolveType(b.ID, Bool()); err != nil {
		t.Fatalf("SolveType: %v", err)
	}

	once := s.Apply(a)
	twice := s.Apply(once)
	if once.String() != twice.String() {
		t.Fatalf("apply not idempotent: %s vs %s", once, twice)
	}
	want := "Bool -> Int"
	if once.String() != want {
		t.Fatalf("got %s, want %s", once, want)
	}
}

func TestOccursCheckRejectsSelfReference(t *testing.T) {
	s := NewSubstitution()
	a := Unknown{ID: 0}
	cyclic := Function{Arg: a, Result: Int()}
	err := s.SolveType(a.ID, cyclic)
	if err == nil {
		t.Fatalf("expected occurs check failure")
	}
	if _, ok := err.(*OccursCheckError); !ok {
		t.Fatalf("expected *OccursCheckError, got %T", err)
	}
}

func TestOccursCheckAllowsDirectUnknownLink(t *testing.T) {
	s := NewSubstitution()
	a := Unknown{ID: 0}
	b := Unknown{ID: 1}
	if err := s.SolveType(a.ID, b); err != nil {
		t.Fatalf("direct unknown-to-unknown link should be allowed: %v", err)
	}
	if err := s.SolveType(b.ID, a); err != nil {
		t.Fatalf("reflexive identity through a already-solved unknown should be allowed: %v", err)
	}
}

func TestUnifyFunctionsPairwise(t *testing.T) {
	s := NewSubstitution()
	a := Unknown{ID: 0}
	fn1 := Function{Arg: Int(), Result: a}
	fn2 := Function{Arg: Int(), Result: Bool()}
	if err := s.Unify(fn1, fn2); err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if got := s.Apply(a).String(); got != "Bool" {
		t.Fatalf("got %s, want Bool", got)
	}
}

func TestUnifyMismatch(t *testing.T) {
	s := NewSubstitution()
	err := s.Unify(Int(), Bool())
	if err == nil {
		t.Fatalf("expected mismatch")
	}
	if _, ok := err.(*UnifyMismatchError); !ok {
		t.Fatalf("expected *UnifyMismatchError, got %T", err)
	}
}

func TestGeneraliseThenInstantiateRoundtrips(t *testing.T) {
	s := NewSubstitution()
	env := NewEnvironment()
	fresh := &FreshSupply{}

	a := fresh.Fresh()
	idType := Function{Arg: a, Result: a}
	poly := Generalise(s, env, idType)
	if len(poly.Vars) != 1 {
		t.Fatalf("expected a single quantified var, got %v", poly.Vars)
	}
	if poly.Vars[0] != names.TyVar("a") {
		t.Fatalf("expected first generalized var to be 'a', got %s", poly.Vars[0])
	}

	instantiated := Instantiate(fresh, poly)
	fn, ok := instantiated.(Function)
	if !ok {
		t.Fatalf("expected Function, got %T", instantiated)
	}
	if fn.Arg.String() != fn.Result.String() {
		t.Fatalf("instantiated arg/result should share a fresh unknown: %s vs %s", fn.Arg, fn.Result)
	}
}

func TestGeneraliseExcludesEnvironmentUnknowns(t *testing.T) {
	s := NewSubstitution()
	env := NewEnvironment()
	fresh := &FreshSupply{}

	outer := fresh.Fresh()
	env.bindings["x"] = Mono(outer)

	inner := fresh.Fresh()
	poly := Generalise(s, env, Function{Arg: inner, Result: outer})

	if len(poly.Vars) != 1 {
		t.Fatalf("expected only the non-environment unknown to generalize, got %v", poly.Vars)
	}
}

func TestEnvironmentBindNameRestoresOnPanic(t *testing.T) {
	env := NewEnvironment()
	env.bindings["x"] = Mono(Int())

	func() {
		defer func() { recover() }()
		_ = env.BindName("x", Mono(Bool()), func() error {
			panic("boom")
		})
	}()

	p, ok := env.Lookup("x")
	if !ok || p.Body.String() != "Int" {
		t.Fatalf("expected binding restored to Int after panic, got %v, %v", p, ok)
	}
}

func TestEnvironmentBindNameRemovesPreviouslyAbsent(t *testing.T) {
	env := NewEnvironment()
	_ = env.BindName("y", Mono(Bool()), func() error { return nil })
	if _, ok := env.Lookup("y"); ok {
		t.Fatalf("expected binding removed after scope exit")
	}
}

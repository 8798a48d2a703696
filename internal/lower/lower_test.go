package lower

import (
	"testing"

	"github.com/lucidlang/lucid/internal/ir"
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/syntax"
	"github.com/lucidlang/lucid/internal/types"
)

func lowerOne(t *testing.T, e syntax.Expression, tm types.TypeMap) ir.Program {
	t.Helper()
	l := NewLowerer(tm)
	prog, err := l.Lower(syntax.Program{Expr: e})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return prog
}

func TestLowerIdentityHoistsWithNoCaptures(t *testing.T) {
	prog := lowerOne(t, syntax.Let{
		Name:  "id",
		Value: syntax.Lambda{Param: "x", Body: syntax.Var{Name: "x"}},
		Body:  syntax.Var{Name: "id"},
	}, nil)

	if len(prog.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1", len(prog.Declarations))
	}
	d := prog.Declarations[0]
	if len(d.Arguments) != 1 || d.Arguments[0] != "x" {
		t.Fatalf("got arguments %v, want [x] (no captures)", d.Arguments)
	}
	if v, ok := d.Body.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got body %#v, want Bound(0)", d.Body)
	}

	let, ok := prog.Expr.(ir.Let)
	if !ok {
		t.Fatalf("got %T, want Let", prog.Expr)
	}
	if v, ok := let.Expr.(ir.Var); !ok || v.Name.IsBound() {
		t.Fatalf("got %#v, want a Free reference to the hoisted declaration", let.Expr)
	}
}

func TestLowerLambdaCapturesFreeVariable(t *testing.T) {
	// let y = 5 in (\x. x y)
	prog := lowerOne(t, syntax.Let{
		Name:  "y",
		Value: syntax.Int{Value: 5},
		Body: syntax.Lambda{
			Param: "x",
			Body:  syntax.App{Func: syntax.Var{Name: "x"}, Arg: syntax.Var{Name: "y"}},
		},
	}, nil)

	if len(prog.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1", len(prog.Declarations))
	}
	d := prog.Declarations[0]
	if len(d.Arguments) != 2 || d.Arguments[0] != "y" || d.Arguments[1] != "x" {
		t.Fatalf("got arguments %v, want [y x]", d.Arguments)
	}
	app, ok := d.Body.(ir.Application)
	if !ok {
		t.Fatalf("got %T, want Application", d.Body)
	}
	fn := app.Func.(ir.Var)
	arg := app.Argument.(ir.Var)
	if fn.Name.Index() != 1 {
		t.Fatalf("got func index %d, want 1 (x)", fn.Name.Index())
	}
	if arg.Name.Index() != 0 {
		t.Fatalf("got arg index %d, want 0 (captured y)", arg.Name.Index())
	}

	outerLet := prog.Expr.(ir.Let)
	closureApp, ok := outerLet.Body.(ir.Application)
	if !ok {
		t.Fatalf("got %T, want Application (closure applied to capture y)", outerLet.Body)
	}
	if v, ok := closureApp.Func.(ir.Var); !ok || v.Name.IsBound() {
		t.Fatalf("got %#v, want Free reference to hoisted decl", closureApp.Func)
	}
	if v, ok := closureApp.Argument.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got %#v, want Bound(0) (y from the outer let)", closureApp.Argument)
	}
}

func TestLowerLetRecSelfReference(t *testing.T) {
	// let rec fib = \x. if x then 1 else fib x in fib
	prog := lowerOne(t, syntax.Let{
		Name:      "fib",
		Recursive: true,
		Value: syntax.Lambda{
			Param: "x",
			Body: syntax.If{
				Cond: syntax.Var{Name: "x"},
				Then: syntax.Int{Value: 1},
				Else: syntax.App{Func: syntax.Var{Name: "fib"}, Arg: syntax.Var{Name: "x"}},
			},
		},
		Body: syntax.Var{Name: "fib"},
	}, nil)

	if len(prog.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1", len(prog.Declarations))
	}
	d := prog.Declarations[0]
	if len(d.Arguments) != 1 || d.Arguments[0] != "x" {
		t.Fatalf("got arguments %v, want [x] (fib captures nothing but itself)", d.Arguments)
	}
	ifExpr, ok := d.Body.(ir.If)
	if !ok {
		t.Fatalf("got %T, want If", d.Body)
	}
	recCall, ok := ifExpr.Else.(ir.Application)
	if !ok {
		t.Fatalf("got %T, want Application (recursive call)", ifExpr.Else)
	}
	if fn, ok := recCall.Func.(ir.Var); !ok || fn.Name.IsBound() {
		t.Fatalf("got %#v, want Free self-reference", recCall.Func)
	}

	outerLet := prog.Expr.(ir.Let)
	if v, ok := outerLet.Expr.(ir.Var); !ok || v.Name.IsBound() {
		t.Fatalf("got %#v, want Free reference to hoisted fib", outerLet.Expr)
	}
}

func maybeTypeMap() types.TypeMap {
	return types.TypeMap{
		"Maybe": types.TypeInfo{
			TyArgs: []names.TyVar{"a"},
			Constructors: []types.DataConstructor{
				{Name: "Nothing", ArgTypes: nil},
				{Name: "Just", ArgTypes: []types.Monotype{types.Var{Name: "a"}}},
			},
		},
	}
}

func TestLowerMatchDispatchesOnTag(t *testing.T) {
	prog := lowerOne(t, syntax.Lambda{
		Param: "m",
		Body: syntax.Match{
			Scrutinee: syntax.Var{Name: "m"},
			Cases: []syntax.MatchCase{
				{
					Pattern: syntax.PatternConstructor{Type: "Maybe", Ctor: "Just", Fields: []syntax.Pattern{
						syntax.PatternVar{Name: "x"},
					}},
					Body: syntax.Var{Name: "x"},
				},
				{
					Pattern: syntax.PatternConstructor{Type: "Maybe", Ctor: "Nothing"},
					Body:    syntax.Int{Value: 0},
				},
			},
		},
	}, maybeTypeMap())

	d := prog.Declarations[0]
	m, ok := d.Body.(ir.Match)
	if !ok {
		t.Fatalf("got %T, want Match", d.Body)
	}
	if len(m.Cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(m.Cases))
	}
	if m.Cases[0].Tag != 1 || m.Cases[0].Binders != 1 {
		t.Fatalf("got case0 %+v, want Just (tag 1, 1 binder)", m.Cases[0])
	}
	if v, ok := m.Cases[0].Body.(ir.Var); !ok || v.Name.Index() != 0 {
		t.Fatalf("got %#v, want Bound(0) (the bound field x)", m.Cases[0].Body)
	}
	if m.Cases[1].Tag != 0 || m.Cases[1].Binders != 0 {
		t.Fatalf("got case1 %+v, want Nothing (tag 0, 0 binders)", m.Cases[1])
	}
}

func TestLowerNestedConstructorPattern(t *testing.T) {
	// A list-like ADT: Cons(head, tail) / Nil, matched against
	// Cons(x, Cons(y, _rest)) to exercise a nested dispatch.
	listTM := types.TypeMap{
		"List": types.TypeInfo{
			TyArgs: []names.TyVar{"a"},
			Constructors: []types.DataConstructor{
				{Name: "Nil"},
				{Name: "Cons", ArgTypes: []types.Monotype{types.Var{Name: "a"}, types.Constructor{Name: "List", Arguments: []types.Monotype{types.Var{Name: "a"}}}}},
			},
		},
	}

	prog := lowerOne(t, syntax.Lambda{
		Param: "l",
		Body: syntax.Match{
			Scrutinee: syntax.Var{Name: "l"},
			Cases: []syntax.MatchCase{
				{
					Pattern: syntax.PatternConstructor{Type: "List", Ctor: "Cons", Fields: []syntax.Pattern{
						syntax.PatternVar{Name: "x"},
						syntax.PatternConstructor{Type: "List", Ctor: "Cons", Fields: []syntax.Pattern{
							syntax.PatternVar{Name: "y"},
							syntax.PatternVar{Name: "rest"},
						}},
					}},
					Body: syntax.Var{Name: "y"},
				},
				{
					Pattern: syntax.PatternConstructor{Type: "List", Ctor: "Nil"},
					Body:    syntax.Int{Value: 0},
				},
			},
		},
	}, listTM)

	d := prog.Declarations[0]
	outer := d.Body.(ir.Match)
	consCase := outer.Cases[0]
	if consCase.Tag != 1 || consCase.Binders != 2 {
		t.Fatalf("got outer case %+v, want Cons (tag 1, 2 binders)", consCase)
	}
	nested, ok := consCase.Body.(ir.Match)
	if !ok {
		t.Fatalf("got %T, want nested Match on the tail field", consCase.Body)
	}
	if v, ok := nested.Scrutinee.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 1 {
		t.Fatalf("got nested scrutinee %#v, want Bound(1) (the tail field)", nested.Scrutinee)
	}
	if len(nested.Cases) != 1 || nested.Cases[0].Tag != 1 || nested.Cases[0].Binders != 2 {
		t.Fatalf("got nested case %+v, want Cons (tag 1, 2 binders)", nested.Cases[0])
	}
	// y is bound at index 0 of the nested frame, which sits innermost:
	// Bound(0) from within the nested case body.
	if v, ok := nested.Cases[0].Body.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got %#v, want Bound(0) (y)", nested.Cases[0].Body)
	}
}

func TestLowerSiblingNestedConstructorPatterns(t *testing.T) {
	// Pair(Just(x), Just(y)): two sibling fields are each their own
	// nested constructor pattern. Destructuring the first pushes a
	// binder frame that the second field's index must shift past.
	tm := types.TypeMap{
		"Maybe": types.TypeInfo{
			TyArgs: []names.TyVar{"a"},
			Constructors: []types.DataConstructor{
				{Name: "Nothing"},
				{Name: "Just", ArgTypes: []types.Monotype{types.Var{Name: "a"}}},
			},
		},
		"Pair": types.TypeInfo{
			TyArgs: []names.TyVar{"a", "b"},
			Constructors: []types.DataConstructor{
				{Name: "MkPair", ArgTypes: []types.Monotype{types.Var{Name: "a"}, types.Var{Name: "b"}}},
			},
		},
	}

	prog := lowerOne(t, syntax.Lambda{
		Param: "p",
		Body: syntax.Match{
			Scrutinee: syntax.Var{Name: "p"},
			Cases: []syntax.MatchCase{
				{
					Pattern: syntax.PatternConstructor{Type: "Pair", Ctor: "MkPair", Fields: []syntax.Pattern{
						syntax.PatternConstructor{Type: "Maybe", Ctor: "Just", Fields: []syntax.Pattern{syntax.PatternVar{Name: "x"}}},
						syntax.PatternConstructor{Type: "Maybe", Ctor: "Just", Fields: []syntax.Pattern{syntax.PatternVar{Name: "y"}}},
					}},
					Body: syntax.Var{Name: "y"},
				},
			},
		},
	}, tm)

	d := prog.Declarations[0]
	outer := d.Body.(ir.Match)
	pairCase := outer.Cases[0]
	// Destructuring field 0 (Just(x)) dispatches on field 0 directly:
	// Bound(0), nothing has been pushed yet.
	firstNested, ok := pairCase.Body.(ir.Match)
	if !ok {
		t.Fatalf("got %T, want nested Match on field 0", pairCase.Body)
	}
	if v, ok := firstNested.Scrutinee.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got field-0 scrutinee %#v, want Bound(0)", firstNested.Scrutinee)
	}

	// Field 1 (Just(y)) must be read at Bound(2): field index 1 of the
	// Pair frame, shifted by 1 because x's own binder frame (1 name)
	// now sits between the Pair frame and here.
	secondNested, ok := firstNested.Cases[0].Body.(ir.Match)
	if !ok {
		t.Fatalf("got %T, want nested Match on field 1", firstNested.Cases[0].Body)
	}
	if v, ok := secondNested.Scrutinee.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 2 {
		t.Fatalf("got field-1 scrutinee %#v, want Bound(2) (field 1, shifted past x's frame)", secondNested.Scrutinee)
	}

	// y is bound at index 0 of its own (innermost) frame.
	if v, ok := secondNested.Cases[0].Body.(ir.Var); !ok || !v.Name.IsBound() || v.Name.Index() != 0 {
		t.Fatalf("got %#v, want Bound(0) (y)", secondNested.Cases[0].Body)
	}
}

package codegen

import (
	"testing"

	"github.com/lucidlang/lucid/internal/ir"
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/wasm"
)

func emitOne(t *testing.T, prog ir.Program) *wasm.Module {
	t.Helper()
	cg := New()
	m, err := cg.EmitProgram(prog)
	if err != nil {
		t.Fatalf("EmitProgram: %v", err)
	}
	return m
}

func TestNewSeedsRuntimePrimitives(t *testing.T) {
	cg := New()
	for _, name := range []string{
		"allocate", "make_closure", "copy_closure", "apply_closure",
		"make_pack", "write_pack_field", "read_pack_field", "read_pack_tag",
		"add", "sub", "div", "eq_int",
	} {
		if _, ok := cg.funcIndex[name]; !ok {
			t.Fatalf("runtime primitive %q not registered", name)
		}
	}
	for _, name := range []string{"add", "sub", "div", "eq_int"} {
		if arity := cg.declArity[name]; arity != 2 {
			t.Fatalf("builtin %q arity = %d, want 2", name, arity)
		}
		if _, ok := cg.tableIndex[name]; !ok {
			t.Fatalf("builtin %q missing a table slot", name)
		}
	}
}

func TestEmitProgramConstantMain(t *testing.T) {
	m := emitOne(t, ir.Program{Expr: ir.Int{Value: 42}})

	idx := m.FunctionIndex("main$inner")
	if idx < 0 {
		t.Fatalf("main$inner not emitted")
	}
	body := m.Functions[idx].Body
	if len(body) != 1 {
		t.Fatalf("got %d instructions, want 1 (a single constant)", len(body))
	}
	c, ok := body[0].(wasm.I32Const)
	if !ok || c.Value != 42 {
		t.Fatalf("got %#v, want I32Const{42}", body[0])
	}
}

func TestEmitProgramDirectCallsSaturatedApplication(t *testing.T) {
	// A single declaration `double(x) = add(x, x)`; calling it from main
	// with its one argument supplied should emit a direct $inner call
	// rather than going through apply_closure.
	prog := ir.Program{
		Declarations: []ir.Declaration{
			{
				Name:      "double",
				Arguments: []names.Name{"x"},
				Body: ir.Application{
					Func:     ir.Application{Func: ir.Var{Name: names.Free("add")}, Argument: ir.Var{Name: names.Bound(0)}},
					Argument: ir.Var{Name: names.Bound(0)},
				},
			},
		},
		Expr: ir.Application{Func: ir.Var{Name: names.Free("double")}, Argument: ir.Int{Value: 21}},
	}
	m := emitOne(t, prog)

	doubleInner := m.Functions[m.FunctionIndex("double$inner")]
	sawCall := false
	for _, instr := range doubleInner.Body {
		if c, ok := instr.(wasm.Call); ok {
			sawCall = true
			addInner := m.FunctionIndex("add$inner")
			if int(c.FuncIndex) != addInner {
				t.Fatalf("double$inner calls func %d, want add$inner (%d)", c.FuncIndex, addInner)
			}
		}
	}
	if !sawCall {
		t.Fatalf("double$inner body has no direct Call: %#v", doubleInner.Body)
	}

	mainInner := m.Functions[m.FunctionIndex("main$inner")]
	foundDirect := false
	for _, instr := range mainInner.Body {
		if c, ok := instr.(wasm.Call); ok && int(c.FuncIndex) == m.FunctionIndex("double$inner") {
			foundDirect = true
		}
	}
	if !foundDirect {
		t.Fatalf("main$inner does not directly call double$inner: %#v", mainInner.Body)
	}
}

func TestEmitProgramPartialApplicationUsesApplyClosure(t *testing.T) {
	// main = add 1 (one argument short of add's arity 2): must build a
	// closure value and thread it through apply_closure, never a
	// direct $inner call.
	prog := ir.Program{
		Expr: ir.Application{Func: ir.Var{Name: names.Free("add")}, Argument: ir.Int{Value: 1}},
	}
	m := emitOne(t, prog)

	mainInner := m.Functions[m.FunctionIndex("main$inner")]
	sawMakeClosure, sawApply := false, false
	applyIdx := m.FunctionIndex("apply_closure")
	makeClosureIdx := m.FunctionIndex("make_closure")
	for _, instr := range mainInner.Body {
		if c, ok := instr.(wasm.Call); ok {
			switch int(c.FuncIndex) {
			case applyIdx:
				sawApply = true
			case makeClosureIdx:
				sawMakeClosure = true
			}
		}
	}
	if !sawMakeClosure {
		t.Fatalf("expected a make_closure call for the partially-applied builtin")
	}
	if !sawApply {
		t.Fatalf("expected an apply_closure call for the partially-applied builtin")
	}
}

func TestEmitProgramPackRoundTrip(t *testing.T) {
	// main = Pack{Tag: 1, Values: [Int 7]} — exercises make_pack plus a
	// single write_pack_field.
	prog := ir.Program{
		Expr: ir.Pack{Tag: 1, Values: []ir.Expression{ir.Int{Value: 7}}},
	}
	m := emitOne(t, prog)
	mainInner := m.Functions[m.FunctionIndex("main$inner")]

	makePackIdx := m.FunctionIndex("make_pack")
	writeFieldIdx := m.FunctionIndex("write_pack_field")
	var sawMakePack, sawWrite bool
	for _, instr := range mainInner.Body {
		if c, ok := instr.(wasm.Call); ok {
			if int(c.FuncIndex) == makePackIdx {
				sawMakePack = true
			}
			if int(c.FuncIndex) == writeFieldIdx {
				sawWrite = true
			}
		}
	}
	if !sawMakePack || !sawWrite {
		t.Fatalf("pack construction missing make_pack/write_pack_field calls: %#v", mainInner.Body)
	}
}

func TestEmitProgramMatchEmitsTagDispatch(t *testing.T) {
	prog := ir.Program{
		Expr: ir.Match{
			Scrutinee: ir.Pack{Tag: 0, Values: nil},
			Cases: []ir.Case{
				{Tag: 0, Binders: 0, Body: ir.Int{Value: 1}},
				{Tag: 1, Binders: 1, Body: ir.GetLocal{Index: 0}},
			},
		},
	}
	m := emitOne(t, prog)
	mainInner := m.Functions[m.FunctionIndex("main$inner")]

	hasIf := func(instrs []wasm.Instruction) bool {
		for _, instr := range instrs {
			if _, ok := instr.(wasm.If); ok {
				return true
			}
		}
		return false
	}
	if !hasIf(mainInner.Body) {
		t.Fatalf("match did not emit a tag-dispatch If: %#v", mainInner.Body)
	}
}

func TestUnfoldAppCollectsArgumentsInOrder(t *testing.T) {
	// f a b c  ==  App(App(App(f, a), b), c)
	expr := ir.Application{
		Func: ir.Application{
			Func:     ir.Application{Func: ir.Var{Name: names.Free("f")}, Argument: ir.Var{Name: names.Bound(2)}},
			Argument: ir.Var{Name: names.Bound(1)},
		},
		Argument: ir.Var{Name: names.Bound(0)},
	}
	head, args := unfoldApp(expr)
	hv, ok := head.(ir.Var)
	if !ok || hv.Name.IsBound() || hv.Name.FreeName() != "f" {
		t.Fatalf("got head %#v, want Free(f)", head)
	}
	if len(args) != 3 {
		t.Fatalf("got %d args, want 3", len(args))
	}
	for i, a := range args {
		v := a.(ir.Var)
		want := 2 - i
		if v.Name.Index() != want {
			t.Fatalf("arg %d: got Bound(%d), want Bound(%d)", i, v.Name.Index(), want)
		}
	}
}

package wasm

import "testing"

func TestFunctionIndexFindsByName(t *testing.T) {
	m := Module{Functions: []Function{
		{Name: "allocate"},
		{Name: "make_closure"},
	}}
	if idx := m.FunctionIndex("make_closure"); idx != 1 {
		t.Fatalf("got %d, want 1", idx)
	}
	if idx := m.FunctionIndex("nope"); idx != -1 {
		t.Fatalf("got %d, want -1 for an absent name", idx)
	}
}

func TestIfIsAStructuredInstructionNotRawMarkers(t *testing.T) {
	// If nests Then/Else instruction lists directly, rather than the
	// caller pushing raw block/end/else markers onto a flat stream.
	var instr Instruction = If{
		Result: I32,
		Then:   []Instruction{I32Const{Value: 1}},
		Else:   []Instruction{I32Const{Value: 0}},
	}
	body, ok := instr.(If)
	if !ok {
		t.Fatalf("got %T, want If", instr)
	}
	if len(body.Then) != 1 || len(body.Else) != 1 {
		t.Fatalf("got Then=%v Else=%v, want one instruction each", body.Then, body.Else)
	}
}

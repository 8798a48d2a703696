// Package codegen lowers internal/ir's locally-nameless IR into a
// internal/wasm Module: a bump-allocated linear memory, partially
// applicable closures, tagged ADT packs, and one function-table slot
// per table-callable function (spec.md §4.7–§4.8).
//
// A Codegen is created once per program, seeded with the runtime
// primitives via initRuntime, and then consumed by EmitProgram
// (spec.md §5 "Resource lifecycles"). It owns independent append-only
// registries for functions, globals, the table, and function types —
// the same shape as the teacher's Chunk/bytecode registries
// (internal/vm/chunk.go), generalized from a single bytecode blob to
// the several parallel WASM sections this target needs.
package codegen

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/ir"
	"github.com/lucidlang/lucid/internal/wasm"
)

// Codegen accumulates a wasm.Module across the runtime primitives and
// every declaration of a lowered program.
type Codegen struct {
	module wasm.Module

	funcIndex        map[string]int
	typeIndexByArity map[int]int
	tableIndex       map[string]int
	tableOrder       []string
	declArity        map[string]int

	allocateIdx       int
	makeClosureIdx    int
	copyClosureIdx    int
	applyClosureIdx   int
	makePackIdx       int
	writePackFieldIdx int
	readPackFieldIdx  int
	readPackTagIdx    int
}

// New builds a Codegen with the runtime primitives already emitted
// and exported (spec.md §5 "receives init_rts() before user
// declarations").
func New() *Codegen {
	cg := &Codegen{
		funcIndex:        map[string]int{},
		typeIndexByArity: map[int]int{},
		tableIndex:       map[string]int{},
		declArity:        map[string]int{},
		module: wasm.Module{
			Globals: []wasm.Global{{Name: "watermark", Type: wasm.I32, Mutable: true}},
			Memory:  wasm.Memory{InitialPages: 1},
		},
	}
	cg.initRuntime()
	return cg
}

// EmitProgram registers every declaration plus a synthetic nullary
// "main" wrapping the residual expression, then finalizes the table
// and element section.
func (cg *Codegen) EmitProgram(prog ir.Program) (*wasm.Module, error) {
	decls := append(append([]ir.Declaration{}, prog.Declarations...), ir.Declaration{
		Name: "main",
		Body: prog.Expr,
	})

	for _, d := range decls {
		cg.reserveDeclaration(d)
	}
	for _, d := range decls {
		if err := cg.emitDeclarationBody(d); err != nil {
			return nil, err
		}
	}

	cg.module.Table = wasm.Table{InitialSize: uint32(len(cg.tableOrder))}
	funcIndices := make([]uint32, len(cg.tableOrder))
	for i, name := range cg.tableOrder {
		funcIndices[i] = uint32(cg.funcIndex[name])
	}
	cg.module.Elements = []wasm.Element{{Offset: 0, FuncIndex: funcIndices}}

	return &cg.module, nil
}

func (cg *Codegen) typeIndexFor(paramCount int) int {
	if idx, ok := cg.typeIndexByArity[paramCount]; ok {
		return idx
	}
	params := make([]wasm.ValueType, paramCount)
	for i := range params {
		params[i] = wasm.I32
	}
	idx := len(cg.module.Types)
	cg.module.Types = append(cg.module.Types, wasm.FuncType{Params: params, Results: []wasm.ValueType{wasm.I32}})
	cg.typeIndexByArity[paramCount] = idx
	return idx
}

func (cg *Codegen) addFunction(f wasm.Function) int {
	idx := len(cg.module.Functions)
	cg.module.Functions = append(cg.module.Functions, f)
	cg.funcIndex[f.Name] = idx
	return idx
}

func (cg *Codegen) export(name string, idx int) {
	cg.module.Exports = append(cg.module.Exports, wasm.Export{Name: name, Kind: wasm.ExportFunc, Index: uint32(idx)})
}

func (cg *Codegen) registerTable(name string) int {
	idx := len(cg.tableOrder)
	cg.tableOrder = append(cg.tableOrder, name)
	cg.tableIndex[name] = idx
	return idx
}

// makeWrapper builds `name(arg_ptr) -> i32`: load each of arity
// arguments from [arg_ptr + 4i] and call innerIdx (spec.md §4.7
// "Function emission per declaration").
func (cg *Codegen) makeWrapper(name string, arity int, innerIdx int) wasm.Function {
	var body []wasm.Instruction
	for i := 0; i < arity; i++ {
		body = append(body, wasm.LocalGet{Index: 0}, wasm.MemLoad{Offset: uint32(4 * i)})
	}
	body = append(body, wasm.Call{FuncIndex: uint32(innerIdx)})
	cg.typeIndexFor(1)
	return wasm.Function{
		Name: name,
		Type: wasm.FuncType{Params: []wasm.ValueType{wasm.I32}, Results: []wasm.ValueType{wasm.I32}},
		Body: body,
	}
}

// reserveDeclaration registers a user declaration's inner/wrapper pair
// and table slot ahead of emitting any body, so that mutually and
// self-referential Free lookups resolve regardless of emission order.
func (cg *Codegen) reserveDeclaration(d ir.Declaration) {
	name := string(d.Name)
	arity := len(d.Arguments)
	cg.declArity[name] = arity

	cg.typeIndexFor(arity)
	innerIdx := cg.addFunction(wasm.Function{Name: name + "$inner"})

	wrapper := cg.makeWrapper(name, arity, innerIdx)
	wrapperIdx := cg.addFunction(wrapper)

	cg.registerTable(name)
	cg.export(name, wrapperIdx)
	cg.export(name+"$inner", innerIdx)
}

func (cg *Codegen) emitDeclarationBody(d ir.Declaration) error {
	name := string(d.Name)
	arity := len(d.Arguments)

	replacements := make([]ir.Expression, arity)
	for i := range replacements {
		replacements[i] = ir.GetLocal{Index: i}
	}
	body := ir.Instantiate(d.Body, replacements)

	e := &declEmitter{cg: cg, nextLocal: arity}
	instrs, err := e.emit(body)
	if err != nil {
		return fmt.Errorf("codegen: declaration %s: %w", name, err)
	}

	innerIdx := cg.funcIndex[name+"$inner"]
	params := make([]wasm.ValueType, arity)
	for i := range params {
		params[i] = wasm.I32
	}
	cg.module.Functions[innerIdx].Type = wasm.FuncType{Params: params, Results: []wasm.ValueType{wasm.I32}}
	cg.module.Functions[innerIdx].Locals = e.locals
	cg.module.Functions[innerIdx].Body = instrs
	return nil
}

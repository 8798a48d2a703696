package codegen

import (
	"github.com/lucidlang/lucid/internal/config"
	"github.com/lucidlang/lucid/internal/wasm"
)

// Memory layout. spec.md §4.7 packs arity/applied into i16 halves of
// a single word and tag/arity likewise for packs; this codegen widens
// each i16 field to its own i32 word so every load/store is
// word-aligned. The field order and meaning are unchanged — only the
// byte size grows (12+4·arity for a closure, 8+4·arity for a pack,
// instead of 8+4·arity / 4+4·arity) — see DESIGN.md.
const (
	closureArityOffset   = 0
	closureAppliedOffset = 4
	closureCodePtrOffset = 8
	closureArgsOffset    = 12

	packTagOffset   = 0
	packArityOffset = 4
	packFieldOffset = 8
)

// initRuntime emits the fixed runtime primitives once, ahead of any
// user declaration (spec.md §5 "receives init_rts() before user
// declarations", §4.7 "Runtime primitives emitted once").
func (cg *Codegen) initRuntime() {
	cg.allocateIdx = cg.emitAllocate()
	cg.makeClosureIdx = cg.emitMakeClosure()
	cg.copyClosureIdx = cg.emitCopyClosure()
	cg.applyClosureIdx = cg.emitApplyClosure()
	cg.makePackIdx = cg.emitMakePack()
	cg.writePackFieldIdx = cg.emitWritePackField()
	cg.readPackFieldIdx = cg.emitReadPackField()
	cg.readPackTagIdx = cg.emitReadPackTag()
	cg.emitArithmeticBuiltins()
}

func i32fn(name string, paramCount int, body []wasm.Instruction, locals []wasm.Local) wasm.Function {
	params := make([]wasm.ValueType, paramCount)
	for i := range params {
		params[i] = wasm.I32
	}
	return wasm.Function{
		Name:   name,
		Type:   wasm.FuncType{Params: params, Results: []wasm.ValueType{wasm.I32}},
		Locals: locals,
		Body:   body,
	}
}

func (cg *Codegen) emitAllocate() int {
	// allocate(bytes) -> ptr: local 1 = old watermark.
	body := []wasm.Instruction{
		wasm.GlobalGet{Index: 0}, wasm.LocalSet{Index: 1},
		wasm.GlobalGet{Index: 0}, wasm.LocalGet{Index: 0}, wasm.BinOp{Op: wasm.OpAdd}, wasm.GlobalSet{Index: 0},
		wasm.LocalGet{Index: 1},
	}
	cg.typeIndexFor(1)
	idx := cg.addFunction(i32fn("allocate", 1, body, []wasm.Local{{Count: 1, Type: wasm.I32}}))
	cg.export("allocate", idx)
	return idx
}

func (cg *Codegen) emitMakeClosure() int {
	// make_closure(arity, code_ptr) -> ptr: local 2 = ptr.
	body := []wasm.Instruction{
		wasm.I32Const{Value: closureArgsOffset}, wasm.LocalGet{Index: 0}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.Call{FuncIndex: uint32(cg.allocateIdx)}, wasm.LocalSet{Index: 2},

		wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 0}, wasm.MemStore{Offset: closureArityOffset},
		wasm.LocalGet{Index: 2}, wasm.I32Const{Value: 0}, wasm.MemStore{Offset: closureAppliedOffset},
		wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 1}, wasm.MemStore{Offset: closureCodePtrOffset},
		wasm.LocalGet{Index: 2},
	}
	cg.typeIndexFor(2)
	idx := cg.addFunction(i32fn("make_closure", 2, body, []wasm.Local{{Count: 1, Type: wasm.I32}}))
	cg.export("make_closure", idx)
	return idx
}

func (cg *Codegen) emitCopyClosure() int {
	// copy_closure(src) -> ptr. locals: 1=arity, 2=dst, 3=i, 4=total words.
	body := []wasm.Instruction{
		wasm.LocalGet{Index: 0}, wasm.MemLoad{Offset: closureArityOffset}, wasm.LocalSet{Index: 1},
		wasm.I32Const{Value: closureArgsOffset}, wasm.LocalGet{Index: 1}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.Call{FuncIndex: uint32(cg.allocateIdx)}, wasm.LocalSet{Index: 2},
		wasm.LocalGet{Index: 1}, wasm.I32Const{Value: closureArgsOffset / 4}, wasm.BinOp{Op: wasm.OpAdd}, wasm.LocalSet{Index: 4},
		wasm.I32Const{Value: 0}, wasm.LocalSet{Index: 3},
		wasm.Block{Body: []wasm.Instruction{
			wasm.Loop{Body: []wasm.Instruction{
				wasm.LocalGet{Index: 3}, wasm.LocalGet{Index: 4}, wasm.BinOp{Op: wasm.OpEq}, wasm.BrIf{Depth: 1},

				wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 3}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd},
				wasm.LocalGet{Index: 0}, wasm.LocalGet{Index: 3}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd}, wasm.MemLoad{Offset: 0},
				wasm.MemStore{Offset: 0},

				wasm.LocalGet{Index: 3}, wasm.I32Const{Value: 1}, wasm.BinOp{Op: wasm.OpAdd}, wasm.LocalSet{Index: 3},
				wasm.Br{Depth: 0},
			}},
		}},
		wasm.LocalGet{Index: 2},
	}
	cg.typeIndexFor(1)
	idx := cg.addFunction(i32fn("copy_closure", 1, body, []wasm.Local{
		{Count: 1, Type: wasm.I32}, {Count: 1, Type: wasm.I32}, {Count: 1, Type: wasm.I32}, {Count: 1, Type: wasm.I32},
	}))
	cg.export("copy_closure", idx)
	return idx
}

func (cg *Codegen) emitApplyClosure() int {
	// apply_closure(closure, arg) -> i32. locals: 2=c, 3=arity, 4=applied.
	body := []wasm.Instruction{
		wasm.LocalGet{Index: 0}, wasm.Call{FuncIndex: uint32(cg.copyClosureIdx)}, wasm.LocalSet{Index: 2},
		wasm.LocalGet{Index: 2}, wasm.MemLoad{Offset: closureArityOffset}, wasm.LocalSet{Index: 3},
		wasm.LocalGet{Index: 2}, wasm.MemLoad{Offset: closureAppliedOffset}, wasm.LocalSet{Index: 4},

		wasm.LocalGet{Index: 2}, wasm.I32Const{Value: closureArgsOffset}, wasm.LocalGet{Index: 4}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.LocalGet{Index: 1},
		wasm.MemStore{Offset: 0},

		wasm.LocalGet{Index: 4}, wasm.I32Const{Value: 1}, wasm.BinOp{Op: wasm.OpAdd}, wasm.LocalGet{Index: 3}, wasm.BinOp{Op: wasm.OpLtS},
		wasm.If{
			Result: wasm.I32,
			Then: []wasm.Instruction{
				wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 4}, wasm.I32Const{Value: 1}, wasm.BinOp{Op: wasm.OpAdd}, wasm.MemStore{Offset: closureAppliedOffset},
				wasm.LocalGet{Index: 2},
			},
			Else: []wasm.Instruction{
				wasm.LocalGet{Index: 2}, wasm.I32Const{Value: closureArgsOffset}, wasm.BinOp{Op: wasm.OpAdd},
				wasm.LocalGet{Index: 2}, wasm.MemLoad{Offset: closureCodePtrOffset},
				wasm.CallIndirect{TypeIndex: uint32(cg.typeIndexFor(1))},
			},
		},
	}
	cg.typeIndexFor(2)
	idx := cg.addFunction(i32fn("apply_closure", 2, body, []wasm.Local{
		{Count: 1, Type: wasm.I32}, {Count: 1, Type: wasm.I32}, {Count: 1, Type: wasm.I32},
	}))
	cg.export("apply_closure", idx)
	return idx
}

func (cg *Codegen) emitMakePack() int {
	// make_pack(tag, arity) -> ptr. local 2 = ptr.
	body := []wasm.Instruction{
		wasm.I32Const{Value: packFieldOffset}, wasm.LocalGet{Index: 1}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.Call{FuncIndex: uint32(cg.allocateIdx)}, wasm.LocalSet{Index: 2},
		wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 0}, wasm.MemStore{Offset: packTagOffset},
		wasm.LocalGet{Index: 2}, wasm.LocalGet{Index: 1}, wasm.MemStore{Offset: packArityOffset},
		wasm.LocalGet{Index: 2},
	}
	cg.typeIndexFor(2)
	idx := cg.addFunction(i32fn("make_pack", 2, body, []wasm.Local{{Count: 1, Type: wasm.I32}}))
	cg.export("make_pack", idx)
	return idx
}

func (cg *Codegen) emitWritePackField() int {
	// write_pack_field(pack, offset, field) -> pack (for chaining).
	body := []wasm.Instruction{
		wasm.LocalGet{Index: 0}, wasm.I32Const{Value: packFieldOffset}, wasm.LocalGet{Index: 1}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.LocalGet{Index: 2},
		wasm.MemStore{Offset: 0},
		wasm.LocalGet{Index: 0},
	}
	cg.typeIndexFor(3)
	idx := cg.addFunction(i32fn("write_pack_field", 3, body, nil))
	cg.export("write_pack_field", idx)
	return idx
}

func (cg *Codegen) emitReadPackField() int {
	// read_pack_field(pack, offset) -> i32.
	body := []wasm.Instruction{
		wasm.LocalGet{Index: 0}, wasm.I32Const{Value: packFieldOffset}, wasm.LocalGet{Index: 1}, wasm.I32Const{Value: 4}, wasm.BinOp{Op: wasm.OpMul}, wasm.BinOp{Op: wasm.OpAdd}, wasm.BinOp{Op: wasm.OpAdd},
		wasm.MemLoad{Offset: 0},
	}
	cg.typeIndexFor(2)
	idx := cg.addFunction(i32fn("read_pack_field", 2, body, nil))
	cg.export("read_pack_field", idx)
	return idx
}

func (cg *Codegen) emitReadPackTag() int {
	// read_pack_tag(pack) -> i32.
	body := []wasm.Instruction{
		wasm.LocalGet{Index: 0}, wasm.MemLoad{Offset: packTagOffset},
	}
	cg.typeIndexFor(1)
	idx := cg.addFunction(i32fn("read_pack_tag", 1, body, nil))
	cg.export("read_pack_tag", idx)
	return idx
}

// emitArithmeticBuiltins wires each of config.Builtins as an
// $inner/wrapper pair, registered in the function table and declArity
// exactly like any user declaration — so an ordinary Application of
// "add"/"sub"/"div"/"eq_int" takes the same direct-call or
// apply_closure path as user code (spec.md §4.7 "Builtins").
func (cg *Codegen) emitArithmeticBuiltins() {
	ops := map[string]wasm.BinaryOp{
		config.AddFuncName:   wasm.OpAdd,
		config.SubFuncName:   wasm.OpSub,
		config.DivFuncName:   wasm.OpDivS,
		config.EqIntFuncName: wasm.OpEq,
	}
	for _, name := range config.Builtins {
		body := []wasm.Instruction{
			wasm.LocalGet{Index: 0}, wasm.LocalGet{Index: 1}, wasm.BinOp{Op: ops[name]},
		}
		cg.typeIndexFor(config.BuiltinArity)
		innerIdx := cg.addFunction(i32fn(name+"$inner", config.BuiltinArity, body, nil))

		wrapper := cg.makeWrapper(name, config.BuiltinArity, innerIdx)
		wrapperIdx := cg.addFunction(wrapper)

		cg.registerTable(name)
		cg.export(name, wrapperIdx)
		cg.declArity[name] = config.BuiltinArity
	}
}

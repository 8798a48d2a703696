package codegen

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/ir"
	"github.com/lucidlang/lucid/internal/wasm"
)

// declEmitter lowers one declaration's already-instantiated ir.Body
// (every Bound(i) among its own Arguments already replaced by
// GetLocal) into a flat wasm.Instruction sequence, allocating fresh
// i32 locals for each Let/Match binder and intermediate pointer it
// needs along the way.
type declEmitter struct {
	cg        *Codegen
	nextLocal int
	locals    []wasm.Local
}

func (e *declEmitter) freshLocal() int {
	idx := e.nextLocal
	e.nextLocal++
	e.locals = append(e.locals, wasm.Local{Count: 1, Type: wasm.I32})
	return idx
}

func (e *declEmitter) emit(expr ir.Expression) ([]wasm.Instruction, error) {
	switch v := expr.(type) {
	case ir.Int:
		return []wasm.Instruction{wasm.I32Const{Value: v.Value}}, nil

	case ir.Bool:
		val := int32(0)
		if v.Value {
			val = 1
		}
		return []wasm.Instruction{wasm.I32Const{Value: val}}, nil

	case ir.GetLocal:
		return []wasm.Instruction{wasm.LocalGet{Index: uint32(v.Index)}}, nil

	case ir.Var:
		if v.Name.IsBound() {
			return nil, &InternalBoundError{Index: v.Name.Index()}
		}
		return e.emitClosureValue(string(v.Name.FreeName()))

	case ir.Application:
		return e.emitApplication(v)

	case ir.Pack:
		return e.emitPack(v)

	case ir.Match:
		return e.emitMatch(v)

	case ir.If:
		return e.emitIf(v)

	case ir.Let:
		return e.emitLet(v)

	default:
		return nil, fmt.Errorf("codegen: unhandled ir expression %T", expr)
	}
}

// emitClosureValue builds a freshly-allocated closure value for a
// top-level Free reference used as a value rather than as the
// immediately-applied head of a saturated call (spec.md §4.7 "a
// reference to a declaration, used as a value, allocates a closure of
// applied=0").
func (e *declEmitter) emitClosureValue(name string) ([]wasm.Instruction, error) {
	arity, ok := e.cg.declArity[name]
	if !ok {
		return nil, &UnknownDeclarationError{Name: name}
	}
	tableIdx, ok := e.cg.tableIndex[name]
	if !ok {
		return nil, &UnknownDeclarationError{Name: name}
	}
	return []wasm.Instruction{
		wasm.I32Const{Value: int32(arity)},
		wasm.I32Const{Value: int32(tableIdx)},
		wasm.Call{FuncIndex: uint32(e.cg.makeClosureIdx)},
	}, nil
}

// unfoldApp flattens a left-nested chain of single-argument
// Applications into its head and an in-order argument list.
func unfoldApp(expr ir.Expression) (ir.Expression, []ir.Expression) {
	var args []ir.Expression
	for {
		app, ok := expr.(ir.Application)
		if !ok {
			break
		}
		args = append([]ir.Expression{app.Argument}, args...)
		expr = app.Func
	}
	return expr, args
}

func (e *declEmitter) emitApplication(app ir.Application) ([]wasm.Instruction, error) {
	head, args := unfoldApp(app)

	if v, ok := head.(ir.Var); ok && !v.Name.IsBound() {
		name := string(v.Name.FreeName())
		if arity, ok := e.cg.declArity[name]; ok && arity == len(args) {
			innerIdx, ok := e.cg.funcIndex[name+"$inner"]
			if !ok {
				return nil, &UnknownDeclarationError{Name: name}
			}
			var instrs []wasm.Instruction
			for _, a := range args {
				ai, err := e.emit(a)
				if err != nil {
					return nil, err
				}
				instrs = append(instrs, ai...)
			}
			instrs = append(instrs, wasm.Call{FuncIndex: uint32(innerIdx)})
			return instrs, nil
		}
	}

	instrs, err := e.emit(head)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		ai, err := e.emit(a)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, ai...)
		instrs = append(instrs, wasm.Call{FuncIndex: uint32(e.cg.applyClosureIdx)})
	}
	return instrs, nil
}

func (e *declEmitter) emitPack(p ir.Pack) ([]wasm.Instruction, error) {
	ptr := e.freshLocal()
	instrs := []wasm.Instruction{
		wasm.I32Const{Value: int32(p.Tag)},
		wasm.I32Const{Value: int32(len(p.Values))},
		wasm.Call{FuncIndex: uint32(e.cg.makePackIdx)},
		wasm.LocalSet{Index: uint32(ptr)},
	}
	for i, val := range p.Values {
		vi, err := e.emit(val)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, wasm.LocalGet{Index: uint32(ptr)}, wasm.I32Const{Value: int32(i)})
		instrs = append(instrs, vi...)
		instrs = append(instrs, wasm.Call{FuncIndex: uint32(e.cg.writePackFieldIdx)}, wasm.Drop{})
	}
	instrs = append(instrs, wasm.LocalGet{Index: uint32(ptr)})
	return instrs, nil
}

func (e *declEmitter) emitMatch(m ir.Match) ([]wasm.Instruction, error) {
	scrut, err := e.emit(m.Scrutinee)
	if err != nil {
		return nil, err
	}
	scrutLocal := e.freshLocal()
	tagLocal := e.freshLocal()

	chain, err := e.emitCaseChain(m.Cases, 0, scrutLocal, tagLocal)
	if err != nil {
		return nil, err
	}

	instrs := append([]wasm.Instruction{}, scrut...)
	instrs = append(instrs, wasm.LocalSet{Index: uint32(scrutLocal)})
	instrs = append(instrs,
		wasm.LocalGet{Index: uint32(scrutLocal)},
		wasm.Call{FuncIndex: uint32(e.cg.readPackTagIdx)},
		wasm.LocalSet{Index: uint32(tagLocal)},
	)
	instrs = append(instrs, chain...)
	return instrs, nil
}

// emitCaseChain builds a left-to-right chain of tag-equality Ifs,
// terminating in Unreachable, which traps when no case matches.
// Matches are not checked for exhaustiveness before this point.
func (e *declEmitter) emitCaseChain(cases []ir.Case, i, scrutLocal, tagLocal int) ([]wasm.Instruction, error) {
	if i >= len(cases) {
		return []wasm.Instruction{wasm.Unreachable{}}, nil
	}
	c := cases[i]

	replacements := make([]ir.Expression, c.Binders)
	var fieldReads []wasm.Instruction
	for j := 0; j < c.Binders; j++ {
		fieldLocal := e.freshLocal()
		replacements[j] = ir.GetLocal{Index: fieldLocal}
		fieldReads = append(fieldReads,
			wasm.LocalGet{Index: uint32(scrutLocal)},
			wasm.I32Const{Value: int32(j)},
			wasm.Call{FuncIndex: uint32(e.cg.readPackFieldIdx)},
			wasm.LocalSet{Index: uint32(fieldLocal)},
		)
	}
	body := ir.Instantiate(c.Body, replacements)
	thenBody, err := e.emit(body)
	if err != nil {
		return nil, err
	}
	thenBody = append(fieldReads, thenBody...)

	elseBody, err := e.emitCaseChain(cases, i+1, scrutLocal, tagLocal)
	if err != nil {
		return nil, err
	}

	return []wasm.Instruction{
		wasm.LocalGet{Index: uint32(tagLocal)},
		wasm.I32Const{Value: int32(c.Tag)},
		wasm.BinOp{Op: wasm.OpEq},
		wasm.If{Result: wasm.I32, Then: thenBody, Else: elseBody},
	}, nil
}

func (e *declEmitter) emitIf(v ir.If) ([]wasm.Instruction, error) {
	cond, err := e.emit(v.Cond)
	if err != nil {
		return nil, err
	}
	then, err := e.emit(v.Then)
	if err != nil {
		return nil, err
	}
	els, err := e.emit(v.Else)
	if err != nil {
		return nil, err
	}
	instrs := append([]wasm.Instruction{}, cond...)
	instrs = append(instrs, wasm.If{Result: wasm.I32, Then: then, Else: els})
	return instrs, nil
}

func (e *declEmitter) emitLet(v ir.Let) ([]wasm.Instruction, error) {
	val, err := e.emit(v.Expr)
	if err != nil {
		return nil, err
	}
	local := e.freshLocal()
	body := ir.Instantiate(v.Body, []ir.Expression{ir.GetLocal{Index: local}})
	bodyInstrs, err := e.emit(body)
	if err != nil {
		return nil, err
	}
	instrs := append([]wasm.Instruction{}, val...)
	instrs = append(instrs, wasm.LocalSet{Index: uint32(local)})
	instrs = append(instrs, bodyInstrs...)
	return instrs, nil
}

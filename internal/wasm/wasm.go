// Package wasm is a value model of the subset of a WebAssembly module
// that internal/codegen emits: function types, functions (as
// instruction sequences over an implicit local-variable frame), a
// linear memory, a table of function references, and exports. It is
// an in-memory AST, not a byte-level encoder/decoder — turning a
// Module into the binary `.wasm` format is delegated to whatever
// embeds this compiler (spec.md §1 "Non-goals").
package wasm

// ValueType is one of WASM's scalar value types. Lucid's runtime only
// ever uses I32 (spec.md §4.7: booleans, integers, and pointers into
// linear memory are all represented as a boxed or raw i32).
type ValueType int8

const (
	I32 ValueType = iota
	I64
	F32
	F64
)

// FuncType is a function signature: its parameter and result types.
// Lucid functions return exactly one value.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// Local declares a run of locals of one type following a function's
// parameters (spec.md §4.7 "evaluate e into a fresh local").
type Local struct {
	Count uint32
	Type  ValueType
}

// Function is one function body: its locals beyond its declared
// parameters, and the instruction sequence implementing it.
type Function struct {
	Name   string
	Type   FuncType
	Locals []Local
	Body   []Instruction
}

// Global is a module-level mutable or immutable global.
type Global struct {
	Name    string
	Type    ValueType
	Mutable bool
	Init    []Instruction
}

// Memory is the module's single linear memory, sized in 64KiB pages.
type Memory struct {
	InitialPages uint32
	MaxPages     uint32 // 0 means unbounded
}

// Table holds function references, populated by Elements, so that a
// closure's code pointer (spec.md §4.7 make_closure/apply_closure) can
// be called indirectly via call_indirect.
type Table struct {
	InitialSize uint32
	MaxSize     uint32
}

// Element initializes a contiguous run of Table starting at Offset
// with the given function indices, in order.
type Element struct {
	Offset    uint32
	FuncIndex []uint32
}

// ExportKind distinguishes what an Export names.
type ExportKind int8

const (
	ExportFunc ExportKind = iota
	ExportMemory
	ExportGlobal
	ExportTable
)

// Export makes a module member visible to the host under Name.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// Module is the whole emitted unit: every declared function (the
// trampoline/inner pair per ir.Declaration plus the runtime
// primitives), the table used for indirect calls through closures,
// one linear memory used by the bump allocator, and the module's
// exports.
type Module struct {
	Types     []FuncType
	Functions []Function
	Globals   []Global
	Table     Table
	Elements  []Element
	Memory    Memory
	Exports   []Export
}

// FunctionIndex returns the index of the function named name within
// m.Functions, or -1 if there is none.
func (m *Module) FunctionIndex(name string) int {
	for i, f := range m.Functions {
		if f.Name == name {
			return i
		}
	}
	return -1
}

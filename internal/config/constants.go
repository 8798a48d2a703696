package config

// SourceFileExt is the canonical extension for Lucid source files.
const SourceFileExt = ".lucid"

// SourceFileExtensions are all extensions lucidc will treat as Lucid
// source when scanning a directory.
var SourceFileExtensions = []string{".lucid", ".lc"}

// Arithmetic builtins. Each is preseeded into the checker's
// environment as Int -> Int -> Int, except eq_int, which is
// Int -> Int -> Bool (BuiltinArity args curried, spec.md §4.5 Var
// case), and wired by internal/codegen to the
// runtime's `$inner`/wrapper primitive pair of the same name
// (spec.md §4.7 "Builtins: add, sub, div, eq_int").
const (
	AddFuncName   = "add"
	SubFuncName   = "sub"
	DivFuncName   = "div"
	EqIntFuncName = "eq_int"
)

// BuiltinArity is the argument count of every arithmetic builtin.
const BuiltinArity = 2

// Builtins lists the arithmetic builtin names in a stable order, for
// environment seeding and codegen registration.
var Builtins = []string{AddFuncName, SubFuncName, DivFuncName, EqIntFuncName}

// Preseeded ADT names and constructors (spec.md §6: "an initial
// TypeMap populated with Int, Bool, and any primitive ADTs the
// embedder wishes to preseed, e.g. a Maybe<a>").
const (
	MaybeTypeName    = "Maybe"
	NothingCtorName  = "Nothing"
	JustCtorName     = "Just"
	ListTypeName     = "List"
	NilCtorName      = "Nil"
	ConsCtorName     = "Cons"
)

// ProjectFileName is the name of the optional per-project
// configuration file that LoadProject decodes.
const ProjectFileName = "lucid.yaml"

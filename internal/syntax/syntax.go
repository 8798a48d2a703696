// Package syntax defines the surface syntax model that the core
// consumes: expressions, patterns, and ADT declarations. Lexing and
// parsing of concrete text into these values is an external concern
// per spec.md §1 — internal/lex and internal/parse provide a minimal
// front end purely so the CLI and end-to-end tests have something
// real to drive the core with.
package syntax

import (
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/types"
)

// Expression is the surface expression language accepted by the
// checker (spec.md §4.5).
type Expression interface {
	isExpression()
}

// Int is an integer literal.
type Int struct{ Value int32 }

func (Int) isExpression() {}

// Bool is a boolean literal.
type Bool struct{ Value bool }

func (Bool) isExpression() {}

// Var is a reference to a bound name.
type Var struct{ Name names.Name }

func (Var) isExpression() {}

// Lambda is a single-argument function literal.
type Lambda struct {
	Param names.Name
	Body  Expression
}

func (Lambda) isExpression() {}

// App is function application.
type App struct {
	Func Expression
	Arg  Expression
}

func (App) isExpression() {}

// Let is a let-binding. When Recursive is set it is "let rec": Value
// may refer to Name (spec.md §4.6 closure-conversion's forward
// reference).
type Let struct {
	Name      names.Name
	Recursive bool
	Value     Expression
	Body      Expression
}

func (Let) isExpression() {}

// If is a conditional.
type If struct {
	Cond, Then, Else Expression
}

func (If) isExpression() {}

// MatchCase is one arm of a Match.
type MatchCase struct {
	Pattern Pattern
	Body    Expression
}

// Match pattern-matches Scrutinee against Cases in order. Empty Cases
// is permitted (spec.md §4.5) and types as a fresh unknown.
type Match struct {
	Scrutinee Expression
	Cases     []MatchCase
}

func (Match) isExpression() {}

// Construction builds a value of the named ADT via one of its
// constructors.
type Construction struct {
	Type Name
	Ctor Name
	Args []Expression
}

func (Construction) isExpression() {}

// Name is a local alias to avoid importing names.Name at every call
// site in this file's exported struct literals while keeping the
// underlying type identical.
type Name = names.Name

// Pattern is the pattern language used by Match arms (spec.md §4.5).
type Pattern interface {
	isPattern()
}

// PatternVar binds the scrutinee (or a constructor field) to a name.
type PatternVar struct{ Name names.Name }

func (PatternVar) isPattern() {}

// PatternConstructor matches a specific ADT constructor and recurses
// into its fields.
type PatternConstructor struct {
	Type   names.Name
	Ctor   names.Name
	Fields []Pattern
}

func (PatternConstructor) isPattern() {}

// TypeDecl declares one ADT: its name, type parameters, and
// constructors. Constructor argument types may reference TyArgs.
type TypeDecl struct {
	Name         names.Name
	TyArgs       []names.TyVar
	Constructors []types.DataConstructor
}

// Program is the external input to the core: the ADT declarations in
// scope followed by the expression to infer and compile (spec.md §6).
type Program struct {
	Decls []TypeDecl
	Expr  Expression
}

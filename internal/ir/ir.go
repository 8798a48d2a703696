// Package ir defines the locally-nameless intermediate representation
// that internal/lower produces and internal/codegen consumes
// (spec.md §3 "IR").
package ir

import "github.com/lucidlang/lucid/internal/names"

// Expression is one node of the IR expression language.
type Expression interface {
	isExpression()
}

// Int is an integer literal.
type Int struct{ Value int32 }

func (Int) isExpression() {}

// Bool is a boolean literal.
type Bool struct{ Value bool }

func (Bool) isExpression() {}

// Var is a reference to a bound name: either a top-level declaration
// (Free) or a locally-nameless binder (Bound). A Bound name reaching
// code generation is a bug (spec.md §4.7 InternalBound). Lowering
// leaves Bound indices in place; internal/codegen replaces each of them
// by a GetLocal via Instantiate before emitting the enclosing body.
type Var struct{ Name names.LNName }

func (Var) isExpression() {}

// Application is function application of a (possibly partial)
// closure.
type Application struct {
	Func     Expression
	Argument Expression
}

func (Application) isExpression() {}

// Pack constructs an ADT value: a heap pack with the given
// constructor tag and field values.
type Pack struct {
	Tag    int
	Values []Expression
}

func (Pack) isExpression() {}

// Case is one arm of a Match: match on Tag, binding Binders positional
// locals (via GetLocal once instantiated) in Body.
type Case struct {
	Tag     int
	Binders int
	Body    Expression
}

// Match dispatches on a Pack's tag.
type Match struct {
	Scrutinee Expression
	Cases     []Case
}

func (Match) isExpression() {}

// If is a conditional.
type If struct {
	Cond, Then, Else Expression
}

func (If) isExpression() {}

// Let evaluates Expr, binds it to the outermost bound index in Body,
// and evaluates Body. Body is under a locally-nameless binder.
type Let struct {
	Expr Expression
	Body Expression
}

func (Let) isExpression() {}

// GetLocal reads a positional local variable established by a
// Declaration's arguments or a Let/Match binder, after instantiation.
type GetLocal struct{ Index int }

func (GetLocal) isExpression() {}

// Declaration is a top-level function produced by closure conversion:
// name, its positional arguments (captured free variables followed by
// the original binders), and a body under a locally-nameless binder
// whose indices refer to Arguments positionally, left-to-right
// (spec.md §3 "IR").
type Declaration struct {
	Name      names.Name
	Arguments []names.Name
	Body      Expression
}

// Arity is the number of arguments this declaration expects.
func (d Declaration) Arity() int { return len(d.Arguments) }

// Program is the lowered form of a whole compilation unit: a flat set
// of top-level declarations plus the residual expression that uses
// them (spec.md §1).
type Program struct {
	Declarations []Declaration
	Expr         Expression
}

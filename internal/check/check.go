// Package check implements the inference judgement of spec.md §4.5: a
// single stateful pass over syntax.Expression that owns the
// fresh-unknown supply and the mutable substitution, and produces the
// most general (principal) type of the expression.
package check

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/config"
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/syntax"
	"github.com/lucidlang/lucid/internal/types"
)

// CheckState is created per input program and discarded afterward
// (spec.md §5). It owns the fresh-unknown supply, the growing
// substitution, the scoped environment, and the ADT type map.
type CheckState struct {
	Fresh *types.FreshSupply
	Subst *types.Substitution
	Env   *types.Environment
	Types types.TypeMap
}

// NewCheckState builds a checker seeded with an initial TypeMap (e.g.
// Int, Bool, and any embedder-preseeded ADTs per spec.md §6).
func NewCheckState(seed types.TypeMap) *CheckState {
	tm := make(types.TypeMap, len(seed))
	for k, v := range seed {
		tm[k] = v
	}
	cs := &CheckState{
		Fresh: &types.FreshSupply{},
		Subst: types.NewSubstitution(),
		Env:   types.NewEnvironment(),
		Types: tm,
	}
	cs.seedBuiltins()
	return cs
}

// seedBuiltins installs the arithmetic and equality primitives every
// Lucid program may call (spec.md §9 Open Question: "a clean
// implementation provides no builtins beyond the arithmetic and
// equality primitives exposed in the runtime"). Each is permanently
// bound, never popped, so they remain visible for the whole program.
func (cs *CheckState) seedBuiltins() {
	binary := types.Mono(types.Function{
		Arg:    types.Int(),
		Result: types.Function{Arg: types.Int(), Result: types.Int()},
	})
	eqInt := types.Mono(types.Function{
		Arg:    types.Int(),
		Result: types.Function{Arg: types.Int(), Result: types.Bool()},
	})
	cs.Env.Bind(config.AddFuncName, binary)
	cs.Env.Bind(config.SubFuncName, binary)
	cs.Env.Bind(config.DivFuncName, binary)
	cs.Env.Bind(config.EqIntFuncName, eqInt)
}

// LoadDecls registers a program's ADT declarations into the type map
// ahead of inferring its expression.
func (cs *CheckState) LoadDecls(decls []syntax.TypeDecl) {
	for _, d := range decls {
		cs.Types[d.Name] = types.TypeInfo{TyArgs: d.TyArgs, Constructors: d.Constructors}
	}
}

// Binding is one name bound by a pattern match (spec.md §4.5
// inferPattern).
type Binding struct {
	Name names.Name
	Type types.Monotype
}

// Infer computes the type of e, threading the checker's fresh supply
// and substitution (spec.md §4.5).
func (cs *CheckState) Infer(e syntax.Expression) (types.Monotype, error) {
	switch expr := e.(type) {
	case syntax.Int:
		return types.Int(), nil

	case syntax.Bool:
		return types.Bool(), nil

	case syntax.Var:
		poly, ok := cs.Env.Lookup(expr.Name)
		if !ok {
			return nil, &UnknownVariableError{Name: expr.Name}
		}
		return types.Instantiate(cs.Fresh, poly), nil

	case syntax.Lambda:
		argTy := cs.Fresh.Fresh()
		var bodyTy types.Monotype
		err := cs.Env.BindName(expr.Param, types.Mono(argTy), func() error {
			t, err := cs.Infer(expr.Body)
			bodyTy = t
			return err
		})
		if err != nil {
			return nil, err
		}
		return types.Function{Arg: argTy, Result: bodyTy}, nil

	case syntax.App:
		// Inference order is left-to-right: function first, then
		// argument. Unification is symmetric but error messages depend
		// on this schedule (spec.md §4.5 note).
		funcTy, err := cs.Infer(expr.Func)
		if err != nil {
			return nil, err
		}
		argTy, err := cs.Infer(expr.Arg)
		if err != nil {
			return nil, err
		}
		resultTy := cs.Fresh.Fresh()
		if err := cs.Subst.Unify(funcTy, types.Function{Arg: argTy, Result: resultTy}); err != nil {
			return nil, err
		}
		return resultTy, nil

	case syntax.Let:
		return cs.inferLet(expr)

	case syntax.If:
		condTy, err := cs.Infer(expr.Cond)
		if err != nil {
			return nil, err
		}
		if err := cs.Subst.Unify(condTy, types.Bool()); err != nil {
			return nil, err
		}
		thenTy, err := cs.Infer(expr.Then)
		if err != nil {
			return nil, err
		}
		elseTy, err := cs.Infer(expr.Else)
		if err != nil {
			return nil, err
		}
		if err := cs.Subst.Unify(thenTy, elseTy); err != nil {
			return nil, err
		}
		return thenTy, nil

	case syntax.Match:
		return cs.inferMatch(expr)

	case syntax.Construction:
		return cs.inferConstruction(expr)

	default:
		return nil, fmt.Errorf("check: unhandled expression %T", e)
	}
}

func (cs *CheckState) inferLet(expr syntax.Let) (types.Monotype, error) {
	var valueTy types.Monotype

	if expr.Recursive {
		placeholder := cs.Fresh.Fresh()
		err := cs.Env.BindName(expr.Name, types.Mono(placeholder), func() error {
			t, err := cs.Infer(expr.Value)
			if err != nil {
				return err
			}
			if err := cs.Subst.Unify(placeholder, t); err != nil {
				return err
			}
			valueTy = placeholder
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		t, err := cs.Infer(expr.Value)
		if err != nil {
			return nil, err
		}
		valueTy = t
	}

	poly := types.Generalise(cs.Subst, cs.Env, valueTy)

	var bodyTy types.Monotype
	err := cs.Env.BindName(expr.Name, poly, func() error {
		t, err := cs.Infer(expr.Body)
		bodyTy = t
		return err
	})
	return bodyTy, err
}

func (cs *CheckState) inferMatch(expr syntax.Match) (types.Monotype, error) {
	scrutTy, err := cs.Infer(expr.Scrutinee)
	if err != nil {
		return nil, err
	}
	result := cs.Fresh.Fresh()

	for _, c := range expr.Cases {
		bindings, err := cs.InferPattern(c.Pattern, scrutTy)
		if err != nil {
			return nil, err
		}
		caseTy, err := cs.inferUnderBindings(bindings, c.Body)
		if err != nil {
			return nil, err
		}
		if err := cs.Subst.Unify(caseTy, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (cs *CheckState) inferConstruction(expr syntax.Construction) (types.Monotype, error) {
	info, ok := cs.Types[expr.Type]
	if !ok {
		return nil, &UnknownTypeError{Name: expr.Type}
	}
	ctor, ok := info.Constructor(expr.Ctor)
	if !ok {
		return nil, &UnknownConstructorError{Type: expr.Type, Ctor: expr.Ctor}
	}

	rename := make(map[names.TyVar]types.Monotype, len(info.TyArgs))
	freshArgs := make([]types.Monotype, len(info.TyArgs))
	for i, v := range info.TyArgs {
		f := cs.Fresh.Fresh()
		rename[v] = f
		freshArgs[i] = f
	}

	if len(expr.Args) != len(ctor.ArgTypes) {
		return nil, fmt.Errorf("check: constructor %s::%s expects %d argument(s), got %d",
			expr.Type, expr.Ctor, len(ctor.ArgTypes), len(expr.Args))
	}
	for i, argExpr := range expr.Args {
		declared := types.SubstituteVars(ctor.ArgTypes[i], rename)
		argTy, err := cs.Infer(argExpr)
		if err != nil {
			return nil, err
		}
		if err := cs.Subst.Unify(argTy, declared); err != nil {
			return nil, err
		}
	}

	return types.Constructor{Name: expr.Type, Arguments: freshArgs}, nil
}

// InferPattern returns the bindings p introduces when matched against
// a scrutinee of type expected (spec.md §4.5).
func (cs *CheckState) InferPattern(p syntax.Pattern, expected types.Monotype) ([]Binding, error) {
	switch pat := p.(type) {
	case syntax.PatternVar:
		return []Binding{{Name: pat.Name, Type: expected}}, nil

	case syntax.PatternConstructor:
		info, ok := cs.Types[pat.Type]
		if !ok {
			return nil, &UnknownTypeError{Name: pat.Type}
		}
		ctor, ok := info.Constructor(pat.Ctor)
		if !ok {
			return nil, &UnknownConstructorError{Type: pat.Type, Ctor: pat.Ctor}
		}

		rename := make(map[names.TyVar]types.Monotype, len(info.TyArgs))
		freshArgs := make([]types.Monotype, len(info.TyArgs))
		for i, v := range info.TyArgs {
			f := cs.Fresh.Fresh()
			rename[v] = f
			freshArgs[i] = f
		}
		if err := cs.Subst.Unify(expected, types.Constructor{Name: pat.Type, Arguments: freshArgs}); err != nil {
			return nil, err
		}

		if len(pat.Fields) != len(ctor.ArgTypes) {
			return nil, fmt.Errorf("check: pattern %s::%s expects %d field(s), got %d",
				pat.Type, pat.Ctor, len(ctor.ArgTypes), len(pat.Fields))
		}

		var out []Binding
		for i, fieldPat := range pat.Fields {
			declared := types.SubstituteVars(ctor.ArgTypes[i], rename)
			sub, err := cs.InferPattern(fieldPat, declared)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("check: unhandled pattern %T", p)
	}
}

// inferUnderBindings binds a list of pattern bindings monomorphically,
// left-to-right (later bindings shadow earlier ones at use-site, per
// spec.md §4.5), then infers body under all of them.
func (cs *CheckState) inferUnderBindings(bindings []Binding, body syntax.Expression) (types.Monotype, error) {
	if len(bindings) == 0 {
		return cs.Infer(body)
	}
	b := bindings[0]
	var result types.Monotype
	err := cs.Env.BindName(b.Name, types.Mono(b.Type), func() error {
		t, err := cs.inferUnderBindings(bindings[1:], body)
		result = t
		return err
	})
	return result, err
}

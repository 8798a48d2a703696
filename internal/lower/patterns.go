package lower

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/ir"
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/syntax"
)

// lowerMatch lowers a surface Match to a tag-dispatching ir.Match.
// Every top-level case pattern must be a PatternConstructor: this is
// the shape every worked example in spec.md §8 uses, and a top-level
// catch-all PatternVar case has no tag to dispatch on under
// ir.Match's model (see DESIGN.md).
func (l *Lowerer) lowerMatch(m syntax.Match, s scope) (ir.Expression, error) {
	scrutinee, err := l.lowerExpr(m.Scrutinee, s)
	if err != nil {
		return nil, err
	}

	cases := make([]ir.Case, 0, len(m.Cases))
	for _, c := range m.Cases {
		pc, ok := c.Pattern.(syntax.PatternConstructor)
		if !ok {
			return nil, fmt.Errorf("lower: top-level match arm must be a constructor pattern, got %T", c.Pattern)
		}
		tag, err := l.tagOf(pc.Type, pc.Ctor)
		if err != nil {
			return nil, err
		}
		inner := s.push(localFrame{names: fieldFrameNames(pc.Fields)})
		body, err := l.continueFields(pc.Fields, 0, len(inner.frames)-1, inner, func(final scope) (ir.Expression, error) {
			return l.lowerExpr(c.Body, final)
		})
		if err != nil {
			return nil, err
		}
		cases = append(cases, ir.Case{Tag: tag, Binders: len(pc.Fields), Body: body})
	}
	return ir.Match{Scrutinee: scrutinee, Cases: cases}, nil
}

// continueFields walks fields[idx:], whose binder frame sits at
// s.frames[baseDepth] (pushed once by the caller, at a depth that
// stays fixed across sibling fields even though destructuring an
// earlier nested-constructor sibling pushes further frames on top of
// it). A plain PatternVar field needs no further work — its name is
// already part of that frame. A nested PatternConstructor field needs
// its own tag dispatch: it is lowered as a further ir.Match with a
// single case, whose body continues with the remaining sibling fields
// and eventually reaches k, the case's right-hand side.
func (l *Lowerer) continueFields(fields []syntax.Pattern, idx, baseDepth int, s scope, k func(scope) (ir.Expression, error)) (ir.Expression, error) {
	if idx == len(fields) {
		return k(s)
	}
	switch f := fields[idx].(type) {
	case syntax.PatternVar, nil:
		return l.continueFields(fields, idx+1, baseDepth, s, k)

	case syntax.PatternConstructor:
		tag, err := l.tagOf(f.Type, f.Ctor)
		if err != nil {
			return nil, err
		}
		// Field idx lives in the frame at baseDepth; shift accounts
		// for every binder frame pushed since then (by earlier sibling
		// fields' own nested destructuring), the same way resolveVar
		// accumulates shift walking outward from the innermost frame.
		fieldRef := ir.Var{Name: names.Bound(frameShift(s, baseDepth) + idx)}

		nested := s.push(localFrame{names: fieldFrameNames(f.Fields)})
		caseBody, err := l.continueFields(f.Fields, 0, len(nested.frames)-1, nested, func(afterNested scope) (ir.Expression, error) {
			return l.continueFields(fields, idx+1, baseDepth, afterNested, k)
		})
		if err != nil {
			return nil, err
		}
		return ir.Match{
			Scrutinee: fieldRef,
			Cases:     []ir.Case{{Tag: tag, Binders: len(f.Fields), Body: caseBody}},
		}, nil

	default:
		return nil, fmt.Errorf("lower: unhandled pattern %T", f)
	}
}

// frameShift sums the binder counts of every localFrame strictly more
// recent than s.frames[baseDepth] — the same quantity resolveVar
// accumulates in shift while walking outward from the innermost frame
// looking for a name, except here the target frame's depth is already
// known rather than found by name.
func frameShift(s scope, baseDepth int) int {
	shift := 0
	for i := baseDepth + 1; i < len(s.frames); i++ {
		if lf, ok := s.frames[i].(localFrame); ok {
			shift += len(lf.names)
		}
	}
	return shift
}

// fieldFrameNames assigns each field position a name for the binder
// frame: the pattern's own name if it is a PatternVar, or an unused
// placeholder if it is a nested constructor pattern destructured
// further by continueFields.
func fieldFrameNames(fields []syntax.Pattern) []names.Name {
	out := make([]names.Name, len(fields))
	for i, f := range fields {
		if v, ok := f.(syntax.PatternVar); ok {
			out[i] = v.Name
		} else {
			out[i] = names.Name(fmt.Sprintf("$field%d", i))
		}
	}
	return out
}

package lower

import (
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/syntax"
)

// freeVars collects the names referenced in e that are not in bound,
// in first-occurrence order, without duplicates. bound grows locally
// as the traversal crosses binders within e itself; the caller's map
// is never mutated.
func freeVars(e syntax.Expression, bound map[names.Name]bool) []names.Name {
	var order []names.Name
	seen := map[names.Name]bool{}
	var walk func(e syntax.Expression, bound map[names.Name]bool)
	walk = func(e syntax.Expression, bound map[names.Name]bool) {
		switch expr := e.(type) {
		case syntax.Int, syntax.Bool:
			// no names

		case syntax.Var:
			if !bound[expr.Name] && !seen[expr.Name] {
				seen[expr.Name] = true
				order = append(order, expr.Name)
			}

		case syntax.Lambda:
			inner := extend(bound, expr.Param)
			walk(expr.Body, inner)

		case syntax.App:
			walk(expr.Func, bound)
			walk(expr.Arg, bound)

		case syntax.Let:
			walk(expr.Value, bound)
			inner := extend(bound, expr.Name)
			walk(expr.Body, inner)

		case syntax.If:
			walk(expr.Cond, bound)
			walk(expr.Then, bound)
			walk(expr.Else, bound)

		case syntax.Match:
			walk(expr.Scrutinee, bound)
			for _, c := range expr.Cases {
				inner := extendAll(bound, patternNames(c.Pattern))
				walk(c.Body, inner)
			}

		case syntax.Construction:
			for _, a := range expr.Args {
				walk(a, bound)
			}
		}
	}
	walk(e, bound)
	return order
}

// patternNames collects, left to right, every name a pattern binds.
func patternNames(p syntax.Pattern) []names.Name {
	switch pat := p.(type) {
	case syntax.PatternVar:
		return []names.Name{pat.Name}
	case syntax.PatternConstructor:
		var out []names.Name
		for _, f := range pat.Fields {
			out = append(out, patternNames(f)...)
		}
		return out
	default:
		return nil
	}
}

func extend(bound map[names.Name]bool, n names.Name) map[names.Name]bool {
	next := make(map[names.Name]bool, len(bound)+1)
	for k, v := range bound {
		next[k] = v
	}
	next[n] = true
	return next
}

func extendAll(bound map[names.Name]bool, ns []names.Name) map[names.Name]bool {
	next := make(map[names.Name]bool, len(bound)+len(ns))
	for k, v := range bound {
		next[k] = v
	}
	for _, n := range ns {
		next[n] = true
	}
	return next
}

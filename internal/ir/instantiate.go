package ir

import "github.com/lucidlang/lucid/internal/names"

// Instantiate performs a single-shot substitution of the outermost
// bound indices of body with replacements, lifting deeper indices as
// it crosses further binders (spec.md §9 "Locally-nameless IR").
//
// len(replacements) is the number of binders introduced at this
// level: 1 for a Let, the case's Binders count for a Match arm, or a
// Declaration's arity when instantiating its own parameters at
// code-generation time.
func Instantiate(body Expression, replacements []Expression) Expression {
	return instantiateAt(body, 0, replacements)
}

func instantiateAt(e Expression, depth int, replacements []Expression) Expression {
	switch v := e.(type) {
	case Int, Bool, GetLocal:
		return v

	case Var:
		if v.Name.IsBound() {
			idx := v.Name.Index()
			if idx < depth {
				// Refers to a binder introduced between the
				// substitution point and here; unaffected.
				return v
			}
			rel := idx - depth
			if rel < len(replacements) {
				return replacements[rel]
			}
			// Refers to an outer binder beyond this substitution;
			// shift down since `len(replacements)` binders were
			// consumed at this level.
			return Var{Name: names.Bound(idx - len(replacements))}
		}
		return v

	case Application:
		return Application{
			Func:     instantiateAt(v.Func, depth, replacements),
			Argument: instantiateAt(v.Argument, depth, replacements),
		}

	case Pack:
		values := make([]Expression, len(v.Values))
		for i, val := range v.Values {
			values[i] = instantiateAt(val, depth, replacements)
		}
		return Pack{Tag: v.Tag, Values: values}

	case Match:
		cases := make([]Case, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = Case{
				Tag:     c.Tag,
				Binders: c.Binders,
				Body:    instantiateAt(c.Body, depth+c.Binders, replacements),
			}
		}
		return Match{
			Scrutinee: instantiateAt(v.Scrutinee, depth, replacements),
			Cases:     cases,
		}

	case If:
		return If{
			Cond: instantiateAt(v.Cond, depth, replacements),
			Then: instantiateAt(v.Then, depth, replacements),
			Else: instantiateAt(v.Else, depth, replacements),
		}

	case Let:
		return Let{
			Expr: instantiateAt(v.Expr, depth, replacements),
			Body: instantiateAt(v.Body, depth+1, replacements),
		}

	default:
		return e
	}
}

package config

import (
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/types"
)

// PreseedTypeMap returns the initial TypeMap an embedder hands the
// checker: beyond the always-built-in Int/Bool, a Maybe<a> and List<a>
// (spec.md §6 "an initial TypeMap populated with Int, Bool, and any
// primitive ADTs the embedder wishes to preseed, e.g. a Maybe<a>"; the
// Maybe-match end-to-end scenario of spec.md §8 exercises exactly
// this).
func PreseedTypeMap() types.TypeMap {
	return types.TypeMap{
		names.Name(MaybeTypeName): types.TypeInfo{
			TyArgs: []names.TyVar{"a"},
			Constructors: []types.DataConstructor{
				{Name: names.Name(NothingCtorName)},
				{Name: names.Name(JustCtorName), ArgTypes: []types.Monotype{types.Var{Name: "a"}}},
			},
		},
		names.Name(ListTypeName): types.TypeInfo{
			TyArgs: []names.TyVar{"a"},
			Constructors: []types.DataConstructor{
				{Name: names.Name(NilCtorName)},
				{Name: names.Name(ConsCtorName), ArgTypes: []types.Monotype{
					types.Var{Name: "a"},
					types.Constructor{Name: names.Name(ListTypeName), Arguments: []types.Monotype{types.Var{Name: "a"}}},
				}},
			},
		},
	}
}

package lower

import "github.com/lucidlang/lucid/internal/names"

// frame is one level of the locally-nameless binder stack built while
// lowering an expression. localFrame introduces ordinary Bound
// indices (a lambda parameter, a let binding, or a match case's field
// binders); recFrame introduces no binder of its own but resolves a
// `let rec` name to a reapplication of its own hoisted declaration's
// captures (spec.md §4.6 "let rec establishes forward references").
type frame interface{ isFrame() }

type localFrame struct{ names []names.Name }

func (localFrame) isFrame() {}

type recFrame struct {
	name     names.Name
	hoisted  names.Name
	captures []names.Name
}

func (recFrame) isFrame() {}

// scope is an immutable snapshot of the binder stack, innermost last.
type scope struct{ frames []frame }

func (s scope) push(f frame) scope {
	next := make([]frame, len(s.frames)+1)
	copy(next, s.frames)
	next[len(s.frames)] = f
	return scope{frames: next}
}

// isLocal reports whether n resolves within this scope (as opposed to
// a genuine top-level/global reference).
func (s scope) isLocal(n names.Name) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		switch fr := s.frames[i].(type) {
		case localFrame:
			for _, nm := range fr.names {
				if nm == n {
					return true
				}
			}
		case recFrame:
			if fr.name == n {
				return true
			}
		}
	}
	return false
}

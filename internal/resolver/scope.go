package resolver

import "github.com/lhaig/wasmc/internal/est"

// frame is one entry of the explicit scope stack described in spec.md
// §9: a name→VarLocId mapping tagged with the function nesting depth it
// belongs to, plus the est.Scope node that owns the binding (so
// address-taken registration can mutate the right node). There are no
// parent pointers in the EST itself; the stack is the only link between
// nested scopes.
type frame struct {
	depth int
	names map[string]VarLocId
	scope est.Scope
}

// stack is the explicit scope stack Pass A and Pass B share while
// walking a single function (and its nested blocks/functions).
type stack struct {
	frames []*frame
}

func (s *stack) push(depth int, scope est.Scope) *frame {
	f := &frame{depth: depth, names: make(map[string]VarLocId), scope: scope}
	s.frames = append(s.frames, f)
	return f
}

func (s *stack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *stack) top() *frame {
	return s.frames[len(s.frames)-1]
}

// defineIn binds name in frame f. Function-scope hoisted declarations
// (var, function) must land in the function's own top frame even when
// Pass A observes them from within a nested block, so callers pass the
// target frame explicitly.
func (s *stack) defineIn(f *frame, name string, id VarLocId) {
	f.names[name] = id
}

// resolveResult carries the resolved VarLocId, whether it was found, and
// the depth of the frame that declares it; markCaptured uses that depth
// to find the functions between the use site and the declaring scope.
type resolveResult struct {
	id        VarLocId
	found     bool
	ownerDepth int
}

// resolve looks up name starting from the innermost frame. It returns
// the VarLocId and the depth of the function scope that declares it.
func (s *stack) resolve(name string) (resolveResult, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if id, ok := f.names[name]; ok {
			return resolveResult{id: id, found: true, ownerDepth: f.depth}, true
		}
	}
	return resolveResult{}, false
}

// functionScopeFrame returns the outermost frame belonging to the given
// depth — i.e. the function-scope frame itself, where hoisted names live
// even when the lookup happens from within a nested block — or nil if
// no frame has that depth.
func (s *stack) functionScopeFrame(depth int) *frame {
	for _, f := range s.frames {
		if f.depth == depth {
			return f
		}
	}
	return nil
}

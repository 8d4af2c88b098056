package resolver

import (
	"github.com/lhaig/wasmc/internal/diagnostic"
	"github.com/lhaig/wasmc/internal/est"
)

// Result is the resolver's externally useful output: the table of
// global bindings (depth 0), keyed by name, including both pre-bound
// imports and any implicitly-declared globals picked up in non-strict
// mode.
type Result struct {
	Globals map[string]VarLocId
}

// indexAllocator hands out the next free index at each depth. A single
// counter is shared by every scope at a given depth (rather than reset
// per function instance), which is what makes "every VarLocId produced
// at a given depth has a unique index" (spec.md §8.1) a global
// invariant instead of one that only holds within one function's own
// scopes.
type indexAllocator struct {
	next map[int]int
}

func newIndexAllocator() *indexAllocator {
	return &indexAllocator{next: make(map[int]int)}
}

func (a *indexAllocator) alloc(depth int) int {
	idx := a.next[depth]
	a.next[depth] = idx + 1
	return idx
}

// r carries the state threaded through the whole resolution pass.
type r struct {
	diags    *diagnostic.Diagnostics
	strict   bool
	alloc    *indexAllocator
	stk      stack
	funcs    []est.Function // funcs[d] is the active function node at depth d; nil at d=0
	globals  map[string]VarLocId
}

// Resolve runs Pass A (declaration collection) and Pass B (identifier
// resolution, address-taken/capture detection) over the whole program.
// predefined supplies globals already bound by parse_imports; strict
// selects whether an unresolved identifier is an UndeclaredGlobal error
// (true) or an implicitly-declared global (false).
func Resolve(prog *est.Program, predefined map[string]VarLocId, strict bool, diags *diagnostic.Diagnostics) *Result {
	res := &r{
		diags:  diags,
		strict: strict,
		alloc:  newIndexAllocator(),
		funcs:  []est.Function{nil},
		globals: make(map[string]VarLocId),
	}
	for name, id := range predefined {
		res.globals[name] = id
		if id.Index >= res.alloc.next[0] {
			res.alloc.next[0] = id.Index + 1
		}
	}

	global := res.stk.push(0, prog)
	for name, id := range res.globals {
		res.stk.defineIn(global, name, id)
	}

	res.hoist(prog.Body, 0, global)
	for _, stmt := range prog.Body {
		res.stmt(stmt, 0)
	}

	return &Result{Globals: res.globals}
}

// hoist implements Pass A: it walks statement-level nodes without
// entering nested function bodies, binding var/function/import names
// into target (the enclosing function's own frame).
func (res *r) hoist(nodes []est.Node, depth int, target *frame) {
	for _, n := range nodes {
		res.hoistOne(n, depth, target)
	}
}

func (res *r) hoistOne(n est.Node, depth int, target *frame) {
	switch node := n.(type) {
	case *est.VariableDeclaration:
		if node.Kind != est.VarVar {
			return
		}
		for _, d := range node.Declarations {
			res.hoistName(d.ID.Name, depth, target)
		}
	case *est.FunctionDeclaration:
		res.hoistName(node.Name, depth, target)
		if id, ok := target.names[node.Name]; ok {
			node.Loc = est.ParamLoc{Depth: id.Depth, Index: id.Index}
		}
	case *est.ImportDeclaration:
		for _, spec := range node.Specifiers {
			res.hoistName(spec.Local, depth, target)
		}
	case *est.Block:
		res.hoist(node.Body, depth, target)
	case *est.If:
		res.hoistOne(node.Consequent, depth, target)
		if node.Alternate != nil {
			res.hoistOne(node.Alternate, depth, target)
		}
	case *est.While:
		res.hoistOne(node.Body, depth, target)
	case *est.Labeled:
		res.hoistOne(node.Body, depth, target)
	case *est.With:
		res.hoistOne(node.Body, depth, target)
	}
}

func (res *r) hoistName(name string, depth int, target *frame) {
	if _, ok := target.names[name]; ok {
		return
	}
	id := VarLocId{Depth: depth, Index: res.alloc.alloc(depth)}
	res.stk.defineIn(target, name, id)
	if depth == 0 {
		res.globals[name] = id
	}
}

// stmt implements the combined block-scoping (Pass A for let/const) and
// identifier resolution (Pass B) walk over a single statement.
func (res *r) stmt(n est.Node, depth int) {
	switch node := n.(type) {
	case *est.Block:
		f := res.stk.push(depth, node)
		for _, s := range node.Body {
			res.stmt(s, depth)
		}
		res.stk.pop()
		_ = f

	case *est.VariableDeclaration:
		for _, d := range node.Declarations {
			if d.Init != nil {
				res.expr(d.Init, depth)
			}
			res.bindDeclarator(node.Kind, d, depth)
		}

	case *est.FunctionDeclaration:
		res.resolveFunctionLike(node, depth)

	case *est.If:
		res.expr(node.Test, depth)
		res.stmt(node.Consequent, depth)
		if node.Alternate != nil {
			res.stmt(node.Alternate, depth)
		}

	case *est.While:
		res.expr(node.Test, depth)
		res.stmt(node.Body, depth)

	case *est.Return:
		if node.Argument != nil {
			res.expr(node.Argument, depth)
		}

	case *est.Break, *est.Continue, *est.Empty, *est.Debugger, *est.Directive:
		// no bindings, no expressions

	case *est.Labeled:
		res.stmt(node.Body, depth)

	case *est.With:
		res.expr(node.Object, depth)
		res.stmt(node.Body, depth)

	case *est.ExpressionStatement:
		res.expr(node.Expression, depth)

	case *est.ImportDeclaration:
		for _, spec := range node.Specifiers {
			res.bindHoisted(spec.Local, depth)
		}
	}
}

// bindDeclarator sets the PreVar annotation for a let/const/var
// declarator. var names were already allocated during hoist(); let/const
// get a fresh binding in the innermost (current) frame, enforcing
// DuplicateBinding.
func (res *r) bindDeclarator(kind est.VariableKind, d *est.VariableDeclarator, depth int) {
	if kind == est.VarVar {
		id := res.bindHoisted(d.ID.Name, depth)
		d.ID.PreVar = est.PreVar{Kind: est.PreVarDirect, Depth: id.Depth, Index: id.Index}
		return
	}

	top := res.stk.top()
	if _, exists := top.names[d.ID.Name]; exists {
		res.diags.Errorf(d.Loc(), "duplicate binding: %q already declared in this block", d.ID.Name)
		return
	}
	id := VarLocId{Depth: depth, Index: res.alloc.alloc(depth)}
	res.stk.defineIn(top, d.ID.Name, id)
	d.ID.PreVar = est.PreVar{Kind: est.PreVarDirect, Depth: id.Depth, Index: id.Index}
}

// bindHoisted looks up a name already allocated by hoist() and returns
// its id, which bindDeclarator uses to mark a var declarator's
// identifier as Direct. Used for var declarators and import specifiers,
// both of which are pre-allocated.
func (res *r) bindHoisted(name string, depth int) VarLocId {
	f := res.stk.functionScopeFrame(depth)
	id, ok := f.names[name]
	if !ok {
		// Should not happen: hoist() always pre-declares these names.
		id = VarLocId{Depth: depth, Index: res.alloc.alloc(depth)}
		res.stk.defineIn(f, name, id)
	}
	return id
}

// resolveFunctionLike resolves one function-like node's own parameter
// and body scope at depth+1, recording CapturedVars on the node itself
// as captures are discovered.
func (res *r) resolveFunctionLike(fn est.Function, outerDepth int) {
	depth := outerDepth + 1
	res.funcs = append(res.funcs, fn)

	funcFrame := res.stk.push(depth, fn.FuncBody())
	params := fn.Parameters()
	for i, p := range params {
		id := VarLocId{Depth: depth, Index: res.alloc.alloc(depth)}
		res.stk.defineIn(funcFrame, p.Name, id)
		params[i].Loc = est.ParamLoc{Depth: id.Depth, Index: id.Index}
	}

	res.hoist(fn.FuncBody().Body, depth, funcFrame)
	for _, s := range fn.FuncBody().Body {
		res.stmt(s, depth)
	}

	res.stk.pop()
	res.funcs = res.funcs[:len(res.funcs)-1]
}

// expr implements Pass B over expression nodes.
func (res *r) expr(n est.Node, depth int) {
	switch node := n.(type) {
	case *est.Identifier:
		res.resolveIdentUse(node, depth)

	case *est.Literal:
		// no bindings

	case *est.Unary:
		res.expr(node.Argument, depth)

	case *est.Update:
		res.expr(node.Argument, depth)

	case *est.Binary:
		res.expr(node.Left, depth)
		res.expr(node.Right, depth)

	case *est.Logical:
		res.expr(node.Left, depth)
		res.expr(node.Right, depth)

	case *est.Assignment:
		res.expr(node.Value, depth)
		if ident, ok := node.Target.(*est.Identifier); ok {
			res.resolveIdentUse(ident, depth)
		} else {
			res.diags.Errorf(node.Loc(), "invalid assignment target")
		}

	case *est.Conditional:
		res.expr(node.Test, depth)
		res.expr(node.Consequent, depth)
		res.expr(node.Alternate, depth)

	case *est.Call:
		res.expr(node.Callee, depth)
		for _, a := range node.Arguments {
			res.expr(a, depth)
		}

	case *est.FunctionExpression:
		res.resolveFunctionLike(node, depth)

	case *est.ArrowFunctionExpression:
		res.resolveFunctionLike(node, depth)
	}
}

// resolveIdentUse resolves one identifier use, marking it as a Target
// and propagating address-taken/captured bookkeeping when the binding
// belongs to an outer function.
func (res *r) resolveIdentUse(ident *est.Identifier, depth int) {
	result, ok := res.stk.resolve(ident.Name)
	if !ok {
		if res.strict {
			res.diags.Errorf(ident.Loc(), "undeclared identifier %q", ident.Name)
			return
		}
		id := VarLocId{Depth: 0, Index: res.alloc.alloc(0)}
		global := res.stk.frames[0]
		res.stk.defineIn(global, ident.Name, id)
		res.globals[ident.Name] = id
		result = resolveResult{id: id, found: true, ownerDepth: 0}
	}

	ident.PreVar = est.PreVar{Kind: est.PreVarTarget, Depth: result.id.Depth, Index: result.id.Index}

	if result.ownerDepth < depth {
		res.markCaptured(ident.Name, result.id, result.ownerDepth, depth)
	}
}

// markCaptured records the address-taken bit on the declaring scope and
// adds the variable to every function's captured_vars from the
// declaring function (exclusive) down to the using function (inclusive).
//
// A global (depth 0) binding is exempt from both: module-level storage
// already persists across every call and is reachable directly by any
// function via a plain global reference, so there is nothing for a
// closure record to carry and no heap cell needed to outlive a single
// activation. Only bindings owned by an enclosing function's own local
// scope need either.
func (res *r) markCaptured(name string, id VarLocId, ownerDepth, useDepth int) {
	if ownerDepth == 0 {
		return
	}
	for i := len(res.stk.frames) - 1; i >= 0; i-- {
		f := res.stk.frames[i]
		if f.depth == ownerDepth {
			if _, ok := f.names[name]; ok {
				f.scope.AddAddressTaken(id.Index)
				break
			}
		}
	}
	for d := ownerDepth + 1; d <= useDepth; d++ {
		if d < len(res.funcs) && res.funcs[d] != nil {
			res.funcs[d].AddCapture(id.Depth, id.Index)
		}
	}
}

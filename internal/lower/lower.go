// Package lower translates a resolved Extended-Spec Tree into the typed
// IR the optimizer and codegen consume (spec.md §4.6).
package lower

import (
	"github.com/lhaig/wasmc/internal/diagnostic"
	"github.com/lhaig/wasmc/internal/est"
	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

// loopCtx is the active loop context break/continue resolve against.
type loopCtx struct {
	breakLabel    string
	continueLabel string
	userLabel     string
}

// namedLabel is an active non-loop labeled statement's break target.
type namedLabel struct {
	user      string
	wasmLabel string
}

// lowerer carries the state threaded through one program's lowering.
// It has no parent-pointer tree to walk, mirroring the resolver's own
// explicit-stack design: loopStack and labelStack are pushed and popped
// around the statement they govern.
type lowerer struct {
	diags       *diagnostic.Diagnostics
	importIndex map[resolver.VarLocId]int

	// declFuncIdx maps a hoisted FunctionDeclaration's own binding to
	// the ir.Func index its body was lowered into, so a Call whose
	// callee is that binding can emit DirectAppl instead of indirect
	// Appl through a function value.
	declFuncIdx map[resolver.VarLocId]int

	funcs []*ir.Func

	currentDepth int
	tempCounter  map[int]int

	loopStack  []loopCtx
	labelStack []namedLabel
	labelSeq   int
}

// Lower translates prog into a complete IR program. imports is the
// already-resolved import table (built by the compiler's parse_imports
// from the import spec syntax); importIndex maps each import binding's
// VarLocId onto its index in that table, so references to it lower to
// ImportFn instead of VarName.
func Lower(prog *est.Program, imports []*ir.Import, importIndex map[resolver.VarLocId]int, diags *diagnostic.Diagnostics) *ir.Program {
	l := &lowerer{
		diags:       diags,
		importIndex: importIndex,
		declFuncIdx: make(map[resolver.VarLocId]int),
		tempCounter: make(map[int]int),
	}

	l.reserveFuncDecls(prog.Body, 0)
	content := l.lowerStmts(prog.Body)

	entry := &ir.Func{
		Name: "main",
		Body: &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: content}},
	}
	entryIdx := len(l.funcs)
	l.funcs = append(l.funcs, entry)

	return &ir.Program{Funcs: l.funcs, Imports: imports, EntryFunc: entryIdx}
}

// newTemp allocates a synthetic local at depth, used for values that
// must be observed only once (postfix ++/--, && / || short circuit).
// Synthetic temps use negative indices: the resolver's allocator only
// ever produces indices >= 0, so this range can never collide with a
// real binding.
func (l *lowerer) newTemp(depth int) resolver.VarLocId {
	l.tempCounter[depth]++
	return resolver.VarLocId{Depth: depth, Index: -l.tempCounter[depth]}
}

// reserveFuncDecls finds every FunctionDeclaration directly in scope of
// the given depth (walking into nested blocks and control-flow bodies
// but not into nested function bodies, matching the resolver's own
// hoist() traversal) and lowers each one up front, so later statements
// calling it can resolve a DirectAppl regardless of textual order.
func (l *lowerer) reserveFuncDecls(nodes []est.Node, depth int) {
	for _, n := range nodes {
		l.reserveFuncDeclsOne(n, depth)
	}
}

func (l *lowerer) reserveFuncDeclsOne(n est.Node, depth int) {
	switch node := n.(type) {
	case *est.FunctionDeclaration:
		idx := l.lowerFunctionLike(node, node.Name, depth+1)
		id := resolver.VarLocId{Depth: node.Loc.Depth, Index: node.Loc.Index}
		l.declFuncIdx[id] = idx
	case *est.Block:
		l.reserveFuncDecls(node.Body, depth)
	case *est.If:
		l.reserveFuncDeclsOne(node.Consequent, depth)
		if node.Alternate != nil {
			l.reserveFuncDeclsOne(node.Alternate, depth)
		}
	case *est.While:
		l.reserveFuncDeclsOne(node.Body, depth)
	case *est.Labeled:
		l.reserveFuncDeclsOne(node.Body, depth)
	case *est.With:
		l.reserveFuncDeclsOne(node.Body, depth)
	}
}

// lowerFunctionLike lowers one function-like node's own body into a new
// ir.Func appended to l.funcs, and returns its index. ownDepth is the
// function's own scope depth (outerDepth+1), matching the resolver's
// depth assignment for the same node.
func (l *lowerer) lowerFunctionLike(fn est.Function, name string, ownDepth int) int {
	caps := fn.Captures()
	cells := make([]resolver.VarLocId, len(caps))
	for i, c := range caps {
		cells[i] = resolver.VarLocId{Depth: c[0], Index: c[1]}
	}
	fnObj := &ir.Func{Name: name, Depth: ownDepth, NumCaptured: len(caps), Captures: cells}
	idx := len(l.funcs)
	l.funcs = append(l.funcs, fnObj)

	for _, p := range fn.Parameters() {
		fnObj.Params = append(fnObj.Params, resolver.VarLocId{Depth: p.Loc.Depth, Index: p.Loc.Index})
	}

	savedDepth, savedLoops, savedLabels := l.currentDepth, l.loopStack, l.labelStack
	l.currentDepth, l.loopStack, l.labelStack = ownDepth, nil, nil

	l.reserveFuncDecls(fn.FuncBody().Body, ownDepth)
	content := l.lowerStmts(fn.FuncBody().Body)
	fnObj.Body = &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: content}}

	l.currentDepth, l.loopStack, l.labelStack = savedDepth, savedLoops, savedLabels
	return idx
}

// makePrimFunc builds the PrimFunc value referencing a function already
// lowered at idx, constructing its closure record from fn's captured
// variables (spec.md §4.6/§4.8).
func (l *lowerer) makePrimFunc(fn est.Function, idx int) *ir.Expr {
	cells := l.funcs[idx].Captures
	var closure *ir.Expr
	if len(cells) > 0 {
		closure = &ir.Expr{Type: ir.Some(ir.TStructRef), Kind: ir.MakeClosure{FuncIdx: idx, Cells: cells}}
	}
	return &ir.Expr{Type: ir.Some(ir.TFunc), Kind: ir.PrimFunc{FuncIdxs: []int{idx}, Closure: closure}}
}

func varloc(ident *est.Identifier) resolver.VarLocId {
	return resolver.VarLocId{Depth: ident.PreVar.Depth, Index: ident.PreVar.Index}
}

func primAppl(typ ir.VarType, inst ir.PrimInst, args ...*ir.Expr) *ir.Expr {
	return &ir.Expr{Type: ir.Some(typ), Kind: ir.PrimAppl{Inst: inst, Args: args}}
}

func undefinedExpr() *ir.Expr {
	return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.PrimUndefined{}}
}

func numberLit(v float64) *ir.Expr {
	return &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.PrimNumber{Value: v}}
}

package lower

import (
	"fmt"

	"github.com/lhaig/wasmc/internal/est"
	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

// lowerStmts lowers a statement list to one IR expression per statement,
// suitable as Sequence.Content.
func (l *lowerer) lowerStmts(nodes []est.Node) []*ir.Expr {
	out := make([]*ir.Expr, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, l.lowerStmt(n))
	}
	return out
}

// lowerStmt lowers a single statement-level node to one IR expression.
func (l *lowerer) lowerStmt(n est.Node) *ir.Expr {
	switch node := n.(type) {
	case *est.Block:
		return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: l.lowerStmts(node.Body)}}

	case *est.VariableDeclaration:
		return l.lowerVariableDeclaration(node)

	case *est.FunctionDeclaration:
		id := resolver.VarLocId{Depth: node.Loc.Depth, Index: node.Loc.Index}
		idx, ok := l.declFuncIdx[id]
		if !ok {
			idx = l.lowerFunctionLike(node, node.Name, l.currentDepth+1)
			l.declFuncIdx[id] = idx
		}
		return &ir.Expr{Type: ir.Some(ir.TFunc), Kind: ir.Declaration{Local: id, Expr: l.makePrimFunc(node, idx)}}

	case *est.If:
		cond := primAppl(ir.TBoolean, ir.PrimNot, primAppl(ir.TBoolean, ir.PrimNot, l.lowerExpr(node.Test)))
		trueBranch := l.lowerStmt(node.Consequent)
		falseBranch := undefinedExpr()
		if node.Alternate != nil {
			falseBranch = l.lowerStmt(node.Alternate)
		}
		return &ir.Expr{Type: ir.Lub(trueBranch.Type, falseBranch.Type), Kind: ir.Conditional{Cond: cond, True: trueBranch, False: falseBranch}}

	case *est.While:
		return l.lowerWhile(node, "")

	case *est.Return:
		var val *ir.Expr
		if node.Argument != nil {
			val = l.lowerExpr(node.Argument)
		} else {
			val = undefinedExpr()
		}
		return &ir.Expr{Kind: ir.Return{Expr: val}}

	case *est.Break:
		lbl, ok := l.resolveBreakLabel(node.Label)
		if !ok {
			l.diags.Errorf(node.Loc(), "break outside of a loop or labeled statement")
			return &ir.Expr{Kind: ir.Trap{Reason: "unresolved break target"}}
		}
		return &ir.Expr{Kind: ir.Break{Label: lbl}}

	case *est.Continue:
		lbl, ok := l.resolveContinueLabel(node.Label)
		if !ok {
			l.diags.Errorf(node.Loc(), "continue outside of a loop")
			return &ir.Expr{Kind: ir.Trap{Reason: "unresolved continue target"}}
		}
		return &ir.Expr{Kind: ir.Continue{Label: lbl}}

	case *est.Labeled:
		return l.lowerLabeled(node)

	case *est.With:
		return l.lowerWith(node)

	case *est.Debugger, *est.Empty, *est.Directive, *est.ImportDeclaration:
		return undefinedExpr()

	case *est.ExpressionStatement:
		return l.lowerExpr(node.Expression)

	default:
		l.diags.Errorf(n.Loc(), "unsupported statement node %T", n)
		return &ir.Expr{Kind: ir.Trap{Reason: fmt.Sprintf("unsupported node %T", n)}}
	}
}

func (l *lowerer) lowerVariableDeclaration(node *est.VariableDeclaration) *ir.Expr {
	decls := make([]*ir.Expr, 0, len(node.Declarations))
	for _, d := range node.Declarations {
		id := resolver.VarLocId{Depth: d.ID.PreVar.Depth, Index: d.ID.PreVar.Index}
		init := undefinedExpr()
		if d.Init != nil {
			init = l.lowerExpr(d.Init)
		}
		decls = append(decls, &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Declaration{Local: id, Expr: init}})
	}
	if len(decls) == 1 {
		return decls[0]
	}
	return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: decls}}
}

// lowerWhile lowers a while loop to a NamedBlock (break target) wrapping
// a Loop (continue target): a guard at the top of the loop body negates
// the test and breaks out once it's false, matching how Wasm itself
// only offers br-to-top-of-loop, not a native condition.
func (l *lowerer) lowerWhile(w *est.While, userLabel string) *ir.Expr {
	n := l.labelSeq
	l.labelSeq++
	breakLbl := fmt.Sprintf("while.break.%d", n)
	contLbl := fmt.Sprintf("while.cont.%d", n)

	l.loopStack = append(l.loopStack, loopCtx{breakLabel: breakLbl, continueLabel: contLbl, userLabel: userLabel})
	test := l.lowerExpr(w.Test)
	guard := &ir.Expr{
		Type: ir.Some(ir.TUndefined),
		Kind: ir.Conditional{
			Cond:  primAppl(ir.TBoolean, ir.PrimNot, test),
			True:  &ir.Expr{Kind: ir.Break{Label: breakLbl}},
			False: undefinedExpr(),
		},
	}
	body := l.lowerStmt(w.Body)
	l.loopStack = l.loopStack[:len(l.loopStack)-1]

	loopBody := &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: []*ir.Expr{guard, body}}}
	loop := &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Loop{Label: contLbl, Body: loopBody}}
	return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.NamedBlock{Label: breakLbl, Body: loop}}
}

// lowerLabeled handles `label: while (...) ...` by attaching the user
// label directly to that loop's break/continue targets, and any other
// labeled statement by wrapping it in a NamedBlock only break can target.
func (l *lowerer) lowerLabeled(n *est.Labeled) *ir.Expr {
	if w, ok := n.Body.(*est.While); ok {
		return l.lowerWhile(w, n.Label)
	}

	lbl := fmt.Sprintf("label.%s.%d", n.Label, l.labelSeq)
	l.labelSeq++
	l.labelStack = append(l.labelStack, namedLabel{user: n.Label, wasmLabel: lbl})
	body := l.lowerStmt(n.Body)
	l.labelStack = l.labelStack[:len(l.labelStack)-1]
	return &ir.Expr{Type: body.Type, Kind: ir.NamedBlock{Label: lbl, Body: body}}
}

// lowerWith lowers a with-statement into the structured control-flow
// construct spec.md §4.6 calls for: a NamedBlock wrapping a Sequence
// that evaluates the object expression (for its side effects, since
// legacy with-statements in source this compiler targets are written
// for the evaluation, not the scope injection) ahead of the body. The
// wrapped body still resolves its own identifiers against the ordinary
// lexical scope the resolver built -- there is no dynamic
// property-to-binding injection, since every runtime value is an opaque
// f64 with no property table to read scope names out of (see
// SPEC_FULL.md's scope cut on this).
func (l *lowerer) lowerWith(w *est.With) *ir.Expr {
	n := l.labelSeq
	l.labelSeq++
	lbl := fmt.Sprintf("with.%d", n)

	obj := l.lowerExpr(w.Object)
	body := l.lowerStmt(w.Body)
	seq := &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: []*ir.Expr{obj, body}}}
	return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.NamedBlock{Label: lbl, Body: seq}}
}

func (l *lowerer) resolveBreakLabel(label string) (string, bool) {
	if label == "" {
		if len(l.loopStack) == 0 {
			return "", false
		}
		return l.loopStack[len(l.loopStack)-1].breakLabel, true
	}
	for i := len(l.loopStack) - 1; i >= 0; i-- {
		if l.loopStack[i].userLabel == label {
			return l.loopStack[i].breakLabel, true
		}
	}
	for i := len(l.labelStack) - 1; i >= 0; i-- {
		if l.labelStack[i].user == label {
			return l.labelStack[i].wasmLabel, true
		}
	}
	return "", false
}

func (l *lowerer) resolveContinueLabel(label string) (string, bool) {
	if label == "" {
		if len(l.loopStack) == 0 {
			return "", false
		}
		return l.loopStack[len(l.loopStack)-1].continueLabel, true
	}
	for i := len(l.loopStack) - 1; i >= 0; i-- {
		if l.loopStack[i].userLabel == label {
			return l.loopStack[i].continueLabel, true
		}
	}
	return "", false
}

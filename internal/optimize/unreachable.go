// Package optimize implements the IR-level optimization passes run
// between lowering and codegen (spec.md §5).
package optimize

import "github.com/lhaig/wasmc/internal/ir"

// Unreachable removes unreachable code from every function in prog by
// propagating the bottom type (Expr.Type == nil) outward: once a
// sub-expression cannot yield a value, everything sequenced after it in
// the same Sequence is dead and is dropped. It only acts within a single
// function — it never looks across DirectAppl/Appl call edges — and
// only inspects Expr.Type, not any later-assigned concrete type detail.
// It returns whether anything in prog changed.
func Unreachable(prog *ir.Program) bool {
	changed := false
	for _, fn := range prog.Funcs {
		changed = optimizeExpr(fn.Body) || changed
	}
	return changed
}

// optimizeExpr mirrors the shape of its source node: it recurses into
// every child Expr first, then (for Declaration and Sequence) updates
// its own Type from what the recursion found, exactly as the propagation
// requires.
func optimizeExpr(expr *ir.Expr) bool {
	switch kind := expr.Kind.(type) {
	case ir.PrimFunc:
		if kind.Closure != nil {
			return optimizeExpr(kind.Closure)
		}
		return false

	case ir.MakeClosure:
		return false

	case ir.TypeCast:
		changed := optimizeExpr(kind.Test)
		changed = optimizeExpr(kind.True) || changed
		changed = optimizeExpr(kind.False) || changed
		return changed

	case ir.PrimAppl:
		changed := false
		for _, a := range kind.Args {
			changed = optimizeExpr(a) || changed
		}
		return changed

	case ir.Appl:
		changed := optimizeExpr(kind.Callee)
		for _, a := range kind.Args {
			changed = optimizeExpr(a) || changed
		}
		return changed

	case ir.DirectAppl:
		changed := false
		for _, a := range kind.Args {
			changed = optimizeExpr(a) || changed
		}
		return changed

	case ir.Conditional:
		changed := optimizeExpr(kind.Cond)
		changed = optimizeExpr(kind.True) || changed
		changed = optimizeExpr(kind.False) || changed
		return changed

	case ir.Declaration:
		changed := optimizeExpr(kind.Expr)
		if t := kind.Expr.Type; (expr.Type == nil) != (t == nil) || (t != nil && *expr.Type != *t) {
			changed = true
		}
		expr.Type = kind.Expr.Type
		return changed

	case ir.Assign:
		return optimizeExpr(kind.Expr)

	case ir.Return:
		return optimizeExpr(kind.Expr)

	case ir.Sequence:
		changed := false
		newContent := make([]*ir.Expr, 0, len(kind.Content))
		for _, e := range kind.Content {
			changed = optimizeExpr(e) || changed
			newContent = append(newContent, e)
			if e.Type == nil {
				break
			}
		}
		changed = changed || len(newContent) != len(kind.Content)
		var t *ir.VarType
		if len(newContent) > 0 {
			t = newContent[len(newContent)-1].Type
		}
		if (expr.Type == nil) != (t == nil) || (t != nil && *expr.Type != *t) {
			changed = true
		}
		expr.Type = t
		expr.Kind = ir.Sequence{Content: newContent}
		return changed

	case ir.Loop:
		return optimizeExpr(kind.Body)

	case ir.NamedBlock:
		return optimizeExpr(kind.Body)

	default:
		return false
	}
}

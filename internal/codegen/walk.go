package codegen

import "github.com/lhaig/wasmc/internal/ir"

// walkExpr visits e and every expression reachable from it, depth
// first. It is used for whole-program passes that need to see every
// node without caring about control flow: string-literal collection,
// global discovery (declareGlobals) and function-table construction
// (buildTable).
func walkExpr(e *ir.Expr, visit func(*ir.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch k := e.Kind.(type) {
	case ir.PrimFunc:
		walkExpr(k.Closure, visit)
	case ir.TypeCast:
		walkExpr(k.Test, visit)
		walkExpr(k.True, visit)
		walkExpr(k.False, visit)
	case ir.PrimAppl:
		for _, a := range k.Args {
			walkExpr(a, visit)
		}
	case ir.Appl:
		walkExpr(k.Callee, visit)
		for _, a := range k.Args {
			walkExpr(a, visit)
		}
	case ir.DirectAppl:
		for _, a := range k.Args {
			walkExpr(a, visit)
		}
	case ir.Conditional:
		walkExpr(k.Cond, visit)
		walkExpr(k.True, visit)
		walkExpr(k.False, visit)
	case ir.Declaration:
		walkExpr(k.Expr, visit)
	case ir.Assign:
		walkExpr(k.Expr, visit)
	case ir.Return:
		walkExpr(k.Expr, visit)
	case ir.Sequence:
		for _, c := range k.Content {
			walkExpr(c, visit)
		}
	case ir.Loop:
		walkExpr(k.Body, visit)
	case ir.NamedBlock:
		walkExpr(k.Body, visit)
	}
}

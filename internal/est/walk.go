package est

// CollectAddressTaken walks the whole resolved tree and returns, for
// each scope depth, the set of variable indices the resolver marked
// address-taken at that depth: the bindings codegen must materialize
// as heap cells rather than plain locals, because some nested closure
// reads or writes them after their declaring call has returned.
//
// A Program's own AddressTaken set is included for completeness, but in
// practice it is always empty: the resolver never marks a depth-0
// (global) binding address-taken, since module-level storage already
// outlives every call and needs no cell indirection to be shared with a
// nested function.
func CollectAddressTaken(prog *Program) map[int]map[int]bool {
	out := make(map[int]map[int]bool)
	mark := func(depth int, indices []int) {
		if len(indices) == 0 {
			return
		}
		set := out[depth]
		if set == nil {
			set = make(map[int]bool)
			out[depth] = set
		}
		for _, i := range indices {
			set[i] = true
		}
	}

	mark(0, prog.AddressTakenVars())
	walkStmts(prog.Body, 0, mark)
	return out
}

func walkStmts(nodes []Node, depth int, mark func(int, []int)) {
	for _, n := range nodes {
		walkStmt(n, depth, mark)
	}
}

func walkStmt(n Node, depth int, mark func(int, []int)) {
	switch node := n.(type) {
	case *Block:
		mark(depth, node.AddressTakenVars())
		walkStmts(node.Body, depth, mark)
	case *If:
		walkExprForFuncs(node.Test, depth, mark)
		walkStmt(node.Consequent, depth, mark)
		if node.Alternate != nil {
			walkStmt(node.Alternate, depth, mark)
		}
	case *While:
		walkExprForFuncs(node.Test, depth, mark)
		walkStmt(node.Body, depth, mark)
	case *Labeled:
		walkStmt(node.Body, depth, mark)
	case *With:
		walkExprForFuncs(node.Object, depth, mark)
		walkStmt(node.Body, depth, mark)
	case *VariableDeclaration:
		for _, d := range node.Declarations {
			if d.Init != nil {
				walkExprForFuncs(d.Init, depth, mark)
			}
		}
	case *ExpressionStatement:
		walkExprForFuncs(node.Expression, depth, mark)
	case *Return:
		if node.Argument != nil {
			walkExprForFuncs(node.Argument, depth, mark)
		}
	case *FunctionDeclaration:
		walkFunction(node, depth, mark)
	}
}

// walkExprForFuncs only needs to find nested function-like nodes to
// recurse into their bodies at depth+1: AddressTaken is only ever
// recorded on Block/Program scope nodes, which only function bodies
// (and statement-level blocks, already handled by walkStmt) introduce.
func walkExprForFuncs(n Node, depth int, mark func(int, []int)) {
	switch node := n.(type) {
	case *Unary:
		walkExprForFuncs(node.Argument, depth, mark)
	case *Update:
		walkExprForFuncs(node.Argument, depth, mark)
	case *Binary:
		walkExprForFuncs(node.Left, depth, mark)
		walkExprForFuncs(node.Right, depth, mark)
	case *Logical:
		walkExprForFuncs(node.Left, depth, mark)
		walkExprForFuncs(node.Right, depth, mark)
	case *Assignment:
		walkExprForFuncs(node.Value, depth, mark)
	case *Conditional:
		walkExprForFuncs(node.Test, depth, mark)
		walkExprForFuncs(node.Consequent, depth, mark)
		walkExprForFuncs(node.Alternate, depth, mark)
	case *Call:
		walkExprForFuncs(node.Callee, depth, mark)
		for _, a := range node.Arguments {
			walkExprForFuncs(a, depth, mark)
		}
	case *FunctionExpression:
		walkFunction(node, depth, mark)
	case *ArrowFunctionExpression:
		walkFunction(node, depth, mark)
	}
}

func walkFunction(fn Function, depth int, mark func(int, []int)) {
	inner := depth + 1
	mark(inner, fn.FuncBody().AddressTakenVars())
	walkStmts(fn.FuncBody().Body, inner, mark)
}

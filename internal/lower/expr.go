package lower

import (
	"fmt"

	"github.com/lhaig/wasmc/internal/est"
	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

// lowerExpr lowers a single expression-position node.
func (l *lowerer) lowerExpr(n est.Node) *ir.Expr {
	switch node := n.(type) {
	case *est.Literal:
		return l.lowerLiteral(node)

	case *est.Identifier:
		return l.lowerIdentifier(node)

	case *est.Unary:
		return l.lowerUnary(node)

	case *est.Update:
		return l.lowerUpdate(node)

	case *est.Binary:
		return l.lowerBinary(node)

	case *est.Logical:
		return l.lowerLogical(node)

	case *est.Assignment:
		return l.lowerAssignment(node)

	case *est.Conditional:
		cond := primAppl(ir.TBoolean, ir.PrimNot, primAppl(ir.TBoolean, ir.PrimNot, l.lowerExpr(node.Test)))
		t := l.lowerExpr(node.Consequent)
		f := l.lowerExpr(node.Alternate)
		return &ir.Expr{Type: ir.Lub(t.Type, f.Type), Kind: ir.Conditional{Cond: cond, True: t, False: f}}

	case *est.Call:
		return l.lowerCall(node)

	case *est.FunctionExpression:
		idx := l.lowerFunctionLike(node, node.Name, l.currentDepth+1)
		return l.makePrimFunc(node, idx)

	case *est.ArrowFunctionExpression:
		idx := l.lowerFunctionLike(node, "", l.currentDepth+1)
		return l.makePrimFunc(node, idx)

	default:
		l.diags.Errorf(n.Loc(), "unsupported expression node %T", n)
		return &ir.Expr{Kind: ir.Trap{Reason: fmt.Sprintf("unsupported node %T", n)}}
	}
}

func (l *lowerer) lowerLiteral(node *est.Literal) *ir.Expr {
	switch node.Kind {
	case est.LitNumber:
		return &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.PrimNumber{Value: node.Number}}
	case est.LitBool:
		return &ir.Expr{Type: ir.Some(ir.TBoolean), Kind: ir.PrimBoolean{Value: node.Bool}}
	case est.LitString:
		return &ir.Expr{Type: ir.Some(ir.TString), Kind: ir.PrimString{Value: node.String}}
	case est.LitNull, est.LitUndefined:
		return undefinedExpr()
	default:
		l.diags.Errorf(node.Loc(), "unsupported literal kind")
		return &ir.Expr{Kind: ir.Trap{Reason: "unsupported literal"}}
	}
}

func (l *lowerer) lowerIdentifier(node *est.Identifier) *ir.Expr {
	id := varloc(node)
	if idx, ok := l.importIndex[id]; ok {
		return &ir.Expr{Type: ir.Some(ir.TFunc), Kind: ir.ImportFn{Index: idx}}
	}
	return &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.VarName{Target: id}}
}

func (l *lowerer) lowerUnary(node *est.Unary) *ir.Expr {
	arg := l.lowerExpr(node.Argument)
	switch node.Operator {
	case est.UnaryMinus:
		return primAppl(ir.TNumber, ir.PrimNeg, arg)
	case est.UnaryPlus:
		return primAppl(ir.TNumber, ir.PrimAdd, arg, numberLit(0))
	case est.UnaryNot:
		return primAppl(ir.TBoolean, ir.PrimNot, arg)
	case est.UnaryTypeof:
		return primAppl(ir.TString, ir.PrimTypeof, arg)
	case est.UnaryVoid:
		return &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: []*ir.Expr{arg, undefinedExpr()}}}
	default:
		l.diags.Errorf(node.Loc(), "unsupported unary operator %q", node.Operator)
		return &ir.Expr{Kind: ir.Trap{Reason: "unsupported unary operator"}}
	}
}

// lowerUpdate lowers ++/--. Postfix needs the pre-update value observed
// exactly once, so it stashes it in a synthetic temp rather than
// re-reading the target (which would be wrong once the target has been
// reassigned, and duplicates evaluation for good measure).
func (l *lowerer) lowerUpdate(node *est.Update) *ir.Expr {
	ident, ok := node.Argument.(*est.Identifier)
	if !ok {
		l.diags.Errorf(node.Loc(), "invalid update target")
		return &ir.Expr{Kind: ir.Trap{Reason: "invalid update target"}}
	}
	id := varloc(ident)
	delta := 1.0
	if node.Operator == est.UpdateDecrement {
		delta = -1.0
	}

	if node.Prefix {
		newVal := primAppl(ir.TNumber, ir.PrimAdd, &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.VarName{Target: id}}, numberLit(delta))
		return &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.Assign{Target: id, Expr: newVal}}
	}

	tmp := l.newTemp(l.currentDepth)
	decl := &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.Declaration{Local: tmp, Expr: &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.VarName{Target: id}}}}
	newVal := primAppl(ir.TNumber, ir.PrimAdd, &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.VarName{Target: tmp}}, numberLit(delta))
	assign := &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.Assign{Target: id, Expr: newVal}}
	read := &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.VarName{Target: tmp}}
	return &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.Sequence{Content: []*ir.Expr{decl, assign, read}}}
}

var binaryInst = map[est.BinaryOp]ir.PrimInst{
	est.BinAdd:      ir.PrimAdd,
	est.BinSub:      ir.PrimSub,
	est.BinMul:      ir.PrimMul,
	est.BinDiv:      ir.PrimDiv,
	est.BinMod:      ir.PrimMod,
	est.BinEq:       ir.PrimEq,
	est.BinStrictEq: ir.PrimStrictEq,
	est.BinNeq:      ir.PrimNeq,
	est.BinStrictNe: ir.PrimStrictNeq,
	est.BinLt:       ir.PrimLt,
	est.BinLe:       ir.PrimLe,
	est.BinGt:       ir.PrimGt,
	est.BinGe:       ir.PrimGe,
	est.BinBitAnd:   ir.PrimBitAnd,
	est.BinBitOr:    ir.PrimBitOr,
	est.BinBitXor:   ir.PrimBitXor,
	est.BinShl:      ir.PrimShl,
	est.BinShr:      ir.PrimShr,
}

var comparisonOps = map[est.BinaryOp]bool{
	est.BinEq: true, est.BinStrictEq: true, est.BinNeq: true, est.BinStrictNe: true,
	est.BinLt: true, est.BinLe: true, est.BinGt: true, est.BinGe: true,
}

func (l *lowerer) lowerBinary(node *est.Binary) *ir.Expr {
	inst, ok := binaryInst[node.Operator]
	if !ok {
		l.diags.Errorf(node.Loc(), "unsupported binary operator %q", node.Operator)
		return &ir.Expr{Kind: ir.Trap{Reason: "unsupported binary operator"}}
	}
	left := l.lowerExpr(node.Left)
	right := l.lowerExpr(node.Right)
	typ := ir.TNumber
	switch {
	case comparisonOps[node.Operator]:
		typ = ir.TBoolean
	case node.Operator == est.BinAdd:
		typ = ir.TAny // source-level `+` is not typed as a number
	}
	return primAppl(typ, inst, left, right)
}

// lowerLogical lowers short-circuiting &&/|| to a Conditional, stashing
// the left operand in a temp so a side-effecting left side is only
// evaluated once.
func (l *lowerer) lowerLogical(node *est.Logical) *ir.Expr {
	left := l.lowerExpr(node.Left)
	right := l.lowerExpr(node.Right)

	tmp := l.newTemp(l.currentDepth)
	decl := &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.Declaration{Local: tmp, Expr: left}}
	read := func() *ir.Expr { return &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.VarName{Target: tmp}} }
	truthy := primAppl(ir.TBoolean, ir.PrimNot, primAppl(ir.TBoolean, ir.PrimNot, read()))

	var cond *ir.Expr
	if node.Operator == est.LogicalAnd {
		cond = &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.Conditional{Cond: truthy, True: right, False: read()}}
	} else {
		cond = &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.Conditional{Cond: truthy, True: read(), False: right}}
	}
	return &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.Sequence{Content: []*ir.Expr{decl, cond}}}
}

var compoundInst = map[est.AssignmentOp]ir.PrimInst{
	est.AssignAdd: ir.PrimAdd,
	est.AssignSub: ir.PrimSub,
	est.AssignMul: ir.PrimMul,
	est.AssignDiv: ir.PrimDiv,
}

func (l *lowerer) lowerAssignment(node *est.Assignment) *ir.Expr {
	ident, ok := node.Target.(*est.Identifier)
	if !ok {
		l.diags.Errorf(node.Loc(), "invalid assignment target")
		return &ir.Expr{Kind: ir.Trap{Reason: "invalid assignment target"}}
	}
	id := varloc(ident)
	value := l.lowerExpr(node.Value)

	if node.Operator != est.AssignPlain {
		inst, ok := compoundInst[node.Operator]
		if !ok {
			l.diags.Errorf(node.Loc(), "unsupported assignment operator %q", node.Operator)
			return &ir.Expr{Kind: ir.Trap{Reason: "unsupported assignment operator"}}
		}
		old := &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.VarName{Target: id}}
		value = primAppl(ir.TAny, inst, old, value)
	}
	return &ir.Expr{Type: value.Type, Kind: ir.Assign{Target: id, Expr: value}}
}

func (l *lowerer) lowerCall(node *est.Call) *ir.Expr {
	args := make([]*ir.Expr, len(node.Arguments))
	for i, a := range node.Arguments {
		args[i] = l.lowerExpr(a)
	}
	if ident, ok := node.Callee.(*est.Identifier); ok {
		id := resolver.VarLocId{Depth: ident.PreVar.Depth, Index: ident.PreVar.Index}
		if idx, ok := l.declFuncIdx[id]; ok {
			return &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.DirectAppl{FuncIdx: idx, Args: args}}
		}
	}
	callee := l.lowerExpr(node.Callee)
	return &ir.Expr{Type: ir.Some(ir.TAny), Kind: ir.Appl{Callee: callee, Args: args}}
}

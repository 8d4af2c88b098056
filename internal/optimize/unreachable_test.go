package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/ir"
)

func numLit(v float64) *ir.Expr {
	return &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.PrimNumber{Value: v}}
}

func TestUnreachableDropsCodeAfterReturn(t *testing.T) {
	ret := &ir.Expr{Kind: ir.Return{Expr: numLit(1)}} // Return's own Type is nil: bottom
	dead := numLit(2)

	seq := &ir.Expr{
		Type: ir.Some(ir.TNumber),
		Kind: ir.Sequence{Content: []*ir.Expr{numLit(0), ret, dead}},
	}
	fn := &ir.Func{Name: "f", Body: seq}
	prog := &ir.Program{Funcs: []*ir.Func{fn}}

	changed := Unreachable(prog)
	assert.True(t, changed)

	result := fn.Body.Kind.(ir.Sequence)
	require.Len(t, result.Content, 2, "the literal after the Return is unreachable and gets dropped")
	assert.Nil(t, fn.Body.Type, "a Sequence ending in a bottom-typed expr is itself bottom-typed")
}

func TestUnreachableLeavesLiveCodeAlone(t *testing.T) {
	seq := &ir.Expr{
		Type: ir.Some(ir.TNumber),
		Kind: ir.Sequence{Content: []*ir.Expr{numLit(1), numLit(2)}},
	}
	fn := &ir.Func{Name: "f", Body: seq}
	prog := &ir.Program{Funcs: []*ir.Func{fn}}

	changed := Unreachable(prog)
	assert.False(t, changed)
	assert.Len(t, fn.Body.Kind.(ir.Sequence).Content, 2)
}

func TestUnreachablePropagatesThroughDeclaration(t *testing.T) {
	trap := &ir.Expr{Kind: ir.Trap{Reason: "unreachable"}}
	decl := &ir.Expr{
		Type: ir.Some(ir.TUndefined),
		Kind: ir.Declaration{Local: ir.VarLocId{Depth: 0, Index: 0}, Expr: trap},
	}
	fn := &ir.Func{Name: "f", Body: decl}
	prog := &ir.Program{Funcs: []*ir.Func{fn}}

	Unreachable(prog)
	assert.Nil(t, decl.Type, "a Declaration whose initializer is bottom-typed becomes bottom-typed itself")
}

func TestUnreachableRecursesIntoPrimFuncClosureExpr(t *testing.T) {
	ret := &ir.Expr{Kind: ir.Return{Expr: numLit(1)}}
	dead := numLit(2)
	// Not a realistic MakeClosure shape, just a Sequence standing in for
	// whatever Closure expression PrimFunc carries, to exercise that the
	// pass recurses into it at all.
	closureExpr := &ir.Expr{
		Type: ir.Some(ir.TNumber),
		Kind: ir.Sequence{Content: []*ir.Expr{ret, dead}},
	}
	pf := &ir.Expr{
		Type: ir.Some(ir.TFunc),
		Kind: ir.PrimFunc{FuncIdxs: []int{0}, Closure: closureExpr},
	}
	fn := &ir.Func{Name: "f", Body: pf}
	prog := &ir.Program{Funcs: []*ir.Func{fn}}

	changed := Unreachable(prog)
	assert.True(t, changed)
	assert.Len(t, closureExpr.Kind.(ir.Sequence).Content, 1)
}

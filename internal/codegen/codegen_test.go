package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/ir"
)

func noAddressTaken(depth, index int) bool { return false }

func TestGenerateEmptyEntrySerializes(t *testing.T) {
	entry := &ir.Func{
		Name: "main",
		Body: &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{}},
	}
	prog := &ir.Program{Funcs: []*ir.Func{entry}, EntryFunc: 0}

	mod := Generate(prog, AddressTakenFromEST(nil), "main", DefaultMemoryPages)
	out := mod.Serialize()

	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out[:8])
	require.NotNil(t, mod.Start)
}

func TestGenerateExportsMemoryAndEntry(t *testing.T) {
	entry := &ir.Func{
		Name: "main",
		Body: &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{}},
	}
	prog := &ir.Program{Funcs: []*ir.Func{entry}, EntryFunc: 0}

	mod := Generate(prog, AddressTakenFromEST(nil), "main", DefaultMemoryPages)

	var sawMemory, sawMain bool
	for _, exp := range mod.Exports {
		if exp.Name == "memory" {
			sawMemory = true
		}
		if exp.Name == "main" {
			sawMain = true
		}
	}
	assert.True(t, sawMemory)
	assert.True(t, sawMain)
}

func TestGenerateGlobalDeclarationAndAssignment(t *testing.T) {
	x := ir.VarLocId{Depth: 0, Index: 0}
	decl := &ir.Expr{
		Type: ir.Some(ir.TUndefined),
		Kind: ir.Declaration{Local: x, Expr: &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.PrimNumber{Value: 1}}},
	}
	assign := &ir.Expr{
		Type: ir.Some(ir.TNumber),
		Kind: ir.Assign{Target: x, Expr: &ir.Expr{Type: ir.Some(ir.TNumber), Kind: ir.PrimNumber{Value: 2}}},
	}
	entry := &ir.Func{
		Name: "main",
		Body: &ir.Expr{Type: ir.Some(ir.TUndefined), Kind: ir.Sequence{Content: []*ir.Expr{decl, assign}}},
	}
	prog := &ir.Program{Funcs: []*ir.Func{entry}, EntryFunc: 0}

	mod := Generate(prog, AddressTakenFromEST(nil), "", DefaultMemoryPages)
	require.Len(t, mod.Globals, 2, "one runtime heap-pointer global plus one for x")
	out := mod.Serialize()
	assert.NotEmpty(t, out)
}

func TestAddressTakenFromEST(t *testing.T) {
	m := map[int]map[int]bool{1: {2: true}}
	pred := AddressTakenFromEST(m)
	assert.True(t, pred(1, 2))
	assert.False(t, pred(1, 3))
	assert.False(t, pred(0, 0))
}

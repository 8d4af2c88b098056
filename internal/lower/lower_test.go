package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/diagnostic"
	"github.com/lhaig/wasmc/internal/est"
	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

func lowerSource(t *testing.T, doc string, predefined map[string]resolver.VarLocId, importIndex map[resolver.VarLocId]int) (*ir.Program, *diagnostic.Diagnostics) {
	t.Helper()
	prog, err := est.Decode([]byte(doc))
	require.NoError(t, err)
	diags := diagnostic.New(nil)
	resolver.Resolve(prog, predefined, true, diags)
	require.False(t, diags.HasErrors())
	irProg := Lower(prog, nil, importIndex, diags)
	return irProg, diags
}

func TestLowerGlobalAssignmentAndBinaryOp(t *testing.T) {
	irProg, diags := lowerSource(t, `{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"},
				 "init": {"type": "Literal", "value": 1}}
			]},
			{"type": "ExpressionStatement", "expression":
				{"type": "AssignmentExpression", "operator": "=",
				 "left": {"type": "Identifier", "name": "x"},
				 "right": {"type": "BinaryExpression", "operator": "+",
				           "left": {"type": "Identifier", "name": "x"},
				           "right": {"type": "Literal", "value": 2}}}}
		]
	}`, nil, nil)
	require.False(t, diags.HasErrors())

	require.Len(t, irProg.Funcs, 1)
	entry := irProg.Funcs[irProg.EntryFunc]
	seq, ok := entry.Body.Kind.(ir.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Content, 2)

	assign, ok := seq.Content[1].Kind.(ir.Assign)
	require.True(t, ok)
	prim, ok := assign.Expr.Kind.(ir.PrimAppl)
	require.True(t, ok)
	assert.Equal(t, ir.PrimAdd, prim.Inst)
}

func TestLowerFunctionDeclarationDirectCall(t *testing.T) {
	irProg, diags := lowerSource(t, `{
		"type": "Program",
		"body": [
			{"type": "FunctionDeclaration", "name": "double",
			 "params": [{"type": "Identifier", "name": "n"}],
			 "body": {"type": "BlockStatement", "body": [
				{"type": "ReturnStatement", "argument":
					{"type": "BinaryExpression", "operator": "*",
					 "left": {"type": "Identifier", "name": "n"},
					 "right": {"type": "Literal", "value": 2}}}
			 ]}},
			{"type": "ExpressionStatement", "expression":
				{"type": "CallExpression", "callee": {"type": "Identifier", "name": "double"},
				 "arguments": [{"type": "Literal", "value": 21}]}}
		]
	}`, nil, nil)
	require.False(t, diags.HasErrors())

	require.Len(t, irProg.Funcs, 2)
	entry := irProg.Funcs[irProg.EntryFunc]
	seq := entry.Body.Kind.(ir.Sequence)

	var call *ir.DirectAppl
	for _, c := range seq.Content {
		if d, ok := c.Kind.(ir.DirectAppl); ok {
			call = &d
		}
	}
	require.NotNil(t, call, "a call to a hoisted FunctionDeclaration lowers to DirectAppl")
	assert.Len(t, call.Args, 1)
}

func TestLowerImportReferenceBecomesImportFn(t *testing.T) {
	predefined := map[string]resolver.VarLocId{"log": {Depth: 0, Index: 0}}
	importIndex := map[resolver.VarLocId]int{{Depth: 0, Index: 0}: 0}

	irProg, diags := lowerSource(t, `{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression":
				{"type": "CallExpression", "callee": {"type": "Identifier", "name": "log"},
				 "arguments": [{"type": "Literal", "value": 1}]}}
		]
	}`, predefined, importIndex)
	require.False(t, diags.HasErrors())

	entry := irProg.Funcs[irProg.EntryFunc]
	seq := entry.Body.Kind.(ir.Sequence)
	appl, ok := seq.Content[0].Kind.(ir.Appl)
	require.True(t, ok)
	imp, ok := appl.Callee.Kind.(ir.ImportFn)
	require.True(t, ok)
	assert.Equal(t, 0, imp.Index)
}

func TestLowerWithStatementBecomesNamedBlock(t *testing.T) {
	irProg, diags := lowerSource(t, `{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "obj"},
				 "init": {"type": "Literal", "value": 1}}
			]},
			{"type": "WithStatement",
			 "object": {"type": "Identifier", "name": "obj"},
			 "body": {"type": "ExpressionStatement", "expression": {"type": "Literal", "value": 2}}}
		]
	}`, nil, nil)
	require.False(t, diags.HasErrors())

	entry := irProg.Funcs[irProg.EntryFunc]
	seq := entry.Body.Kind.(ir.Sequence)

	var block *ir.NamedBlock
	for _, c := range seq.Content {
		if nb, ok := c.Kind.(ir.NamedBlock); ok {
			block = &nb
		}
	}
	require.NotNil(t, block, "a with-statement lowers to a structured NamedBlock, not a Trap")

	inner, ok := block.Body.Kind.(ir.Sequence)
	require.True(t, ok)
	require.Len(t, inner.Content, 2, "object expression, then body")
	_, objIsVarName := inner.Content[0].Kind.(ir.VarName)
	assert.True(t, objIsVarName, "the with object is evaluated for its side effects")
	_, bodyIsLiteral := inner.Content[1].Kind.(ir.PrimNumber)
	assert.True(t, bodyIsLiteral)
}

func TestLowerClosureCapture(t *testing.T) {
	irProg, diags := lowerSource(t, `{
		"type": "Program",
		"body": [
			{"type": "FunctionDeclaration", "name": "makeCounter",
			 "params": [],
			 "body": {"type": "BlockStatement", "body": [
				{"type": "VariableDeclaration", "kind": "let", "declarations": [
					{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "n"},
					 "init": {"type": "Literal", "value": 0}}
				]},
				{"type": "ReturnStatement", "argument":
					{"type": "FunctionExpression", "name": "",
					 "params": [],
					 "body": {"type": "BlockStatement", "body": [
						{"type": "ReturnStatement", "argument": {"type": "Identifier", "name": "n"}}
					 ]}}}
			 ]}}
		]
	}`, nil, nil)
	require.False(t, diags.HasErrors())

	// makeCounter + inner closure + entry
	require.Len(t, irProg.Funcs, 3)
	var inner *ir.Func
	for _, f := range irProg.Funcs {
		if len(f.Captures) > 0 {
			inner = f
		}
	}
	require.NotNil(t, inner, "the returned closure captures n")
	assert.Equal(t, 1, inner.NumCaptured)
}

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/diagnostic"
	"github.com/lhaig/wasmc/internal/est"
)

func resolveSource(t *testing.T, doc string) (*est.Program, *Result, *diagnostic.Diagnostics) {
	t.Helper()
	prog, err := est.Decode([]byte(doc))
	require.NoError(t, err)
	diags := diagnostic.New(nil)
	res := Resolve(prog, nil, true, diags)
	return prog, res, diags
}

func TestResolveGlobalLet(t *testing.T) {
	prog, res, diags := resolveSource(t, `{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"},
				 "init": {"type": "Literal", "value": 1}}
			]},
			{"type": "ExpressionStatement", "expression": {"type": "Identifier", "name": "x"}}
		]
	}`)
	require.False(t, diags.HasErrors())

	id, ok := res.Globals["x"]
	require.True(t, ok)
	assert.Equal(t, 0, id.Depth)

	use := prog.Body[1].(*est.ExpressionStatement).Expression.(*est.Identifier)
	assert.Equal(t, est.PreVarTarget, use.PreVar.Kind)
	assert.Equal(t, id.Depth, use.PreVar.Depth)
	assert.Equal(t, id.Index, use.PreVar.Index)
}

func TestResolveUndeclaredIdentifierIsErrorInStrictMode(t *testing.T) {
	_, _, diags := resolveSource(t, `{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression": {"type": "Identifier", "name": "missing"}}
		]
	}`)
	assert.True(t, diags.HasErrors())
}

func TestResolveUndeclaredIdentifierImplicitGlobalInNonStrict(t *testing.T) {
	prog, err := est.Decode([]byte(`{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression": {"type": "Identifier", "name": "g"}}
		]
	}`))
	require.NoError(t, err)
	diags := diagnostic.New(nil)
	res := Resolve(prog, nil, false, diags)
	assert.False(t, diags.HasErrors())
	_, ok := res.Globals["g"]
	assert.True(t, ok)
}

func TestResolvePredefinedImportBinding(t *testing.T) {
	prog, err := est.Decode([]byte(`{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression":
				{"type": "CallExpression", "callee": {"type": "Identifier", "name": "log"}, "arguments": []}}
		]
	}`))
	require.NoError(t, err)
	diags := diagnostic.New(nil)
	predefined := map[string]VarLocId{"log": {Depth: 0, Index: 0}}
	res := Resolve(prog, predefined, true, diags)
	require.False(t, diags.HasErrors())
	assert.Equal(t, VarLocId{Depth: 0, Index: 0}, res.Globals["log"])
}

func TestResolveDuplicateLetBindingIsError(t *testing.T) {
	_, _, diags := resolveSource(t, `{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"}, "init": null}
			]},
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"}, "init": null}
			]}
		]
	}`)
	assert.True(t, diags.HasErrors())
}

func TestResolveFunctionParamsAndNestedScope(t *testing.T) {
	prog, res, diags := resolveSource(t, `{
		"type": "Program",
		"body": [
			{"type": "FunctionDeclaration", "name": "f",
			 "params": [{"type": "Identifier", "name": "a"}],
			 "body": {"type": "BlockStatement", "body": [
				{"type": "ReturnStatement", "argument": {"type": "Identifier", "name": "a"}}
			 ]}}
		]
	}`)
	require.False(t, diags.HasErrors())
	_, ok := res.Globals["f"]
	require.True(t, ok)

	fn := prog.Body[0].(*est.FunctionDeclaration)
	assert.Equal(t, 1, fn.Params[0].Loc.Depth)
	_ = fn.Params[0].Loc.Index

	ret := fn.Body.Body[0].(*est.Return)
	use := ret.Argument.(*est.Identifier)
	assert.Equal(t, est.PreVarTarget, use.PreVar.Kind)
	assert.Equal(t, fn.Params[0].Loc.Depth, use.PreVar.Depth)
	assert.Equal(t, fn.Params[0].Loc.Index, use.PreVar.Index)
}

func TestResolveClosureCaptureAndAddressTaken(t *testing.T) {
	prog, _, diags := resolveSource(t, `{
		"type": "Program",
		"body": [
			{"type": "FunctionDeclaration", "name": "outer",
			 "params": [],
			 "body": {"type": "BlockStatement", "body": [
				{"type": "VariableDeclaration", "kind": "let", "declarations": [
					{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "counter"},
					 "init": {"type": "Literal", "value": 0}}
				]},
				{"type": "FunctionDeclaration", "name": "inner",
				 "params": [],
				 "body": {"type": "BlockStatement", "body": [
					{"type": "ReturnStatement", "argument": {"type": "Identifier", "name": "counter"}}
				 ]}}
			 ]}}
		]
	}`)
	require.False(t, diags.HasErrors())

	outer := prog.Body[0].(*est.FunctionDeclaration)
	inner := outer.Body.Body[1].(*est.FunctionDeclaration)

	// counter's declaring block (outer's own body) must record it as
	// address-taken since inner captures it.
	assert.NotEmpty(t, outer.Body.AddressTakenVars())

	// inner's own capture list names (depth, index) of the binding owned
	// by outer's scope.
	require.Len(t, inner.CapturedVars, 1)
}

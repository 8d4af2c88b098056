package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/diagnostic"
)

func TestCompileSimpleProgramProducesValidModule(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"},
				 "init": {"type": "Literal", "value": 1}}
			]},
			{"type": "FunctionDeclaration", "name": "add",
			 "params": [{"type": "Identifier", "name": "a"}, {"type": "Identifier", "name": "b"}],
			 "body": {"type": "BlockStatement", "body": [
				{"type": "ReturnStatement", "argument":
					{"type": "BinaryExpression", "operator": "+",
					 "left": {"type": "Identifier", "name": "a"},
					 "right": {"type": "Identifier", "name": "b"}}}
			 ]}},
			{"type": "ExpressionStatement", "expression":
				{"type": "AssignmentExpression", "operator": "=",
				 "left": {"type": "Identifier", "name": "x"},
				 "right": {"type": "CallExpression",
				           "callee": {"type": "Identifier", "name": "add"},
				           "arguments": [{"type": "Identifier", "name": "x"}, {"type": "Literal", "value": 2}]}}}
		]
	}`)

	sink := &diagnostic.CapturingSink{}
	out, ok := Compile(doc, "", DefaultOptions(), sink)
	require.True(t, ok, "records: %+v", sink.Records)

	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out[:8], "Wasm magic + version header")
}

func TestCompileWithImports(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression":
				{"type": "CallExpression", "callee": {"type": "Identifier", "name": "log"},
				 "arguments": [{"type": "Literal", "value": 1}]}}
		]
	}`)

	sink := &diagnostic.CapturingSink{}
	out, ok := Compile(doc, "env.log:number", DefaultOptions(), sink)
	require.True(t, ok, "records: %+v", sink.Records)
	assert.NotEmpty(t, out)
}

func TestCompileUndeclaredIdentifierFails(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{"type": "ExpressionStatement", "expression": {"type": "Identifier", "name": "nope"}}
		]
	}`)
	sink := &diagnostic.CapturingSink{}
	_, ok := Compile(doc, "", DefaultOptions(), sink)
	assert.False(t, ok)
	assert.NotEmpty(t, sink.Records)
}

func TestCompileMalformedDocumentFails(t *testing.T) {
	sink := &diagnostic.CapturingSink{}
	_, ok := Compile([]byte(`not json`), "", DefaultOptions(), sink)
	assert.False(t, ok)
}

func TestCheckDoesNotFailOnValidProgram(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{"type": "VariableDeclaration", "kind": "let", "declarations": [
				{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"},
				 "init": {"type": "Literal", "value": 1}}
			]}
		]
	}`)
	sink := &diagnostic.CapturingSink{}
	diags := Check(doc, "", DefaultOptions(), sink)
	assert.False(t, diags.HasErrors())
}

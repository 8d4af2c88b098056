package est

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleProgram(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{
				"type": "VariableDeclaration",
				"kind": "let",
				"declarations": [
					{"type": "VariableDeclarator", "id": {"type": "Identifier", "name": "x"},
					 "init": {"type": "Literal", "value": 1}}
				]
			},
			{
				"type": "IfStatement",
				"test": {"type": "Identifier", "name": "x"},
				"consequent": {"type": "BlockStatement", "body": []},
				"alternate": null
			}
		]
	}`)

	prog, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)

	decl, ok := prog.Body[0].(*VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, VarLet, decl.Kind)
	require.Len(t, decl.Declarations, 1)
	assert.Equal(t, "x", decl.Declarations[0].ID.Name)
	lit, ok := decl.Declarations[0].Init.(*Literal)
	require.True(t, ok)
	assert.Equal(t, LitNumber, lit.Kind)
	assert.Equal(t, float64(1), lit.Number)

	ifStmt, ok := prog.Body[1].(*If)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Alternate)
}

func TestDecodeFunctionDeclaration(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{
				"type": "FunctionDeclaration",
				"name": "add",
				"params": [{"type": "Identifier", "name": "a"}, {"type": "Identifier", "name": "b"}],
				"body": {"type": "BlockStatement", "body": [
					{"type": "ReturnStatement", "argument":
						{"type": "BinaryExpression", "operator": "+",
						 "left": {"type": "Identifier", "name": "a"},
						 "right": {"type": "Identifier", "name": "b"}}}
				]}
			}
		]
	}`)

	prog, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	fn, ok := prog.Body[0].(*FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Parameters(), 2)
	assert.Equal(t, "a", fn.Parameters()[0].Name)

	ret, ok := fn.Body.Body[0].(*Return)
	require.True(t, ok)
	bin, ok := ret.Argument.(*Binary)
	require.True(t, ok)
	assert.Equal(t, BinaryOp("+"), bin.Operator)
}

func TestDecodeImportDeclaration(t *testing.T) {
	doc := []byte(`{
		"type": "Program",
		"body": [
			{
				"type": "ImportDeclaration",
				"source": "env",
				"specifiers": [
					{"type": "ImportSpecifier", "local": {"type": "Identifier", "name": "log"},
					 "imported": {"type": "Identifier", "name": "log"}}
				]
			}
		]
	}`)

	prog, err := Decode(doc)
	require.NoError(t, err)
	imp, ok := prog.Body[0].(*ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "env", imp.Source)
	require.Len(t, imp.Specifiers, 1)
	assert.Equal(t, "log", imp.Specifiers[0].Local)
	assert.Equal(t, ImportSpecifierNamed, imp.Specifiers[0].Kind)
}

func TestDecodeUnsupportedNodeType(t *testing.T) {
	doc := []byte(`{"type": "Program", "body": [{"type": "ClassDeclaration"}]}`)
	_, err := Decode(doc)
	require.Error(t, err)
	var unsupported *UnsupportedNodeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "ClassDeclaration", unsupported.Type)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestDecodeRootMustBeProgram(t *testing.T) {
	_, err := Decode([]byte(`{"type": "Identifier", "name": "x"}`))
	require.Error(t, err)
}

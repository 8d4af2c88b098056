package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

func TestParseImportsBasic(t *testing.T) {
	spec := "env.log:number\nenv.now:->number\nmath.hypot:number,number->number"
	imports, predefined, importIndex, err := ParseImports(spec)
	require.NoError(t, err)
	require.Len(t, imports, 3)

	assert.Equal(t, "env", imports[0].Module)
	assert.Equal(t, "log", imports[0].Name)
	assert.Equal(t, []ir.VarType{ir.TNumber}, imports[0].Params)
	assert.Nil(t, imports[0].Result)

	assert.Equal(t, "now", imports[1].Name)
	assert.Nil(t, imports[1].Params)
	require.NotNil(t, imports[1].Result)
	assert.Equal(t, ir.TNumber, *imports[1].Result)

	assert.Equal(t, []ir.VarType{ir.TNumber, ir.TNumber}, imports[2].Params)

	id, ok := predefined["log"]
	require.True(t, ok)
	assert.Equal(t, resolver.VarLocId{Depth: 0, Index: 0}, id)
	assert.Equal(t, 0, importIndex[id])

	id2 := predefined["hypot"]
	assert.Equal(t, 2, importIndex[id2])
}

func TestParseImportsSkipsBlankAndCommentLines(t *testing.T) {
	spec := "\n# a comment\n  \nenv.log:number\n"
	imports, _, _, err := ParseImports(spec)
	require.NoError(t, err)
	assert.Len(t, imports, 1)
}

func TestParseImportsEmptySpec(t *testing.T) {
	imports, predefined, importIndex, err := ParseImports("")
	require.NoError(t, err)
	assert.Empty(t, imports)
	assert.Empty(t, predefined)
	assert.Empty(t, importIndex)
}

func TestParseImportsRejectsMalformedLine(t *testing.T) {
	_, _, _, err := ParseImports("garbage")
	assert.Error(t, err)
}

func TestParseImportsRejectsUnknownType(t *testing.T) {
	_, _, _, err := ParseImports("env.f:frobnicate")
	assert.Error(t, err)
}

func TestParseImportsRejectsDuplicateLocalName(t *testing.T) {
	_, _, _, err := ParseImports("env.log:number\nother.log:string")
	assert.Error(t, err)
}

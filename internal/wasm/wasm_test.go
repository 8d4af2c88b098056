package wasm

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeU32(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeU32(0))
	assert.Equal(t, []byte{0x7F}, EncodeU32(127))
	assert.Equal(t, []byte{0x80, 0x01}, EncodeU32(128))
	assert.Equal(t, []byte{0xE5, 0x8E, 0x26}, EncodeU32(624485))
}

func TestEncodeS64(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeS64(0))
	assert.Equal(t, []byte{0x7F}, EncodeS64(-1))
	assert.Equal(t, []byte{0xC0, 0xBB, 0x78}, EncodeS64(-123456))
}

func TestEncodeU32Fixed5(t *testing.T) {
	out := EncodeU32Fixed5(0)
	require.Len(t, out, 5)
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80, 0x00}, out)

	out = EncodeU32Fixed5(300)
	require.Len(t, out, 5)
	// every byte but the last carries a continuation bit
	for i := 0; i < 4; i++ {
		assert.NotZero(t, out[i]&0x80)
	}
	assert.Zero(t, out[4]&0x80)
}

func TestEncodeF64RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 3.5, math.NaN(), math.Inf(1)} {
		buf := EncodeF64(v)
		require.Len(t, buf, 8)
		assert.Equal(t, math.Float64bits(v), binary.LittleEndian.Uint64(buf))
	}
}

func TestEncodeString(t *testing.T) {
	out := EncodeString("abc")
	assert.Equal(t, []byte{0x03, 'a', 'b', 'c'}, out)
}

func TestEncodeVector(t *testing.T) {
	out := EncodeVector(2, []byte{0xAA, 0xBB})
	assert.Equal(t, []byte{0x02, 0xAA, 0xBB}, out)
}

func TestModuleReserveCommitFunc(t *testing.T) {
	m := NewModule()
	sig := m.TypeIndex(FuncType{Params: []ValType{ValF64}, Results: []ValType{ValF64}})
	idx := m.ReserveFunc(sig)
	assert.Equal(t, FuncIdx(0), idx)

	assert.Panics(t, func() { m.checkComplete() })

	m.CommitFunc(idx, []byte{OpLocalGet, 0x00, OpEnd})
	assert.NotPanics(t, func() { m.checkComplete() })
}

func TestModuleReserveFuncAfterImports(t *testing.T) {
	m := NewModule()
	sig := m.TypeIndex(FuncType{})
	m.AddImport(Import{Module: "env", Name: "log", Kind: ImportKindFunc, Type: sig})

	idx := m.ReserveFunc(sig)
	assert.Equal(t, FuncIdx(1), idx, "defined functions are indexed after imported functions")
	m.CommitFunc(idx, []byte{OpEnd})
}

func TestAddImportDedupes(t *testing.T) {
	m := NewModule()
	sig := m.TypeIndex(FuncType{})
	a := m.AddImport(Import{Module: "env", Name: "log", Kind: ImportKindFunc, Type: sig})
	b := m.AddImport(Import{Module: "env", Name: "log", Kind: ImportKindFunc, Type: sig})
	c := m.AddImport(Import{Module: "env", Name: "other", Kind: ImportKindFunc, Type: sig})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, m.Imports.Items(), 2)
}

func TestTypeIndexDedupes(t *testing.T) {
	m := NewModule()
	a := m.TypeIndex(FuncType{Params: []ValType{ValF64}, Results: []ValType{ValF64}})
	b := m.TypeIndex(FuncType{Params: []ValType{ValF64}, Results: []ValType{ValF64}})
	c := m.TypeIndex(FuncType{Params: []ValType{ValI32}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSerializeEmptyModuleIsJustHeader(t *testing.T) {
	m := NewModule()
	out := m.Serialize()
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out)
}

func TestSerializeSkipsEmptySections(t *testing.T) {
	m := NewModule()
	sig := m.TypeIndex(FuncType{})
	idx := m.ReserveFunc(sig)
	m.CommitFunc(idx, []byte{OpEnd})

	out := m.Serialize()
	// header + type section + function section + code section; no
	// table/memory/global/export/start/element/data sections present.
	assert.Greater(t, len(out), 8)
	assert.Nil(t, m.serializeTableSection())
	assert.Nil(t, m.serializeStartSection())
}

func TestSerializePanicsOnUncommittedFunc(t *testing.T) {
	m := NewModule()
	sig := m.TypeIndex(FuncType{})
	m.ReserveFunc(sig)
	assert.Panics(t, func() { m.Serialize() })
}

func TestConstI32(t *testing.T) {
	out := ConstI32(5)
	assert.Equal(t, byte(OpI32Const), out[0])
	assert.Equal(t, byte(OpEnd), out[len(out)-1])
}

func TestLocalsManagerRunLengthEncoding(t *testing.T) {
	lm := NewLocalsManager(1)
	a := lm.Add(ValF64)
	b := lm.Add(ValF64)
	c := lm.Add(ValI32)
	assert.Equal(t, LocalIdx(1), a)
	assert.Equal(t, LocalIdx(2), b)
	assert.Equal(t, LocalIdx(3), c)

	// two runs: (2 x f64), (1 x i32)
	enc := lm.encode()
	assert.Equal(t, []byte{0x02, 0x02, byte(ValF64), 0x01, byte(ValI32)}, enc)
}

func TestScratchPushPopReuse(t *testing.T) {
	lm := NewLocalsManager(0)
	s := NewScratch(lm)

	a := s.Push(ValF64)
	s.Pop(ValF64)
	b := s.Push(ValF64)
	assert.Equal(t, a, b, "a freed scratch slot is reused rather than allocating a new local")
	s.Pop(ValF64)

	assert.Panics(t, func() { s.Pop(ValF64) }, "popping past zero is an ICE")
}

func TestExprEmitterLabelsAndRelDepth(t *testing.T) {
	e := NewExprEmitter()
	e.OpenBlock("outer")
	e.OpenLoop("inner")

	depth, ok := e.RelDepth("inner")
	require.True(t, ok)
	assert.Equal(t, 0, depth)

	depth, ok = e.RelDepth("outer")
	require.True(t, ok)
	assert.Equal(t, 1, depth)

	_, ok = e.RelDepth("nonexistent")
	assert.False(t, ok)

	e.Close()
	_, ok = e.RelDepth("inner")
	assert.False(t, ok, "a closed label is no longer resolvable")

	e.Close()
	assert.Equal(t, []byte{OpBlock, BlockVoid, OpLoop, BlockVoid, OpEnd, OpEnd}, e.Bytes())
}

func TestCodeBuilderFinish(t *testing.T) {
	cb := NewCodeBuilder(1)
	cb.Locals.Add(ValF64)
	cb.Emitter.Emit(OpLocalGet, 0x00)

	out := cb.Finish()
	assert.Equal(t, byte(OpEnd), out[len(out)-1])
	assert.Contains(t, string(out), string([]byte{OpLocalGet, 0x00}))
}

package wasm

import "fmt"

// LocalsManager allocates locals beyond a function's parameters and
// encodes them as the compact (count, type) run-length form a Wasm
// function body's locals declaration requires.
type LocalsManager struct {
	numParams int
	locals    []ValType
}

func NewLocalsManager(numParams int) *LocalsManager {
	return &LocalsManager{numParams: numParams}
}

func (lm *LocalsManager) Add(t ValType) LocalIdx {
	idx := LocalIdx(lm.numParams + len(lm.locals))
	lm.locals = append(lm.locals, t)
	return idx
}

type localRun struct {
	count uint32
	typ   ValType
}

func (lm *LocalsManager) encode() []byte {
	var runs []localRun
	for _, t := range lm.locals {
		if n := len(runs); n > 0 && runs[n-1].typ == t {
			runs[n-1].count++
		} else {
			runs = append(runs, localRun{count: 1, typ: t})
		}
	}
	var body []byte
	for _, r := range runs {
		body = append(body, EncodeU32(uint64(r.count))...)
		body = append(body, byte(r.typ))
	}
	return EncodeVector(len(runs), body)
}

// Scratch is reusable scratch-local space any emitter can borrow:
// pushes and pops of the same type should always balance within one
// expression's emission, the same contract as the original's
// scratch-space design.
type Scratch struct {
	lm      *LocalsManager
	buffers map[ValType][]LocalIdx
	idx     map[ValType]int
}

func NewScratch(lm *LocalsManager) *Scratch {
	return &Scratch{lm: lm, buffers: make(map[ValType][]LocalIdx), idx: make(map[ValType]int)}
}

func (s *Scratch) Push(t ValType) LocalIdx {
	buf := s.buffers[t]
	i := s.idx[t]
	if i == len(buf) {
		buf = append(buf, s.lm.Add(t))
		s.buffers[t] = buf
	}
	ret := buf[i]
	s.idx[t] = i + 1
	return ret
}

func (s *Scratch) Pop(t ValType) {
	if s.idx[t] == 0 {
		panic(fmt.Sprintf("ICE: scratch pop without a matching push for valtype 0x%x", byte(t)))
	}
	s.idx[t]--
}

// ExprEmitter accumulates one function's instruction bytes and tracks
// the stack of open, named blocks/loops so Br/BrIf can be addressed by
// the same string labels the IR uses instead of the raw relative depth
// Wasm's binary encoding actually requires.
type ExprEmitter struct {
	buf    []byte
	labels []string
}

func NewExprEmitter() *ExprEmitter {
	return &ExprEmitter{}
}

func (e *ExprEmitter) Bytes() []byte { return e.buf }

func (e *ExprEmitter) Emit(b ...byte) {
	e.buf = append(e.buf, b...)
}

func (e *ExprEmitter) EmitU32(v uint64) {
	e.buf = append(e.buf, EncodeU32(v)...)
}

func (e *ExprEmitter) EmitS64(v int64) {
	e.buf = append(e.buf, EncodeS64(v)...)
}

func (e *ExprEmitter) EmitF64(v float64) {
	e.buf = append(e.buf, EncodeF64(v)...)
}

// EmitMemArg appends a load/store instruction's (align, offset) immediate
// pair, both LEB128 unsigned -- align is given as the power-of-two
// exponent the format expects (3 for 8-byte aligned f64, 2 for i32).
func (e *ExprEmitter) EmitMemArg(align, offset uint32) {
	e.buf = append(e.buf, EncodeU32(uint64(align))...)
	e.buf = append(e.buf, EncodeU32(uint64(offset))...)
}

func (e *ExprEmitter) OpenBlock(label string) {
	e.labels = append(e.labels, label)
	e.Emit(OpBlock, BlockVoid)
}

func (e *ExprEmitter) OpenLoop(label string) {
	e.labels = append(e.labels, label)
	e.Emit(OpLoop, BlockVoid)
}

func (e *ExprEmitter) OpenIf() {
	e.labels = append(e.labels, "")
	e.Emit(OpIf, BlockVoid)
}

func (e *ExprEmitter) Else() {
	e.Emit(OpElse)
}

func (e *ExprEmitter) Close() {
	e.labels = e.labels[:len(e.labels)-1]
	e.Emit(OpEnd)
}

// RelDepth resolves label to the relative block depth Br/BrIf need: the
// number of enclosing blocks/loops between the current position and
// where label was opened. ok is false when label is not currently open
// at all, which lowering should never produce — a caller seeing false
// has found an internal-compiler-error condition, not a user error.
func (e *ExprEmitter) RelDepth(label string) (int, bool) {
	for i := len(e.labels) - 1; i >= 0; i-- {
		if e.labels[i] == label {
			return len(e.labels) - 1 - i, true
		}
	}
	return 0, false
}

// CodeBuilder is the per-function handle codegen threads through
// lowering one ir.Func's body: its locals, scratch space, and
// instruction emitter.
type CodeBuilder struct {
	Locals  *LocalsManager
	Scratch *Scratch
	Emitter *ExprEmitter
}

func NewCodeBuilder(numParams int) *CodeBuilder {
	lm := NewLocalsManager(numParams)
	return &CodeBuilder{Locals: lm, Scratch: NewScratch(lm), Emitter: NewExprEmitter()}
}

// Finish assembles the complete encoded function body: the locals
// declaration vector, the instruction stream, and the closing `end`.
func (b *CodeBuilder) Finish() []byte {
	out := b.Locals.encode()
	out = append(out, b.Emitter.Bytes()...)
	return append(out, OpEnd)
}

package wasm

import "fmt"

// ValType is a Wasm value type tag.
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

// Opaque index newtypes: each indexes a distinct section, and the
// compiler should never be able to hand a FuncIdx where a TableIdx
// belongs.
type TypeIdx uint32
type FuncIdx uint32
type TableIdx uint32
type MemIdx uint32
type GlobalIdx uint32
type LocalIdx uint32

// FuncType is a function signature: the Type section's element.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func funcTypeKey(t FuncType) string {
	buf := make([]byte, 0, len(t.Params)+len(t.Results)+1)
	for _, p := range t.Params {
		buf = append(buf, byte(p))
	}
	buf = append(buf, '|')
	for _, r := range t.Results {
		buf = append(buf, byte(r))
	}
	return string(buf)
}

// importKey structurally keys an Import for SearchableList dedup: two
// imports binding the same module.name pair to the same kind and
// signature/limits/type are the same entry, matching the Type section's
// own dedup treatment (spec.md §4.2).
func importKey(imp Import) string {
	key := fmt.Sprintf("%s\x00%s\x00%d\x00", imp.Module, imp.Name, imp.Kind)
	switch imp.Kind {
	case ImportKindFunc:
		key += fmt.Sprintf("%d", imp.Type)
	case ImportKindTable:
		key += limitsKey(imp.Table.Limits)
	case ImportKindMem:
		key += limitsKey(imp.Mem.Limits)
	case ImportKindGlobal:
		key += fmt.Sprintf("%d,%v", imp.Global.Val, imp.Global.Mut)
	}
	return key
}

func limitsKey(l Limits) string {
	if l.Max == nil {
		return fmt.Sprintf("%d,-", l.Min)
	}
	return fmt.Sprintf("%d,%d", l.Min, *l.Max)
}

// Limits is a Wasm resizable-limits pair; Max == nil means unbounded.
type Limits struct {
	Min uint32
	Max *uint32
}

type TableType struct {
	Limits Limits // element type is always funcref
}

type MemType struct {
	Limits Limits
}

type Mut bool

const (
	Const Mut = false
	Var   Mut = true
)

type GlobalType struct {
	Val ValType
	Mut Mut
}

type ImportKind int

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMem
	ImportKindGlobal
)

// Import is one entry of the Import section. Only the field matching
// Kind is meaningful.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind
	Type   TypeIdx
	Table  TableType
	Mem    MemType
	Global GlobalType
}

// Global is one entry of the Global section: its type plus an
// already-encoded constant initializer expression (ending in OpEnd).
type Global struct {
	Type GlobalType
	Init []byte
}

type ExportKind int

const (
	ExportKindFunc ExportKind = iota
	ExportKindTable
	ExportKindMem
	ExportKindGlobal
)

type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// Elem is one active element segment: Funcs populates Table starting
// at the constant-expression Offset, building the indirect call target
// table for first-class function values.
type Elem struct {
	Table  TableIdx
	Offset []byte
	Funcs  []FuncIdx
}

type Data struct {
	Mem    MemIdx
	Offset []byte
	Bytes  []byte
}

// Code is one function body cell. Codegen reserves a cell (and its
// FuncIdx) before a function's body is ready — so a closure referencing
// it, or a recursive/forward call to it, has an index to name — then
// commits the encoded body once compiled. Serializing with any
// uncommitted cell is a fatal internal error: it means some function
// was registered but never finished.
type Code struct {
	bytes     []byte
	committed bool
}

func (c *Code) Commit(bytes []byte) {
	c.bytes = bytes
	c.committed = true
}

// Module is the in-memory object model of a Wasm binary, built up by
// codegen and turned into bytes by Serialize.
type Module struct {
	Types   *SearchableList[FuncType]
	Imports *SearchableList[Import]
	Funcs   []TypeIdx // function section: signature index per defined function
	Table   *TableType
	Mem     *MemType
	Globals []Global
	Exports []Export
	Start   *FuncIdx
	Elems   []Elem
	Code    []*Code
	Data    []Data
}

func NewModule() *Module {
	return &Module{
		Types:   NewSearchableList(funcTypeKey),
		Imports: NewSearchableList(importKey),
	}
}

// TypeIndex returns the Type section index for sig, adding it if new.
func (m *Module) TypeIndex(sig FuncType) TypeIdx {
	return TypeIdx(m.Types.Add(sig))
}

// AddImport adds imp to the Import section, deduplicating structurally
// the same way TypeIndex does for the Type section (spec.md §4.2): a
// second import binding the same module.name to the same kind and
// signature returns the position of the first.
func (m *Module) AddImport(imp Import) int {
	return m.Imports.Add(imp)
}

// ReserveFunc appends a function with the given signature and an
// uncommitted Code cell, returning its FuncIdx. The Import section's
// functions occupy the indices before any ReserveFunc'd one, per the
// Wasm index-space rule that imported functions come first.
func (m *Module) ReserveFunc(sig TypeIdx) FuncIdx {
	idx := FuncIdx(m.numImportedFuncs() + len(m.Funcs))
	m.Funcs = append(m.Funcs, sig)
	m.Code = append(m.Code, &Code{})
	return idx
}

func (m *Module) CommitFunc(idx FuncIdx, body []byte) {
	m.Code[int(idx)-m.numImportedFuncs()].Commit(body)
}

func (m *Module) numImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports.Items() {
		if imp.Kind == ImportKindFunc {
			n++
		}
	}
	return n
}

// checkComplete panics (an ICE, never a user-facing error) if any
// reserved function was never committed.
func (m *Module) checkComplete() {
	for i, c := range m.Code {
		if !c.committed {
			panic(fmt.Sprintf("ICE: function %d was registered but never committed", m.numImportedFuncs()+i))
		}
	}
}

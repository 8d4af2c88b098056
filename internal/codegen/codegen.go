// Package codegen turns an optimized IR program into a complete Wasm
// binary module (spec.md §5-§9): it assigns every binding a storage
// class, lays out linear memory, builds the function table for
// indirect dispatch, and emits one code body per IR function.
//
// Runtime value representation. Every source value -- number, boolean,
// string, function, undefined -- is represented uniformly as a single
// Wasm f64:
//
//   - a number is itself;
//   - a boolean is 1.0 (true) or 0.0 (false);
//   - undefined is the canonical quiet NaN;
//   - a string is the address of a [length][bytes] record, the length
//     written as a 5-byte LEB128 value, laid out once per distinct
//     literal in the Data section;
//   - a function value is the address of an 8-byte closure record,
//     {funcidx: i32, env: i32}, allocated on the heap;
//
// all encoded as the bit-identical f64 holding that integer address.
// This keeps one locals layout and one calling convention for every
// binding regardless of its source-level type, at the cost of not
// discriminating between, say, a string pointer and a number at
// runtime -- typeof falls back to the expression's statically inferred
// type (ir.Expr.Type) rather than a real tagged runtime check, and `+`
// is always a numeric f64.add that never concatenates strings. See
// DESIGN.md for the tradeoff this was
// chosen over (a NaN-boxed or tagged-union representation).
package codegen

import (
	"math"

	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/wasm"
)

// heapDataBase is where the compiler's own string/heap bookkeeping
// starts; address 0 is left unused so a zeroed i32 is never mistaken
// for a live pointer.
const heapDataBase = 16

// AddressTaken reports whether the binding at (depth, index) must live
// in a heap cell -- built once from est.CollectAddressTaken ahead of
// codegen, since the IR no longer carries the EST scope nodes that own
// this bookkeeping.
type AddressTaken func(depth, index int) bool

type generator struct {
	mod          *wasm.Module
	addressTaken AddressTaken

	wasmFuncIdx []wasm.FuncIdx         // ir func index -> wasm FuncIdx
	allFuncs    []*ir.Func             // ir func index -> its definition, for DirectAppl's callee
	globalIdx   map[int]wasm.GlobalIdx // depth-0 var index -> wasm global
	stringOff   map[string]int32
	heapBase    int32
	tableIdx    map[int]int // ir func index -> funcref Table position
	callSigs    map[int]wasm.TypeIdx // arg count -> call_indirect signature

	heapPtr wasm.GlobalIdx
	allocFn wasm.FuncIdx
}

// AddressTakenFromEST adapts est.CollectAddressTaken's result into the
// predicate Generate consumes.
func AddressTakenFromEST(m map[int]map[int]bool) AddressTaken {
	return func(depth, index int) bool {
		set, ok := m[depth]
		if !ok {
			return false
		}
		return set[index]
	}
}

func (g *generator) isAddressTaken(id ir.VarLocId) bool {
	return g.addressTaken(id.Depth, id.Index)
}

// undefinedValue is the canonical quiet NaN used to represent
// `undefined` in the all-f64 runtime value encoding.
var undefinedValue = math.NaN()

// DefaultMemoryPages is the initial linear memory size Generate uses
// when the caller has no preference of its own (4 pages = 256 KiB).
const DefaultMemoryPages = 4

// Generate translates prog into a complete Wasm module. entryExport, if
// non-empty, additionally exports the entry function under that name
// (the Start section always runs it regardless). memoryPages sets the
// module's initial linear memory size, in 64KiB Wasm pages; 0 falls
// back to DefaultMemoryPages.
func Generate(prog *ir.Program, addressTaken AddressTaken, entryExport string, memoryPages uint32) *wasm.Module {
	if memoryPages == 0 {
		memoryPages = DefaultMemoryPages
	}
	g := &generator{
		mod:          wasm.NewModule(),
		addressTaken: addressTaken,
		globalIdx:    make(map[int]wasm.GlobalIdx),
		callSigs:     make(map[int]wasm.TypeIdx),
		allFuncs:     prog.Funcs,
	}

	g.layoutStrings(prog)
	g.mod.Mem = &wasm.MemType{Limits: wasm.Limits{Min: memoryPages}}

	g.declareImports(prog.Imports)
	g.declareRuntime()
	g.declareGlobals(prog)
	g.reserveFuncs(prog)
	g.buildTable(prog)

	for i, fn := range prog.Funcs {
		g.compileFunc(i, fn, i == prog.EntryFunc)
	}

	if prog.EntryFunc >= 0 {
		idx := g.wasmFuncIdx[prog.EntryFunc]
		g.mod.Start = &idx
		if entryExport != "" {
			g.mod.Exports = append(g.mod.Exports, wasm.Export{Name: entryExport, Kind: wasm.ExportKindFunc, Index: uint32(idx)})
		}
	}
	g.mod.Exports = append(g.mod.Exports, wasm.Export{Name: "memory", Kind: wasm.ExportKindMem, Index: 0})

	return g.mod
}

// typeofStrings are the constant result strings typeof can produce; they
// are registered unconditionally so a typeof expression can reference
// one regardless of whether that exact literal also occurs in source.
var typeofStrings = []string{"number", "boolean", "string", "undefined", "function", "object"}

// layoutStrings assigns every distinct string literal in the program
// (plus the fixed typeof result strings) a byte offset into the Data
// section, then advances the heap's bump pointer base past it.
func (g *generator) layoutStrings(prog *ir.Program) {
	g.stringOff = make(map[string]int32)
	cursor := int32(heapDataBase)

	register := func(s string) {
		if _, seen := g.stringOff[s]; seen {
			return
		}
		off := cursor
		g.stringOff[s] = off
		bytes := append(wasm.EncodeU32Fixed5(uint32(len(s))), []byte(s)...)
		g.mod.Data = append(g.mod.Data, wasm.Data{Offset: wasm.ConstI32(off), Bytes: bytes})
		cursor += int32(len(bytes))
	}

	for _, fn := range prog.Funcs {
		walkExpr(fn.Body, func(e *ir.Expr) {
			if s, ok := e.Kind.(ir.PrimString); ok {
				register(s.Value)
			}
		})
	}
	for _, s := range typeofStrings {
		register(s)
	}

	// Round up to an 8-byte boundary so every f64 heap cell the
	// allocator hands out afterward is naturally aligned.
	if rem := cursor % 8; rem != 0 {
		cursor += 8 - rem
	}
	g.heapBase = cursor
}

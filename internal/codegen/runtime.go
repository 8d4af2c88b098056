package codegen

import "github.com/lhaig/wasmc/internal/ir"
import "github.com/lhaig/wasmc/internal/wasm"

// declareRuntime wires the compiler-synthesized bump allocator backing
// every heap cell (address-taken locals, closure records, function
// values): a mutable i32 global tracking the next free byte, seeded
// past the string data layoutStrings already reserved, and a tiny
// internal function that returns the current pointer and advances it
// by the requested size.
//
// The allocator never reclaims memory and never calls memory.grow: the
// linear memory Generate declares (sized by its memoryPages parameter,
// --memory-pages on the CLI) is assumed to be enough for the programs
// this compiler targets. A real implementation would grow on demand;
// this is a deliberate scope cut, not an oversight (see DESIGN.md).
func (g *generator) declareRuntime() {
	g.heapPtr = wasm.GlobalIdx(len(g.mod.Globals))
	g.mod.Globals = append(g.mod.Globals, wasm.Global{
		Type: wasm.GlobalType{Val: wasm.ValI32, Mut: wasm.Var},
		Init: wasm.ConstI32(g.heapBase),
	})

	sig := wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}}
	typeIdx := g.mod.TypeIndex(sig)
	g.allocFn = g.mod.ReserveFunc(typeIdx)

	lm := wasm.NewLocalsManager(1)
	e := wasm.NewExprEmitter()
	result := lm.Add(wasm.ValI32)

	e.Emit(wasm.OpGlobalGet)
	e.EmitU32(uint64(g.heapPtr))
	e.Emit(wasm.OpLocalSet)
	e.EmitU32(uint64(result))

	e.Emit(wasm.OpGlobalGet)
	e.EmitU32(uint64(g.heapPtr))
	e.Emit(wasm.OpLocalGet)
	e.EmitU32(0)
	e.Emit(wasm.OpI32Add)
	e.Emit(wasm.OpGlobalSet)
	e.EmitU32(uint64(g.heapPtr))

	e.Emit(wasm.OpLocalGet)
	e.EmitU32(uint64(result))

	cb := &wasm.CodeBuilder{Locals: lm, Scratch: wasm.NewScratch(lm), Emitter: e}
	g.mod.CommitFunc(g.allocFn, cb.Finish())
}

// declareImports binds every host import at the uniform all-f64
// signature: imports are host functions operating on the same runtime
// value representation as everything else, with no leading env
// parameter (only user-level functions taking part in closures need
// one).
func (g *generator) declareImports(imports []*ir.Import) {
	for _, imp := range imports {
		params := make([]wasm.ValType, len(imp.Params))
		for i := range params {
			params[i] = wasm.ValF64
		}
		var results []wasm.ValType
		if imp.Result != nil {
			results = []wasm.ValType{wasm.ValF64}
		}
		typeIdx := g.mod.TypeIndex(wasm.FuncType{Params: params, Results: results})
		g.mod.AddImport(wasm.Import{Module: imp.Module, Name: imp.Name, Kind: wasm.ImportKindFunc, Type: typeIdx})
	}
}

// declareGlobals allocates one mutable f64 Wasm global per depth-0
// binding used anywhere in the program. It walks every function body up
// front and calls ensureGlobal for each depth-0 VarName, Assign and
// Declaration, since the IR carries no registry of which depth-0
// indices exist besides what Programs/Funcs reference.
func (g *generator) declareGlobals(prog *ir.Program) {
	record := func(e *ir.Expr) {
		switch k := e.Kind.(type) {
		case ir.VarName:
			if k.Target.Depth == 0 {
				g.ensureGlobal(k.Target.Index)
			}
		case ir.Assign:
			if k.Target.Depth == 0 {
				g.ensureGlobal(k.Target.Index)
			}
		case ir.Declaration:
			if k.Local.Depth == 0 {
				g.ensureGlobal(k.Local.Index)
			}
		}
	}
	for _, fn := range prog.Funcs {
		walkExpr(fn.Body, record)
	}
}

func (g *generator) ensureGlobal(index int) wasm.GlobalIdx {
	if idx, ok := g.globalIdx[index]; ok {
		return idx
	}
	init := []byte{wasm.OpF64Const}
	init = append(init, wasm.EncodeF64(undefinedValue)...)
	init = append(init, wasm.OpEnd)

	idx := wasm.GlobalIdx(len(g.mod.Globals))
	g.mod.Globals = append(g.mod.Globals, wasm.Global{
		Type: wasm.GlobalType{Val: wasm.ValF64, Mut: wasm.Var},
		Init: init,
	})
	g.globalIdx[index] = idx
	return idx
}

// reserveFuncs assigns every IR function a Wasm function index and
// signature ahead of compiling any body, so a forward or recursive
// call site always has a FuncIdx to reference. The entry function gets
// Wasm's mandatory niladic, result-less Start signature; every other
// function takes a leading i32 env pointer (even when it captures
// nothing) so every function sharing an arity shares one call_indirect
// signature.
func (g *generator) reserveFuncs(prog *ir.Program) {
	g.wasmFuncIdx = make([]wasm.FuncIdx, len(prog.Funcs))
	for i, fn := range prog.Funcs {
		sig := g.funcSignature(i, fn, prog)
		typeIdx := g.mod.TypeIndex(sig)
		g.wasmFuncIdx[i] = g.mod.ReserveFunc(typeIdx)
	}
}

func (g *generator) funcSignature(i int, fn *ir.Func, prog *ir.Program) wasm.FuncType {
	if i == prog.EntryFunc {
		return wasm.FuncType{}
	}
	params := make([]wasm.ValType, 0, len(fn.Params)+1)
	params = append(params, wasm.ValI32)
	for range fn.Params {
		params = append(params, wasm.ValF64)
	}
	return wasm.FuncType{Params: params, Results: []wasm.ValType{wasm.ValF64}}
}

// callSignature returns the shared call_indirect signature for a call
// site passing argc arguments: (env:i32, f64 x argc) -> f64. Every
// function of that arity uses the same signature (funcSignature always
// adds the env param), so one call_indirect site can dispatch to any
// of them.
func (g *generator) callSignature(argc int) wasm.TypeIdx {
	if idx, ok := g.callSigs[argc]; ok {
		return idx
	}
	params := make([]wasm.ValType, 0, argc+1)
	params = append(params, wasm.ValI32)
	for i := 0; i < argc; i++ {
		params = append(params, wasm.ValF64)
	}
	idx := g.mod.TypeIndex(wasm.FuncType{Params: params, Results: []wasm.ValType{wasm.ValF64}})
	g.callSigs[argc] = idx
	return idx
}

// buildTable populates the single funcref Table/Element pair with
// every function that ever appears as a PrimFunc value, in order of
// first appearance, so Appl's call_indirect has a stable table index
// to dispatch through.
func (g *generator) buildTable(prog *ir.Program) {
	var order []int
	seen := make(map[int]bool)
	record := func(e *ir.Expr) {
		pf, ok := e.Kind.(ir.PrimFunc)
		if !ok {
			return
		}
		for _, idx := range pf.FuncIdxs {
			if !seen[idx] {
				seen[idx] = true
				order = append(order, idx)
			}
		}
	}
	for _, fn := range prog.Funcs {
		walkExpr(fn.Body, record)
	}
	if len(order) == 0 {
		return
	}

	g.tableIdx = make(map[int]int, len(order))
	funcs := make([]wasm.FuncIdx, len(order))
	for tblPos, irIdx := range order {
		g.tableIdx[irIdx] = tblPos
		funcs[tblPos] = g.wasmFuncIdx[irIdx]
	}
	g.mod.Table = &wasm.TableType{Limits: wasm.Limits{Min: uint32(len(funcs))}}
	g.mod.Elems = append(g.mod.Elems, wasm.Elem{Table: 0, Offset: wasm.ConstI32(0), Funcs: funcs})
}

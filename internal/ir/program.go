package ir

// Import describes one host-provided function bound ahead of lowering
// by parse_imports (spec.md §6.3).
type Import struct {
	Module  string
	Name    string
	Params  []VarType
	Result  *VarType // nil for a void import
}

// Func is one IR function: its parameters (by VarLocId, always at the
// function's own depth), declared result type, and root expression.
type Func struct {
	Name       string
	Depth      int // this function's own scope depth; 0 for the entry function
	Params     []VarLocId
	ResultType *VarType
	Body       *Expr

	// NumCaptured is the number of leading closure-captured variables
	// threaded into this function ahead of Params, when it is an inner
	// function produced by a PrimFunc; 0 for top-level functions.
	NumCaptured int

	// Captures names, in order, which outer-scope bindings this
	// function's closure env record carries at each position -- the same
	// list a MakeClosure building this function's PrimFunc value builds
	// its Cells from. len(Captures) == NumCaptured.
	Captures []VarLocId
}

// Program is the whole IR unit handed to the optimizer and codegen: the
// function table, the import table, and the index of the designated
// entry function.
type Program struct {
	Funcs     []*Func
	Imports   []*Import
	EntryFunc int // index into Funcs; -1 if the program has no entry point
}

package ir

// Expr is one node of the typed IR expression tree (spec.md §3.3).
// Type == nil is the bottom/empty type (⊥): the expression never yields
// a value because it diverges or is statically unreachable. This is the
// signal the unreachable-code optimizer propagates outward.
type Expr struct {
	Type *VarType
	Kind ExprKind
}

// ExprType returns the widened static type, or nil for the bottom type.
func (e *Expr) ExprType() *VarType { return e.Type }

// ExprKind is the sum type of every IR expression shape, mirrored on
// the teacher's interface+marker-method idiom for Stmt/Expr.
type ExprKind interface {
	exprKindNode()
}

// PrimUndefined is the `undefined` constant.
type PrimUndefined struct{}

func (PrimUndefined) exprKindNode() {}

// PrimNumber is a numeric literal.
type PrimNumber struct {
	Value float64
}

func (PrimNumber) exprKindNode() {}

// PrimBoolean is a boolean literal.
type PrimBoolean struct {
	Value bool
}

func (PrimBoolean) exprKindNode() {}

// PrimString is a string literal.
type PrimString struct {
	Value string
}

func (PrimString) exprKindNode() {}

// PrimFunc produces a first-class function value: an index into the
// module's function table plus the closure record capturing the
// variables the referenced function reads/writes from outer scopes.
type PrimFunc struct {
	FuncIdxs []int
	Closure  *Expr // nil when the function captures nothing; see MakeClosure
}

func (PrimFunc) exprKindNode() {}

// MakeClosure builds the closure record PrimFunc.Closure evaluates to:
// one heap-cell reference per entry in Cells, in order, feeding the
// closure-captured parameters of FuncIdx (spec.md §4.6/§4.8).
type MakeClosure struct {
	FuncIdx int
	Cells   []VarLocId
}

func (MakeClosure) exprKindNode() {}

// TypeCast implements the source language's dynamic type tests: Test is
// evaluated, compared against Expected; CreateNarrowLocal requests a
// scratch local binding the narrowed value for True/False branches.
type TypeCast struct {
	Test             *Expr
	Expected         VarType
	CreateNarrowLocal bool
	True             *Expr
	False            *Expr
}

func (TypeCast) exprKindNode() {}

// PrimInst names a runtime primitive operation PrimAppl invokes (e.g.
// arithmetic, comparison); the set is fixed by the source language's
// runtime library.
type PrimInst int

const (
	PrimAdd PrimInst = iota
	PrimSub
	PrimMul
	PrimDiv
	PrimMod
	PrimEq
	PrimStrictEq
	PrimNeq
	PrimStrictNeq
	PrimLt
	PrimLe
	PrimGt
	PrimGe
	PrimBitAnd
	PrimBitOr
	PrimBitXor
	PrimShl
	PrimShr
	PrimNeg
	PrimNot
	PrimTypeof
)

// PrimAppl applies a known runtime primitive to its arguments.
type PrimAppl struct {
	Inst PrimInst
	Args []*Expr
}

func (PrimAppl) exprKindNode() {}

// Appl is an indirect (dynamically dispatched) call: Callee evaluates to
// a function value at runtime.
type Appl struct {
	Callee *Expr
	Args   []*Expr
}

func (Appl) exprKindNode() {}

// DirectAppl is a call whose callee resolved statically to a known IR
// function, letting codegen emit a direct `call` instead of an indirect
// call through the function table.
type DirectAppl struct {
	FuncIdx int
	Args    []*Expr
}

func (DirectAppl) exprKindNode() {}

// Conditional is `cond ? true : false`, also used to lower `if`
// statements and short-circuit &&/||.
type Conditional struct {
	Cond  *Expr
	True  *Expr
	False *Expr
}

func (Conditional) exprKindNode() {}

// Declaration introduces a new binding, evaluating Expr for its initial
// value.
type Declaration struct {
	Local VarLocId
	Expr  *Expr
}

func (Declaration) exprKindNode() {}

// Assign stores Expr's value into Target.
type Assign struct {
	Target VarLocId
	Expr   *Expr
}

func (Assign) exprKindNode() {}

// Return exits the enclosing function with Expr's value. Its own Type is
// always the bottom type: control never returns to the expression
// sequence a Return sits in.
type Return struct {
	Expr *Expr
}

func (Return) exprKindNode() {}

// Sequence evaluates Content in order. Its Type is the Type of its last
// retained element (see the optimizer for truncation on a None-typed
// element).
type Sequence struct {
	Content []*Expr
}

func (Sequence) exprKindNode() {}

// VarName reads the current value of a bound variable.
type VarName struct {
	Target VarLocId
}

func (VarName) exprKindNode() {}

// Break exits the nearest (or a labeled) enclosing loop/block.
type Break struct {
	Label string
}

func (Break) exprKindNode() {}

// Continue jumps back to the top of the named loop, re-running its
// condition check.
type Continue struct {
	Label string
}

func (Continue) exprKindNode() {}

// Loop repeats Body indefinitely; the only way out is a Break/Continue/
// Return/Trap reaching it from within. Lowering always nests a Loop
// inside a NamedBlock so `break` (exit) and `continue` (repeat) target
// distinct labels, matching Wasm's own loop/block split (spec.md §9).
type Loop struct {
	Label string
	Body  *Expr
}

func (Loop) exprKindNode() {}

// NamedBlock is a single-entry, single-exit region Break can jump out
// of by label; unlike Loop it does not repeat.
type NamedBlock struct {
	Label string
	Body  *Expr
}

func (NamedBlock) exprKindNode() {}

// Trap represents an unconditional runtime failure (e.g. an
// UnsupportedNode construct lowered to a trap so codegen still produces
// a valid, if immediately-failing, module).
type Trap struct {
	Reason string
}

func (Trap) exprKindNode() {}

// ImportFn references a host-provided function bound by parse_imports.
type ImportFn struct {
	Index int
}

func (ImportFn) exprKindNode() {}

// Package ir is the typed intermediate representation lowering produces
// and the optimizer/codegen consume: see spec.md §3.3.
package ir

import "github.com/lhaig/wasmc/internal/resolver"

// VarLocId re-exports the resolver's binding identity so IR nodes can
// reference declarations/uses without importing resolver everywhere IR
// is consumed.
type VarLocId = resolver.VarLocId

// VarType is the coarse, pre-optimization static type lattice assigned
// to IR expressions. It widens every source value to one of a handful
// of buckets; vartype = None (see Expr.Type) is the separate bottom
// element, not a member of this enum.
type VarType int

const (
	TAny VarType = iota
	TNumber
	TBoolean
	TString
	TUndefined
	TFunc
	TStructRef
)

func (t VarType) String() string {
	switch t {
	case TAny:
		return "any"
	case TNumber:
		return "number"
	case TBoolean:
		return "boolean"
	case TString:
		return "string"
	case TUndefined:
		return "undefined"
	case TFunc:
		return "func"
	case TStructRef:
		return "structref"
	default:
		return "unknown"
	}
}

// Lub computes the least upper bound of two optional var types, used by
// Conditional: None only when both operands are None, otherwise the
// widest of the two (TAny dominates any mismatch).
func Lub(a, b *VarType) *VarType {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a == *b {
		v := *a
		return &v
	}
	v := TAny
	return &v
}

// Some is a convenience constructor for a non-bottom VarType pointer.
func Some(t VarType) *VarType {
	v := t
	return &v
}

// Package tac implements TAC lowering (spec.md §4.5): the flat
// three-address instruction representation an AST function body lowers
// to, and the static-data records that represent global/static storage.
//
// Grounded on the teacher's pkg/compiler/codegen.go for the overall shape
// (a single-pass lowering walk that mints labels off a monotonic counter),
// with break/continue targets derived from the labels identifier and label
// resolution already attached and one static record per string literal, adapted
// from GoCPU assembly text emission to an in-memory instruction list
// spec.md §6 describes as the TAC program's external contract.
package tac

import "fmt"

// Val is an operand: a sign-extended 64-bit constant or a named slot in
// the symbol table (spec.md §4.5 "All operands are Vals").
type Val interface {
	valNode()
	String() string
}

// Const is a constant operand. Bits holds the 64-bit two's-complement (or
// zero-extended, for Unsigned) pattern; Unsigned records which semantics
// produced it, for instructions that need to know (e.g. a cmp against it).
type Const struct {
	Bits     uint64
	Unsigned bool
}

func (Const) valNode() {}
func (c Const) String() string {
	if c.Unsigned {
		return fmt.Sprintf("%d", c.Bits)
	}
	return fmt.Sprintf("%d", int64(c.Bits))
}

// ConstInt builds a Const from a signed value.
func ConstInt(v int64) Const { return Const{Bits: uint64(v)} }

// ConstUint builds a Const from an unsigned value.
func ConstUint(v uint64) Const { return Const{Bits: v, Unsigned: true} }

// Name is a reference to a symbol-table slot: a global, a local scalar,
// or a lowering-minted temporary (all three share one namespace, minted
// by the same counter that mints unique identifiers, per spec.md §5).
type Name struct {
	Ident string
}

func (Name) valNode()     {}
func (n Name) String() string { return n.Ident }

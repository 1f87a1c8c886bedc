// Package ast implements the Program/Decl/Stmt/Expr/Type sum types
// spec.md §3 specifies. Every node carries a source.Ptr for diagnostics,
// and Expr nodes carry a ValueType filled in by the typechecker (spec.md
// §4.4, §8 property 1).
//
// The exprNode()/stmtNode() marker-method idiom and the node shapes
// themselves are grounded on the teacher's pkg/compiler/ast.go, expanded
// from the teacher's single int/byte/struct/pointer-level VariableDecl
// encoding to spec.md §3's full sum types (explicit cast nodes, separate
// goto/labeled/switch/case/default statements, storage-class declarations).
package ast

import (
	"ccfront/pkg/source"
	"ccfront/pkg/types"
)

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	Loc() source.Ptr
	Type() *types.Type
	SetType(*types.Type)
}

type exprBase struct {
	Pos       source.Ptr
	ValueType *types.Type
}

func (e *exprBase) exprNode()             {}
func (e *exprBase) Loc() source.Ptr       { return e.Pos }
func (e *exprBase) Type() *types.Type     { return e.ValueType }
func (e *exprBase) SetType(t *types.Type) { e.ValueType = t }

// IntLit is a literal of kind int/uint/long/ulong/char (spec.md §3 Expr).
type IntLit struct {
	exprBase
	Kind  LitKind
	IVal  int64  // signed encoding (int, long, char)
	UVal  uint64 // unsigned encoding (uint, ulong)
}

type LitKind int

const (
	LitInt LitKind = iota
	LitUInt
	LitLong
	LitULong
	LitChar
)

// StringLit is a string literal, stored as a byte slice (spec.md §3).
type StringLit struct {
	exprBase
	Value source.Slice
}

// Variable is a use of an identifier; Name is rewritten in place to the
// unique name by identifier resolution (spec.md §4.2).
type Variable struct {
	exprBase
	Name string
}

// Assign is `lhs = rhs` or a compound assignment (`+=` etc., Op != "").
// Compound assignments are decomposed into base-op-then-assign during
// typechecking (spec.md §4.4); Op records which compound form so that
// decomposition (and the TAC lowerer) knows the operator.
type Assign struct {
	exprBase
	Op  CompoundOp // OpNone for plain "="
	LHS Expr
	RHS Expr
}

type CompoundOp int

const (
	OpNone CompoundOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
)

// PostAssign is `operand++` / `operand--`. The parser keeps the postfix
// forms as this node, with Op saying which; only the prefix forms are
// desugared, to an Assign with `+= 1` / `-= 1`.
type PostAssign struct {
	exprBase
	Op      PostOp
	Operand Expr
}

type PostOp int

const (
	PostInc PostOp = iota
	PostDec
)

// Unary is one of ~ - ! applied to Operand.
type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

type UnaryOp int

const (
	UnaryComplement UnaryOp = iota
	UnaryNegate
	UnaryNot
)

// Binary is a non-short-circuiting binary operator.
type Binary struct {
	exprBase
	Op  BinOp
	LHS Expr
	RHS Expr
}

type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNotEq
	BinLess
	BinGreater
	BinLessEq
	BinGreaterEq
	BinLogAnd
	BinLogOr
)

// IsLogical reports whether op is && or ||, which short-circuit (spec.md
// §4.5: "Short-circuit && / || lower to compare + conditional-jump").
func (op BinOp) IsLogical() bool { return op == BinLogAnd || op == BinLogOr }

// Conditional is the ternary `c ? t : e`.
type Conditional struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

// Call is `name(args...)`.
type Call struct {
	exprBase
	Name string
	Args []Expr
}

// Cast is an explicit (or implicit-made-explicit) conversion to Target.
// spec.md §8 property 1: every implicit conversion site is materialized
// as one of these nodes.
type Cast struct {
	exprBase
	Target  *types.Type
	Operand Expr
}

// AddrOf is `&operand`; operand must be an lvalue (spec.md §4.4).
type AddrOf struct {
	exprBase
	Operand Expr
}

// Deref is `*operand`; operand must have pointer type.
type Deref struct {
	exprBase
	Operand Expr
}

// Subscript is `base[index]`.
type Subscript struct {
	exprBase
	Base  Expr
	Index Expr
}

// IsLvalue reports whether e designates a storage location (spec.md
// GLOSSARY "Lvalue"): a variable, dereference, subscript, or string
// literal.
func IsLvalue(e Expr) bool {
	switch e.(type) {
	case *Variable, *Deref, *Subscript, *StringLit:
		return true
	default:
		return false
	}
}

// IsAssignable reports whether e is an lvalue other than a string literal
// (spec.md GLOSSARY "Assignable").
func IsAssignable(e Expr) bool {
	if _, ok := e.(*StringLit); ok {
		return false
	}
	return IsLvalue(e)
}

// IsNullPointerConstant reports whether e is an integer literal expression
// whose value is zero (spec.md GLOSSARY).
func IsNullPointerConstant(e Expr) bool {
	lit, ok := e.(*IntLit)
	if !ok {
		return false
	}
	switch lit.Kind {
	case LitUInt, LitULong:
		return lit.UVal == 0
	default:
		return lit.IVal == 0
	}
}

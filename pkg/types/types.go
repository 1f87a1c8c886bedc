// Package types implements the Type sum type (spec.md §3) and the
// arithmetic/conversion rules the typechecker applies (spec.md §4.4).
//
// Its shape — a tagged Kind plus pointer/array/function payloads, value
// equality via a deep Equal rather than pointer identity — is grounded on
// the teacher's pkg/compiler/symtable.go TypeInfo, generalized from the
// teacher's scalar-or-array-or-struct/byte/pointer-level encoding to the
// full integer-kind lattice spec.md §3 requires.
package types

import "fmt"

// Kind discriminates the Type sum.
type Kind int

const (
	Char Kind = iota
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Pointer
	Array
	Function
	Void
)

// Type is structurally immutable; two *Type values are compared with
// Equal, never with ==, because Pointer/Array/Function nest children.
type Type struct {
	Kind Kind

	Referenced *Type // Pointer
	Element    *Type // Array
	Size       int   // Array: element count

	Return *Type   // Function
	Params []*Type // Function, already array-decayed
}

// Width returns the target byte width of an integer kind (spec.md §3:
// 1,1,1,2,2,4,4,8,8 for char,schar,uchar,short,ushort,int,uint,long,ulong).
// Pointers are fixed at 8 bytes (SPEC_FULL.md §D.3's pointer-width decision).
func (t *Type) Width() int {
	switch t.Kind {
	case Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt:
		return 4
	case Long, ULong:
		return 8
	case Pointer:
		return 8
	case Array:
		return t.Element.Width() * t.Size
	default:
		return 0
	}
}

var (
	TChar   = &Type{Kind: Char}
	TSChar  = &Type{Kind: SChar}
	TUChar  = &Type{Kind: UChar}
	TShort  = &Type{Kind: Short}
	TUShort = &Type{Kind: UShort}
	TInt    = &Type{Kind: Int}
	TUInt   = &Type{Kind: UInt}
	TLong   = &Type{Kind: Long}
	TULong  = &Type{Kind: ULong}
	TVoid   = &Type{Kind: Void}
)

func NewPointer(referenced *Type) *Type { return &Type{Kind: Pointer, Referenced: referenced} }
func NewArray(element *Type, size int) *Type {
	return &Type{Kind: Array, Element: element, Size: size}
}
func NewFunction(ret *Type, params []*Type) *Type {
	return &Type{Kind: Function, Return: ret, Params: params}
}

// IsInteger reports whether t is one of the nine fixed-width integer kinds.
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case Char, SChar, UChar, Short, UShort, Int, UInt, Long, ULong:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is one of the signed integer kinds (spec.md
// §4.4: char counts as signed — "char defaults to signed here", spec.md §3).
func (t *Type) IsSigned() bool {
	switch t.Kind {
	case Char, SChar, Short, Int, Long:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether t is one of the unsigned integer kinds.
func (t *Type) IsUnsigned() bool {
	switch t.Kind {
	case UChar, UShort, UInt, ULong:
		return true
	default:
		return false
	}
}

// IsCharLike reports whether t is char, schar, or uchar (spec.md §4.4).
func (t *Type) IsCharLike() bool {
	return t.Kind == Char || t.Kind == SChar || t.Kind == UChar
}

// IsArithmetic reports whether t is one of the integer kinds (this subset
// has no floating-point types, spec.md §1 Non-goals).
func (t *Type) IsArithmetic() bool { return t.IsInteger() }

// IsScalar reports whether t is arithmetic or a pointer.
func (t *Type) IsScalar() bool { return t.IsArithmetic() || t.Kind == Pointer }

// Equal implements spec.md §3's type-equality invariant: two types are
// equal iff structurally identical after array-to-pointer decay of
// function parameters. Array sizes must match for array/array equality
// (this is a stricter requirement than parameter decay, matching the
// rest of §3's data model, which always carries array size explicitly).
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Pointer:
		return t.Referenced.Equal(o.Referenced)
	case Array:
		return t.Size == o.Size && t.Element.Equal(o.Element)
	case Function:
		if !t.Return.Equal(o.Return) || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !decay(t.Params[i]).Equal(decay(o.Params[i])) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// decay converts an array parameter type to pointer-to-element, per
// spec.md §3's "Array parameter types are decayed to pointer" invariant.
func decay(t *Type) *Type {
	if t.Kind == Array {
		return NewPointer(t.Element)
	}
	return t
}

// Decay is the exported form of decay, used by the parser/typechecker
// when processing a declarator's parameter list (spec.md §3, §4.4).
func Decay(t *Type) *Type { return decay(t) }

func (t *Type) String() string {
	switch t.Kind {
	case Char:
		return "char"
	case SChar:
		return "signed char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case Void:
		return "void"
	case Pointer:
		return fmt.Sprintf("%s*", t.Referenced)
	case Array:
		return fmt.Sprintf("%s[%d]", t.Element, t.Size)
	case Function:
		return fmt.Sprintf("%s(...)->%s", t.Params, t.Return)
	default:
		return "?"
	}
}

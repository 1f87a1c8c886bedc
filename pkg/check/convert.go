package check

import (
	"fmt"

	"ccfront/pkg/ast"
	"ccfront/pkg/types"
)

// promote implements the char-kind-promotes-to-int half of common_type
// (spec.md §4.4).
func promote(t *types.Type) *types.Type {
	if t.IsCharLike() {
		return types.TInt
	}
	return t
}

// CommonType implements common_type (spec.md §4.4 "Usual arithmetic
// conversions"): promote char-kind operands to int; if the (promoted)
// types are then equal, that is the common type; if they share a width,
// the unsigned type wins; otherwise the wider type wins.
func CommonType(a, b *types.Type) *types.Type {
	pa, pb := promote(a), promote(b)
	if pa.Equal(pb) {
		return pa
	}
	wa, wb := pa.Width(), pb.Width()
	if wa == wb {
		if pa.IsUnsigned() {
			return pa
		}
		return pb
	}
	if wa > wb {
		return pa
	}
	return pb
}

// wrapCast materializes an implicit conversion as an explicit Cast node
// (spec.md §8 property 1), or returns e unchanged when its value type
// already matches target.
func wrapCast(e ast.Expr, target *types.Type) ast.Expr {
	if e.Type() != nil && e.Type().Equal(target) {
		return e
	}
	c := &ast.Cast{Target: target, Operand: e}
	c.Pos = e.Loc()
	c.SetType(target)
	return c
}

// ConvertByAssignment implements convert_by_assignment (spec.md §4.4):
// same type needs nothing; arithmetic-to-arithmetic inserts a cast; a
// null-pointer-constant source targeting a pointer inserts a cast;
// anything else is an error.
func ConvertByAssignment(e ast.Expr, target *types.Type) (ast.Expr, error) {
	if e.Type() != nil && e.Type().Equal(target) {
		return e, nil
	}
	if e.Type().IsArithmetic() && target.IsArithmetic() {
		return wrapCast(e, target), nil
	}
	if target.Kind == types.Pointer && ast.IsNullPointerConstant(e) {
		return wrapCast(e, target), nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", e.Type(), target)
}

// decayArray implements the array-to-pointer decay rule (spec.md §4.4):
// any expression of array type appearing in a value context becomes
// `&arr` with pointer-to-element type.
func decayArray(e ast.Expr) ast.Expr {
	t := e.Type()
	if t == nil || t.Kind != types.Array {
		return e
	}
	a := &ast.AddrOf{Operand: e}
	a.Pos = e.Loc()
	a.SetType(types.NewPointer(t.Element))
	return a
}

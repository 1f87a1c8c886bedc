package check

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/source"
	"ccfront/pkg/types"
)

// checkInitializer typechecks a local (non-static) variable's initializer
// in place: a scalar target assignment-converts a single expression; an
// array target recurses element-wise over a compound initializer,
// zero-padding any missing tail (spec.md §4.4 "Initializers"). Unlike
// foldStaticInit, the result need not be a compile-time constant.
func (c *Checker) checkInitializer(init ast.Initializer, target *types.Type, pos source.Ptr) (ast.Initializer, error) {
	switch n := init.(type) {
	case ast.SingleInit:
		if target.Kind == types.Array {
			sl, ok := n.Expr.(*ast.StringLit)
			if !ok {
				return nil, c.errAt(pos, "array must be initialized with a compound initializer or a string literal")
			}
			return c.checkStringInit(sl, target)
		}
		checked, err := c.checkValue(n.Expr)
		if err != nil {
			return nil, err
		}
		converted, err := ConvertByAssignment(checked, target)
		if err != nil {
			return nil, c.errAt(n.Expr.Loc(), "%s", err.Error())
		}
		return ast.SingleInit{Expr: converted}, nil

	case ast.CompoundInit:
		if target.Kind != types.Array {
			return nil, c.errAt(pos, "compound initializer requires an array target")
		}
		if len(n.Elements) > target.Size {
			return nil, c.errAt(pos, "too many initializers for array")
		}
		elems := make([]ast.Initializer, 0, target.Size)
		for _, el := range n.Elements {
			checkedEl, err := c.checkInitializer(el, target.Element, pos)
			if err != nil {
				return nil, err
			}
			elems = append(elems, checkedEl)
		}
		for len(elems) < target.Size {
			elems = append(elems, zeroInitializer(target.Element))
		}
		return ast.CompoundInit{Elements: elems}, nil

	default:
		return nil, c.errAt(pos, "unrecognized initializer")
	}
}

func (c *Checker) checkStringInit(sl *ast.StringLit, target *types.Type) (ast.Initializer, error) {
	if !target.Element.IsCharLike() {
		return nil, c.errAt(sl.Loc(), "cannot initialize a non-char array with a string literal")
	}
	if target.Size < sl.Value.Len() {
		return nil, c.errAt(sl.Loc(), "initializer string is too long for the array")
	}
	checked, err := c.checkExpr(sl)
	if err != nil {
		return nil, err
	}
	checked.SetType(target)
	return ast.SingleInit{Expr: checked}, nil
}

// foldStaticInit implements eval_const applied to a file-scope or
// static-local initializer (spec.md §4.4): every scalar must reduce to a
// compile-time constant; compound initializers fold element-by-element
// and append a zero-fill descriptor, measured in bytes, for any missing
// tail.
func (c *Checker) foldStaticInit(init ast.Initializer, target *types.Type, pos source.Ptr) (ast.Initializer, []StaticInit, error) {
	switch n := init.(type) {
	case ast.SingleInit:
		if target.Kind == types.Array {
			sl, ok := n.Expr.(*ast.StringLit)
			if !ok {
				return nil, nil, c.errAt(pos, "global array initializer must be a string literal or compound initializer")
			}
			rewritten, err := c.checkStringInit(sl, target)
			if err != nil {
				return nil, nil, err
			}
			data := foldStringBytes(sl, target)
			return rewritten, data, nil
		}
		checked, err := c.checkValue(n.Expr)
		if err != nil {
			return nil, nil, err
		}
		converted, err := ConvertByAssignment(checked, target)
		if err != nil {
			return nil, nil, c.errAt(n.Expr.Loc(), "%s", err.Error())
		}
		val, _, ok := EvalConst(converted)
		if !ok {
			return nil, nil, c.errAt(n.Expr.Loc(), "initializer is not a compile-time constant")
		}
		return ast.SingleInit{Expr: converted}, []StaticInit{{Bytes: encodeInt(val, target)}}, nil

	case ast.CompoundInit:
		if target.Kind != types.Array {
			return nil, nil, c.errAt(pos, "compound initializer requires an array target")
		}
		if len(n.Elements) > target.Size {
			return nil, nil, c.errAt(pos, "too many initializers for array")
		}
		elems := make([]ast.Initializer, 0, target.Size)
		var data []StaticInit
		for _, el := range n.Elements {
			rewrittenEl, elData, err := c.foldStaticInit(el, target.Element, pos)
			if err != nil {
				return nil, nil, err
			}
			elems = append(elems, rewrittenEl)
			data = append(data, elData...)
		}
		if missing := target.Size - len(n.Elements); missing > 0 {
			data = append(data, StaticInit{ZeroLen: missing * target.Element.Width()})
			for i := 0; i < missing; i++ {
				elems = append(elems, zeroInitializer(target.Element))
			}
		}
		return ast.CompoundInit{Elements: elems}, data, nil

	default:
		return nil, nil, c.errAt(pos, "unrecognized initializer")
	}
}

func foldStringBytes(sl *ast.StringLit, target *types.Type) []StaticInit {
	bytes := append([]byte(nil), sl.Value.Bytes()...)
	bytes = append(bytes, 0)
	if len(bytes) > target.Size {
		bytes = bytes[:target.Size]
	}
	data := []StaticInit{{Bytes: bytes}}
	if rem := target.Width() - len(bytes); rem > 0 {
		data = append(data, StaticInit{ZeroLen: rem})
	}
	return data
}

// zeroInitializer builds the implicit zero-valued initializer used to pad
// a short compound initializer (spec.md §4.4).
func zeroInitializer(t *types.Type) ast.Initializer {
	if t.Kind == types.Array {
		elems := make([]ast.Initializer, t.Size)
		for i := range elems {
			elems[i] = zeroInitializer(t.Element)
		}
		return ast.CompoundInit{Elements: elems}
	}
	lit := &ast.IntLit{Kind: ast.LitInt, IVal: 0}
	lit.SetType(t)
	return ast.SingleInit{Expr: lit}
}

// encodeInt renders val's low target.Width() bytes little-endian, the
// representation TAC lowering's static-data records and the interpreter's
// byte-addressed globals share.
func encodeInt(val int64, target *types.Type) []byte {
	width := target.Width()
	u := uint64(val)
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

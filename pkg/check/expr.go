package check

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/types"
)

// checkValue typechecks e and applies array-to-pointer decay, the form
// every operand used for its value (rather than as an assignment target
// or the operand of `&`) requires (spec.md §4.4).
func (c *Checker) checkValue(e ast.Expr) (ast.Expr, error) {
	checked, err := c.checkExpr(e)
	if err != nil {
		return nil, err
	}
	return decayArray(checked), nil
}

func (c *Checker) checkExpr(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		switch n.Kind {
		case ast.LitInt:
			n.SetType(types.TInt)
		case ast.LitUInt:
			n.SetType(types.TUInt)
		case ast.LitLong:
			n.SetType(types.TLong)
		case ast.LitULong:
			n.SetType(types.TULong)
		case ast.LitChar:
			n.SetType(types.TChar)
		}
		return n, nil

	case *ast.StringLit:
		n.SetType(types.NewArray(types.TChar, n.Value.Len()+1))
		return n, nil

	case *ast.Variable:
		sym, ok := c.syms[n.Name]
		if !ok {
			return nil, c.errAt(n.Loc(), "no declaration for name '%s'", n.Name)
		}
		if sym.Kind == KindFunc {
			return nil, c.errAt(n.Loc(), "'%s' is a function, not a variable", n.Name)
		}
		n.SetType(sym.Type)
		return n, nil

	case *ast.Call:
		return c.checkCall(n)

	case *ast.Assign:
		return c.checkAssign(n)

	case *ast.PostAssign:
		operand, err := c.checkExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		if !ast.IsAssignable(operand) {
			return nil, c.errAt(n.Loc(), "operand of postfix '++'/'--' is not assignable")
		}
		if !operand.Type().IsScalar() {
			return nil, c.errAt(n.Loc(), "operand of postfix '++'/'--' must be scalar")
		}
		n.Operand = operand
		n.SetType(operand.Type())
		return n, nil

	case *ast.Unary:
		return c.checkUnary(n)

	case *ast.Binary:
		return c.checkBinary(n)

	case *ast.Conditional:
		return c.checkConditional(n)

	case *ast.Cast:
		operand, err := c.checkValue(n.Operand)
		if err != nil {
			return nil, err
		}
		if n.Target.Kind == types.Array {
			return nil, c.errAt(n.Loc(), "cast requires a non-array target type")
		}
		n.Operand = operand
		n.SetType(n.Target)
		return n, nil

	case *ast.AddrOf:
		operand, err := c.checkExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		if !ast.IsLvalue(operand) {
			return nil, c.errAt(n.Loc(), "cannot take the address of a non-lvalue")
		}
		n.Operand = operand
		n.SetType(types.NewPointer(operand.Type()))
		return n, nil

	case *ast.Deref:
		operand, err := c.checkValue(n.Operand)
		if err != nil {
			return nil, err
		}
		if operand.Type().Kind != types.Pointer {
			return nil, c.errAt(n.Loc(), "cannot dereference a non-pointer")
		}
		n.Operand = operand
		n.SetType(operand.Type().Referenced)
		return n, nil

	case *ast.Subscript:
		return c.checkSubscript(n)

	default:
		return nil, c.errAt(e.Loc(), "unrecognized expression")
	}
}

func (c *Checker) checkCall(n *ast.Call) (ast.Expr, error) {
	sym, ok := c.syms[n.Name]
	if !ok || sym.Kind != KindFunc {
		return nil, c.errAt(n.Loc(), "call to undeclared function '%s'", n.Name)
	}
	if len(n.Args) != len(sym.Type.Params) {
		return nil, c.errAt(n.Loc(), "'%s' expects %d argument(s), got %d", n.Name, len(sym.Type.Params), len(n.Args))
	}
	for i, a := range n.Args {
		checked, err := c.checkValue(a)
		if err != nil {
			return nil, err
		}
		converted, err := ConvertByAssignment(checked, sym.Type.Params[i])
		if err != nil {
			return nil, c.errAt(a.Loc(), "argument %d to '%s': %s", i+1, n.Name, err.Error())
		}
		n.Args[i] = converted
	}
	n.SetType(sym.Type.Return)
	return n, nil
}

func (c *Checker) checkAssign(n *ast.Assign) (ast.Expr, error) {
	lhs, err := c.checkExpr(n.LHS)
	if err != nil {
		return nil, err
	}
	if !ast.IsAssignable(lhs) {
		return nil, c.errAt(n.Loc(), "left-hand side of assignment is not assignable")
	}
	n.LHS = lhs
	lhsType := lhs.Type()

	rhs, err := c.checkValue(n.RHS)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.OpNone {
		converted, err := ConvertByAssignment(rhs, lhsType)
		if err != nil {
			return nil, c.errAt(n.Loc(), "%s", err.Error())
		}
		n.RHS = converted
		n.SetType(lhsType)
		return n, nil
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub:
		switch {
		case lhsType.Kind == types.Pointer:
			if !rhs.Type().IsInteger() {
				return nil, c.errAt(n.Loc(), "pointer compound assignment requires an integer operand")
			}
		case lhsType.IsArithmetic() && rhs.Type().IsArithmetic():
			rhs, err = ConvertByAssignment(rhs, lhsType)
			if err != nil {
				return nil, c.errAt(n.Loc(), "%s", err.Error())
			}
		default:
			return nil, c.errAt(n.Loc(), "invalid operand types for compound assignment")
		}
	case ast.OpShl, ast.OpShr:
		if !lhsType.IsArithmetic() || !rhs.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "shift compound assignment requires arithmetic operands")
		}
		rhs = wrapCast(rhs, lhsType)
	default: // * / % & | ^
		if !lhsType.IsArithmetic() || !rhs.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "compound assignment requires arithmetic operands")
		}
		rhs, err = ConvertByAssignment(rhs, lhsType)
		if err != nil {
			return nil, c.errAt(n.Loc(), "%s", err.Error())
		}
	}
	n.RHS = rhs
	n.SetType(lhsType)
	return n, nil
}

func (c *Checker) checkUnary(n *ast.Unary) (ast.Expr, error) {
	operand, err := c.checkValue(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UnaryNot:
		if !operand.Type().IsScalar() {
			return nil, c.errAt(n.Loc(), "'!' requires a scalar operand")
		}
		n.Operand = operand
		n.SetType(types.TInt)
		return n, nil
	default: // complement, negate
		if !operand.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "operator does not accept a pointer operand")
		}
		pt := promote(operand.Type())
		operand = wrapCast(operand, pt)
		n.Operand = operand
		n.SetType(pt)
		return n, nil
	}
}

func (c *Checker) checkBinary(n *ast.Binary) (ast.Expr, error) {
	l, err := c.checkValue(n.LHS)
	if err != nil {
		return nil, err
	}
	r, err := c.checkValue(n.RHS)
	if err != nil {
		return nil, err
	}

	switch {
	case n.Op.IsLogical():
		if !l.Type().IsScalar() || !r.Type().IsScalar() {
			return nil, c.errAt(n.Loc(), "'&&'/'||' require scalar operands")
		}
		n.LHS, n.RHS = l, r
		n.SetType(types.TInt)
		return n, nil

	case n.Op == ast.BinEq || n.Op == ast.BinNotEq:
		lt, rt := l.Type(), r.Type()
		switch {
		case lt.Kind == types.Pointer && rt.Kind == types.Pointer:
			if !lt.Equal(rt) {
				return nil, c.errAt(n.Loc(), "comparison between incompatible pointer types")
			}
		case lt.Kind == types.Pointer:
			if !ast.IsNullPointerConstant(r) {
				return nil, c.errAt(n.Loc(), "cannot compare pointer with non-pointer")
			}
			r = wrapCast(r, lt)
		case rt.Kind == types.Pointer:
			if !ast.IsNullPointerConstant(l) {
				return nil, c.errAt(n.Loc(), "cannot compare pointer with non-pointer")
			}
			l = wrapCast(l, rt)
		default:
			if !lt.IsArithmetic() || !rt.IsArithmetic() {
				return nil, c.errAt(n.Loc(), "'=='/'!=' require arithmetic or pointer operands")
			}
			ct := CommonType(lt, rt)
			l, r = wrapCast(l, ct), wrapCast(r, ct)
		}
		n.LHS, n.RHS = l, r
		n.SetType(types.TInt)
		return n, nil

	case n.Op == ast.BinLess || n.Op == ast.BinGreater || n.Op == ast.BinLessEq || n.Op == ast.BinGreaterEq:
		if !l.Type().IsArithmetic() || !r.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "relational operators require arithmetic operands")
		}
		ct := CommonType(l.Type(), r.Type())
		l, r = wrapCast(l, ct), wrapCast(r, ct)
		n.LHS, n.RHS = l, r
		n.SetType(types.TInt)
		return n, nil

	case n.Op == ast.BinShl || n.Op == ast.BinShr:
		if !l.Type().IsArithmetic() || !r.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "shift operators require arithmetic operands")
		}
		lp := promote(l.Type())
		l = wrapCast(l, lp)
		r = wrapCast(r, lp)
		n.LHS, n.RHS = l, r
		n.SetType(lp)
		return n, nil

	case n.Op == ast.BinAdd:
		lt, rt := l.Type(), r.Type()
		switch {
		case lt.Kind == types.Pointer && rt.IsInteger():
			n.LHS, n.RHS = l, r
			n.SetType(lt)
			return n, nil
		case rt.Kind == types.Pointer && lt.IsInteger():
			n.LHS, n.RHS = l, r
			n.SetType(rt)
			return n, nil
		case lt.IsArithmetic() && rt.IsArithmetic():
			ct := CommonType(lt, rt)
			l, r = wrapCast(l, ct), wrapCast(r, ct)
			n.LHS, n.RHS = l, r
			n.SetType(ct)
			return n, nil
		default:
			return nil, c.errAt(n.Loc(), "invalid operands to '+'")
		}

	case n.Op == ast.BinSub:
		lt, rt := l.Type(), r.Type()
		switch {
		case lt.Kind == types.Pointer && rt.IsInteger():
			n.LHS, n.RHS = l, r
			n.SetType(lt)
			return n, nil
		case lt.Kind == types.Pointer && rt.Kind == types.Pointer:
			return nil, c.errAt(n.Loc(), "pointer difference is not supported in this subset")
		case lt.IsArithmetic() && rt.IsArithmetic():
			ct := CommonType(lt, rt)
			l, r = wrapCast(l, ct), wrapCast(r, ct)
			n.LHS, n.RHS = l, r
			n.SetType(ct)
			return n, nil
		default:
			return nil, c.errAt(n.Loc(), "invalid operands to '-'")
		}

	default: // * / % & | ^
		if !l.Type().IsArithmetic() || !r.Type().IsArithmetic() {
			return nil, c.errAt(n.Loc(), "operator requires arithmetic operands")
		}
		ct := CommonType(l.Type(), r.Type())
		l, r = wrapCast(l, ct), wrapCast(r, ct)
		n.LHS, n.RHS = l, r
		n.SetType(ct)
		return n, nil
	}
}

func (c *Checker) checkConditional(n *ast.Conditional) (ast.Expr, error) {
	cond, err := c.checkValue(n.Cond)
	if err != nil {
		return nil, err
	}
	if !cond.Type().IsScalar() {
		return nil, c.errAt(n.Loc(), "conditional expression's condition must be scalar")
	}
	then_, err := c.checkValue(n.Then)
	if err != nil {
		return nil, err
	}
	else_, err := c.checkValue(n.Else)
	if err != nil {
		return nil, err
	}

	tt, et := then_.Type(), else_.Type()
	var result *types.Type
	switch {
	case tt.IsArithmetic() && et.IsArithmetic():
		result = CommonType(tt, et)
		then_, else_ = wrapCast(then_, result), wrapCast(else_, result)
	case tt.Kind == types.Pointer && et.Kind == types.Pointer && tt.Equal(et):
		result = tt
	case tt.Kind == types.Pointer && ast.IsNullPointerConstant(else_):
		result = tt
		else_ = wrapCast(else_, tt)
	case et.Kind == types.Pointer && ast.IsNullPointerConstant(then_):
		result = et
		then_ = wrapCast(then_, et)
	default:
		return nil, c.errAt(n.Loc(), "incompatible types in conditional expression")
	}
	n.Cond, n.Then, n.Else = cond, then_, else_
	n.SetType(result)
	return n, nil
}

func (c *Checker) checkSubscript(n *ast.Subscript) (ast.Expr, error) {
	base, err := c.checkValue(n.Base)
	if err != nil {
		return nil, err
	}
	index, err := c.checkValue(n.Index)
	if err != nil {
		return nil, err
	}
	if base.Type().Kind != types.Pointer && index.Type().Kind == types.Pointer {
		base, index = index, base
	}
	if base.Type().Kind != types.Pointer {
		return nil, c.errAt(n.Loc(), "subscripted value is not a pointer")
	}
	if !index.Type().IsArithmetic() {
		return nil, c.errAt(n.Loc(), "subscript index must be arithmetic")
	}
	index = wrapCast(index, types.TInt)
	n.Base, n.Index = base, index
	n.SetType(base.Type().Referenced)
	return n, nil
}

package tac

import (
	"fmt"

	"ccfront/pkg/ast"
	"ccfront/pkg/check"
	"ccfront/pkg/resolve"
	"ccfront/pkg/types"
)

// Lower implements the TAC lowering contract of spec.md §4.5: for every
// function definition, a flat instruction list; for every static/global
// variable, a top-level static-data record.
func Lower(prog *ast.Program, syms map[string]*check.Symbol, counter *resolve.Counter) (*Program, error) {
	lw := &lowerer{syms: syms, counter: counter, emitted: map[string]bool{}}

	for _, d := range prog.Decls {
		if vd, ok := d.(*ast.VarDecl); ok {
			lw.emitGlobal(vd.Name)
		}
	}
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Body != nil {
			lw.collectNestedStatics(fd.Body)
		}
	}
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		fn, err := lw.lowerFunction(fd)
		if err != nil {
			return nil, err
		}
		lw.out = append(lw.out, fn)
	}
	return &Program{TopLevels: lw.out}, nil
}

type lowerer struct {
	syms    map[string]*check.Symbol
	counter *resolve.Counter
	emitted map[string]bool
	out     []TopLevel
	body    []Instr
}

func (lw *lowerer) errf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func (lw *lowerer) emit(i Instr) { lw.body = append(lw.body, i) }

func (lw *lowerer) newTemp() Name  { return Name{Ident: lw.counter.Mint("t")} }
func (lw *lowerer) newLabel() string { return lw.counter.Mint("L") }

// emitGlobal appends name's StaticVar record the first time it is asked
// for, deriving zero-fill bytes for a tentative-only definition (spec.md
// §4.5 "tentative-only globals emit zero-initialized records").
func (lw *lowerer) emitGlobal(name string) {
	if lw.emitted[name] {
		return
	}
	sym, ok := lw.syms[name]
	if !ok || sym.Kind != check.KindStaticVar || sym.InitState == check.NoInit {
		return
	}
	lw.emitted[name] = true
	data := sym.InitData
	if sym.InitState == check.Tentative {
		data = []check.StaticInit{{ZeroLen: sym.Type.Width()}}
	}
	isArray := sym.Type.Kind == types.Array
	width := sym.Type.Width()
	if isArray {
		width = 0
	}
	lw.out = append(lw.out, StaticVar{
		Name: name, Global: sym.Global, Init: data,
		Width: width, Signed: sym.Type.IsSigned(), Array: isArray,
	})
}

// collectNestedStatics finds block-scope `static` locals, which never
// appear in Program.Decls, and emits their static-data records.
func (lw *lowerer) collectNestedStatics(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			lw.collectNestedStatics(st)
		}
	case *ast.DeclStmt:
		if vd, ok := n.Decl.(*ast.VarDecl); ok && vd.Storage == ast.StorageStatic {
			lw.emitGlobal(vd.Name)
		}
	case *ast.If:
		lw.collectNestedStatics(n.Then)
		if n.Else != nil {
			lw.collectNestedStatics(n.Else)
		}
	case *ast.While:
		lw.collectNestedStatics(n.Body)
	case *ast.DoWhile:
		lw.collectNestedStatics(n.Body)
	case *ast.For:
		if n.Init != nil {
			lw.collectNestedStatics(n.Init)
		}
		lw.collectNestedStatics(n.Body)
	case *ast.Switch:
		lw.collectNestedStatics(n.Body)
	case *ast.Case:
		lw.collectNestedStatics(n.Body)
	case *ast.Default:
		lw.collectNestedStatics(n.Body)
	case *ast.Labeled:
		lw.collectNestedStatics(n.Stmt)
	}
}

func (lw *lowerer) lowerFunction(fd *ast.FuncDecl) (Function, error) {
	lw.body = nil
	locals := lw.collectLocals(fd)
	if err := lw.stmt(fd.Body); err != nil {
		return Function{}, err
	}
	lw.emit(Return{})
	return Function{
		Name:   fd.Name,
		Params: fd.ParamNames,
		Global: fd.Storage != ast.StorageStatic,
		Locals: locals,
		Body:   lw.body,
	}, nil
}

// collectLocals walks fd's parameters and body to build the frame layout
// every call to fd must reserve (spec.md §4.6). Block-scope static/extern
// variables are excluded: they are materialized as global StaticVar
// records instead (see collectNestedStatics), not per-call storage.
func (lw *lowerer) collectLocals(fd *ast.FuncDecl) []LocalSpec {
	var specs []LocalSpec
	seen := map[string]bool{}
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		sym, ok := lw.syms[name]
		if !ok {
			return
		}
		isArray := sym.Type.Kind == types.Array
		spec := LocalSpec{Name: name, Signed: sym.Type.IsSigned(), Array: isArray}
		if isArray {
			spec.Size = sym.Type.Width()
		} else {
			spec.Width = sym.Type.Width()
			spec.Size = spec.Width
		}
		specs = append(specs, spec)
	}
	for _, p := range fd.ParamNames {
		add(p)
	}
	var walk func(s ast.Stmt)
	walk = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.Block:
			for _, st := range n.Stmts {
				walk(st)
			}
		case *ast.DeclStmt:
			if vd, ok := n.Decl.(*ast.VarDecl); ok && vd.Storage == ast.StorageNone {
				add(vd.Name)
			}
		case *ast.If:
			walk(n.Then)
			if n.Else != nil {
				walk(n.Else)
			}
		case *ast.While:
			walk(n.Body)
		case *ast.DoWhile:
			walk(n.Body)
		case *ast.For:
			if n.Init != nil {
				walk(n.Init)
			}
			walk(n.Body)
		case *ast.Switch:
			walk(n.Body)
		case *ast.Case:
			walk(n.Body)
		case *ast.Default:
			walk(n.Body)
		case *ast.Labeled:
			walk(n.Stmt)
		}
	}
	walk(fd.Body)
	return specs
}

// ---- statements ----

func (lw *lowerer) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Return:
		if n.Expr == nil {
			lw.emit(Return{})
			return nil
		}
		v, err := lw.value(n.Expr)
		if err != nil {
			return err
		}
		lw.emit(Return{Val: v})
		return nil

	case *ast.ExprStmt:
		_, err := lw.value(n.Expr)
		return err

	case *ast.If:
		thenLabel := lw.newLabel()
		endLabel := lw.newLabel()
		elseLabel := endLabel
		if n.Else != nil {
			elseLabel = lw.newLabel()
		}
		if err := lw.condBranch(n.Cond, thenLabel, elseLabel); err != nil {
			return err
		}
		lw.emit(Label{Name: thenLabel})
		if err := lw.stmt(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			lw.emit(Jump{Label: endLabel})
			lw.emit(Label{Name: elseLabel})
			if err := lw.stmt(n.Else); err != nil {
				return err
			}
		}
		lw.emit(Label{Name: endLabel})
		return nil

	case *ast.Labeled:
		lw.emit(Label{Name: n.Target})
		return lw.stmt(n.Stmt)

	case *ast.Goto:
		lw.emit(Jump{Label: n.Target})
		return nil

	case *ast.Block:
		for _, st := range n.Stmts {
			if ds, ok := st.(*ast.DeclStmt); ok {
				if err := lw.localDecl(ds.Decl); err != nil {
					return err
				}
				continue
			}
			if err := lw.stmt(st); err != nil {
				return err
			}
		}
		return nil

	case *ast.Break:
		lw.emit(Jump{Label: n.Label + ".break"})
		return nil

	case *ast.Continue:
		lw.emit(Jump{Label: n.Label + ".continue"})
		return nil

	case *ast.Null:
		return nil

	case *ast.While:
		contLabel := n.Label + ".continue"
		bodyLabel := n.Label + ".body"
		breakLabel := n.Label + ".break"
		lw.emit(Label{Name: contLabel})
		if err := lw.condBranch(n.Cond, bodyLabel, breakLabel); err != nil {
			return err
		}
		lw.emit(Label{Name: bodyLabel})
		if err := lw.stmt(n.Body); err != nil {
			return err
		}
		lw.emit(Jump{Label: contLabel})
		lw.emit(Label{Name: breakLabel})
		return nil

	case *ast.DoWhile:
		bodyLabel := n.Label + ".body"
		contLabel := n.Label + ".continue"
		breakLabel := n.Label + ".break"
		lw.emit(Label{Name: bodyLabel})
		if err := lw.stmt(n.Body); err != nil {
			return err
		}
		lw.emit(Label{Name: contLabel})
		if err := lw.condBranch(n.Cond, bodyLabel, breakLabel); err != nil {
			return err
		}
		lw.emit(Label{Name: breakLabel})
		return nil

	case *ast.For:
		if n.Init != nil {
			if ds, ok := n.Init.(*ast.DeclStmt); ok {
				if err := lw.localDecl(ds.Decl); err != nil {
					return err
				}
			} else if err := lw.stmt(n.Init); err != nil {
				return err
			}
		}
		condLabel := n.Label + ".cond"
		bodyLabel := n.Label + ".body"
		contLabel := n.Label + ".continue"
		breakLabel := n.Label + ".break"
		lw.emit(Label{Name: condLabel})
		if n.Cond != nil {
			if err := lw.condBranch(n.Cond, bodyLabel, breakLabel); err != nil {
				return err
			}
		} else {
			lw.emit(Jump{Label: bodyLabel})
		}
		lw.emit(Label{Name: bodyLabel})
		if err := lw.stmt(n.Body); err != nil {
			return err
		}
		lw.emit(Label{Name: contLabel})
		if n.Step != nil {
			if err := lw.stmt(n.Step); err != nil {
				return err
			}
		}
		lw.emit(Jump{Label: condLabel})
		lw.emit(Label{Name: breakLabel})
		return nil

	case *ast.Switch:
		breakLabel := n.Label + ".break"
		v, err := lw.value(n.Cond)
		if err != nil {
			return err
		}
		signed, width := n.Cond.Type().IsSigned(), n.Cond.Type().Width()
		for _, cs := range n.Cases {
			lw.emit(Cmp{Src1: v, Src2: constFor(cs.Value, signed), Signed: signed, Width: width})
			lw.emit(CondJump{Code: Eq, Label: cs.Label})
		}
		if n.DefaultLabel != "" {
			lw.emit(Jump{Label: n.DefaultLabel})
		} else {
			lw.emit(Jump{Label: breakLabel})
		}
		if err := lw.stmt(n.Body); err != nil {
			return err
		}
		lw.emit(Label{Name: breakLabel})
		return nil

	case *ast.Case:
		lw.emit(Label{Name: n.Label})
		return lw.stmt(n.Body)

	case *ast.Default:
		lw.emit(Label{Name: n.Label})
		return lw.stmt(n.Body)

	case *ast.DeclStmt:
		return lw.localDecl(n.Decl)

	default:
		return lw.errf("tac: unhandled statement %T", s)
	}
}

func (lw *lowerer) localDecl(d ast.Decl) error {
	vd, ok := d.(*ast.VarDecl)
	if !ok {
		return nil // local function declarations have no runtime effect
	}
	if vd.Storage == ast.StorageStatic || vd.Storage == ast.StorageExtern {
		return nil // already materialized as a global static-data record
	}
	if vd.Init == nil {
		return nil
	}
	if vd.Type.Kind == types.Array {
		return lw.lowerArrayInit(vd.Name, vd.Init, vd.Type, 0)
	}
	si, ok := vd.Init.(ast.SingleInit)
	if !ok {
		return lw.errf("tac: scalar %q has a non-scalar initializer", vd.Name)
	}
	v, err := lw.value(si.Expr)
	if err != nil {
		return err
	}
	lw.emit(Copy{Dst: Name{Ident: vd.Name}, Src: v})
	return nil
}

// lowerArrayInit flattens a (possibly nested) compound initializer into
// copy_to_offset instructions against base's backing bytes (spec.md
// §4.5), or, for the string-literal special case, one byte per character
// plus any zero-fill tail.
func (lw *lowerer) lowerArrayInit(base string, init ast.Initializer, t *types.Type, offset int) error {
	switch n := init.(type) {
	case ast.SingleInit:
		sl, ok := n.Expr.(*ast.StringLit)
		if !ok {
			return lw.errf("tac: array %q initializer is neither compound nor a string literal", base)
		}
		bytes := sl.Value.Bytes()
		for i, b := range bytes {
			lw.emit(CopyToOffset{Base: base, Offset: offset + i, Src: ConstInt(int64(b)), Width: 1})
		}
		lw.emit(CopyToOffset{Base: base, Offset: offset + len(bytes), Src: ConstInt(0), Width: 1})
		for i := len(bytes) + 1; i < t.Size; i++ {
			lw.emit(CopyToOffset{Base: base, Offset: offset + i, Src: ConstInt(0), Width: 1})
		}
		return nil

	case ast.CompoundInit:
		elemWidth := t.Element.Width()
		for i, el := range n.Elements {
			elOffset := offset + i*elemWidth
			if t.Element.Kind == types.Array {
				if err := lw.lowerArrayInit(base, el, t.Element, elOffset); err != nil {
					return err
				}
				continue
			}
			si, ok := el.(ast.SingleInit)
			if !ok {
				return lw.errf("tac: array %q element %d has a non-scalar initializer", base, i)
			}
			v, err := lw.value(si.Expr)
			if err != nil {
				return err
			}
			lw.emit(CopyToOffset{Base: base, Offset: elOffset, Src: v, Width: elemWidth})
		}
		return nil

	default:
		return lw.errf("tac: unrecognized initializer for %q", base)
	}
}

// ---- conditions ----

// condBranch emits code that jumps to trueLabel if e is nonzero, falseLabel
// otherwise, short-circuiting && and || without ever materializing an
// intermediate 0/1 value (spec.md §4.5).
func (lw *lowerer) condBranch(e ast.Expr, trueLabel, falseLabel string) error {
	switch n := e.(type) {
	case *ast.Binary:
		switch n.Op {
		case ast.BinLogAnd:
			mid := lw.newLabel()
			if err := lw.condBranch(n.LHS, mid, falseLabel); err != nil {
				return err
			}
			lw.emit(Label{Name: mid})
			return lw.condBranch(n.RHS, trueLabel, falseLabel)
		case ast.BinLogOr:
			mid := lw.newLabel()
			if err := lw.condBranch(n.LHS, trueLabel, mid); err != nil {
				return err
			}
			lw.emit(Label{Name: mid})
			return lw.condBranch(n.RHS, trueLabel, falseLabel)
		}
		if cc, ok := relCondCode(n.Op); ok {
			lv, err := lw.value(n.LHS)
			if err != nil {
				return err
			}
			rv, err := lw.value(n.RHS)
			if err != nil {
				return err
			}
			signed, width := CommonWidth(n.LHS.Type(), n.RHS.Type())
			lw.emit(Cmp{Src1: lv, Src2: rv, Signed: signed, Width: width})
			lw.emit(CondJump{Code: cc, Label: trueLabel})
			lw.emit(Jump{Label: falseLabel})
			return nil
		}

	case *ast.Unary:
		if n.Op == ast.UnaryNot {
			return lw.condBranch(n.Operand, falseLabel, trueLabel)
		}
	}

	v, err := lw.value(e)
	if err != nil {
		return err
	}
	lw.emit(Cmp{Src1: v, Src2: ConstInt(0), Signed: e.Type().IsSigned(), Width: e.Type().Width()})
	lw.emit(CondJump{Code: Ne, Label: trueLabel})
	lw.emit(Jump{Label: falseLabel})
	return nil
}

func relCondCode(op ast.BinOp) (CondCode, bool) {
	switch op {
	case ast.BinEq:
		return Eq, true
	case ast.BinNotEq:
		return Ne, true
	case ast.BinLess:
		return Lt, true
	case ast.BinLessEq:
		return Le, true
	case ast.BinGreater:
		return Gt, true
	case ast.BinGreaterEq:
		return Ge, true
	default:
		return 0, false
	}
}

// boolValue materializes a relational/logical expression's 0/1 result
// into a temporary via the two-label-and-copy pattern (spec.md §4.5).
func (lw *lowerer) boolValue(e ast.Expr) (Val, error) {
	dst := lw.newTemp()
	trueLabel := lw.newLabel()
	falseLabel := lw.newLabel()
	endLabel := lw.newLabel()
	if err := lw.condBranch(e, trueLabel, falseLabel); err != nil {
		return nil, err
	}
	lw.emit(Label{Name: falseLabel})
	lw.emit(Copy{Dst: dst, Src: ConstInt(0)})
	lw.emit(Jump{Label: endLabel})
	lw.emit(Label{Name: trueLabel})
	lw.emit(Copy{Dst: dst, Src: ConstInt(1)})
	lw.emit(Label{Name: endLabel})
	return dst, nil
}

// ---- expressions ----

func (lw *lowerer) value(e ast.Expr) (Val, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		switch n.Kind {
		case ast.LitUInt, ast.LitULong:
			return ConstUint(n.UVal), nil
		default:
			return ConstInt(n.IVal), nil
		}

	case *ast.StringLit:
		return lw.stringConst(n.Value.Bytes())

	case *ast.Variable:
		return Name{Ident: n.Name}, nil

	case *ast.Assign:
		return lw.assign(n)

	case *ast.PostAssign:
		return lw.postAssign(n)

	case *ast.Unary:
		if n.Op == ast.UnaryNot {
			return lw.boolValue(n)
		}
		v, err := lw.value(n.Operand)
		if err != nil {
			return nil, err
		}
		dst := lw.newTemp()
		op := Negate
		if n.Op == ast.UnaryComplement {
			op = Complement
		}
		lw.emit(Unary{Op: op, Dst: dst, Src: v, Signed: n.Type().IsSigned(), Width: n.Type().Width()})
		return dst, nil

	case *ast.Binary:
		return lw.binary(n)

	case *ast.Conditional:
		return lw.conditional(n)

	case *ast.Call:
		return lw.call(n)

	case *ast.Cast:
		return lw.cast(n)

	case *ast.AddrOf:
		return lw.addrOf(n.Operand)

	case *ast.Deref:
		ptr, err := lw.value(n.Operand)
		if err != nil {
			return nil, err
		}
		dst := lw.newTemp()
		lw.emit(Load{Dst: dst, Addr: ptr, Signed: n.Type().IsSigned(), Width: n.Type().Width()})
		return dst, nil

	case *ast.Subscript:
		addr, width, signed, err := lw.subscriptAddr(n)
		if err != nil {
			return nil, err
		}
		dst := lw.newTemp()
		lw.emit(Load{Dst: dst, Addr: addr, Signed: signed, Width: width})
		return dst, nil

	default:
		return nil, lw.errf("tac: unhandled expression %T", e)
	}
}

func (lw *lowerer) stringConst(bytes []byte) (Val, error) {
	name := lw.counter.Mint("str")
	data := append(append([]byte(nil), bytes...), 0)
	lw.out = append(lw.out, StaticVar{Name: name, Global: true, Array: true, Init: []check.StaticInit{{Bytes: data}}})
	dst := lw.newTemp()
	lw.emit(GetAddress{Dst: dst, Name: name})
	return dst, nil
}

func (lw *lowerer) addrOf(operand ast.Expr) (Val, error) {
	switch n := operand.(type) {
	case *ast.Variable:
		dst := lw.newTemp()
		lw.emit(GetAddress{Dst: dst, Name: n.Name})
		return dst, nil
	case *ast.Deref:
		return lw.value(n.Operand)
	case *ast.Subscript:
		addr, _, _, err := lw.subscriptAddr(n)
		return addr, err
	case *ast.StringLit:
		return lw.stringConst(n.Value.Bytes())
	default:
		return nil, lw.errf("tac: cannot take the address of %T", operand)
	}
}

// subscriptAddr computes base+index*sizeof(elem), tolerating either
// operand order (spec.md §4.4 "operand swap when pointer is on the
// right"), and reports the element's width/signedness for the caller's
// load.
func (lw *lowerer) subscriptAddr(n *ast.Subscript) (Val, int, bool, error) {
	ptrExpr, idxExpr := n.Base, n.Index
	if ptrExpr.Type().Kind != types.Pointer {
		ptrExpr, idxExpr = n.Index, n.Base
	}
	ptrVal, err := lw.value(ptrExpr)
	if err != nil {
		return nil, 0, false, err
	}
	idxVal, err := lw.value(idxExpr)
	if err != nil {
		return nil, 0, false, err
	}
	elem := ptrExpr.Type().Referenced
	scaled := lw.scale(idxVal, elem)
	addr := lw.newTemp()
	lw.emit(Binary{Op: Add, Dst: addr, Src1: ptrVal, Src2: scaled, Signed: false, Width: 8})
	return addr, elem.Width(), elem.IsSigned(), nil
}

func (lw *lowerer) scale(v Val, elem *types.Type) Val {
	w := elem.Width()
	if w == 1 {
		return v
	}
	dst := lw.newTemp()
	lw.emit(Binary{Op: Mul, Dst: dst, Src1: v, Src2: ConstUint(uint64(w)), Signed: false, Width: 8})
	return dst
}

func (lw *lowerer) binary(n *ast.Binary) (Val, error) {
	if n.Op.IsLogical() || isRelational(n.Op) {
		return lw.boolValue(n)
	}
	if (n.Op == ast.BinAdd || n.Op == ast.BinSub) && (n.LHS.Type().Kind == types.Pointer || n.RHS.Type().Kind == types.Pointer) {
		return lw.pointerArith(n)
	}
	lv, err := lw.value(n.LHS)
	if err != nil {
		return nil, err
	}
	rv, err := lw.value(n.RHS)
	if err != nil {
		return nil, err
	}
	dst := lw.newTemp()
	lw.emit(Binary{Op: binOpFor(n.Op), Dst: dst, Src1: lv, Src2: rv, Signed: n.Type().IsSigned(), Width: n.Type().Width()})
	return dst, nil
}

func isRelational(op ast.BinOp) bool {
	_, ok := relCondCode(op)
	return ok
}

func (lw *lowerer) pointerArith(n *ast.Binary) (Val, error) {
	lv, err := lw.value(n.LHS)
	if err != nil {
		return nil, err
	}
	rv, err := lw.value(n.RHS)
	if err != nil {
		return nil, err
	}
	dst := lw.newTemp()
	if n.LHS.Type().Kind == types.Pointer {
		scaled := lw.scale(rv, n.LHS.Type().Referenced)
		lw.emit(Binary{Op: binOpFor(n.Op), Dst: dst, Src1: lv, Src2: scaled, Signed: false, Width: 8})
		return dst, nil
	}
	scaled := lw.scale(lv, n.RHS.Type().Referenced)
	lw.emit(Binary{Op: Add, Dst: dst, Src1: scaled, Src2: rv, Signed: false, Width: 8})
	return dst, nil
}

func binOpFor(op ast.BinOp) BinOp {
	switch op {
	case ast.BinAdd:
		return Add
	case ast.BinSub:
		return Sub
	case ast.BinMul:
		return Mul
	case ast.BinDiv:
		return Div
	case ast.BinMod:
		return Mod
	case ast.BinAnd:
		return And
	case ast.BinOr:
		return Or
	case ast.BinXor:
		return Xor
	case ast.BinShl:
		return Shl
	case ast.BinShr:
		return Shr
	default:
		return Add
	}
}

func (lw *lowerer) conditional(n *ast.Conditional) (Val, error) {
	dst := lw.newTemp()
	thenLabel := lw.newLabel()
	elseLabel := lw.newLabel()
	endLabel := lw.newLabel()
	if err := lw.condBranch(n.Cond, thenLabel, elseLabel); err != nil {
		return nil, err
	}
	lw.emit(Label{Name: thenLabel})
	v1, err := lw.value(n.Then)
	if err != nil {
		return nil, err
	}
	lw.emit(Copy{Dst: dst, Src: v1})
	lw.emit(Jump{Label: endLabel})
	lw.emit(Label{Name: elseLabel})
	v2, err := lw.value(n.Else)
	if err != nil {
		return nil, err
	}
	lw.emit(Copy{Dst: dst, Src: v2})
	lw.emit(Label{Name: endLabel})
	return dst, nil
}

func (lw *lowerer) call(n *ast.Call) (Val, error) {
	args := make([]Val, len(n.Args))
	for i, a := range n.Args {
		v, err := lw.value(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if n.Type().Kind == types.Void {
		lw.emit(Call{Name: n.Name, Args: args})
		return nil, nil
	}
	dst := lw.newTemp()
	lw.emit(Call{Dst: dst, Name: n.Name, Args: args})
	return dst, nil
}

func (lw *lowerer) cast(n *ast.Cast) (Val, error) {
	v, err := lw.value(n.Operand)
	if err != nil {
		return nil, err
	}
	srcType := n.Operand.Type()
	if srcType.Equal(n.Target) {
		return v, nil
	}
	dst := lw.newTemp()
	lw.emit(Convert{
		Dst: dst, Src: v,
		SrcSigned: srcType.IsSigned(), SrcWidth: srcType.Width(),
		DstSigned: n.Target.IsSigned(), DstWidth: n.Target.Width(),
	})
	return dst, nil
}

// ---- compound and postfix assignment ----

func (lw *lowerer) loadFrom(lhs ast.Expr) (Val, error) {
	switch n := lhs.(type) {
	case *ast.Variable:
		return Name{Ident: n.Name}, nil
	case *ast.Deref:
		addr, err := lw.value(n.Operand)
		if err != nil {
			return nil, err
		}
		dst := lw.newTemp()
		lw.emit(Load{Dst: dst, Addr: addr, Signed: lhs.Type().IsSigned(), Width: lhs.Type().Width()})
		return dst, nil
	case *ast.Subscript:
		addr, width, signed, err := lw.subscriptAddr(n)
		if err != nil {
			return nil, err
		}
		dst := lw.newTemp()
		lw.emit(Load{Dst: dst, Addr: addr, Signed: signed, Width: width})
		return dst, nil
	default:
		return nil, lw.errf("tac: %T is not assignable", lhs)
	}
}

func (lw *lowerer) storeTo(lhs ast.Expr, v Val) error {
	switch n := lhs.(type) {
	case *ast.Variable:
		lw.emit(Copy{Dst: Name{Ident: n.Name}, Src: v})
		return nil
	case *ast.Deref:
		addr, err := lw.value(n.Operand)
		if err != nil {
			return err
		}
		lw.emit(Store{Addr: addr, Src: v, Width: lhs.Type().Width()})
		return nil
	case *ast.Subscript:
		addr, width, _, err := lw.subscriptAddr(n)
		if err != nil {
			return err
		}
		lw.emit(Store{Addr: addr, Src: v, Width: width})
		return nil
	default:
		return lw.errf("tac: %T is not assignable", lhs)
	}
}

func (lw *lowerer) assign(n *ast.Assign) (Val, error) {
	if n.Op == ast.OpNone {
		rv, err := lw.value(n.RHS)
		if err != nil {
			return nil, err
		}
		if err := lw.storeTo(n.LHS, rv); err != nil {
			return nil, err
		}
		return rv, nil
	}

	cur, err := lw.loadFrom(n.LHS)
	if err != nil {
		return nil, err
	}
	rv, err := lw.value(n.RHS)
	if err != nil {
		return nil, err
	}
	result := lw.applyCompound(n.Op, cur, rv, n.Type())
	if err := lw.storeTo(n.LHS, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (lw *lowerer) applyCompound(op ast.CompoundOp, cur, rhs Val, resultType *types.Type) Val {
	if (op == ast.OpAdd || op == ast.OpSub) && resultType.Kind == types.Pointer {
		scaled := lw.scale(rhs, resultType.Referenced)
		dst := lw.newTemp()
		lw.emit(Binary{Op: compoundBinOp(op), Dst: dst, Src1: cur, Src2: scaled, Signed: false, Width: 8})
		return dst
	}
	dst := lw.newTemp()
	lw.emit(Binary{Op: compoundBinOp(op), Dst: dst, Src1: cur, Src2: rhs, Signed: resultType.IsSigned(), Width: resultType.Width()})
	return dst
}

func compoundBinOp(op ast.CompoundOp) BinOp {
	switch op {
	case ast.OpAdd:
		return Add
	case ast.OpSub:
		return Sub
	case ast.OpMul:
		return Mul
	case ast.OpDiv:
		return Div
	case ast.OpMod:
		return Mod
	case ast.OpAnd:
		return And
	case ast.OpOr:
		return Or
	case ast.OpXor:
		return Xor
	case ast.OpShl:
		return Shl
	case ast.OpShr:
		return Shr
	default:
		return Add
	}
}

func (lw *lowerer) postAssign(n *ast.PostAssign) (Val, error) {
	cur, err := lw.loadFrom(n.Operand)
	if err != nil {
		return nil, err
	}
	t := n.Operand.Type()
	one := ConstInt(1)
	op := ast.OpAdd
	if n.Op == ast.PostDec {
		op = ast.OpSub
	}
	newVal := lw.applyCompound(op, cur, one, t)
	if err := lw.storeTo(n.Operand, newVal); err != nil {
		return nil, err
	}
	return cur, nil
}

// ---- shared helpers ----

// CommonWidth reports the signed/width interpretation a comparison
// between a and b should use: arithmetic operands follow the usual
// conversions' width/signedness; a pointer comparison is always unsigned
// 8-byte (spec.md §4.4, §4.6 "tagged address").
func CommonWidth(a, b *types.Type) (signed bool, width int) {
	if a.Kind == types.Pointer || b.Kind == types.Pointer {
		return false, 8
	}
	wa, wb := a.Width(), b.Width()
	w := wa
	if wb > w {
		w = wb
	}
	return a.IsSigned() && b.IsSigned(), w
}

func constFor(v int64, signed bool) Const {
	if signed {
		return ConstInt(v)
	}
	return ConstUint(uint64(v))
}

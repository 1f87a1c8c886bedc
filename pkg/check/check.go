package check

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/diag"
	"ccfront/pkg/source"
	"ccfront/pkg/types"
)

// Checker builds the flat symbol table described by symtab.go and
// annotates every Expr node in the program with its value type (spec.md
// §4.4). Identifier resolution has already rewritten every name to
// something globally unique (a minted name.N for every local, static ones
// included; file-scope names, and block-scope extern names linked to them,
// keep their original spelling, which never contains a dot), so one
// map suffices for the whole program.
type Checker struct {
	syms   map[string]*Symbol
	srcMap *source.Map
}

// Check runs the typechecker over prog and returns the completed symbol
// table for TAC lowering and the interpreter to consult.
func Check(prog *ast.Program, srcMap *source.Map) (map[string]*Symbol, error) {
	c := &Checker{syms: map[string]*Symbol{}, srcMap: srcMap}
	for _, d := range prog.Decls {
		if err := c.topDecl(d); err != nil {
			return nil, err
		}
	}
	return c.syms, nil
}

func (c *Checker) errAt(pos source.Ptr, format string, args ...interface{}) error {
	return diag.New(diag.PhaseType, c.srcMap.Locate(pos), format, args...)
}

// ---- file scope ----

func (c *Checker) topDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		return c.fileVar(n)
	case *ast.FuncDecl:
		return c.funcDecl(n)
	default:
		return c.errAt(d.Loc(), "unrecognized top-level declaration")
	}
}

func (c *Checker) fileVar(vd *ast.VarDecl) error {
	existing, has := c.syms[vd.Name]
	global := vd.Storage != ast.StorageStatic
	if has {
		if existing.Kind != KindStaticVar {
			return c.errAt(vd.Loc(), "'%s' redeclared as a different kind of symbol", vd.Name)
		}
		if !existing.Type.Equal(vd.Type) {
			return c.errAt(vd.Loc(), "conflicting types for '%s'", vd.Name)
		}
		if existing.Global != global {
			return c.errAt(vd.Loc(), "conflicting linkage for '%s'", vd.Name)
		}
	} else {
		existing = &Symbol{Name: vd.Name, Kind: KindStaticVar, Type: vd.Type, Global: global}
		c.syms[vd.Name] = existing
	}

	var thisState InitState
	var data []StaticInit
	switch {
	case vd.Init != nil:
		thisState = Initial
		rewritten, folded, err := c.foldStaticInit(vd.Init, vd.Type, vd.Loc())
		if err != nil {
			return err
		}
		vd.Init = rewritten
		data = folded
	case vd.Storage == ast.StorageExtern:
		thisState = NoInit
	default:
		thisState = Tentative
	}
	if thisState == Initial {
		if existing.InitState == Initial {
			return c.errAt(vd.Loc(), "'%s' has conflicting initializers", vd.Name)
		}
		existing.InitData = data
	}
	if thisState > existing.InitState {
		existing.InitState = thisState
	}
	return nil
}

func (c *Checker) funcDecl(fd *ast.FuncDecl) error {
	existing, has := c.syms[fd.Name]
	global := fd.Storage != ast.StorageStatic
	if has {
		if existing.Kind != KindFunc {
			return c.errAt(fd.Loc(), "'%s' redeclared as a different kind of symbol", fd.Name)
		}
		if !existing.Type.Equal(fd.Type) {
			return c.errAt(fd.Loc(), "conflicting types for function '%s'", fd.Name)
		}
		if fd.Body != nil && existing.Defined {
			return c.errAt(fd.Loc(), "redefinition of '%s'", fd.Name)
		}
		if fd.Storage == ast.StorageStatic && existing.Global {
			return c.errAt(fd.Loc(), "static declaration of '%s' follows non-static declaration", fd.Name)
		}
	} else {
		existing = &Symbol{Name: fd.Name, Kind: KindFunc, Type: fd.Type, Global: global}
		c.syms[fd.Name] = existing
	}
	if fd.Body == nil {
		return nil
	}
	existing.Defined = true
	return c.funcBody(fd)
}

type funcCtx struct {
	name       string
	returnType *types.Type
}

func (c *Checker) funcBody(fd *ast.FuncDecl) error {
	for i, pname := range fd.ParamNames {
		c.syms[pname] = &Symbol{Name: pname, Kind: KindLocalVar, Type: fd.Type.Params[i]}
	}
	ctx := &funcCtx{name: fd.Name, returnType: fd.Type.Return}
	return c.stmt(fd.Body, ctx)
}

// ---- local declarations ----

func (c *Checker) localDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		return c.localVar(n)
	case *ast.FuncDecl:
		existing, has := c.syms[n.Name]
		global := n.Storage != ast.StorageStatic
		if has {
			if existing.Kind != KindFunc {
				return c.errAt(n.Loc(), "'%s' redeclared as a different kind of symbol", n.Name)
			}
			if !existing.Type.Equal(n.Type) {
				return c.errAt(n.Loc(), "conflicting types for function '%s'", n.Name)
			}
			return nil
		}
		c.syms[n.Name] = &Symbol{Name: n.Name, Kind: KindFunc, Type: n.Type, Global: global}
		return nil
	default:
		return c.errAt(d.Loc(), "unrecognized local declaration")
	}
}

func (c *Checker) localVar(vd *ast.VarDecl) error {
	switch vd.Storage {
	case ast.StorageExtern:
		existing, has := c.syms[vd.Name]
		if has {
			if existing.Kind != KindStaticVar {
				return c.errAt(vd.Loc(), "'%s' redeclared as a different kind of symbol", vd.Name)
			}
			if !existing.Type.Equal(vd.Type) {
				return c.errAt(vd.Loc(), "conflicting types for '%s'", vd.Name)
			}
		} else {
			c.syms[vd.Name] = &Symbol{Name: vd.Name, Kind: KindStaticVar, Type: vd.Type, Global: true, InitState: NoInit}
		}
		if vd.Init != nil {
			return c.errAt(vd.Loc(), "block-scope extern variable '%s' cannot have an initializer", vd.Name)
		}
		return nil

	case ast.StorageStatic:
		sym := &Symbol{Name: vd.Name, Kind: KindStaticVar, Type: vd.Type, Global: false}
		if vd.Init != nil {
			rewritten, data, err := c.foldStaticInit(vd.Init, vd.Type, vd.Loc())
			if err != nil {
				return err
			}
			vd.Init = rewritten
			sym.InitState = Initial
			sym.InitData = data
		} else {
			sym.InitState = Tentative
		}
		c.syms[vd.Name] = sym
		return nil

	default:
		c.syms[vd.Name] = &Symbol{Name: vd.Name, Kind: KindLocalVar, Type: vd.Type}
		if vd.Init != nil {
			rewritten, err := c.checkInitializer(vd.Init, vd.Type, vd.Loc())
			if err != nil {
				return err
			}
			vd.Init = rewritten
		}
		return nil
	}
}

// ---- statements ----

func (c *Checker) stmt(s ast.Stmt, ctx *funcCtx) error {
	switch n := s.(type) {
	case *ast.Return:
		n.FuncName = ctx.name
		if n.Expr == nil {
			if ctx.returnType.Kind != types.Void {
				return c.errAt(n.Loc(), "missing return value in a function returning %s", ctx.returnType)
			}
			return nil
		}
		if ctx.returnType.Kind == types.Void {
			return c.errAt(n.Loc(), "a void function cannot return a value")
		}
		checked, err := c.checkValue(n.Expr)
		if err != nil {
			return err
		}
		converted, err := ConvertByAssignment(checked, ctx.returnType)
		if err != nil {
			return c.errAt(n.Loc(), "%s", err.Error())
		}
		n.Expr = converted
		return nil

	case *ast.ExprStmt:
		checked, err := c.checkExpr(n.Expr)
		if err != nil {
			return err
		}
		n.Expr = checked
		return nil

	case *ast.If:
		cond, err := c.checkValue(n.Cond)
		if err != nil {
			return err
		}
		if !cond.Type().IsScalar() {
			return c.errAt(n.Loc(), "'if' condition must be scalar")
		}
		n.Cond = cond
		if err := c.stmt(n.Then, ctx); err != nil {
			return err
		}
		if n.Else != nil {
			return c.stmt(n.Else, ctx)
		}
		return nil

	case *ast.Labeled:
		return c.stmt(n.Stmt, ctx)

	case *ast.Goto, *ast.Break, *ast.Continue, *ast.Null:
		return nil

	case *ast.Block:
		for _, st := range n.Stmts {
			if ds, ok := st.(*ast.DeclStmt); ok {
				if err := c.localDecl(ds.Decl); err != nil {
					return err
				}
				continue
			}
			if err := c.stmt(st, ctx); err != nil {
				return err
			}
		}
		return nil

	case *ast.While:
		cond, err := c.checkValue(n.Cond)
		if err != nil {
			return err
		}
		if !cond.Type().IsScalar() {
			return c.errAt(n.Loc(), "'while' condition must be scalar")
		}
		n.Cond = cond
		return c.stmt(n.Body, ctx)

	case *ast.DoWhile:
		if err := c.stmt(n.Body, ctx); err != nil {
			return err
		}
		cond, err := c.checkValue(n.Cond)
		if err != nil {
			return err
		}
		if !cond.Type().IsScalar() {
			return c.errAt(n.Loc(), "'do-while' condition must be scalar")
		}
		n.Cond = cond
		return nil

	case *ast.For:
		if ds, ok := n.Init.(*ast.DeclStmt); ok {
			if err := c.localDecl(ds.Decl); err != nil {
				return err
			}
		} else if es, ok := n.Init.(*ast.ExprStmt); ok {
			checked, err := c.checkExpr(es.Expr)
			if err != nil {
				return err
			}
			es.Expr = checked
		}
		if n.Cond != nil {
			cond, err := c.checkValue(n.Cond)
			if err != nil {
				return err
			}
			if !cond.Type().IsScalar() {
				return c.errAt(n.Loc(), "'for' condition must be scalar")
			}
			n.Cond = cond
		}
		if err := c.stmt(n.Body, ctx); err != nil {
			return err
		}
		if n.Step != nil {
			return c.stmt(n.Step, ctx)
		}
		return nil

	case *ast.Switch:
		cond, err := c.checkValue(n.Cond)
		if err != nil {
			return err
		}
		if !cond.Type().IsArithmetic() {
			return c.errAt(n.Loc(), "'switch' condition must be arithmetic")
		}
		n.Cond = cond
		return c.stmt(n.Body, ctx)

	case *ast.Case:
		val, err := c.checkValue(n.Value)
		if err != nil {
			return err
		}
		n.Value = val
		return c.stmt(n.Body, ctx)

	case *ast.Default:
		return c.stmt(n.Body, ctx)

	case *ast.DeclStmt:
		return c.localDecl(n.Decl)

	default:
		return nil
	}
}

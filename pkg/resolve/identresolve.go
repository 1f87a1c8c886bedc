package resolve

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/diag"
	"ccfront/pkg/source"
)

// entry is one scope-stack binding: the name an identifier was rewritten
// to, and whether it has linkage (spec.md §4.2: extern resolution walks
// outward looking for the nearest linkage-bearing entry).
type entry struct {
	Unique     string
	HasLinkage bool
}

type identResolver struct {
	scopes  []map[string]entry
	counter *Counter
	srcMap  *source.Map
}

// ResolveIdentifiers rewrites every identifier use to the unique name its
// declaration was minted to (spec.md §4.2). It mutates prog in place.
func ResolveIdentifiers(prog *ast.Program, counter *Counter, srcMap *source.Map) error {
	r := &identResolver{counter: counter, srcMap: srcMap}
	r.push() // file scope
	for _, d := range prog.Decls {
		if err := r.fileDecl(d); err != nil {
			return err
		}
	}
	r.pop()
	return nil
}

func (r *identResolver) push() { r.scopes = append(r.scopes, map[string]entry{}) }
func (r *identResolver) pop()  { r.scopes = r.scopes[:len(r.scopes)-1] }
func (r *identResolver) top() map[string]entry { return r.scopes[len(r.scopes)-1] }

func (r *identResolver) errAt(pos source.Ptr, format string, args ...interface{}) error {
	return diag.New(diag.PhaseIdentRes, r.srcMap.Locate(pos), format, args...)
}

// lookup searches every scope innermost-first.
func (r *identResolver) lookup(name string) (entry, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if e, ok := r.scopes[i][name]; ok {
			return e, true
		}
	}
	return entry{}, false
}

// lookupLinkage searches every scope outside the current one for the
// nearest linkage-bearing entry (spec.md §4.2's extern rule).
func (r *identResolver) lookupLinkage(name string) (entry, bool) {
	for i := len(r.scopes) - 2; i >= 0; i-- {
		if e, ok := r.scopes[i][name]; ok && e.HasLinkage {
			return e, true
		}
	}
	return entry{}, false
}

// ---- file scope ----

func (r *identResolver) fileDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		r.top()[n.Name] = entry{Unique: n.Name, HasLinkage: n.Storage != ast.StorageStatic}
		if n.Init != nil {
			return r.resolveInit(n.Init)
		}
		return nil
	case *ast.FuncDecl:
		r.top()[n.Name] = entry{Unique: n.Name, HasLinkage: true}
		if n.Body == nil {
			return nil
		}
		return r.resolveFunctionBody(n)
	default:
		return r.errAt(d.Loc(), "unrecognized top-level declaration")
	}
}

func (r *identResolver) resolveFunctionBody(fd *ast.FuncDecl) error {
	r.push()
	for i, pname := range fd.ParamNames {
		unique := r.counter.Mint(pname)
		r.top()[pname] = entry{Unique: unique, HasLinkage: false}
		fd.ParamNames[i] = unique
	}
	blk, ok := fd.Body.(*ast.Block)
	if !ok {
		r.pop()
		return r.errAt(fd.Loc(), "function body must be a block")
	}
	err := r.blockItems(blk.Stmts)
	r.pop()
	return err
}

// blockItems resolves a sequence of block items in the CURRENT scope
// without pushing a new one — used both for the scope a function body
// shares with its parameters, and (via the Block case in stmt) for a
// nested compound statement's own fresh scope.
func (r *identResolver) blockItems(stmts []ast.Stmt) error {
	for _, st := range stmts {
		if ds, ok := st.(*ast.DeclStmt); ok {
			if err := r.localDecl(ds.Decl); err != nil {
				return err
			}
			continue
		}
		if err := r.stmt(st); err != nil {
			return err
		}
	}
	return nil
}

// ---- local declarations ----

func (r *identResolver) localDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		return r.localVar(n)
	case *ast.FuncDecl:
		return r.localFunc(n)
	default:
		return r.errAt(d.Loc(), "unrecognized local declaration")
	}
}

func (r *identResolver) localVar(vd *ast.VarDecl) error {
	cur := r.top()
	if existing, ok := cur[vd.Name]; ok {
		if vd.Storage == ast.StorageExtern && existing.HasLinkage {
			vd.Name = existing.Unique
			if vd.Init != nil {
				return r.resolveInit(vd.Init)
			}
			return nil
		}
		return r.errAt(vd.Loc(), "multiple declarations of '%s'", vd.Name)
	}

	if vd.Storage == ast.StorageExtern {
		if outer, ok := r.lookupLinkage(vd.Name); ok {
			cur[vd.Name] = entry{Unique: outer.Unique, HasLinkage: true}
			vd.Name = outer.Unique
		} else {
			cur[vd.Name] = entry{Unique: vd.Name, HasLinkage: true}
		}
		if vd.Init != nil {
			return r.resolveInit(vd.Init)
		}
		return nil
	}

	unique := r.counter.Mint(vd.Name)
	cur[vd.Name] = entry{Unique: unique, HasLinkage: false}
	vd.Name = unique
	if vd.Init != nil {
		return r.resolveInit(vd.Init)
	}
	return nil
}

func (r *identResolver) localFunc(fd *ast.FuncDecl) error {
	if fd.Storage == ast.StorageStatic {
		return r.errAt(fd.Loc(), "local function declarations may not be static")
	}
	if fd.Body != nil {
		return r.errAt(fd.Loc(), "nested function definitions are not allowed")
	}
	cur := r.top()
	if existing, ok := cur[fd.Name]; ok && !existing.HasLinkage {
		return r.errAt(fd.Loc(), "multiple declarations of '%s'", fd.Name)
	}
	cur[fd.Name] = entry{Unique: fd.Name, HasLinkage: true}
	return nil
}

func (r *identResolver) resolveInit(init ast.Initializer) error {
	switch n := init.(type) {
	case ast.SingleInit:
		return r.expr(n.Expr)
	case ast.CompoundInit:
		for _, el := range n.Elements {
			if err := r.resolveInit(el); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// ---- statements ----

func (r *identResolver) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Return:
		if n.Expr != nil {
			return r.expr(n.Expr)
		}
		return nil
	case *ast.ExprStmt:
		return r.expr(n.Expr)
	case *ast.If:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		if err := r.stmt(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return r.stmt(n.Else)
		}
		return nil
	case *ast.Labeled:
		return r.stmt(n.Stmt)
	case *ast.Goto:
		return nil
	case *ast.Block:
		r.push()
		err := r.blockItems(n.Stmts)
		r.pop()
		return err
	case *ast.Break, *ast.Continue, *ast.Null:
		return nil
	case *ast.While:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		return r.stmt(n.Body)
	case *ast.DoWhile:
		if err := r.stmt(n.Body); err != nil {
			return err
		}
		return r.expr(n.Cond)
	case *ast.For:
		r.push()
		var err error
		switch init := n.Init.(type) {
		case nil:
		case *ast.DeclStmt:
			err = r.localDecl(init.Decl)
		case *ast.ExprStmt:
			err = r.expr(init.Expr)
		}
		if err == nil && n.Cond != nil {
			err = r.expr(n.Cond)
		}
		if err == nil {
			err = r.stmt(n.Body)
		}
		if err == nil && n.Step != nil {
			err = r.stmt(n.Step)
		}
		r.pop()
		return err
	case *ast.Switch:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		return r.stmt(n.Body)
	case *ast.Case:
		if err := r.expr(n.Value); err != nil {
			return err
		}
		return r.stmt(n.Body)
	case *ast.Default:
		return r.stmt(n.Body)
	case *ast.DeclStmt:
		return r.localDecl(n.Decl)
	default:
		return nil
	}
}

// ---- expressions ----

func (r *identResolver) expr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntLit, *ast.StringLit:
		return nil
	case *ast.Variable:
		ent, ok := r.lookup(n.Name)
		if !ok {
			return r.errAt(n.Pos, "no declaration for name '%s'", n.Name)
		}
		n.Name = ent.Unique
		return nil
	case *ast.Call:
		ent, ok := r.lookup(n.Name)
		if !ok {
			return r.errAt(n.Pos, "no declaration for name '%s'", n.Name)
		}
		n.Name = ent.Unique
		for _, a := range n.Args {
			if err := r.expr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.Assign:
		if err := r.expr(n.LHS); err != nil {
			return err
		}
		return r.expr(n.RHS)
	case *ast.PostAssign:
		return r.expr(n.Operand)
	case *ast.Unary:
		return r.expr(n.Operand)
	case *ast.Binary:
		if err := r.expr(n.LHS); err != nil {
			return err
		}
		return r.expr(n.RHS)
	case *ast.Conditional:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		if err := r.expr(n.Then); err != nil {
			return err
		}
		return r.expr(n.Else)
	case *ast.Cast:
		return r.expr(n.Operand)
	case *ast.AddrOf:
		return r.expr(n.Operand)
	case *ast.Deref:
		return r.expr(n.Operand)
	case *ast.Subscript:
		if err := r.expr(n.Base); err != nil {
			return err
		}
		return r.expr(n.Index)
	default:
		return nil
	}
}

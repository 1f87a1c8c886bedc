package resolve

import (
	"testing"

	"ccfront/pkg/ast"
	"ccfront/pkg/parser"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
)

func resolveProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, arena, err := token.Lex(src)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", src)
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ResolveIdentifiers(prog, NewCounter(), srcMap); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return prog
}

// TestShadowingGetsDistinctNames covers spec.md §8 property 2: every
// minted unique name carries its defining counter suffix, and a nested
// shadowing declaration gets a name distinct from its outer namesake.
func TestShadowingGetsDistinctNames(t *testing.T) {
	prog := resolveProgram(t, `int main(void){ int x=1; { int x=2; x=x+3; } return x; }`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)

	outerDecl := block.Stmts[0].(*ast.DeclStmt).Decl.(*ast.VarDecl)
	inner := block.Stmts[1].(*ast.Block)
	innerDecl := inner.Stmts[0].(*ast.DeclStmt).Decl.(*ast.VarDecl)

	if outerDecl.Name == innerDecl.Name {
		t.Fatalf("shadowed declarations must get distinct unique names, both got %q", outerDecl.Name)
	}

	finalReturn := block.Stmts[2].(*ast.Return)
	v := finalReturn.Expr.(*ast.Variable)
	if v.Name != outerDecl.Name {
		t.Fatalf("return after the inner block must refer to the outer x (%q), got %q", outerDecl.Name, v.Name)
	}
}

func TestUndeclaredNameIsAnError(t *testing.T) {
	toks, arena, err := token.Lex(`int main(void){ return y; }`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "")
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ResolveIdentifiers(prog, NewCounter(), srcMap); err == nil {
		t.Fatal("want an error resolving an undeclared name")
	}
}

func TestDuplicateLocalDeclarationIsAnError(t *testing.T) {
	toks, arena, err := token.Lex(`int main(void){ int x=1; int x=2; return x; }`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "")
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ResolveIdentifiers(prog, NewCounter(), srcMap); err == nil {
		t.Fatal("want an error for a duplicate local declaration in the same scope")
	}
}

func TestExternLocalLinksToFileScope(t *testing.T) {
	prog := resolveProgram(t, `int g = 1;
int main(void){ extern int g; return g; }`)
	fileVar := prog.Decls[0].(*ast.VarDecl)
	fd := prog.Decls[1].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	externDecl := block.Stmts[0].(*ast.DeclStmt).Decl.(*ast.VarDecl)

	if externDecl.Name != fileVar.Name {
		t.Fatalf("block-scope extern must link to file-scope g (%q), got %q", fileVar.Name, externDecl.Name)
	}
}

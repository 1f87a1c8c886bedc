package check_test

import (
	"testing"

	"ccfront/pkg/ast"
	"ccfront/pkg/check"
	"ccfront/pkg/parser"
	"ccfront/pkg/resolve"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
)

func checkSource(t *testing.T, src string) (*ast.Program, map[string]*check.Symbol, error) {
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
	counter := resolve.NewCounter()
	if err := resolve.ResolveIdentifiers(prog, counter, srcMap); err != nil {
		t.Fatalf("identifier resolution: %v", err)
	}
	if err := resolve.ResolveLabels(prog, counter, srcMap); err != nil {
		t.Fatalf("label resolution: %v", err)
	}
	syms, err := check.Check(prog, srcMap)
	return prog, syms, err
}

// TestEveryExprGetsAValueTypeAndCastIsExplicit covers spec.md §8 property 1: every
// checked expression carries a non-nil value type, and an implicit
// conversion (here, the int-to-long return-value widening) leaves an
// explicit Cast node behind.
func TestEveryExprGetsAValueTypeAndCastIsExplicit(t *testing.T) {
	prog, _, err := checkSource(t, `long f(void){ int x = 5; return x; }`)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	ret := block.Stmts[1].(*ast.Return)
	if ret.Expr.Type() == nil {
		t.Fatal("return expression must have a non-nil value type")
	}
	if _, ok := ret.Expr.(*ast.Cast); !ok {
		t.Fatalf("implicit int->long widening must be an explicit Cast node, got %T", ret.Expr)
	}
}

func TestIfAcceptsPointerConditionSwitchRejectsIt(t *testing.T) {
	_, _, err := checkSource(t, `int main(void){ int x=0; int *p=&x; if (p) return 1; return 0; }`)
	if err != nil {
		t.Fatalf("if(p) should typecheck: %v", err)
	}
	_, _, err = checkSource(t, `int main(void){ int x=0; int *p=&x; switch(p){ default: return 0; } }`)
	if err == nil {
		t.Fatal("switch(p) must be rejected for a pointer condition")
	}
}

func TestUsualArithmeticConversionsPreferUnsignedOnTie(t *testing.T) {
	// int + unsigned int must produce unsigned int per common_type.
	prog, _, err := checkSource(t, `int main(void){ int a=1; unsigned int b=2; unsigned int c = a+b; return c; }`)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	cDecl := block.Stmts[2].(*ast.DeclStmt).Decl.(*ast.VarDecl)
	init := cDecl.Init.(ast.SingleInit)
	if !init.Expr.Type().IsUnsigned() {
		t.Fatalf("a+b must be unsigned int, got %s", init.Expr.Type())
	}
}

func TestConstFoldStaticInitializer(t *testing.T) {
	_, syms, err := checkSource(t, `int g = 2*3+1;`)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	sym := syms["g"]
	if sym == nil {
		t.Fatal("symbol table must contain 'g'")
	}
	if len(sym.InitData) != 1 || len(sym.InitData[0].Bytes) != 4 {
		t.Fatalf("want one 4-byte init chunk, got %#v", sym.InitData)
	}
	got := int32(sym.InitData[0].Bytes[0]) | int32(sym.InitData[0].Bytes[1])<<8 |
		int32(sym.InitData[0].Bytes[2])<<16 | int32(sym.InitData[0].Bytes[3])<<24
	if got != 7 {
		t.Fatalf("folded initializer: want 7, got %d", got)
	}
}

func TestNonConstantGlobalInitializerIsAnError(t *testing.T) {
	_, _, err := checkSource(t, `int f(void){ return 1; } int g = f();`)
	if err == nil {
		t.Fatal("want an error for a non-constant global initializer")
	}
}

func TestEvalConstRejectsDivisionByZero(t *testing.T) {
	if _, _, ok := check.EvalConst(&ast.Binary{
		Op:  ast.BinDiv,
		LHS: intLit(1),
		RHS: intLit(0),
	}); ok {
		t.Fatal("division by zero must not be a valid constant expression")
	}
}

func intLit(v int64) *ast.IntLit {
	lit := &ast.IntLit{Kind: ast.LitInt, IVal: v}
	return lit
}

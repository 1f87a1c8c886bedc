package parser

import (
	"testing"

	"ccfront/pkg/ast"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
	"ccfront/pkg/types"
)

// parse is the shared test helper: lex then parse, failing the test on
// either error so each case body can focus on the resulting tree.
func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, arena, err := token.Lex(src)
	if err != nil {
		t.Fatalf("lex(%q): %v", src, err)
	}
	srcMap := source.NewMap("test.c", src)
	prog, err := Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return prog
}

// TestDeclaratorForms exercises spec.md §8's boundary declarator list:
// pointer-to-array-of, array-of-pointer, parameterless vs. (void), and
// nested parenthesized declarators.
func TestDeclaratorForms(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want func(t *testing.T, prog *ast.Program)
	}{
		{
			name: "array of pointers",
			src:  "int *x[3];",
			want: func(t *testing.T, prog *ast.Program) {
				vd := prog.Decls[0].(*ast.VarDecl)
				if vd.Type.Kind != types.Array {
					t.Fatalf("want array, got %v", vd.Type.Kind)
				}
				if vd.Type.Element.Kind != types.Pointer {
					t.Fatalf("want element pointer, got %v", vd.Type.Element.Kind)
				}
			},
		},
		{
			name: "pointer to array",
			src:  "int (*x)[3];",
			want: func(t *testing.T, prog *ast.Program) {
				vd := prog.Decls[0].(*ast.VarDecl)
				if vd.Type.Kind != types.Pointer {
					t.Fatalf("want pointer, got %v", vd.Type.Kind)
				}
				if vd.Type.Referenced.Kind != types.Array {
					t.Fatalf("want referenced array, got %v", vd.Type.Referenced.Kind)
				}
			},
		},
		{
			name: "explicit void parameter list",
			src:  "int f(void){ return 0; }",
			want: func(t *testing.T, prog *ast.Program) {
				fd := prog.Decls[0].(*ast.FuncDecl)
				if len(fd.Type.Params) != 0 {
					t.Fatalf("want 0 params, got %d", len(fd.Type.Params))
				}
			},
		},
		{
			name: "empty parameter list",
			src:  "int f(){ return 0; }",
			want: func(t *testing.T, prog *ast.Program) {
				fd := prog.Decls[0].(*ast.FuncDecl)
				if len(fd.Type.Params) != 0 {
					t.Fatalf("want 0 params, got %d", len(fd.Type.Params))
				}
			},
		},
		{
			name: "nested parenthesized declarator",
			src:  "int f(int (*cb)(int));",
			want: func(t *testing.T, prog *ast.Program) {
				fd := prog.Decls[0].(*ast.FuncDecl)
				if len(fd.Type.Params) != 1 {
					t.Fatalf("want 1 param, got %d", len(fd.Type.Params))
				}
				if fd.Type.Params[0].Kind != types.Pointer {
					t.Fatalf("want pointer param, got %v", fd.Type.Params[0].Kind)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, parse(t, tc.src))
		})
	}
}

func TestParserConsumesAllTokens(t *testing.T) {
	// spec.md §8 property 6: when the input has no lexical or syntactic
	// error, the parser consumes all tokens.
	src := `int g = 1;
int add(int a, int b) { return a + b; }
int main(void) { return add(g, 2); }`
	prog := parse(t, src)
	if len(prog.Decls) != 3 {
		t.Fatalf("want 3 top-level decls, got %d", len(prog.Decls))
	}
}

func TestPrecedenceClimbing(t *testing.T) {
	// 2*3+1 must parse as (2*3)+1, not 2*(3+1).
	prog := parse(t, "int main(void){ return 2*3+1; }")
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	ret := block.Stmts[0].(*ast.Return)
	bin := ret.Expr.(*ast.Binary)
	if bin.Op != ast.BinAdd {
		t.Fatalf("want outer + , got %v", bin.Op)
	}
	lhs, ok := bin.LHS.(*ast.Binary)
	if !ok || lhs.Op != ast.BinMul {
		t.Fatalf("want left operand to be a multiplication, got %#v", bin.LHS)
	}
}

func TestUnterminatedBlockIsSyntaxError(t *testing.T) {
	toks, arena, err := token.Lex("int main(void){ return 0; ")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "int main(void){ return 0; ")
	if _, err := Parse(toks, arena, srcMap); err == nil {
		t.Fatal("want a parse error for an unterminated block")
	}
}

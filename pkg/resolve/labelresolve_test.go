package resolve

import (
	"testing"

	"ccfront/pkg/ast"
	"ccfront/pkg/parser"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
)

func resolveLabels(t *testing.T, src string) *ast.Program {
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
	counter := NewCounter()
	if err := ResolveIdentifiers(prog, counter, srcMap); err != nil {
		t.Fatalf("identifier resolution: %v", err)
	}
	if err := ResolveLabels(prog, counter, srcMap); err != nil {
		t.Fatalf("label resolution: %v", err)
	}
	return prog
}

// TestBreakContinueResolveToEnclosingLoop covers spec.md §8 property 3:
// a break/continue's stored label equals the label of the reachable
// enclosing construct.
func TestBreakContinueResolveToEnclosingLoop(t *testing.T) {
	prog := resolveLabels(t, `int main(void){
 while (1) { if (1) break; if (1) continue; }
 return 0;
}`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	wh := block.Stmts[0].(*ast.While)
	whileBody := wh.Body.(*ast.Block)
	breakIf := whileBody.Stmts[0].(*ast.If)
	brk := breakIf.Then.(*ast.Break)
	continueIf := whileBody.Stmts[1].(*ast.If)
	cont := continueIf.Then.(*ast.Continue)

	if brk.Label != wh.Label {
		t.Fatalf("break label %q must equal enclosing while's label %q", brk.Label, wh.Label)
	}
	if cont.Label != wh.Label {
		t.Fatalf("continue label %q must equal enclosing while's label %q", cont.Label, wh.Label)
	}
}

func TestBreakOutsideLoopOrSwitchIsAnError(t *testing.T) {
	toks, arena, err := token.Lex(`int main(void){ break; return 0; }`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "")
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	counter := NewCounter()
	if err := ResolveIdentifiers(prog, counter, srcMap); err != nil {
		t.Fatalf("identifier resolution: %v", err)
	}
	if err := ResolveLabels(prog, counter, srcMap); err == nil {
		t.Fatal("want an error for break outside any loop or switch")
	}
}

func TestDuplicateCaseValueIsAnError(t *testing.T) {
	toks, arena, err := token.Lex(`int main(void){ int x=1; switch(x){ case 1: return 1; case 1: return 2; } return 0; }`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "")
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	counter := NewCounter()
	if err := ResolveIdentifiers(prog, counter, srcMap); err != nil {
		t.Fatalf("identifier resolution: %v", err)
	}
	if err := ResolveLabels(prog, counter, srcMap); err == nil {
		t.Fatal("want an error for a duplicate case value")
	}
}

func TestGotoResolvesToLabelInSameFunction(t *testing.T) {
	prog := resolveLabels(t, `int main(void){
top:
 goto top;
 return 0;
}`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	block := fd.Body.(*ast.Block)
	labeled := block.Stmts[0].(*ast.Labeled)
	goTo := labeled.Stmt.(*ast.Goto)

	if goTo.Target != labeled.Target {
		t.Fatalf("goto target %q must equal the label's resolved target %q", goTo.Target, labeled.Target)
	}
}

func TestGotoToUndefinedLabelIsAnError(t *testing.T) {
	toks, arena, err := token.Lex(`int main(void){ goto nowhere; return 0; }`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	srcMap := source.NewMap("test.c", "")
	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	counter := NewCounter()
	if err := ResolveIdentifiers(prog, counter, srcMap); err != nil {
		t.Fatalf("identifier resolution: %v", err)
	}
	if err := ResolveLabels(prog, counter, srcMap); err == nil {
		t.Fatal("want an error for goto to an undefined label")
	}
}

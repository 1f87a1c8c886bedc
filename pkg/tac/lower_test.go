package tac

import (
	"testing"

	"ccfront/pkg/check"
	"ccfront/pkg/parser"
	"ccfront/pkg/resolve"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
)

func lowerSource(t *testing.T, src string) *Program {
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
	if err != nil {
		t.Fatalf("typecheck: %v", err)
	}
	tacProg, err := Lower(prog, syms, counter)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return tacProg
}

// TestEveryLabelTargetAppearsExactlyOnce covers spec.md §8 property 5: for
// every TAC function, every jump/cond_jump target label appears exactly
// once as a label instruction in that function.
func TestEveryLabelTargetAppearsExactlyOnce(t *testing.T) {
	sources := []string{
		`int main(void){ int x=2; int y=3; return x*y+1; }`,
		`int main(void){ int x=1; { int x=2; x=x+3; } return x; }`,
		`int main(void){ int x=2; int y=0;
 switch(x){ case 1: y=10; break; case 2: y=20; break; default: y=30; break; }
 return y; }`,
		`int main(void){ int a[3]; int *p = a; p[0]=7; p[1]=p[0]+1; return a[0]+a[1]; }`,
		`int main(void){ int s=0;
 for(int i=0;i<5;i=i+1){ if(i==3) continue; s=s+i; if(i==4) break; }
 return s; }`,
		`int main(void){ int i=0; int s=0; do { s=s+i; i=i+1; } while (i<4); return s; }`,
	}

	for _, src := range sources {
		prog := lowerSource(t, src)
		for _, tl := range prog.TopLevels {
			fn, ok := tl.(Function)
			if !ok {
				continue
			}
			labelCount := map[string]int{}
			var targets []string
			for _, instr := range fn.Body {
				switch in := instr.(type) {
				case Label:
					labelCount[in.Name]++
				case Jump:
					targets = append(targets, in.Label)
				case CondJump:
					targets = append(targets, in.Label)
				}
			}
			for name, count := range labelCount {
				if count != 1 {
					t.Fatalf("%s: label %q defined %d times, want exactly 1", src, name, count)
				}
			}
			for _, target := range targets {
				if labelCount[target] != 1 {
					t.Fatalf("%s: jump target %q does not appear exactly once as a label (got %d)", src, target, labelCount[target])
				}
			}
		}
	}
}

func TestSwitchLowersToLinearCompares(t *testing.T) {
	prog := lowerSource(t, `int main(void){ int x=2; int y=0;
 switch(x){ case 1: y=10; break; case 2: y=20; break; default: y=30; break; }
 return y; }`)
	fn := findFunc(t, prog, "main")

	var cmps, condJumps int
	for _, instr := range fn.Body {
		switch instr.(type) {
		case Cmp:
			cmps++
		case CondJump:
			condJumps++
		}
	}
	if cmps != 2 {
		t.Fatalf("want 2 cmp instructions (one per case), got %d", cmps)
	}
	if condJumps != 2 {
		t.Fatalf("want 2 cond_jump instructions, got %d", condJumps)
	}
}

func TestStringConstantBecomesGlobalStaticVar(t *testing.T) {
	prog := lowerSource(t, `int f(char *s){ return 0; }
int main(void){ return f("hi"); }`)
	var found bool
	for _, tl := range prog.TopLevels {
		sv, ok := tl.(StaticVar)
		if !ok {
			continue
		}
		if sv.Array && len(sv.Init) == 1 && string(sv.Init[0].Bytes) == "hi\x00" {
			found = true
		}
	}
	if !found {
		t.Fatal("want a global StaticVar holding \"hi\\x00\"")
	}
}

func TestPointerArithmeticScalesByElementSize(t *testing.T) {
	prog := lowerSource(t, `int main(void){ int a[4]; int *p = a; p = p + 1; return 0; }`)
	fn := findFunc(t, prog, "main")
	var sawScale bool
	for _, instr := range fn.Body {
		b, ok := instr.(Binary)
		if !ok || b.Op != Mul {
			continue
		}
		if c, ok := b.Src2.(Const); ok && c.Bits == 4 {
			sawScale = true
		}
	}
	if !sawScale {
		t.Fatal("pointer-to-int arithmetic must scale the offset by sizeof(int)=4")
	}
}

func findFunc(t *testing.T, prog *Program, name string) Function {
	t.Helper()
	for _, tl := range prog.TopLevels {
		if fn, ok := tl.(Function); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("no function named %q in lowered program", name)
	return Function{}
}

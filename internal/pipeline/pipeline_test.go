package pipeline_test

import (
	"testing"

	"ccfront/internal/pipeline"
	"ccfront/pkg/interp"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// run compiles src end to end and returns main's return value, matching
// spec.md §8's "End-to-end scenarios (literal inputs and expected
// results; result = main's return)".
func run(t *testing.T, src string) int32 {
	t.Helper()
	result, err := pipeline.Run(zap.NewNop(), "test.c", src)
	require.NoError(t, err)
	return interp.New(result.TAC).Run()
}

func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want int32
	}{
		{
			name: "S1 arithmetic and precedence",
			src:  `int main(void){ int x=2; int y=3; return x*y+1; }`,
			want: 7,
		},
		{
			name: "S2 scoped shadowing",
			src:  `int main(void){ int x=1; { int x=2; x=x+3; } return x; }`,
			want: 1,
		},
		{
			name: "S3 switch with default",
			src: `int main(void){ int x=2; int y=0;
 switch(x){ case 1: y=10; break; case 2: y=20; break; default: y=30; break; }
 return y; }`,
			want: 20,
		},
		{
			name: "S4 pointer subscripting and store",
			src:  `int main(void){ int a[3]; int *p = a; p[0]=7; p[1]=p[0]+1; return a[0]+a[1]; }`,
			want: 15,
		},
		{
			name: "S5 for-loop with continue and break",
			src: `int main(void){ int s=0;
 for(int i=0;i<5;i=i+1){ if(i==3) continue; s=s+i; if(i==4) break; }
 return s; }`,
			want: 7,
		},
		{
			name: "S6 linkage and initialization",
			src:  `static int g = 41; int f(void){ return g+1; } int main(void){ return f(); }`,
			want: 42,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, run(t, tc.src))
		})
	}
}

func TestSwitchOnPointerRejected(t *testing.T) {
	_, err := pipeline.Run(zap.NewNop(), "test.c", `int main(void){ int x=0; int *p=&x; switch(p){ default: return 0; } }`)
	require.Error(t, err)
}

func TestIfOnPointerAccepted(t *testing.T) {
	got := run(t, `int main(void){ int x=5; int *p=&x; if (p) return 1; return 0; }`)
	require.Equal(t, int32(1), got)
}

func TestRecursion(t *testing.T) {
	src := `int fact(int n){ if (n <= 1) return 1; return n * fact(n - 1); }
int main(void){ return fact(5); }`
	require.Equal(t, int32(120), run(t, src))
}

func TestGotoLoop(t *testing.T) {
	src := `int main(void){ int i = 0; int s = 0;
top:
 if (i >= 5) goto done;
 s = s + i;
 i = i + 1;
 goto top;
done:
 return s;
}`
	require.Equal(t, int32(10), run(t, src))
}

func TestDoWhile(t *testing.T) {
	src := `int main(void){ int i=0; int s=0; do { s = s + i; i = i + 1; } while (i < 4); return s; }`
	require.Equal(t, int32(6), run(t, src))
}

func TestStringLiteralGlobal(t *testing.T) {
	src := `int strlen_(char *s){ int n = 0; while (s[n]) n = n + 1; return n; }
int main(void){ return strlen_("hello"); }`
	require.Equal(t, int32(5), run(t, src))
}

func TestDuplicateCaseRejected(t *testing.T) {
	_, err := pipeline.Run(zap.NewNop(), "test.c", `int main(void){ int x=1; switch(x){ case 1: return 1; case 1: return 2; } return 0; }`)
	require.Error(t, err)
}

package interp

import (
	"testing"

	"ccfront/pkg/check"
	"ccfront/pkg/tac"

	"github.com/stretchr/testify/require"
)

// TestSignedNarrowWidthWraps exercises the interpreter's raw instruction
// semantics directly (bypassing pkg/tac lowering) to pin down spec.md
// §4.6's width/signedness extension rule: a copy into a signed one-byte
// local truncates, and reading that local back sign-extends from bit 7.
func TestSignedNarrowWidthWraps(t *testing.T) {
	prog := &tac.Program{TopLevels: []tac.TopLevel{
		tac.Function{
			Name: "main",
			Locals: []tac.LocalSpec{
				{Name: "c", Width: 1, Signed: true, Size: 1},
			},
			Body: []tac.Instr{
				tac.Copy{Dst: tac.Name{Ident: "c"}, Src: tac.ConstInt(200)}, // 200 truncated to int8 is -56
				tac.Return{Val: tac.Name{Ident: "c"}},
			},
		},
	}}
	it := New(prog)
	require.Equal(t, int32(-56), it.Run())
}

// TestUnsignedNarrowWidthZeroExtends mirrors the above for an unsigned
// narrow read: the same bit pattern reads back as a small positive value.
func TestUnsignedNarrowWidthZeroExtends(t *testing.T) {
	prog := &tac.Program{TopLevels: []tac.TopLevel{
		tac.Function{
			Name:   "main",
			Locals: []tac.LocalSpec{{Name: "c", Width: 1, Signed: false, Size: 1}},
			Body: []tac.Instr{
				tac.Copy{Dst: tac.Name{Ident: "c"}, Src: tac.ConstInt(200)},
				tac.Return{Val: tac.Name{Ident: "c"}},
			},
		},
	}}
	it := New(prog)
	require.Equal(t, int32(200), it.Run())
}

// TestGetAddressAliasesNamedStorage pins down the "a byte-addressable
// named variable" design: get_address on x followed by a store through
// that address must be visible through a subsequent plain read of x.
func TestGetAddressAliasesNamedStorage(t *testing.T) {
	prog := &tac.Program{TopLevels: []tac.TopLevel{
		tac.Function{
			Name: "main",
			Locals: []tac.LocalSpec{
				{Name: "x", Width: 4, Signed: true, Size: 4},
				{Name: "addr", Width: 8, Signed: false, Size: 8},
			},
			Body: []tac.Instr{
				tac.Copy{Dst: tac.Name{Ident: "x"}, Src: tac.ConstInt(1)},
				tac.GetAddress{Dst: tac.Name{Ident: "addr"}, Name: "x"},
				tac.Store{Addr: tac.Name{Ident: "addr"}, Src: tac.ConstInt(99), Width: 4},
				tac.Return{Val: tac.Name{Ident: "x"}},
			},
		},
	}}
	it := New(prog)
	require.Equal(t, int32(99), it.Run())
}

// TestGlobalStaticVarIsInitialized exercises New's eager materialization
// of static-data records (spec.md §5 "process-wide mapping of globals").
func TestGlobalStaticVarIsInitialized(t *testing.T) {
	prog := &tac.Program{TopLevels: []tac.TopLevel{
		tac.StaticVar{
			Name: "g", Global: true, Width: 4, Signed: true,
			Init: []check.StaticInit{{Bytes: []byte{41, 0, 0, 0}}},
		},
		tac.Function{
			Name: "main",
			Body: []tac.Instr{
				tac.Binary{Op: tac.Add, Dst: tac.Name{Ident: "t"}, Src1: tac.Name{Ident: "g"}, Src2: tac.ConstInt(1), Signed: true, Width: 4},
				tac.Return{Val: tac.Name{Ident: "t"}},
			},
		},
	}}
	it := New(prog)
	require.Equal(t, int32(42), it.Run())
}

// TestRecursiveCallIsolatesFrames drives pkg/interp's bump-allocated
// call-frame design directly: each nested call must see its own copy of
// a same-named local without clobbering the caller's.
func TestRecursiveCallIsolatesFrames(t *testing.T) {
	// int fact(int n) { if (n <= 1) return 1; return n * fact(n-1); }
	prog := &tac.Program{TopLevels: []tac.TopLevel{
		tac.Function{
			Name:   "fact",
			Params: []string{"n"},
			Locals: []tac.LocalSpec{{Name: "n", Width: 4, Signed: true, Size: 4}},
			Body: []tac.Instr{
				tac.Cmp{Src1: tac.Name{Ident: "n"}, Src2: tac.ConstInt(1), Signed: true, Width: 4},
				tac.CondJump{Code: tac.Gt, Label: "recurse"},
				tac.Return{Val: tac.ConstInt(1)},
				tac.Label{Name: "recurse"},
				tac.Binary{Op: tac.Sub, Dst: tac.Name{Ident: "t1"}, Src1: tac.Name{Ident: "n"}, Src2: tac.ConstInt(1), Signed: true, Width: 4},
				tac.Call{Dst: tac.Name{Ident: "t2"}, Name: "fact", Args: []tac.Val{tac.Name{Ident: "t1"}}},
				tac.Binary{Op: tac.Mul, Dst: tac.Name{Ident: "t3"}, Src1: tac.Name{Ident: "n"}, Src2: tac.Name{Ident: "t2"}, Signed: true, Width: 4},
				tac.Return{Val: tac.Name{Ident: "t3"}},
			},
		},
		tac.Function{
			Name: "main",
			Body: []tac.Instr{
				tac.Call{Dst: tac.Name{Ident: "r"}, Name: "fact", Args: []tac.Val{tac.ConstInt(5)}},
				tac.Return{Val: tac.Name{Ident: "r"}},
			},
		},
	}}
	it := New(prog)
	require.Equal(t, int32(120), it.Run())
}

// Package interp implements the TAC reference interpreter (spec.md
// §4.6): a small stack machine over one flat byte-addressable memory
// space, used both as the CLI driver's `--interp` mode and as the test
// harness for the six end-to-end scenarios in spec.md §8.
//
// Grounded on the shape of the teacher's pkg/compiler/codegen.go's own
// model of "named slots plus a loop/label table", reinterpreted as an
// interpreter rather than an assembly-text emitter, since spec.md
// explicitly carves out a separate reference interpreter where the
// teacher only ever emits code for GoCPU hardware.
package interp

import (
	"ccfront/pkg/tac"
)

// slot describes where a named variable lives in mem and how to
// interpret its bytes as a scalar (unused for arrays, which are only
// ever touched through explicit Load/Store at an address).
type slot struct {
	offset int
	width  int
	signed bool
	array  bool
}

// Interp executes a tac.Program (spec.md §4.6).
type Interp struct {
	funcs   map[string]tac.Function
	mem     []byte
	globals map[string]slot
}

// New builds an Interp and materializes every static-data record into
// global memory (spec.md §5 "process-wide mapping of globals").
func New(prog *tac.Program) *Interp {
	it := &Interp{
		funcs:   map[string]tac.Function{},
		globals: map[string]slot{},
	}
	for _, tl := range prog.TopLevels {
		switch n := tl.(type) {
		case tac.Function:
			it.funcs[n.Name] = n
		case tac.StaticVar:
			off := len(it.mem)
			for _, chunk := range n.Init {
				if chunk.Bytes != nil {
					it.mem = append(it.mem, chunk.Bytes...)
				} else {
					it.mem = append(it.mem, make([]byte, chunk.ZeroLen)...)
				}
			}
			it.globals[n.Name] = slot{offset: off, width: n.Width, signed: n.Signed, array: n.Array}
		}
	}
	return it
}

// Run calls main with no arguments and returns its return value projected
// to a signed 32-bit int (spec.md §4.6). A program with no return
// statement reached in main yields a deterministic zero.
func (it *Interp) Run() int32 {
	v, _ := it.Call("main", nil)
	return int32(v)
}

// Call invokes the named function with args already converted to its
// parameter types, and returns its 64-bit result (exported so tests can
// drive individual functions directly).
func (it *Interp) Call(name string, args []uint64) (uint64, bool) {
	fn, ok := it.funcs[name]
	if !ok {
		return 0, false
	}
	return it.call(fn, args)
}

type frame struct {
	locals map[string]slot
	regs   map[string]uint64
}

func (it *Interp) call(fn tac.Function, args []uint64) (uint64, bool) {
	fr := &frame{locals: map[string]slot{}, regs: map[string]uint64{}}
	base := len(it.mem)
	for _, l := range fn.Locals {
		off := len(it.mem)
		size := l.Size
		if size == 0 {
			size = 8
		}
		it.mem = append(it.mem, make([]byte, size)...)
		fr.locals[l.Name] = slot{offset: off, width: l.Width, signed: l.Signed, array: l.Array}
	}
	for i, p := range fn.Params {
		if i < len(args) {
			it.writeNamed(fr.locals[p], args[i])
		}
	}
	ret, returned := it.exec(fn, fr)
	it.mem = it.mem[:base]
	if !returned {
		return 0, true
	}
	return ret, true
}

func (it *Interp) exec(fn tac.Function, fr *frame) (uint64, bool) {
	labels := map[string]int{}
	for i, instr := range fn.Body {
		if l, ok := instr.(tac.Label); ok {
			labels[l.Name] = i
		}
	}

	var cmp cmpResult
	pc := 0
	for pc < len(fn.Body) {
		switch in := fn.Body[pc].(type) {
		case tac.Label:
			// no-op marker

		case tac.Jump:
			pc = labels[in.Label]
			continue

		case tac.CondJump:
			if cmp.satisfies(in.Code) {
				pc = labels[in.Label]
				continue
			}

		case tac.Cmp:
			a := it.read(fr, in.Src1)
			b := it.read(fr, in.Src2)
			cmp = computeCmp(a, b, in.Signed, in.Width)

		case tac.Copy:
			it.write(fr, in.Dst, it.read(fr, in.Src))

		case tac.Binary:
			a := it.read(fr, in.Src1)
			b := it.read(fr, in.Src2)
			it.write(fr, in.Dst, extend(evalBinary(in.Op, a, b, in.Signed), in.Signed, in.Width))

		case tac.Unary:
			a := it.read(fr, in.Src)
			it.write(fr, in.Dst, extend(evalUnary(in.Op, a), in.Signed, in.Width))

		case tac.Convert:
			a := it.read(fr, in.Src)
			a = extend(a, in.SrcSigned, in.SrcWidth)
			it.write(fr, in.Dst, extend(a, in.DstSigned, in.DstWidth))

		case tac.GetAddress:
			it.write(fr, in.Dst, uint64(it.addressOf(fr, in.Name)))

		case tac.Load:
			addr := int(it.read(fr, in.Addr))
			it.write(fr, in.Dst, extend(readBytes(it.mem, addr, in.Width), in.Signed, in.Width))

		case tac.Store:
			addr := int(it.read(fr, in.Addr))
			writeBytes(it.mem, addr, it.read(fr, in.Src), in.Width)

		case tac.CopyToOffset:
			base := it.baseOffset(fr, in.Base)
			writeBytes(it.mem, base+in.Offset, it.read(fr, in.Src), in.Width)

		case tac.Call:
			args := make([]uint64, len(in.Args))
			for i, a := range in.Args {
				args[i] = it.read(fr, a)
			}
			callee, ok := it.funcs[in.Name]
			if ok {
				ret, _ := it.call(callee, args)
				if in.Dst != nil {
					it.write(fr, in.Dst, ret)
				}
			}

		case tac.Return:
			if in.Val == nil {
				return 0, true
			}
			return it.read(fr, in.Val), true
		}
		pc++
	}
	return 0, false
}

func (it *Interp) addressOf(fr *frame, name string) int {
	if s, ok := fr.locals[name]; ok {
		return s.offset
	}
	if s, ok := it.globals[name]; ok {
		return s.offset
	}
	return 0
}

func (it *Interp) baseOffset(fr *frame, name string) int {
	return it.addressOf(fr, name)
}

// read evaluates a tac.Val: a constant, a named (byte-addressable)
// variable read at its own declared width, or a lowering-minted
// temporary register.
func (it *Interp) read(fr *frame, v tac.Val) uint64 {
	switch n := v.(type) {
	case tac.Const:
		return n.Bits
	case tac.Name:
		if s, ok := fr.locals[n.Ident]; ok {
			return extend(readBytes(it.mem, s.offset, s.width), s.signed, s.width)
		}
		if s, ok := it.globals[n.Ident]; ok {
			return extend(readBytes(it.mem, s.offset, s.width), s.signed, s.width)
		}
		return fr.regs[n.Ident]
	default:
		return 0
	}
}

func (it *Interp) write(fr *frame, v tac.Val, val uint64) {
	n, ok := v.(tac.Name)
	if !ok {
		return
	}
	if s, ok := fr.locals[n.Ident]; ok {
		it.writeNamedMem(s, val)
		return
	}
	if s, ok := it.globals[n.Ident]; ok {
		it.writeNamedMem(s, val)
		return
	}
	fr.regs[n.Ident] = val
}

func (it *Interp) writeNamed(s slot, val uint64) { it.writeNamedMem(s, val) }

func (it *Interp) writeNamedMem(s slot, val uint64) {
	writeBytes(it.mem, s.offset, val, s.width)
}

func readBytes(mem []byte, off, width int) uint64 {
	if width <= 0 || width > 8 || off < 0 || off+width > len(mem) {
		return 0
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(mem[off+i]) << (8 * uint(i))
	}
	return v
}

func writeBytes(mem []byte, off int, v uint64, width int) {
	if width <= 0 || width > 8 || off < 0 || off+width > len(mem) {
		return
	}
	for i := 0; i < width; i++ {
		mem[off+i] = byte(v >> (8 * uint(i)))
	}
}

// extend sign- or zero-extends the low width bytes of v to a full 64-bit
// pattern (spec.md §4.6 "load and store use the pointed-to width").
func extend(v uint64, signed bool, width int) uint64 {
	if width <= 0 || width >= 8 {
		return v
	}
	bits := uint(width * 8)
	mask := uint64(1)<<bits - 1
	v &= mask
	if signed && v&(uint64(1)<<(bits-1)) != 0 {
		v |= ^mask
	}
	return v
}

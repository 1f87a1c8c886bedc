package interp

import "ccfront/pkg/tac"

// evalBinary computes a raw (pre-extend) 64-bit result for a Binary
// instruction's operator, using signed or unsigned 64-bit semantics per
// the instruction's own annotation (spec.md §4.6).
func evalBinary(op tac.BinOp, a, b uint64, signed bool) uint64 {
	switch op {
	case tac.Add:
		return a + b
	case tac.Sub:
		return a - b
	case tac.Mul:
		return a * b
	case tac.Div:
		if b == 0 {
			return 0
		}
		if signed {
			return uint64(int64(a) / int64(b))
		}
		return a / b
	case tac.Mod:
		if b == 0 {
			return 0
		}
		if signed {
			return uint64(int64(a) % int64(b))
		}
		return a % b
	case tac.And:
		return a & b
	case tac.Or:
		return a | b
	case tac.Xor:
		return a ^ b
	case tac.Shl:
		return a << (b & 63)
	case tac.Shr:
		if signed {
			return uint64(int64(a) >> (b & 63))
		}
		return a >> (b & 63)
	default:
		return 0
	}
}

func evalUnary(op tac.UnOp, a uint64) uint64 {
	switch op {
	case tac.Negate:
		return uint64(-int64(a))
	case tac.Complement:
		return ^a
	case tac.Not:
		if a == 0 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// cmpResult caches the outcome of the most recent Cmp instruction so the
// CondJump that follows it can consult the outcome for its condition code
// (spec.md §4.6: "cond_jump consults the result of the immediately
// preceding cmp plus the condition code").
type cmpResult struct {
	eq, lt, gt bool
}

func computeCmp(a, b uint64, signed bool, width int) cmpResult {
	a = extend(a, signed, width)
	b = extend(b, signed, width)
	if signed {
		sa, sb := int64(a), int64(b)
		return cmpResult{eq: sa == sb, lt: sa < sb, gt: sa > sb}
	}
	return cmpResult{eq: a == b, lt: a < b, gt: a > b}
}

func (c cmpResult) satisfies(code tac.CondCode) bool {
	switch code {
	case tac.Eq:
		return c.eq
	case tac.Ne:
		return !c.eq
	case tac.Lt:
		return c.lt
	case tac.Le:
		return c.lt || c.eq
	case tac.Gt:
		return c.gt
	case tac.Ge:
		return c.gt || c.eq
	default:
		return false
	}
}

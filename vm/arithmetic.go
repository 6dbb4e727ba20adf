package vm

import (
	"math"

	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// binaryOp implements every two-operand arithmetic/comparison/bitwise
// opcode (spec.md §4.6: "int64+int64 -> int64 with overflow-to-float64;
// any float64 operand -> float64; string + concatenates; == loose vs
// === strict").
func (c *Context) binaryOp(op bytecode.Opcode, lhs, rhs value.Value) value.Value {
	switch op {
	case bytecode.Add:
		if lhs.IsString() || rhs.IsString() {
			return value.Str(lhs.ToDisplayString() + rhs.ToDisplayString())
		}
		return numericBinary(lhs, rhs, func(a, b int64) (int64, bool) {
			sum := a + b
			if (sum > a) != (b > 0) {
				return 0, false // overflow
			}
			return sum, true
		}, func(a, b float64) float64 { return a + b })
	case bytecode.Sub:
		return numericBinary(lhs, rhs, func(a, b int64) (int64, bool) {
			diff := a - b
			if (diff < a) != (b > 0) {
				return 0, false
			}
			return diff, true
		}, func(a, b float64) float64 { return a - b })
	case bytecode.Mul:
		return numericBinary(lhs, rhs, func(a, b int64) (int64, bool) {
			if a == 0 || b == 0 {
				return 0, true
			}
			p := a * b
			if p/b != a {
				return 0, false
			}
			return p, true
		}, func(a, b float64) float64 { return a * b })
	case bytecode.Div:
		return value.Float(lhs.Float64() / rhs.Float64())
	case bytecode.Mod:
		if isIntKind(lhs) && isIntKind(rhs) && rhs.Int64() != 0 {
			return value.Int(lhs.Int64() % rhs.Int64())
		}
		return value.Float(math.Mod(lhs.Float64(), rhs.Float64()))
	case bytecode.Pow:
		return value.Float(math.Pow(lhs.Float64(), rhs.Float64()))

	case bytecode.BitAnd:
		return value.Int(lhs.Int64() & rhs.Int64())
	case bytecode.BitOr:
		return value.Int(lhs.Int64() | rhs.Int64())
	case bytecode.BitXor:
		return value.Int(lhs.Int64() ^ rhs.Int64())
	case bytecode.Shl:
		return value.Int(lhs.Int64() << uint(rhs.Int64()&31))
	case bytecode.Shr:
		return value.Int(lhs.Int64() >> uint(rhs.Int64()&31))
	case bytecode.UShr:
		return value.Int(int64(uint32(lhs.Int64()) >> uint(rhs.Int64()&31)))

	case bytecode.Eq:
		return value.Bool(looseEqual(lhs, rhs))
	case bytecode.Ne:
		return value.Bool(!looseEqual(lhs, rhs))
	case bytecode.StrictEq:
		return value.Bool(strictEqual(lhs, rhs))
	case bytecode.StrictNe:
		return value.Bool(!strictEqual(lhs, rhs))
	case bytecode.Lt:
		return value.Bool(compare(lhs, rhs) < 0)
	case bytecode.Le:
		return value.Bool(compare(lhs, rhs) <= 0)
	case bytecode.Gt:
		return value.Bool(compare(lhs, rhs) > 0)
	case bytecode.Ge:
		return value.Bool(compare(lhs, rhs) >= 0)
	}
	return value.Undef()
}

func isIntKind(v value.Value) bool { return v.Kind() == value.Int64 || v.Kind() == value.Uint64 }

func numericBinary(lhs, rhs value.Value, intOp func(a, b int64) (int64, bool), floatOp func(a, b float64) float64) value.Value {
	if isIntKind(lhs) && isIntKind(rhs) {
		if r, ok := intOp(lhs.Int64(), rhs.Int64()); ok {
			return value.Int(r)
		}
	}
	return value.Float(floatOp(lhs.Float64(), rhs.Float64()))
}

func negate(v value.Value) value.Value {
	if isIntKind(v) {
		return value.Int(-v.Int64())
	}
	return value.Float(-v.Float64())
}

// addNumeric implements Inc/Dec: add delta (+1/-1) to a number,
// preserving int64 representation when possible.
func addNumeric(v value.Value, delta int64) value.Value {
	if isIntKind(v) {
		return value.Int(v.Int64() + delta)
	}
	return value.Float(v.Float64() + float64(delta))
}

func compare(lhs, rhs value.Value) int {
	if lhs.IsString() && rhs.IsString() {
		a, b := lhs.Str(), rhs.Str()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	a, b := lhs.Float64(), rhs.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func strictEqual(lhs, rhs value.Value) bool {
	if lhs.Kind() != rhs.Kind() {
		return false
	}
	switch {
	case lhs.IsNumber():
		return lhs.Float64() == rhs.Float64()
	case lhs.IsString():
		return lhs.Str() == rhs.Str()
	case lhs.IsBoolean():
		return lhs.Boolean() == rhs.Boolean()
	case lhs.IsNullish():
		return true
	default:
		return lhs.Object() == rhs.Object()
	}
}

func looseEqual(lhs, rhs value.Value) bool {
	if lhs.Kind() == rhs.Kind() {
		return strictEqual(lhs, rhs)
	}
	if lhs.IsNullish() && rhs.IsNullish() {
		return true
	}
	if lhs.IsNullish() || rhs.IsNullish() {
		return false
	}
	if lhs.IsNumber() && rhs.IsString() {
		return lhs.Float64() == rhs.Float64()
	}
	if lhs.IsString() && rhs.IsNumber() {
		return lhs.Float64() == rhs.Float64()
	}
	if lhs.IsBoolean() {
		return looseEqual(value.Float(boolToFloat(lhs)), rhs)
	}
	if rhs.IsBoolean() {
		return looseEqual(lhs, value.Float(boolToFloat(rhs)))
	}
	return false
}

func boolToFloat(v value.Value) float64 {
	if v.Boolean() {
		return 1
	}
	return 0
}

package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

func TestBinaryAddOverflowsToFloat64(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Add, value.Int(math.MaxInt64), value.Int(1))
	assert.Equal(t, value.Float64, r.Kind())
}

func TestBinaryAddKeepsInt64WhenNoOverflow(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Add, value.Int(2), value.Int(3))
	assert.Equal(t, value.Int64, r.Kind())
	assert.Equal(t, int64(5), r.Int64())
}

func TestBinaryAddConcatenatesWhenEitherSideIsString(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Add, value.Str("x = "), value.Int(3))
	assert.Equal(t, "x = 3", r.Str())
}

func TestBinaryMulOverflowsToFloat64(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Mul, value.Int(1<<40), value.Int(1<<40))
	assert.Equal(t, value.Float64, r.Kind())
}

func TestBinaryDivAlwaysProducesFloat(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Div, value.Int(6), value.Int(3))
	assert.Equal(t, value.Float64, r.Kind())
	assert.Equal(t, float64(2), r.Float64())
}

func TestBinaryModKeepsIntForIntOperands(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Mod, value.Int(7), value.Int(3))
	assert.Equal(t, value.Int64, r.Kind())
	assert.Equal(t, int64(1), r.Int64())
}

func TestStrictEqualityDistinguishesIntAndString(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.StrictEq, value.Int(1), value.Str("1"))
	assert.False(t, r.Boolean())
}

func TestLooseEqualityCoercesStringToNumber(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Eq, value.Int(1), value.Str("1"))
	assert.True(t, r.Boolean())
}

func TestComparisonOrdersStringsLexicographically(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Lt, value.Str("apple"), value.Str("banana"))
	assert.True(t, r.Boolean())
}

func TestStringSubtractionCoercesToNumber(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Sub, value.Str("5"), value.Str("2"))
	assert.Equal(t, float64(3), r.Float64())
}

func TestNumericComparisonCoercesNumericString(t *testing.T) {
	c := &Context{}
	r := c.binaryOp(bytecode.Lt, value.Int(5), value.Str("10"))
	assert.True(t, r.Boolean())
}

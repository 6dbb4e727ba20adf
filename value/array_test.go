package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayPushPop(t *testing.T) {
	a := NewArray(Undef(), 0)
	assert.Equal(t, 0, a.Length())

	n := a.Push(Int(1))
	assert.Equal(t, 1, n)
	n = a.Push(Int(2))
	assert.Equal(t, 2, n)

	v := a.Pop()
	assert.Equal(t, int64(2), v.Int64())
	assert.Equal(t, 1, a.Length())
}

func TestArrayPopEmpty(t *testing.T) {
	a := NewArray(Undef(), 0)
	v := a.Pop()
	assert.True(t, v.IsUndefined())
}

func TestArraySetAtGrows(t *testing.T) {
	a := NewArray(Undef(), 0)
	a.SetAt(3, Int(9))
	assert.Equal(t, 4, a.Length())
	assert.Equal(t, int64(9), a.At(3).Int64())
	assert.True(t, a.At(0).IsUndefined())
}

func TestArrayAtOutOfRange(t *testing.T) {
	a := NewArrayFromValues(Undef(), []Value{Int(1), Int(2)})
	assert.True(t, a.At(-1).IsUndefined())
	assert.True(t, a.At(5).IsUndefined())
}

func TestArrayGetComputedPropertyIndexVsNamed(t *testing.T) {
	a := NewArrayFromValues(Undef(), []Value{Str("x"), Str("y")})
	a.Set("label", Str("letters"))

	v, ok := a.GetComputedProperty(Int(0))
	require.True(t, ok)
	assert.Equal(t, "x", v.Str())

	v, ok = a.GetComputedProperty(Str("label"))
	require.True(t, ok)
	assert.Equal(t, "letters", v.Str())

	_, ok = a.GetComputedProperty(Int(10))
	assert.False(t, ok)
}

func TestArraySetComputedPropertyIndexVsNamed(t *testing.T) {
	a := NewArray(Undef(), 2)
	a.SetComputedProperty(Int(1), Str("b"))
	assert.Equal(t, "b", a.At(1).Str())

	a.SetComputedProperty(Str("extra"), Int(5))
	v, ok := a.Get("extra")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int64())
}

func TestArrayBaseSatisfiesPrototypeInterface(t *testing.T) {
	var b *Object = (&ArrayObject{}).Base()
	assert.NotNil(t, b)
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
)

func TestValueKindPredicates(t *testing.T) {
	assert.True(t, Undef().IsUndefined())
	assert.True(t, Nil().IsNull())
	assert.True(t, Nil().IsNullish())
	assert.True(t, Bool(true).IsBoolean())
	assert.True(t, Int(1).IsNumber())
	assert.True(t, UintVal(1).IsNumber())
	assert.True(t, Float(1.5).IsNumber())
	assert.True(t, Str("x").IsString())
	assert.True(t, StrView("x").IsString())
	assert.True(t, Sym("x").IsSymbol())
	assert.True(t, BigIntVal("1").IsBigInt())
}

func TestValueNumericConversions(t *testing.T) {
	assert.Equal(t, int64(42), Int(42).Int64())
	assert.Equal(t, uint64(42), UintVal(42).Uint64())
	assert.InDelta(t, 3.5, Float(3.5).Float64(), 0)
	assert.Equal(t, int64(3), Float(3.9).Int64())
}

func TestValueToBoolean(t *testing.T) {
	assert.False(t, Undef().ToBoolean())
	assert.False(t, Nil().ToBoolean())
	assert.False(t, Int(0).ToBoolean())
	assert.True(t, Int(1).ToBoolean())
	assert.False(t, Str("").ToBoolean())
	assert.True(t, Str("x").ToBoolean())
}

func TestValueTypeofString(t *testing.T) {
	assert.Equal(t, "undefined", Undef().TypeofString())
	assert.Equal(t, "object", Nil().TypeofString())
	assert.Equal(t, "number", Int(1).TypeofString())
	assert.Equal(t, "string", Str("x").TypeofString())
	assert.Equal(t, "symbol", Sym("x").TypeofString())
}

func TestSymbolIdentityDistinctAcrossCalls(t *testing.T) {
	a := Sym("x")
	b := Sym("x")
	assert.NotEqual(t, a.ConstKey(), b.ConstKey())
}

func TestSymbolIdentityStableAcrossCopies(t *testing.T) {
	a := Sym("x")
	b := a
	assert.Equal(t, a.ConstKey(), b.ConstKey())
}

func TestConstKeyDedupesPrimitives(t *testing.T) {
	assert.Equal(t, Int(5).ConstKey(), Int(5).ConstKey())
	assert.Equal(t, Str("hi").ConstKey(), Str("hi").ConstKey())
	assert.NotEqual(t, Int(5).ConstKey(), Int(6).ConstKey())
}

func TestConstPoolDedupesValues(t *testing.T) {
	pool := bytecode.NewConstPool()
	i1 := pool.FindOrInsert(Int(7))
	i2 := pool.FindOrInsert(Int(7))
	i3 := pool.FindOrInsert(Str("7"))
	assert.Equal(t, i1, i2)
	assert.NotEqual(t, i1, i3)
}

func TestIsObjectExcludesSymbolsAndFunctionDefRefs(t *testing.T) {
	assert.False(t, Sym("x").IsObject())
	fn := bytecode.NewFunctionDef("f", 0, bytecode.FlagNormal)
	assert.False(t, FuncDefVal(fn).IsObject())
	assert.True(t, Obj(Object, NewObject(ClassObject, Undef())).IsObject())
}

func TestObjectPropertyMapInsertionOrder(t *testing.T) {
	o := NewObject(ClassObject, Undef())
	o.Set("b", Int(2))
	o.Set("a", Int(1))
	o.Set("b", Int(20))
	require.Equal(t, []string{"b", "a"}, o.Properties().Keys())
	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, int64(20), v.Int64())
}

func TestObjectKeysSnapshotIsolatesMutation(t *testing.T) {
	o := NewObject(ClassObject, Undef())
	o.Set("a", Int(1))
	keys := o.Properties().Keys()
	o.Set("b", Int(2))
	assert.Len(t, keys, 1)
	assert.Len(t, o.Properties().Keys(), 2)
}

func TestGetWithPrototypeChain(t *testing.T) {
	base := NewObject(ClassObject, Undef())
	base.Set("greeting", Str("hi"))
	derived := NewObject(ClassObject, Obj(Object, base))

	v, ok := derived.GetWithPrototypeChain("greeting")
	require.True(t, ok)
	assert.Equal(t, "hi", v.Str())

	_, ok = derived.GetWithPrototypeChain("missing")
	assert.False(t, ok)
}

func TestGetWithPrototypeChainThroughArrayObject(t *testing.T) {
	base := NewObject(ClassObject, Undef())
	base.Set("shared", Int(1))
	arr := NewArray(Obj(Object, base), 0)

	v, ok := arr.GetWithPrototypeChain("shared")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())
}

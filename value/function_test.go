package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
)

func TestFunctionObjectBasics(t *testing.T) {
	def := bytecode.NewFunctionDef("greet", 1, bytecode.FlagNormal)
	fn := NewFunction(Undef(), def, nil)

	assert.Equal(t, def, fn.FunctionDef())
	assert.Equal(t, 1, fn.ParamCount())
	assert.Contains(t, fn.String(), "greet")
	assert.False(t, fn.Constructor)
}

func TestFunctionObjectAnonymousString(t *testing.T) {
	def := bytecode.NewFunctionDef("", 0, bytecode.FlagArrow)
	fn := NewFunction(Undef(), def, nil)
	assert.Contains(t, fn.String(), "(anonymous)")
}

func TestClosureEnvironmentSharesCellMutation(t *testing.T) {
	cell := &Cell{V: Int(1)}
	env := ClosureEnvironment{cell}

	outerFn := NewFunction(Undef(), bytecode.NewFunctionDef("outer", 0, bytecode.FlagNormal), env)
	innerFn := NewFunction(Undef(), bytecode.NewFunctionDef("inner", 0, bytecode.FlagNormal), env)

	outerFn.ClosureEnv[0].V = Int(42)
	assert.Equal(t, int64(42), innerFn.ClosureEnv[0].V.Int64())
}

func TestConstructorObjectMarksConstructorFlag(t *testing.T) {
	def := bytecode.NewFunctionDef("Point", 2, bytecode.FlagNormal)
	instanceProto := Obj(Object, NewObject(ClassObject, Undef()))
	ctor := NewConstructorFunc(Undef(), instanceProto, def, nil)

	require.True(t, ctor.Constructor)
	assert.Equal(t, instanceProto, ctor.InstancePrototype)
	assert.NotNil(t, ctor.Base())
}

func TestClassDefOverridesMask(t *testing.T) {
	cd := ClassDef{ID: ClassArray, Name: "Array", Overrides: OverridesGet | OverridesSet}
	assert.True(t, cd.Overrides.Has(OverridesGet))
	assert.True(t, cd.Overrides.Has(OverridesSet))
	assert.False(t, cd.Overrides.Has(OverridesDelete))
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
)

func TestGeneratorInitialStateIsSuspended(t *testing.T) {
	def := bytecode.NewFunctionDef("gen", 0, bytecode.FlagGenerator)
	g := NewGenerator(Undef(), def, nil, Undef())
	assert.True(t, g.IsSuspended())
	assert.False(t, g.IsExecuting())
	assert.False(t, g.IsClosed())
	assert.Equal(t, bytecode.Pc(0), g.Pc())
}

func TestGeneratorStateTransitions(t *testing.T) {
	def := bytecode.NewFunctionDef("gen", 0, bytecode.FlagGenerator)
	g := NewGenerator(Undef(), def, nil, Undef())

	g.SetExecuting()
	assert.True(t, g.IsExecuting())

	g.SetSuspended()
	assert.True(t, g.IsSuspended())

	g.SetClosed()
	assert.True(t, g.IsClosed())
}

func TestGeneratorSaveAndResumeStackLocals(t *testing.T) {
	def := bytecode.NewFunctionDef("gen", 0, bytecode.FlagGenerator)
	g := NewGenerator(Undef(), def, nil, Undef())

	g.SetPc(17)
	g.SaveStack([]Value{Int(1), Int(2)})
	g.SaveLocals([]Value{Str("x")})

	assert.Equal(t, bytecode.Pc(17), g.Pc())
	require.Len(t, g.Stack(), 2)
	assert.Equal(t, int64(2), g.Stack()[1].Int64())
	require.Len(t, g.Locals(), 1)
	assert.Equal(t, "x", g.Locals()[0].Str())
}

func TestMakeReturnObjectShape(t *testing.T) {
	o := MakeReturnObject(Undef(), Int(5), false)
	v, ok := o.Get("value")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int64())

	d, ok := o.Get("done")
	require.True(t, ok)
	assert.False(t, d.Boolean())
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
)

func TestModuleObjectVarSlotsInitUndefined(t *testing.T) {
	def := bytecode.NewModuleDef("m", "let x = 1;")
	def.AllocLocal("x")
	def.AllocLocal("y")

	m := NewModule(Undef(), def)
	assert.True(t, m.Var(0).IsUndefined())
	assert.True(t, m.Var(1).IsUndefined())

	m.SetVar(0, Int(1))
	assert.Equal(t, int64(1), m.Var(0).Int64())
}

func TestModuleObjectVarOutOfRangeIsUndefined(t *testing.T) {
	def := bytecode.NewModuleDef("m", "")
	m := NewModule(Undef(), def)
	assert.True(t, m.Var(5).IsUndefined())
	m.SetVar(5, Int(1)) // no-op, must not panic
}

func TestModuleObjectExports(t *testing.T) {
	def := bytecode.NewModuleDef("m", "export const x = 1;")
	slot := def.AllocLocal("x")
	def.ExportVars.AddExportVar("x", slot)

	m := NewModule(Undef(), def)
	m.SetVar(slot, Int(99))

	v, ok := m.GetExport("x")
	require.True(t, ok)
	assert.Equal(t, int64(99), v.Int64())

	assert.Equal(t, []string{"x"}, m.ExportNames())

	_, ok = m.GetExport("missing")
	assert.False(t, ok)
}

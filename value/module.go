package value

import "lotusjs/internal/bytecode"

// ModuleObject holds a module's top-level variable slots and the
// mapping from exported names to slot indices, mirroring its
// ModuleDef's ExportVarTable (spec.md §4.4: "ModuleObject adds a
// top-level variable array plus export bindings").
type ModuleObject struct {
	Object
	Def  *bytecode.ModuleDef
	vars []Value
}

func NewModule(prototype Value, def *bytecode.ModuleDef) *ModuleObject {
	vars := make([]Value, def.VarCount())
	for i := range vars {
		vars[i] = Undef()
	}
	return &ModuleObject{Object: *NewObject(ClassModule, prototype), Def: def, vars: vars}
}

func (m *ModuleObject) Base() *Object { return &m.Object }

func (m *ModuleObject) Var(slot int) Value {
	if slot < 0 || slot >= len(m.vars) {
		return Undef()
	}
	return m.vars[slot]
}

func (m *ModuleObject) SetVar(slot int, v Value) {
	if slot < 0 || slot >= len(m.vars) {
		return
	}
	m.vars[slot] = v
}

// GetExport resolves an exported binding by name through the module's
// ExportVarTable, returning the live current value of that slot.
func (m *ModuleObject) GetExport(name string) (Value, bool) {
	slot, ok := m.Def.ExportVars.Slot(name)
	if !ok {
		return Undef(), false
	}
	return m.Var(slot), true
}

// ExportNames returns the module's exported binding names in
// declaration order.
func (m *ModuleObject) ExportNames() []string { return m.Def.ExportVars.Names() }

package value

import (
	"fmt"

	"lotusjs/internal/bytecode"
)

// Cell is one shared closure-variable slot: a boxed Value that multiple
// FunctionObjects (an outer closure and every inner closure capturing
// the same variable) hold a reference to, so a write through any alias
// is visible through all (spec.md's invariant: "A closure variable's
// lifetime equals the longest-living closure that captures it; mutating
// it through any alias is visible through all").
type Cell struct {
	V Value
}

// ClosureEnvironment is the ordered array of shared cells a
// FunctionObject carries, indexed the same way as its FunctionDef's
// ClosureVarTable (spec.md §4.4: "FunctionObject adds a FunctionDef* and
// a ClosureEnvironment (array of shared variable cells)").
type ClosureEnvironment []*Cell

// FunctionObject is a callable: either a plain user function, an arrow
// function (no own `this`), a generator/async function's initial value
// before invocation spins up a GeneratorObject, or a class method.
// Grounded on
// original_source/tests/unit/object_impl/function_object_test.cpp
// (multjs's FunctionObject::New/function_def/closure_env/ToString).
type FunctionObject struct {
	Object
	Def         *bytecode.FunctionDef
	ClosureEnv  ClosureEnvironment
	This        Value // bound `this`, or Undefined for a plain function
	Constructor bool  // true for a ConstructorObject (class constructor)
}

func NewFunction(prototype Value, def *bytecode.FunctionDef, closureEnv ClosureEnvironment) *FunctionObject {
	return &FunctionObject{
		Object:     *NewObject(ClassFunction, prototype),
		Def:        def,
		ClosureEnv: closureEnv,
		This:       Undef(),
	}
}

func (f *FunctionObject) Base() *Object { return &f.Object }

func (f *FunctionObject) FunctionDef() *bytecode.FunctionDef { return f.Def }

func (f *FunctionObject) ParamCount() int { return f.Def.ParamCount }

func (f *FunctionObject) String() string {
	name := f.Def.Name
	if name == "" {
		name = "(anonymous)"
	}
	return fmt.Sprintf("function %s() { [bytecode] }", name)
}

// ConstructorObject is a FunctionObject marked as a class constructor,
// with an attached `prototype` property for instances to inherit from
// (spec.md §4.4: "A ConstructorObject is a FunctionObject marked as a
// class constructor with an attached prototype property").
type ConstructorObject struct {
	FunctionObject
	// InstancePrototype is the Value assigned to new instances'
	// prototype slot — distinct from Object.prototype (the constructor
	// FUNCTION's own prototype, i.e. Function.prototype).
	InstancePrototype Value
}

func NewConstructorFunc(funcPrototype, instancePrototype Value, def *bytecode.FunctionDef, closureEnv ClosureEnvironment) *ConstructorObject {
	fn := NewFunction(funcPrototype, def, closureEnv)
	fn.Constructor = true
	return &ConstructorObject{FunctionObject: *fn, InstancePrototype: instancePrototype}
}

func (c *ConstructorObject) Base() *Object { return &c.Object }

// ClassDef describes a built-in class registered in the Runtime: its id,
// name, prototype, and which internal methods it overrides so the VM
// can fast-path the common unspecialized case (spec.md §4.4: "a bitmask
// of which internal methods are overridden (GetPrototypeOf, Set, Get,
// Delete, OwnPropertyKeys, HasProperty, …)").
type ClassDef struct {
	ID         ClassID
	Name       string
	Prototype  Value
	Overrides  InternalMethodMask
}

// InternalMethodMask flags which of a ClassDef's internal methods are
// overridden relative to the ordinary Object behavior.
type InternalMethodMask int

const (
	OverridesGetPrototypeOf InternalMethodMask = 1 << iota
	OverridesSet
	OverridesGet
	OverridesDelete
	OverridesOwnPropertyKeys
	OverridesHasProperty
)

func (m InternalMethodMask) Has(flag InternalMethodMask) bool { return m&flag != 0 }

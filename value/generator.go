package value

import "lotusjs/internal/bytecode"

// GeneratorState is the generator's lifecycle state machine. Grounded on
// original_source/tests/unit/object_impl/generator_object_test.cpp's
// IsSuspended/IsExecuting/IsClosed predicates.
type GeneratorState int

const (
	GeneratorSuspended GeneratorState = iota
	GeneratorExecuting
	GeneratorClosed
)

// GeneratorObject holds the suspended coroutine state a `yield` leaves
// behind: the resume program counter, a saved copy of the operand stack,
// and the saved call frame locals, so the VM can splice execution back
// in on the next `.next()` (spec.md §4.4: "GeneratorObject adds a
// suspended-state flag, a resume pc, and a saved operand stack").
type GeneratorObject struct {
	Object
	Def        *bytecode.FunctionDef
	ClosureEnv ClosureEnvironment
	This       Value
	state      GeneratorState
	pc         bytecode.Pc
	stack      []Value
	// locals is the saved frame's local variable slots, snapshotted on
	// suspend and restored on resume.
	locals []Value
}

func NewGenerator(prototype Value, def *bytecode.FunctionDef, closureEnv ClosureEnvironment, this Value) *GeneratorObject {
	return &GeneratorObject{
		Object:     *NewObject(ClassGenerator, prototype),
		Def:        def,
		ClosureEnv: closureEnv,
		This:       this,
		state:      GeneratorSuspended,
		pc:         0,
	}
}

func (g *GeneratorObject) Base() *Object { return &g.Object }

func (g *GeneratorObject) IsSuspended() bool { return g.state == GeneratorSuspended }
func (g *GeneratorObject) IsExecuting() bool { return g.state == GeneratorExecuting }
func (g *GeneratorObject) IsClosed() bool    { return g.state == GeneratorClosed }

func (g *GeneratorObject) SetExecuting() { g.state = GeneratorExecuting }
func (g *GeneratorObject) SetSuspended() { g.state = GeneratorSuspended }
func (g *GeneratorObject) SetClosed()    { g.state = GeneratorClosed }

func (g *GeneratorObject) Pc() bytecode.Pc    { return g.pc }
func (g *GeneratorObject) SetPc(pc bytecode.Pc) { g.pc = pc }

func (g *GeneratorObject) Stack() []Value { return g.stack }

// SaveStack snapshots the operand stack at a yield point.
func (g *GeneratorObject) SaveStack(stack []Value) {
	g.stack = append(g.stack[:0], stack...)
}

func (g *GeneratorObject) Locals() []Value { return g.locals }

func (g *GeneratorObject) SaveLocals(locals []Value) {
	g.locals = append(g.locals[:0], locals...)
}

// MakeReturnObject builds the `{ value, done }` result object a
// generator's `.next()`/`.return()` hands back to the caller, per
// spec.md's iterator protocol.
func MakeReturnObject(objectPrototype Value, v Value, done bool) *Object {
	o := NewObject(ClassObject, objectPrototype)
	o.Set("value", v)
	o.Set("done", Bool(done))
	return o
}

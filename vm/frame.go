package vm

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// Frame is one call's activation record: spec.md §4.6's StackFrame
// ("function_val, function_def*, this_val, saved caller pc, frame-bottom
// index, caller-frame pointer; locals at [bottom, bottom+var_count),
// operands pile on top"). Locals and operands deliberately share one
// contiguous Context.stack slice, exactly as spec.md describes, rather
// than each frame owning its own []Value — that's the one part of this
// design directly copied from the spec's literal wording rather than
// merely grounded on it.
type Frame struct {
	FuncVal   value.Value
	Def       *bytecode.FunctionDef
	This      value.Value
	NewTarget value.Value

	ClosureEnv value.ClosureEnvironment

	Pc     bytecode.Pc
	Bottom int // index into Context.stack where this frame's locals begin
	Caller *Frame

	// pending holds an in-flight finally transfer (a goto target or a
	// return value) recorded by FinallyGoto/FinallyReturn while chaining
	// through intervening finally blocks (spec.md §4.6).
	pending *pendingTransfer
	// rethrow holds an exception that matched a finally-only region (no
	// catch): the finally still must run before the exception keeps
	// propagating, so this records it until the finally's TryEnd is
	// reached.
	rethrow *value.Value

	// Gen is non-nil when this frame is a generator or async function's
	// body, letting Yield/Await find the GeneratorObject to save state
	// into without threading it through every opcode case.
	Gen *value.GeneratorObject

	// cells lazily boxes a local slot once something needs to alias it
	// by reference instead of by stack value: either this frame's own
	// ClosureEnv supplies it (the slot was itself captured from an
	// enclosing frame) or a closure created inside this frame captures
	// it for the first time. Once boxed, VarLoad/VarStore read and
	// write through the cell so every alias stays in sync (spec.md:
	// "mutating a closure variable through any alias is visible through
	// all").
	cells map[int]*value.Cell
}

// cellFor returns the shared Cell backing local slot `slot`, boxing it
// on first use. A slot present in Def.Closure's table (ChildSlot) was
// itself captured from the enclosing frame, so its cell is the one
// already sitting in ClosureEnv rather than a fresh box over the
// current stack value.
func (f *Frame) cellFor(slot int, stackValue func() value.Value) *value.Cell {
	if f.cells == nil {
		f.cells = make(map[int]*value.Cell)
	}
	if c, ok := f.cells[slot]; ok {
		return c
	}
	for i := 0; i < f.Def.Closure.Len(); i++ {
		if f.Def.Closure.Get(i).ChildSlot == slot {
			c := f.ClosureEnv[i]
			f.cells[slot] = c
			return c
		}
	}
	c := &value.Cell{V: stackValue()}
	f.cells[slot] = c
	return c
}

// cellIfBoxed returns the cell for slot only if it has already been
// boxed (by a prior capture) — used by VarLoad/VarStore to avoid
// needlessly boxing every plain local.
func (f *Frame) cellIfBoxed(slot int) (*value.Cell, bool) {
	if c, ok := f.cells[slot]; ok {
		return c, true
	}
	for i := 0; i < f.Def.Closure.Len(); i++ {
		if f.Def.Closure.Get(i).ChildSlot == slot {
			if f.cells == nil {
				f.cells = make(map[int]*value.Cell)
			}
			c := f.ClosureEnv[i]
			f.cells[slot] = c
			return c, true
		}
	}
	return nil, false
}

type pendingTransfer struct {
	isReturn bool
	target   bytecode.Pc
	value    value.Value
}

func newFrame(funcVal value.Value, def *bytecode.FunctionDef, this value.Value, closureEnv value.ClosureEnvironment, bottom int, caller *Frame) *Frame {
	return &Frame{
		FuncVal:    funcVal,
		Def:        def,
		This:       this,
		NewTarget:  value.Undef(),
		ClosureEnv: closureEnv,
		Bottom:     bottom,
		Caller:     caller,
	}
}

// localCount is the number of var slots this frame's function declares;
// VarCount (not ParamCount) since locals include both parameters and
// every other declared variable (spec.md §4.3/§4.6).
func (f *Frame) localCount() int { return f.Def.VarCount() }

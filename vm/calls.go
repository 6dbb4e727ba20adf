package vm

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// doCall implements FunctionCall/New: the stack holds, bottom to top,
// [this, callee, arg1, ..., argN, argc] (the calling convention
// internal/codegen's genCall/genNew establish). It pops argc, the args,
// the callee, and the receiver, dispatches on the callee's concrete
// type, and returns the call's result (or a JSError if the callee threw
// or isn't callable).
func (c *Context) doCall(caller *Frame, isNew bool) (value.Value, *JSError) {
	argc := int(c.pop().Int64())
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = c.pop()
	}
	callee := c.pop()
	this := c.pop()

	switch fn := callee.Object().(type) {
	case *nativeFunction:
		v, err := fn.Fn(c, this, args)
		if err != nil {
			if jsErr, ok := err.(*JSError); ok {
				return value.Undef(), jsErr
			}
			return value.Undef(), &JSError{Value: c.newError("Error", err.Error())}
		}
		return v, nil

	case *value.ConstructorObject:
		if !isNew {
			return c.callFunction(&fn.FunctionObject, this, args, value.Undef())
		}
		instance := value.NewObject(value.ClassObject, fn.InstancePrototype)
		c.registerObject(instance)
		instanceVal := value.Obj(value.Object, instance)
		res, jsErr := c.callFunction(&fn.FunctionObject, instanceVal, args, instanceVal)
		if jsErr != nil {
			return value.Undef(), jsErr
		}
		if res.IsObject() {
			return res, nil
		}
		return instanceVal, nil

	case *value.FunctionObject:
		if fn.Def.Flags.Has(bytecode.FlagGenerator) {
			return c.instantiateGenerator(fn, this, args), nil
		}
		if fn.Def.Flags.Has(bytecode.FlagAsync) {
			return c.startAsync(fn, this, args), nil
		}
		newTarget := value.Undef()
		if isNew {
			newTarget = callee
		}
		return c.callFunction(fn, this, args, newTarget)

	default:
		return value.Undef(), &JSError{Value: c.newTypeError(callee.ToDisplayString() + " is not a function")}
	}
}

// callFunction pushes a fresh Frame for fn's body, runs it to completion
// and returns its result. Only ordinary (non-generator, non-async)
// functions run this way — run() recurses into itself for them, since
// yield/await never need to suspend across an ordinary nested call
// (spec.md §4.6).
func (c *Context) callFunction(fn *value.FunctionObject, this value.Value, args []value.Value, newTarget value.Value) (value.Value, *JSError) {
	fr := newFrame(value.Obj(value.Function, fn), fn.Def, this, fn.ClosureEnv, len(c.stack), c.currentFrame())
	fr.NewTarget = newTarget
	c.pushLocals(fr, args)
	c.Stats.RecordCall()

	res := c.run(fr)
	c.stack = c.stack[:fr.Bottom]
	switch res.kind {
	case outcomeThrow:
		return value.Undef(), &JSError{Value: res.value}
	default:
		return res.value, nil
	}
}

// pushLocals reserves fr.Def.VarCount() stack slots, filling the
// parameter slots from args (missing trailing args become undefined,
// extra args beyond ParamCount are dropped — spec.md's argc-driven
// calling convention has no rest/spread handling at this layer; that is
// lowered to explicit array-building bytecode by the code generator).
func (c *Context) pushLocals(fr *Frame, args []value.Value) {
	n := fr.Def.VarCount()
	for i := 0; i < n; i++ {
		if i < fr.Def.ParamCount && i < len(args) {
			c.push(args[i])
		} else {
			c.push(value.Undef())
		}
	}
}

func (c *Context) currentFrame() *Frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// makeClosure materializes a FunctionObject for the Closure opcode (a
// class constructor is turned into a ConstructorObject later, by the
// `__defineClass` builtin): def's
// ClosureVarTable names which of the enclosing frame's local slots this
// new closure must alias by reference rather than copy, each boxed into
// a shared Cell on first capture (frame.go's cellFor).
func (c *Context) makeClosure(fr *Frame, def *bytecode.FunctionDef) value.Value {
	env := make(value.ClosureEnvironment, def.Closure.Len())
	for i := 0; i < def.Closure.Len(); i++ {
		entry := def.Closure.Get(i)
		parentSlot := entry.ParentSlot
		env[i] = fr.cellFor(parentSlot, func() value.Value { return c.stack[fr.Bottom+parentSlot] })
	}
	fn := value.NewFunction(c.Runtime.FunctionPrototype, def, env)
	if def.Flags.Has(bytecode.FlagHasThis) {
		fn.This = fr.This
	}
	c.registerObject(fn)
	return value.Obj(value.Function, fn)
}

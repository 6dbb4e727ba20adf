package vm

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// instantiateGenerator implements calling a generator function: unlike a
// plain call, the body does not run yet — it creates a suspended
// GeneratorObject holding the initial locals (params bound from args,
// everything else undefined) and pc 0, to be driven by .next()/.return()/
// .throw() (spec.md §4.4/§5).
func (c *Context) instantiateGenerator(fn *value.FunctionObject, this value.Value, args []value.Value) value.Value {
	gen := value.NewGenerator(c.Runtime.GeneratorPrototype, fn.Def, fn.ClosureEnv, this)
	gen.SaveLocals(initialLocals(fn.Def, args))
	c.registerObject(gen)
	return value.Obj(value.Generator, gen)
}

// startAsync implements calling an async function: the body begins
// executing immediately (spec.md §5: "an async function's body runs
// synchronously up to its first await"), driven as a generator under the
// hood, and the caller receives the pending Promise right away.
func (c *Context) startAsync(fn *value.FunctionObject, this value.Value, args []value.Value) value.Value {
	async := value.NewAsync(value.Undef(), c.Runtime.GeneratorPrototype, c.Runtime.PromisePrototype, fn.Def, fn.ClosureEnv, this)
	async.Gen.SaveLocals(initialLocals(fn.Def, args))
	c.registerObject(async)
	c.registerObject(async.Gen)
	c.registerObject(async.Promise)
	c.driveAsync(async)
	return value.Obj(value.Promise, async.Promise)
}

func initialLocals(def *bytecode.FunctionDef, args []value.Value) []value.Value {
	n := def.VarCount()
	locals := make([]value.Value, n)
	for i := 0; i < n; i++ {
		if i < def.ParamCount && i < len(args) {
			locals[i] = args[i]
		} else {
			locals[i] = value.Undef()
		}
	}
	return locals
}

// resumeGenerator splices a suspended GeneratorObject's saved pc/stack/
// locals back into a fresh Frame sharing the Context's stack, runs until
// the next suspension or completion, and saves state back (spec.md
// §4.4: "GeneratorObject adds a suspended-state flag, a resume pc, and a
// saved operand stack").
//
// sent is the value passed to .next(sent)/.throw(sent), spliced in as
// the result of the `yield` expression the generator is currently
// paused at (or, for the very first resume, ignored).
func (c *Context) resumeGenerator(gen *value.GeneratorObject, sent value.Value, isThrow bool) outcome {
	if gen.IsClosed() {
		if isThrow {
			return outcome{kind: outcomeThrow, value: sent}
		}
		return outcome{kind: outcomeReturn, value: value.Undef()}
	}
	gen.SetExecuting()

	bottom := len(c.stack)
	c.stack = append(c.stack, gen.Locals()...)
	c.stack = append(c.stack, gen.Stack()...)

	fr := newFrame(value.Obj(value.Generator, gen), gen.Def, gen.This, gen.ClosureEnv, bottom, c.currentFrame())
	fr.Pc = gen.Pc()
	fr.Gen = gen

	if gen.Pc() > 0 {
		if isThrow {
			res, handled := c.dispatchThrow(fr, sent)
			if !handled {
				gen.SetClosed()
				c.stack = c.stack[:bottom]
				return res
			}
		} else {
			c.push(sent)
		}
	} else if isThrow {
		gen.SetClosed()
		c.stack = c.stack[:bottom]
		return outcome{kind: outcomeThrow, value: sent}
	}

	res := c.run(fr)

	switch res.kind {
	case outcomeYield:
		locals := append([]value.Value(nil), c.stack[bottom:bottom+fr.localCount()]...)
		operands := append([]value.Value(nil), c.stack[bottom+fr.localCount():]...)
		gen.SaveLocals(locals)
		gen.SaveStack(operands)
		gen.SetPc(fr.Pc)
		gen.SetSuspended()
	default:
		gen.SetClosed()
	}
	c.stack = c.stack[:bottom]
	return res
}

// generatorResult wraps an outcome from resumeGenerator into the
// `{ value, done }` iterator-protocol object .next()/.return() hand
// back, per spec.md's iterator protocol; a propagating throw stays a Go
// error instead.
func (c *Context) generatorResult(res outcome) (value.Value, *JSError) {
	if res.kind == outcomeThrow {
		return value.Undef(), &JSError{Value: res.value}
	}
	done := res.kind != outcomeYield
	obj := value.MakeReturnObject(c.Runtime.ObjectPrototype, res.value, done)
	c.registerObject(obj)
	return value.Obj(value.Object, obj), nil
}

// driveAsync runs an async function's generator body forward until it
// either completes (settling the wrapper Promise directly) or hits an
// `await` (subscribing a resumption reaction on the awaited value when
// it is itself a promise, or queuing a microtask when it is an ordinary
// value — spec.md §5: "await on a non-promise value resolves on the
// next microtask turn").
func (c *Context) driveAsync(async *value.AsyncObject) {
	res := c.resumeGenerator(async.Gen, value.Undef(), false)
	c.settleAsyncStep(async, res, false)
}

func (c *Context) settleAsyncStep(async *value.AsyncObject, res outcome, isThrowResume bool) {
	switch res.kind {
	case outcomeReturn:
		c.resolvePromise(async.Promise, res.value)
	case outcomeThrow:
		c.rejectPromise(async.Promise, res.value)
	case outcomeAwait:
		awaited := res.value
		if p, ok := awaited.Object().(*value.PromiseObject); ok {
			c.subscribePromise(p, func(v value.Value) {
				r := c.resumeGenerator(async.Gen, v, false)
				c.settleAsyncStep(async, r, false)
			}, func(reason value.Value) {
				r := c.resumeGenerator(async.Gen, reason, true)
				c.settleAsyncStep(async, r, true)
			})
		} else {
			c.queueMicrotask(func(ctx *Context) {
				r := ctx.resumeGenerator(async.Gen, awaited, false)
				ctx.settleAsyncStep(async, r, false)
			})
		}
	}
}

// resolvePromise/rejectPromise settle p and schedule every pending
// reaction as a microtask, mirroring value.PromiseObject's documented
// split: the value package only queues ReactionHandlers, the VM is
// responsible for actually invoking the JS callbacks.
func (c *Context) resolvePromise(p *value.PromiseObject, v value.Value) {
	for _, r := range p.Resolve(v) {
		c.scheduleReaction(r, true, v)
	}
}

func (c *Context) rejectPromise(p *value.PromiseObject, reason value.Value) {
	for _, r := range p.Reject(reason) {
		c.scheduleReaction(r, false, reason)
	}
}

func (c *Context) scheduleReaction(r value.ReactionHandler, fulfilled bool, arg value.Value) {
	c.queueMicrotask(func(ctx *Context) {
		cb := r.OnRejected
		if fulfilled {
			cb = r.OnFulfilled
		}
		if !cb.IsFunction() {
			if fulfilled {
				ctx.resolvePromise(r.Result, arg)
			} else {
				ctx.rejectPromise(r.Result, arg)
			}
			return
		}
		v, jsErr := ctx.invokeCallback(cb, arg)
		if jsErr != nil {
			ctx.rejectPromise(r.Result, jsErr.Value)
			return
		}
		ctx.resolvePromise(r.Result, v)
	})
}

// subscribePromise registers native Go callbacks to run once p settles,
// immediately if already settled.
func (c *Context) subscribePromise(p *value.PromiseObject, onFulfilled, onRejected func(value.Value)) {
	switch {
	case p.IsFulfilled():
		c.queueMicrotask(func(ctx *Context) { onFulfilled(p.Result()) })
	case p.IsRejected():
		c.queueMicrotask(func(ctx *Context) { onRejected(p.Reason()) })
	default:
		fulfilledFn := newNativeFunction(c.Runtime.FunctionPrototype, "", func(ctx *Context, this value.Value, args []value.Value) (value.Value, error) {
			var v value.Value
			if len(args) > 0 {
				v = args[0]
			} else {
				v = value.Undef()
			}
			onFulfilled(v)
			return value.Undef(), nil
		})
		rejectedFn := newNativeFunction(c.Runtime.FunctionPrototype, "", func(ctx *Context, this value.Value, args []value.Value) (value.Value, error) {
			var v value.Value
			if len(args) > 0 {
				v = args[0]
			} else {
				v = value.Undef()
			}
			onRejected(v)
			return value.Undef(), nil
		})
		c.registerObject(fulfilledFn)
		c.registerObject(rejectedFn)
		result, handler := p.Then(value.Obj(value.Function, fulfilledFn), value.Obj(value.Function, rejectedFn), c.Runtime.PromisePrototype)
		_ = result
		if handler != nil {
			// already settled between the IsFulfilled/IsRejected check
			// and Then: schedule immediately rather than losing it.
			c.scheduleReaction(*handler, p.IsFulfilled(), pick(p.IsFulfilled(), p.Result(), p.Reason()))
		}
	}
}

func pick(cond bool, a, b value.Value) value.Value {
	if cond {
		return a
	}
	return b
}

// invokeCallback calls a JS function Value with a single argument and
// undefined `this`, used to run then()/catch() reaction callbacks.
func (c *Context) invokeCallback(fn value.Value, arg value.Value) (value.Value, *JSError) {
	switch f := fn.Object().(type) {
	case *nativeFunction:
		v, err := f.Fn(c, value.Undef(), []value.Value{arg})
		if err != nil {
			if jsErr, ok := err.(*JSError); ok {
				return value.Undef(), jsErr
			}
			return value.Undef(), &JSError{Value: c.newError("Error", err.Error())}
		}
		return v, nil
	case *value.FunctionObject:
		return c.callFunction(f, value.Undef(), []value.Value{arg}, value.Undef())
	default:
		return value.Undef(), nil
	}
}

package vm

import "lotusjs/value"

// installPrototypeMethods wires the handful of native methods every
// Generator/Promise instance needs regardless of user code: the
// iterator-protocol trio (next/return/throw) and the promise-chaining
// trio (then/catch/finally). These close over nothing but the supplied
// Context argument, so installing them once at Runtime construction is
// safe to share across every Context built against this Runtime.
func installPrototypeMethods(r *Runtime) {
	setMethod(r, r.GeneratorPrototype, "next", genNext)
	setMethod(r, r.GeneratorPrototype, "return", genReturn)
	setMethod(r, r.GeneratorPrototype, "throw", genThrow)

	setMethod(r, r.PromisePrototype, "then", promiseThen)
	setMethod(r, r.PromisePrototype, "catch", promiseCatch)
	setMethod(r, r.PromisePrototype, "finally", promiseFinally)
}

func setMethod(r *Runtime, prototype value.Value, name string, fn NativeFunc) {
	base, ok := prototype.Object().(*value.Object)
	if !ok {
		return
	}
	nf := newNativeFunction(r.FunctionPrototype, name, fn)
	base.Set(name, value.Obj(value.Function, nf))
}

func thisGenerator(this value.Value) (*value.GeneratorObject, bool) {
	g, ok := this.Object().(*value.GeneratorObject)
	return g, ok
}

func argOr(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef()
}

func genNext(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	gen, ok := thisGenerator(this)
	if !ok {
		return value.Undef(), &JSError{Value: c.newTypeError("next() called on a non-generator")}
	}
	res := c.resumeGenerator(gen, argOr(args, 0), false)
	v, jsErr := c.generatorResult(res)
	if jsErr != nil {
		return value.Undef(), jsErr
	}
	return v, nil
}

func genReturn(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	gen, ok := thisGenerator(this)
	if !ok {
		return value.Undef(), &JSError{Value: c.newTypeError("return() called on a non-generator")}
	}
	gen.SetClosed()
	obj := value.MakeReturnObject(c.Runtime.ObjectPrototype, argOr(args, 0), true)
	c.registerObject(obj)
	return value.Obj(value.Object, obj), nil
}

func genThrow(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	gen, ok := thisGenerator(this)
	if !ok {
		return value.Undef(), &JSError{Value: c.newTypeError("throw() called on a non-generator")}
	}
	res := c.resumeGenerator(gen, argOr(args, 0), true)
	v, jsErr := c.generatorResult(res)
	if jsErr != nil {
		return value.Undef(), jsErr
	}
	return v, nil
}

func thisPromise(this value.Value) (*value.PromiseObject, bool) {
	p, ok := this.Object().(*value.PromiseObject)
	return p, ok
}

func promiseThen(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	p, ok := thisPromise(this)
	if !ok {
		return value.Undef(), &JSError{Value: c.newTypeError("then() called on a non-promise")}
	}
	result, handler := p.Then(argOr(args, 0), argOr(args, 1), c.Runtime.PromisePrototype)
	if handler != nil {
		c.scheduleReaction(*handler, p.IsFulfilled(), pick(p.IsFulfilled(), p.Result(), p.Reason()))
	}
	c.registerObject(result)
	return value.Obj(value.Promise, result), nil
}

func promiseCatch(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	return promiseThen(c, this, []value.Value{value.Undef(), argOr(args, 0)})
}

func promiseFinally(c *Context, this value.Value, args []value.Value) (value.Value, error) {
	cb := argOr(args, 0)
	wrap := newNativeFunction(c.Runtime.FunctionPrototype, "", func(ctx *Context, wthis value.Value, wargs []value.Value) (value.Value, error) {
		if cb.IsFunction() {
			if _, jsErr := ctx.invokeCallback(cb, value.Undef()); jsErr != nil {
				return value.Undef(), jsErr
			}
		}
		return argOr(wargs, 0), nil
	})
	c.registerObject(wrap)
	wrapVal := value.Obj(value.Function, wrap)
	return promiseThen(c, this, []value.Value{wrapVal, wrapVal})
}

package vm

import (
	"fmt"

	"lotusjs/value"
)

// getModuleSync implements the GetModule opcode: resolve specifier
// relative to referrerName through the Runtime's ModuleLoader, compile
// and run it once (subsequent imports of the same canonical path reuse
// the cached ModuleObject and its already-populated exports), and
// return the module Value itself — property lookups against export
// names happen through ordinary PropertyLoad against it (spec.md §4.5:
// "import resolves synchronously... a module is compiled and run at
// most once, memoized by canonical path").
func (c *Context) getModuleSync(specifier, referrerName string) (value.Value, error) {
	canonical := specifier
	if c.Runtime.Loader != nil {
		resolved, err := c.Runtime.Loader.Resolve(specifier, referrerName)
		if err != nil {
			return value.Undef(), err
		}
		canonical = resolved
	}
	if mod, ok := c.modules[canonical]; ok {
		return value.Obj(value.Module, mod), nil
	}
	if c.loading[canonical] {
		return value.Undef(), fmt.Errorf("vm: circular import involving %q", canonical)
	}

	source, err := c.loadSource(canonical)
	if err != nil {
		return value.Undef(), err
	}

	c.loading[canonical] = true
	defer delete(c.loading, canonical)

	mod, err := c.Compile(canonical, source)
	if err != nil {
		return value.Undef(), err
	}
	if _, err := c.CallModule(mod); err != nil {
		return value.Undef(), err
	}
	return mod, nil
}

// getModuleAsync implements the GetModuleAsync opcode (a dynamic
// `import()` expression): the same resolve/compile/run pipeline as
// getModuleSync, but run from a queued microtask that settles the
// returned Promise rather than inline, since dynamic import is spec'd as always asynchronous
// even though this engine has no actual I/O concurrency to wait on
// (spec.md §4.5/§5).
func (c *Context) getModuleAsync(specifier, referrerName string) value.Value {
	prom := value.NewPromise(c.Runtime.PromisePrototype)
	c.registerObject(prom)
	c.queueMicrotask(func(ctx *Context) {
		mod, err := ctx.getModuleSync(specifier, referrerName)
		if err != nil {
			ctx.rejectPromise(prom, ctx.newError("Error", err.Error()))
			return
		}
		ctx.resolvePromise(prom, mod)
	})
	return value.Obj(value.Promise, prom)
}

package gc

import "lotusjs/value"

// RootProvider supplies the collector's root set: live stack frames'
// operand stacks and local slots, the Context's constant pool, the
// Runtime's globals, and the module cache (spec.md §4.7's "GC
// integration": "The VM treats the operand stack, all live frames'
// slots, the Context's constant pool, Runtime's globals, and the module
// cache as roots"). The VM package implements this against its live
// frame stack; this package only consumes it.
type RootProvider interface {
	GCRoots() []value.Value
}

// RootFunc adapts a plain function into a RootProvider, for callers (and
// tests) that just want to hand the collector a closure.
type RootFunc func() []value.Value

func (f RootFunc) GCRoots() []value.Value { return f() }

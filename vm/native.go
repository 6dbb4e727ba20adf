package vm

import "lotusjs/value"

// NativeFunc is the embedder-facing native function shape (spec.md §6:
// "add_cpp_function(name, native_fn) where native_fn has signature
// fn(&Context, arg_count, &StackFrame) -> Value"). This package adapts
// that to an idiomatic Go signature — explicit args slice and error
// return instead of an out-parameter StackFrame — since a native
// function is exactly the system boundary where Go's normal (value,
// error) convention belongs (a returned error that is not a *JSError
// becomes a thrown Error carrying the error's text; see doCall).
type NativeFunc func(c *Context, this value.Value, args []value.Value) (value.Value, error)

// nativeFunction is a callable value.Object subtype this package adds
// (the value package's own Kind/Object hierarchy intentionally stops at
// bytecode-backed FunctionObject; native callables are a VM-side
// concern, grounded on spec.md §6's add_cpp_function hook).
type nativeFunction struct {
	value.Object
	Name string
	Fn   NativeFunc
}

func (n *nativeFunction) Base() *value.Object { return &n.Object }

func newNativeFunction(prototype value.Value, name string, fn NativeFunc) *nativeFunction {
	return &nativeFunction{Object: *value.NewObject(value.ClassFunction, prototype), Name: name, Fn: fn}
}

// GCTraverse visits only the inherited property edges: a native
// function closes over no JS-visible Values of its own.
func (n *nativeFunction) GCTraverse(visit func(value.Value)) {
	n.Object.GCTraverse(visit)
}

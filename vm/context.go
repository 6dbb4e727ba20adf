package vm

import (
	"fmt"
	"io"
	"log"

	"lotusjs/ast"
	"lotusjs/internal/bytecode"
	"lotusjs/internal/codegen"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/gc"
	"lotusjs/internal/stats"
	"lotusjs/parser"
	"lotusjs/value"
)

// ContextOptions configures one Context (SPEC_FULL.md's Ambient Stack
// "configuration" section: heap sizes, promotion age, and GC watermark
// are passed to NewContext rather than hardcoded).
type ContextOptions struct {
	GC     gc.Options
	Logger *log.Logger
}

func DefaultContextOptions() ContextOptions {
	return ContextOptions{GC: gc.DefaultOptions(), Logger: log.New(io.Discard, "", 0)}
}

// microtask is one queued Promise reaction callback (spec.md §4.6: "a
// microtask queue drains between VM calls and at safe points, running
// pending Promise reactions FIFO").
type microtask struct {
	fn func(c *Context)
}

// Context is a single JS thread of execution (spec.md §5: "strictly
// single-threaded per Context; suspension only at Yield/Await/
// microtask-drain, no preemption"). Its module cache lives only as long
// as the Context does — there is no reload/invalidation path that would
// need a generation tag, so the cache is keyed on canonical path alone.
type Context struct {
	Runtime *Runtime
	Heap    *gc.Heap
	Pool    *bytecode.ConstPool
	Global  *value.Object

	stack  []value.Value
	frames []*Frame

	microtasks []microtask

	modules map[string]*value.ModuleObject
	loading map[string]bool

	Stats  *stats.RuntimeStats
	Logger *log.Logger
	opts   ContextOptions

	interrupted bool
}

func NewContext(rt *Runtime, opts ContextOptions) *Context {
	if opts.Logger == nil {
		opts.Logger = rt.Logger
	}
	if opts.GC == (gc.Options{}) {
		opts.GC = gc.DefaultOptions()
	}
	c := &Context{
		Runtime: rt,
		Heap:    gc.NewHeap(opts.GC),
		Pool:    bytecode.NewConstPool(),
		Global:  value.NewObject(value.ClassObject, rt.ObjectPrototype),
		modules: make(map[string]*value.ModuleObject),
		loading: make(map[string]bool),
		Stats:   stats.NewRuntimeStats(),
		Logger:  opts.Logger,
		opts:    opts,
	}
	c.Heap.Register(c.Global)
	return c
}

// GCRoots satisfies gc.RootProvider: the live operand stack (which
// includes every frame's locals, since they share one slice), every
// frame's bound this/new.target/closure cells, the constant pool, the
// global object, and the module cache (spec.md §4.7's GC integration
// list).
func (c *Context) GCRoots() []value.Value {
	roots := make([]value.Value, 0, len(c.stack)+8)
	roots = append(roots, c.stack...)
	for _, f := range c.frames {
		roots = append(roots, f.This, f.NewTarget, f.FuncVal)
		for _, cell := range f.ClosureEnv {
			roots = append(roots, cell.V)
		}
	}
	for i := 0; i < c.Pool.Len(); i++ {
		if v, ok := c.Pool.Get(i).(value.Value); ok {
			roots = append(roots, v)
		}
	}
	roots = append(roots, value.Obj(value.Object, c.Global))
	for _, m := range c.modules {
		roots = append(roots, value.Obj(value.Module, m))
	}
	return roots
}

func (c *Context) push(v value.Value)  { c.stack = append(c.stack, v) }
func (c *Context) pop() value.Value {
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return v
}
func (c *Context) top() value.Value { return c.stack[len(c.stack)-1] }

func (c *Context) constValue(idx int) value.Value {
	cv := c.Pool.Get(idx)
	if v, ok := cv.(value.Value); ok {
		return v
	}
	return value.Undef()
}

// maybeGC runs a minor collection opportunistically (every opcode that
// may allocate calls this) and escalates to a major collection once
// old-space crosses its watermark (spec.md §4.7).
func (c *Context) maybeGC() {
	c.Heap.MinorGC(c)
	c.Heap.MaybeMajorGC(c)
}

func (c *Context) registerObject(o any) {
	c.Heap.Register(o)
}

// queueMicrotask appends a Promise reaction to the FIFO queue (spec.md
// §4.6).
func (c *Context) queueMicrotask(fn func(c *Context)) {
	c.microtasks = append(c.microtasks, microtask{fn: fn})
}

// DrainMicrotasks runs every queued microtask (and any further tasks
// those enqueue) until the queue is empty, matching the spec's "drains
// between VM calls and at safe points" — callers invoke this after
// CallModule/Eval returns and the host isn't about to immediately call
// back in.
func (c *Context) DrainMicrotasks() {
	for len(c.microtasks) > 0 {
		t := c.microtasks[0]
		c.microtasks = c.microtasks[1:]
		t.fn(c)
		c.Stats.RecordMicrotask()
	}
}

// Compile parses and compiles source into a ModuleObject wrapped in a
// Value, without running it (spec.md §6: "Context::compile(name,
// source) -> Value(Module)").
func (c *Context) Compile(name, source string) (value.Value, error) {
	prog, err := parser.ParseProgram(source)
	if err != nil {
		return value.Undef(), err
	}
	diag := diagnostics.NewManager()
	diag.SetSource(name, source)
	gen := codegen.NewGenerator(c.Pool, diag)
	md, err := gen.CompileModule(name, source, programBody(prog))
	if err != nil {
		return value.Undef(), err
	}
	codegen.OptimizePeephole(md, c.Pool)
	mod := value.NewModule(c.Runtime.ObjectPrototype, md)
	c.registerObject(mod)
	c.modules[name] = mod
	return value.Obj(value.Module, mod), nil
}

// programBody extracts the statement list, kept as its own function so
// this file doesn't need to know parser.Program's field name inline at
// every call site.
func programBody(prog *parser.Program) []ast.Statement { return prog.Body }

// CallModule evaluates a compiled module's top-level code exactly once,
// returning its default export (or Undefined if it has none) — spec.md
// §6: "Context::call_module(&Value) -> Value".
func (c *Context) CallModule(mod value.Value) (value.Value, error) {
	m, ok := mod.Object().(*value.ModuleObject)
	if !ok {
		return value.Undef(), fmt.Errorf("vm: CallModule: not a module value")
	}
	fr := newFrame(mod, &m.Def.FunctionDef, value.Undef(), nil, len(c.stack), nil)
	for i := 0; i < m.Def.VarCount(); i++ {
		c.push(m.Var(i))
	}
	outcome := c.run(fr)
	for i := m.Def.VarCount() - 1; i >= 0; i-- {
		m.SetVar(i, c.stack[fr.Bottom+i])
	}
	c.stack = c.stack[:fr.Bottom]
	switch outcome.kind {
	case outcomeThrow:
		c.Stats.RecordUncaughtException()
		return value.Undef(), &ThrownError{Value: outcome.value}
	default:
		if def, ok := m.GetExport("default"); ok {
			return def, nil
		}
		return value.Undef(), nil
	}
}

// Eval is compile+call_module in one step (spec.md §6: "Context::eval
// (name, source) -> Value — shortcut for compile+call").
func (c *Context) Eval(name, source string) (value.Value, error) {
	mod, err := c.Compile(name, source)
	if err != nil {
		return value.Undef(), err
	}
	return c.CallModule(mod)
}

// EvalByPath reads a module's source text via the Runtime's
// ModuleLoader, keyed by its resolved canonical path, and evaluates it
// (spec.md §6: "Context::eval_by_path(path) -> Value").
func (c *Context) EvalByPath(path string) (value.Value, error) {
	canonical := path
	if c.Runtime.Loader != nil {
		resolved, err := c.Runtime.Loader.Resolve(path, "")
		if err != nil {
			return value.Undef(), err
		}
		canonical = resolved
	}
	source, err := c.loadSource(canonical)
	if err != nil {
		return value.Undef(), err
	}
	return c.Eval(canonical, source)
}

func (c *Context) loadSource(canonical string) (string, error) {
	if c.Runtime.Loader != nil {
		return c.Runtime.Loader.Load(canonical)
	}
	return "", fmt.Errorf("vm: no ModuleLoader configured to load %q", canonical)
}

// AddNativeFunction installs a Go-backed function on the global object
// (spec.md §6: "Context::add_cpp_function(name, native_fn)").
func (c *Context) AddNativeFunction(name string, fn NativeFunc) {
	c.Global.Set(name, c.NewNativeFunction(name, fn))
}

// NewNativeFunction builds a callable Function Value without attaching
// it anywhere, for embedders/builtin packages that need to hang a
// native method off an object other than the global (e.g. a `console`
// namespace object, or a class prototype).
func (c *Context) NewNativeFunction(name string, fn NativeFunc) value.Value {
	nf := newNativeFunction(c.Runtime.FunctionPrototype, name, fn)
	c.registerObject(nf)
	return value.Obj(value.Function, nf)
}

// NewPlainObject builds an empty ordinary object registered with this
// Context's heap, for builtin packages assembling namespace objects
// (`console`, `Math`, `JSON`) without reaching into vm's unexported
// object-literal machinery.
func (c *Context) NewPlainObject() *value.Object {
	o := value.NewObject(value.ClassObject, c.Runtime.ObjectPrototype)
	c.registerObject(o)
	return o
}

// ThrownError wraps an uncaught JS exception Value as a Go error, for
// embedders driving Compile/Eval/CallModule directly.
type ThrownError struct{ Value value.Value }

func (e *ThrownError) Error() string {
	return "uncaught exception: " + e.Value.ToDisplayString()
}

// Package vm is the engine's single interpreter: Runtime (process-wide
// shared state), Context (one JS thread of execution), Frame (one call's
// activation record), and the opcode dispatch loop that walks a
// bytecode.Table the way spec.md §4.6 describes. Lotus itself never
// interprets bytecode — it lowers straight to native assembly via
// compiler.go's Tokenize/GenerateAssembly/exec.Command pipeline — so this
// package has no teacher analogue to adapt; it is grounded directly on
// spec.md §4.6/§4.7/§5/§6/§7 and on the vocabulary confirmed by
// original_source/tests/unit/vm_test.cpp's surviving #include list
// (mjs/vm.h, mjs/context.h, mjs/runtime.h, mjs/stack_frame.h), since the
// real multjs VM headers/bodies were filtered from the retrieval pack.
package vm

import (
	"io"
	"log"
	"sync"

	"lotusjs/value"
)

// ModuleLoader resolves and loads module source text, per spec.md §6's
// "Module loader trait: resolve(specifier, referrer) -> canonical_path;
// load(canonical_path) -> source_text". The host embeds a concrete
// implementation; Runtime only calls through the interface.
type ModuleLoader interface {
	Resolve(specifier, referrer string) (string, error)
	Load(canonicalPath string) (string, error)
}

// RuntimeOptions configures a Runtime at construction (SPEC_FULL.md's
// Ambient Stack "configuration" section: heap/runtime knobs are passed
// in explicitly rather than read from globals).
type RuntimeOptions struct {
	Logger *log.Logger
	Loader ModuleLoader
}

func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{Logger: log.New(io.Discard, "", 0)}
}

// Runtime is process-wide shared state: the class-def table, the string
// intern pool, and the module loader — "single-writer-locked or
// immutable", per spec.md §5, since several Contexts backed by the same
// Runtime may in principle run on different host threads serially (never
// concurrently; spec.md §5 is explicit that a Context itself is driven
// by one host thread at a time, but nothing here assumes Contexts share
// a Runtime only from the one thread that created it).
type Runtime struct {
	mu      sync.Mutex
	classes map[value.ClassID]*value.ClassDef
	intern  map[string]value.Value

	Logger *log.Logger
	Loader ModuleLoader

	// Shared prototypes, installed once at Runtime construction and
	// referenced by every Context created against this Runtime (spec.md
	// §4.4's class-def table: "a bitmask of which internal methods are
	// overridden").
	ObjectPrototype    value.Value
	ArrayPrototype     value.Value
	FunctionPrototype  value.Value
	GeneratorPrototype value.Value
	PromisePrototype   value.Value
	ErrorPrototype     value.Value
}

// NewRuntime builds a Runtime with the base prototype chain wired up:
// Array/Function/Generator/Promise/Error prototypes all chain to
// ObjectPrototype, Object's own prototype is Null (the chain's root).
func NewRuntime(opts RuntimeOptions) *Runtime {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	objProto := value.Obj(value.Object, value.NewObject(value.ClassObject, value.Nil()))
	r := &Runtime{
		classes:         make(map[value.ClassID]*value.ClassDef),
		intern:          make(map[string]value.Value),
		Logger:          opts.Logger,
		Loader:          opts.Loader,
		ObjectPrototype: objProto,
	}
	r.ArrayPrototype = value.Obj(value.Object, value.NewObject(value.ClassArray, objProto))
	r.FunctionPrototype = value.Obj(value.Object, value.NewObject(value.ClassFunction, objProto))
	r.GeneratorPrototype = value.Obj(value.Object, value.NewObject(value.ClassGenerator, objProto))
	r.PromisePrototype = value.Obj(value.Object, value.NewObject(value.ClassPromise, objProto))
	r.ErrorPrototype = value.Obj(value.Object, value.NewObject(value.ClassError, objProto))

	r.RegisterClass(&value.ClassDef{ID: value.ClassObject, Name: "Object", Prototype: r.ObjectPrototype})
	r.RegisterClass(&value.ClassDef{ID: value.ClassArray, Name: "Array", Prototype: r.ArrayPrototype})
	r.RegisterClass(&value.ClassDef{ID: value.ClassFunction, Name: "Function", Prototype: r.FunctionPrototype})
	r.RegisterClass(&value.ClassDef{ID: value.ClassGenerator, Name: "Generator", Prototype: r.GeneratorPrototype})
	r.RegisterClass(&value.ClassDef{ID: value.ClassPromise, Name: "Promise", Prototype: r.PromisePrototype})
	r.RegisterClass(&value.ClassDef{ID: value.ClassError, Name: "Error", Prototype: r.ErrorPrototype})

	installPrototypeMethods(r)
	return r
}

func (r *Runtime) RegisterClass(def *value.ClassDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[def.ID] = def
}

func (r *Runtime) ClassDef(id value.ClassID) (*value.ClassDef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.classes[id]
	return d, ok
}

// Intern returns a shared Value for string s, so repeated property-name
// and identifier lookups compare cheaply (spec.md §4.4's "interned
// strings" dedup concern, mirrored here at the Runtime level rather than
// per-Context).
func (r *Runtime) Intern(s string) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.intern[s]; ok {
		return v
	}
	v := value.Str(s)
	r.intern[s] = v
	return v
}

package value

import "lotusjs/internal/bytecode"

// AsyncObject wraps an async function's in-flight invocation: a
// GeneratorObject drives suspension at each `await`, and a PromiseObject
// is what the caller of the async function actually receives (spec.md
// §4.4: "AsyncObject wraps a GeneratorObject and a PromiseObject").
type AsyncObject struct {
	Object
	Gen     *GeneratorObject
	Promise *PromiseObject
}

func NewAsync(prototype, generatorPrototype, promisePrototype Value, def *bytecode.FunctionDef, closureEnv ClosureEnvironment, this Value) *AsyncObject {
	return &AsyncObject{
		Object:  *NewObject(ClassAsync, prototype),
		Gen:     NewGenerator(generatorPrototype, def, closureEnv, this),
		Promise: NewPromise(promisePrototype),
	}
}

func (a *AsyncObject) Base() *Object { return &a.Object }

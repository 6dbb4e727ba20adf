package vm

import "lotusjs/value"

// JSError wraps a thrown JS value.Value as a Go error, for the internal
// plumbing between opcode handlers (getProperty/setProperty/doCall) and
// the dispatch loop's dispatchThrow call. It is distinct from
// ThrownError (the embedder-facing uncaught-exception error returned
// from Compile/Eval/CallModule).
type JSError struct{ Value value.Value }

func (e *JSError) Error() string { return e.Value.ToDisplayString() }

// InternalError is raised (as a Go panic, never a catchable JS
// exception) for engine-invariant violations spec.md §7 calls out as
// "should never occur for well-formed codegen output": the dispatch
// loop raises it for an unknown opcode (an out-of-range slot or a stack
// underflow surfaces as an ordinary Go runtime panic). JS-level try/catch
// cannot observe it — "avoids hiding engine bugs" per spec.md §7 — it
// is meant to surface only to the embedding host.
type InternalError struct{ Message string }

func (e *InternalError) Error() string { return "internal error: " + e.Message }

// newError builds a plain Error-shaped object (name/message/stack
// properties, per spec.md §7's error taxonomy) tagged as an
// exception-carrying Value.
func (c *Context) newError(name, message string) value.Value {
	obj := value.NewObject(value.ClassError, c.Runtime.ErrorPrototype)
	obj.Set("name", value.Str(name))
	obj.Set("message", value.Str(message))
	obj.Set("stack", value.Str(c.stackTrace(name, message)))
	c.registerObject(obj)
	return value.Obj(value.Object, obj).AsException()
}

func (c *Context) newTypeError(message string) value.Value      { return c.newError("TypeError", message) }
func (c *Context) newReferenceError(message string) value.Value { return c.newError("ReferenceError", message) }
func (c *Context) newRangeError(message string) value.Value     { return c.newError("RangeError", message) }

// stackTrace renders "name: message" followed by one "at <function>"
// line per JS frame, innermost first (native functions push no Frame,
// so they do not appear). Functions carry no module back-reference for
// LineTable lookups, so each frame renders as just its function name
// (no pc, line or column).
func (c *Context) stackTrace(name, message string) string {
	s := name + ": " + message
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		fname := f.Def.Name
		if fname == "" {
			fname = "(anonymous)"
		}
		s += "\n    at " + fname
	}
	return s
}

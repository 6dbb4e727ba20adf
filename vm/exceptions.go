package vm

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// dispatchThrow walks fr's exception table looking for a handler
// covering fr.Pc. A catch handler writes errVal into its err slot and
// resumes at CatchStart. A finally-only region (no catch) still must
// run before the exception keeps propagating: fr.rethrow records errVal
// and execution resumes at FinallyStart, so the finally body runs and
// its TryEnd picks dispatchThrow back up from the position right after
// the region (spec.md §4.6: "if unhandled in current frame... continues
// the search in the caller frame until handled").
//
// handled=true means fr.Pc has been updated to resume dispatch in this
// same frame; handled=false means the returned outcome (outcomeThrow)
// must propagate to fr's caller.
func (c *Context) dispatchThrow(fr *Frame, errVal value.Value) (outcome, bool) {
	entry, ok := fr.Def.Except.FindHandler(fr.Pc)
	if !ok {
		c.stack = c.stack[:fr.Bottom]
		return outcome{kind: outcomeThrow, value: errVal}, false
	}
	if entry.HasCatch() {
		c.stack = c.stack[:fr.Bottom+fr.localCount()]
		if entry.CatchErrSlot >= 0 {
			c.stack[fr.Bottom+entry.CatchErrSlot] = errVal
		}
		fr.Pc = entry.CatchStart
		return outcome{}, true
	}
	c.stack = c.stack[:fr.Bottom+fr.localCount()]
	fr.rethrow = &errVal
	fr.Pc = entry.FinallyStart
	return outcome{}, true
}

// findEnclosingFinally returns the innermost try statement (try OR catch
// region, so a return/break inside a catch-with-finally is also caught)
// whose finally clause covers pc, searching front-to-back: the code
// generator appends a try statement's entry only after compiling
// everything nested inside it, so nested constructs come first.
func (c *Context) findEnclosingFinally(fr *Frame, pc bytecode.Pc) (bytecode.ExceptionEntry, bool) {
	except := &fr.Def.Except
	for i := 0; i < except.Len(); i++ {
		e := except.Get(i)
		if !e.HasFinally() {
			continue
		}
		inTry := pc >= e.TryStart && pc < e.TryEnd
		inCatch := e.HasCatch() && pc >= e.CatchStart && pc < e.CatchEnd
		if inTry || inCatch {
			return e, true
		}
	}
	return bytecode.ExceptionEntry{}, false
}

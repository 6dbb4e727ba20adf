package value

// PromiseState is the promise's settlement state. Grounded on
// original_source/tests/unit/object_impl/promise_object_test.cpp's
// IsPending/IsFulfilled/IsRejected predicates.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// ReactionHandler is a single then()/catch() callback registration: the
// VM supplies concrete FunctionObject-backed callbacks at the call site,
// so this package only stores opaque handler Values and dispatches by
// queuing, not by invoking JS code itself (the engine's call machinery
// lives in the VM, not here).
type ReactionHandler struct {
	OnFulfilled Value
	OnRejected  Value
	// Result is the promise returned by the then() call that registered
	// this handler, resolved/rejected once the handler runs.
	Result *PromiseObject
}

// PromiseObject tracks settlement state, the settled result/reason, and
// the queue of reaction handlers registered before settlement (spec.md
// §4.4 and the PromiseObject API surface in promise_object_test.cpp:
// Resolve/Reject/Then/result()/reason()).
type PromiseObject struct {
	Object
	state     PromiseState
	result    Value
	reason    Value
	reactions []ReactionHandler
}

func NewPromise(prototype Value) *PromiseObject {
	return &PromiseObject{
		Object: *NewObject(ClassPromise, prototype),
		state:  PromisePending,
		result: Undef(),
		reason: Undef(),
	}
}

func (p *PromiseObject) Base() *Object { return &p.Object }

func (p *PromiseObject) IsPending() bool   { return p.state == PromisePending }
func (p *PromiseObject) IsFulfilled() bool { return p.state == PromiseFulfilled }
func (p *PromiseObject) IsRejected() bool  { return p.state == PromiseRejected }

func (p *PromiseObject) Result() Value { return p.result }
func (p *PromiseObject) Reason() Value { return p.reason }

// Resolve settles the promise as fulfilled with v, returning the pending
// reaction handlers for the caller (the VM's microtask queue) to
// schedule. A no-op if already settled.
func (p *PromiseObject) Resolve(v Value) []ReactionHandler {
	if p.state != PromisePending {
		return nil
	}
	p.state = PromiseFulfilled
	p.result = v
	return p.drainReactions()
}

// Reject settles the promise as rejected with reason, returning the
// pending reaction handlers to schedule. A no-op if already settled.
func (p *PromiseObject) Reject(reason Value) []ReactionHandler {
	if p.state != PromisePending {
		return nil
	}
	p.state = PromiseRejected
	p.reason = reason
	return p.drainReactions()
}

func (p *PromiseObject) drainReactions() []ReactionHandler {
	r := p.reactions
	p.reactions = nil
	return r
}

// Then registers a reaction handler, returning the derived promise. If
// already settled, the caller is responsible for scheduling the handler
// immediately (this package holds no event loop); Then only enqueues
// when still pending.
func (p *PromiseObject) Then(onFulfilled, onRejected Value, resultPrototype Value) (*PromiseObject, *ReactionHandler) {
	result := NewPromise(resultPrototype)
	handler := ReactionHandler{OnFulfilled: onFulfilled, OnRejected: onRejected, Result: result}
	if p.state == PromisePending {
		p.reactions = append(p.reactions, handler)
		return result, nil
	}
	return result, &handler
}

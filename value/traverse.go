package value

// GCTraverse visits every outgoing Value edge from o: its prototype and
// every property value (spec.md §4.7: "Children are processed via each
// object's GCTraverse operation, which invokes a caller-supplied
// callback on every outgoing Value edge"). Subtypes call
// Object.GCTraverse first, then visit their own extra edges.
func (o *Object) GCTraverse(visit func(Value)) {
	visit(o.prototype)
	for _, k := range o.properties.keys {
		visit(o.properties.values[k])
	}
}

// GCTraverse visits the inherited property edges plus every dense
// element (spec.md §4.7: "elements for Array").
func (a *ArrayObject) GCTraverse(visit func(Value)) {
	a.Object.GCTraverse(visit)
	for _, e := range a.elements {
		visit(e)
	}
}

// GCTraverse visits the inherited property edges, the bound `this`, and
// every shared closure cell (spec.md §4.7: "cells for FunctionObject's
// closure env"). The FunctionDef itself is a constant-pool entry, not a
// Value edge, so it is not traversed here.
func (f *FunctionObject) GCTraverse(visit func(Value)) {
	f.Object.GCTraverse(visit)
	visit(f.This)
	for _, cell := range f.ClosureEnv {
		visit(cell.V)
	}
}

// GCTraverse visits the inherited property edges plus the saved operand
// stack and saved locals from the last suspension point (spec.md §4.7:
// "saved stack slots for Generator").
func (g *GeneratorObject) GCTraverse(visit func(Value)) {
	g.Object.GCTraverse(visit)
	visit(g.This)
	for _, cell := range g.ClosureEnv {
		visit(cell.V)
	}
	for _, v := range g.stack {
		visit(v)
	}
	for _, v := range g.locals {
		visit(v)
	}
}

// GCTraverse visits the inherited property edges, the settled
// result/reason, and every pending reaction handler's callbacks
// (spec.md §4.7: "result/reason/reactions for Promise").
func (p *PromiseObject) GCTraverse(visit func(Value)) {
	p.Object.GCTraverse(visit)
	visit(p.result)
	visit(p.reason)
	for _, r := range p.reactions {
		visit(r.OnFulfilled)
		visit(r.OnRejected)
	}
}

// GCTraverse visits the inherited property edges and recurses into the
// wrapped generator and promise.
func (a *AsyncObject) GCTraverse(visit func(Value)) {
	a.Object.GCTraverse(visit)
	a.Gen.GCTraverse(visit)
	a.Promise.GCTraverse(visit)
}

// GCTraverse visits the inherited property edges plus every top-level
// module variable slot (spec.md §4.7: "module-local slots for Module").
func (m *ModuleObject) GCTraverse(visit func(Value)) {
	m.Object.GCTraverse(visit)
	for _, v := range m.vars {
		visit(v)
	}
}

// Package gc implements the engine's generational collector bookkeeping:
// young/old generation membership, age/promotion tracking, a
// remembered-set write barrier, and root-relative reachability analysis
// (spec.md §4.7). Grounded on spec.md §4.7's generational design
// directly, since original_source/'s real gc_manager.h/gc_heap.h were
// filtered from the retrieval pack and the surviving
// tests/unit/gc_test.cpp only confirms the class names (GCManager,
// GCHeap) exist, not their bodies.
//
// Go gives every object its own memory-safe, already-moving collector;
// there is no portable, unsafe-free way for a library to relocate
// arbitrary heap objects and rewrite every pointer to them the way a
// hand-rolled semi-space copying collector would in C++. So this
// package does not move memory — it layers the spec's generational
// *policy* (ages, promotion threshold, minor/major collection,
// remembered set) on top of Go's allocator: "copying" an object to
// to-space is modeled as keeping its header in the reachable set,
// "freeing" an unreached object is modeled as dropping its header so
// Go's own collector reclaims it once nothing else references it.
package gc

import "lotusjs/value"

// Generation is which region an object currently lives in.
type Generation int

const (
	Young Generation = iota
	Old
)

// DefaultPromotionAge mirrors spec.md §4.7's "age counter increments; at
// threshold T (configurable, default 2) the object is promoted".
const DefaultPromotionAge = 2

// Header is the per-object bookkeeping record a Heap keeps, keyed by the
// object's own pointer identity (object is any *Object-embedding
// pointer type — comparable, since it's always a pointer).
type Header struct {
	Generation Generation
	Age        int
	marked     bool
}

// Traversable is implemented by every value package object type via its
// GCTraverse method, letting the collector walk outgoing Value edges
// without importing the VM's call machinery.
type Traversable interface {
	GCTraverse(visit func(value.Value))
}

// Options configures a Heap at Context-creation time (spec.md §4.7:
// "Heap sizes, promotion age, and GC frequency thresholds are set once
// on Context creation").
type Options struct {
	PromotionAge   int
	OldWatermark   int // trigger a major GC once len(old) exceeds this
}

func DefaultOptions() Options {
	return Options{PromotionAge: DefaultPromotionAge, OldWatermark: 4096}
}

// Heap is the collector's live state: a header table and, since Go
// already performs real memory management, no byte-addressed arena —
// object storage is ordinary Go allocation.
type Heap struct {
	opts     Options
	headers  map[any]*Header
	young    []any // insertion order within the young generation
	old      []any
	remember map[any]struct{} // remembered set: old objects storing young pointers

	Stats Stats
}

func NewHeap(opts Options) *Heap {
	return &Heap{
		opts:     opts,
		headers:  make(map[any]*Header),
		remember: make(map[any]struct{}),
	}
}

// Register records a freshly allocated object in the young generation
// (spec.md §4.7: "Allocation. Bump allocation into the young active
// semi-space"). obj must be a pointer (e.g. *value.Object, *value.ArrayObject).
func (h *Heap) Register(obj any) *Header {
	if hdr, ok := h.headers[obj]; ok {
		return hdr
	}
	hdr := &Header{Generation: Young}
	h.headers[obj] = hdr
	h.young = append(h.young, obj)
	h.Stats.LiveYoung++
	return hdr
}

func (h *Heap) HeaderOf(obj any) (*Header, bool) {
	hdr, ok := h.headers[obj]
	return hdr, ok
}

// WriteBarrier must be invoked whenever value is stored into a field of
// container (an object's property, a closure cell, an array element):
// if container is old and value points at a young object, container is
// logged in the remembered set so the next minor GC treats it as an
// additional root without rescanning all of old space (spec.md §4.7:
// "Write barrier").
func (h *Heap) WriteBarrier(container any, val value.Value) {
	containerHdr, ok := h.headers[container]
	if !ok || containerHdr.Generation != Old {
		return
	}
	target := val.Object()
	if target == nil {
		return
	}
	targetHdr, ok := h.headers[target]
	if !ok || targetHdr.Generation != Young {
		return
	}
	h.remember[container] = struct{}{}
	h.Stats.RememberedSetEntries = len(h.remember)
}

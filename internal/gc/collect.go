package gc

import "lotusjs/value"

// MinorGC runs a young-generation collection: flip the active semi-space
// (modeled here as computing a fresh reachable set rather than literally
// copying bytes), promote survivors that have reached the promotion age,
// and drop young objects unreachable from roots or the remembered set
// (spec.md §4.7: "Minor GC").
func (h *Heap) MinorGC(roots RootProvider) {
	reachable := make(map[any]bool, len(h.young))
	var visit func(v value.Value)
	visit = func(v value.Value) {
		obj := v.Object()
		if obj == nil {
			return
		}
		hdr, ok := h.headers[obj]
		if !ok || hdr.Generation != Young {
			return
		}
		if reachable[obj] {
			return
		}
		reachable[obj] = true
		if trav, ok := obj.(Traversable); ok {
			trav.GCTraverse(visit)
		}
	}

	for _, rv := range roots.GCRoots() {
		visit(rv)
	}
	// Old objects logged in the remembered set act as additional roots
	// into the young generation, without rescanning the rest of old
	// space (spec.md §4.7: "Write barrier").
	for container := range h.remember {
		if hdr, ok := h.headers[container]; ok && hdr.Generation == Old {
			if trav, ok := container.(Traversable); ok {
				trav.GCTraverse(visit)
			}
		}
	}

	survivors := h.young[:0]
	for _, obj := range h.young {
		if !reachable[obj] {
			delete(h.headers, obj)
			continue
		}
		hdr := h.headers[obj]
		hdr.Age++
		if hdr.Age >= h.opts.PromotionAge {
			hdr.Generation = Old
			hdr.Age = 0
			h.old = append(h.old, obj)
			h.Stats.Promotions++
		} else {
			survivors = append(survivors, obj)
		}
	}
	h.young = survivors
	// The promotions/frees above invalidate remembered-set entries whose
	// young targets moved or disappeared; entries logged by writes that
	// happen after this point are recorded fresh by WriteBarrier.
	h.remember = make(map[any]struct{})

	h.Stats.MinorCollections++
	h.Stats.LiveYoung = len(h.young)
	h.Stats.LiveOld = len(h.old)
	h.Stats.RememberedSetEntries = 0
}

// MajorGC runs a full-heap mark-compact pass: mark everything reachable
// from roots, drop everything else (spec.md §4.7: "Major GC... (1) mark
// reachable from roots; (2) compute new addresses...; (3) update
// pointers"). Go's allocator already manages physical addresses, so
// phases (2)/(3) — sliding objects down and rewriting pointers — have no
// analogue here; only the reachability-based sweep is observable.
func (h *Heap) MajorGC(roots RootProvider) {
	reachable := make(map[any]bool, len(h.young)+len(h.old))
	var visit func(v value.Value)
	visit = func(v value.Value) {
		obj := v.Object()
		if obj == nil {
			return
		}
		if _, ok := h.headers[obj]; !ok {
			return
		}
		if reachable[obj] {
			return
		}
		reachable[obj] = true
		if trav, ok := obj.(Traversable); ok {
			trav.GCTraverse(visit)
		}
	}
	for _, rv := range roots.GCRoots() {
		visit(rv)
	}

	sweep := func(objs []any) []any {
		survivors := objs[:0]
		for _, obj := range objs {
			if !reachable[obj] {
				delete(h.headers, obj)
				continue
			}
			survivors = append(survivors, obj)
		}
		return survivors
	}
	h.young = sweep(h.young)
	h.old = sweep(h.old)
	h.remember = make(map[any]struct{})

	h.Stats.MajorCollections++
	h.Stats.LiveYoung = len(h.young)
	h.Stats.LiveOld = len(h.old)
	h.Stats.RememberedSetEntries = 0
}

// MaybeMajorGC runs a major collection if old-space occupancy has
// crossed the configured watermark (spec.md §4.7: "Triggered when
// old-space occupancy crosses a watermark or by explicit request").
func (h *Heap) MaybeMajorGC(roots RootProvider) bool {
	if len(h.old) <= h.opts.OldWatermark {
		return false
	}
	h.MajorGC(roots)
	return true
}

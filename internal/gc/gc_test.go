package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/value"
)

func TestRegisterTracksYoungGeneration(t *testing.T) {
	h := NewHeap(DefaultOptions())
	obj := value.NewObject(value.ClassObject, value.Undef())
	hdr := h.Register(obj)
	assert.Equal(t, Young, hdr.Generation)
	assert.Equal(t, 1, h.Stats.LiveYoung)
}

func TestMinorGCKeepsRootedObjectIdentity(t *testing.T) {
	h := NewHeap(DefaultOptions())
	obj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(obj)

	rootVal := value.Obj(value.Object, obj)
	roots := RootFunc(func() []value.Value { return []value.Value{rootVal} })

	h.MinorGC(roots)

	hdr, ok := h.HeaderOf(obj)
	require.True(t, ok)
	assert.Equal(t, obj, rootVal.Object())
	assert.Equal(t, 1, hdr.Age)
}

func TestMinorGCFreesUnrootedObjects(t *testing.T) {
	h := NewHeap(DefaultOptions())
	obj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(obj)

	noRoots := RootFunc(func() []value.Value { return nil })
	h.MinorGC(noRoots)

	_, ok := h.HeaderOf(obj)
	assert.False(t, ok)
	assert.Equal(t, 0, h.Stats.LiveYoung)
}

func TestMinorGCSoundnessRootedSurviveUnrootedDie(t *testing.T) {
	h := NewHeap(DefaultOptions())
	rooted := value.NewObject(value.ClassObject, value.Undef())
	h.Register(rooted)
	for i := 0; i < 5; i++ {
		h.Register(value.NewObject(value.ClassObject, value.Undef()))
	}

	rootVal := value.Obj(value.Object, rooted)
	roots := RootFunc(func() []value.Value { return []value.Value{rootVal} })
	h.MinorGC(roots)

	assert.Equal(t, 1, h.Stats.LiveYoung)
	_, ok := h.HeaderOf(rooted)
	assert.True(t, ok)
}

func TestMinorGCPromotesAfterThresholdAges(t *testing.T) {
	h := NewHeap(DefaultOptions())
	obj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(obj)

	rootVal := value.Obj(value.Object, obj)
	roots := RootFunc(func() []value.Value { return []value.Value{rootVal} })

	h.MinorGC(roots)
	hdr, _ := h.HeaderOf(obj)
	assert.Equal(t, Young, hdr.Generation)

	h.MinorGC(roots)
	hdr, _ = h.HeaderOf(obj)
	assert.Equal(t, Old, hdr.Generation)
	assert.Equal(t, 1, h.Stats.Promotions)
	assert.Equal(t, 1, h.Stats.LiveOld)
}

func TestWriteBarrierRecordsRememberedSetEntry(t *testing.T) {
	h := NewHeap(DefaultOptions())
	oldObj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(oldObj)
	h.HeaderOf(oldObj) // sanity
	hdr, _ := h.HeaderOf(oldObj)
	hdr.Generation = Old

	youngObj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(youngObj)

	h.WriteBarrier(oldObj, value.Obj(value.Object, youngObj))
	assert.Equal(t, 1, h.Stats.RememberedSetEntries)
}

func TestMinorGCTreatsRememberedSetAsAdditionalRoot(t *testing.T) {
	h := NewHeap(DefaultOptions())

	oldObj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(oldObj)
	hdr, _ := h.HeaderOf(oldObj)
	hdr.Generation = Old
	h.old = append(h.old, oldObj)

	youngObj := value.NewObject(value.ClassObject, value.Undef())
	h.Register(youngObj)
	oldObj.Set("child", value.Obj(value.Object, youngObj))
	h.WriteBarrier(oldObj, value.Obj(value.Object, youngObj))

	// No direct root references youngObj; only the remembered set does.
	noRoots := RootFunc(func() []value.Value { return nil })
	h.MinorGC(noRoots)

	_, ok := h.HeaderOf(youngObj)
	assert.True(t, ok, "young object reachable only via remembered set must survive")
}

func TestMajorGCSweepsOldGeneration(t *testing.T) {
	h := NewHeap(DefaultOptions())
	rooted := value.NewObject(value.ClassObject, value.Undef())
	h.Register(rooted)
	hdr, _ := h.HeaderOf(rooted)
	hdr.Generation = Old
	h.old = append(h.old, rooted)

	garbage := value.NewObject(value.ClassObject, value.Undef())
	h.Register(garbage)
	ghdr, _ := h.HeaderOf(garbage)
	ghdr.Generation = Old
	h.old = append(h.old, garbage)
	h.young = nil

	rootVal := value.Obj(value.Object, rooted)
	roots := RootFunc(func() []value.Value { return []value.Value{rootVal} })
	h.MajorGC(roots)

	_, ok := h.HeaderOf(rooted)
	assert.True(t, ok)
	_, ok = h.HeaderOf(garbage)
	assert.False(t, ok)
	assert.Equal(t, 1, h.Stats.MajorCollections)
}

func TestMaybeMajorGCRespectsWatermark(t *testing.T) {
	opts := DefaultOptions()
	opts.OldWatermark = 1
	h := NewHeap(opts)

	noRoots := RootFunc(func() []value.Value { return nil })
	assert.False(t, h.MaybeMajorGC(noRoots))

	h.old = append(h.old, value.NewObject(value.ClassObject, value.Undef()), value.NewObject(value.ClassObject, value.Undef()))
	assert.True(t, h.MaybeMajorGC(noRoots))
	assert.Equal(t, 1, h.Stats.MajorCollections)
}

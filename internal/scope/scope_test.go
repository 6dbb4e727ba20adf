package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFuncDef is a minimal FuncDef stand-in for testing scope resolution
// without depending on the bytecode package's concrete FunctionDef.
type fakeFuncDef struct {
	name    string
	locals  []string
	closure []struct{ local, outer int }
}

func newFakeFuncDef(name string) *fakeFuncDef { return &fakeFuncDef{name: name} }

func (f *fakeFuncDef) AllocLocal(name string) int {
	f.locals = append(f.locals, name)
	return len(f.locals) - 1
}

func (f *fakeFuncDef) AddClosureVar(localIndex, outerIndex int) {
	f.closure = append(f.closure, struct{ local, outer int }{localIndex, outerIndex})
}

func TestAllocateAndFindVarSameScope(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, Function)
	info, err := m.AllocateVar("x", VarNone)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Index)

	found, ok := m.FindVar(fn, "x")
	require.True(t, ok)
	assert.Equal(t, info.Index, found.Index)
}

func TestAllocateVarRedeclarationFails(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, Function)
	_, err := m.AllocateVar("x", VarNone)
	require.NoError(t, err)
	_, err = m.AllocateVar("x", VarNone)
	assert.Error(t, err)
}

func TestFindVarNearestShadowWins(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, Function)
	outer, _ := m.AllocateVar("x", VarNone)
	m.EnterScope(fn, nil, Block)
	inner, _ := m.AllocateVar("x", VarNone)

	found, ok := m.FindVar(fn, "x")
	require.True(t, ok)
	assert.Equal(t, inner.Index, found.Index)
	assert.NotEqual(t, outer.Index, found.Index)
}

func TestFindVarBuildsClosureCaptureChain(t *testing.T) {
	m := NewManager()
	outerFn := newFakeFuncDef("outer")
	m.EnterScope(nil, outerFn, Function)
	outerInfo, err := m.AllocateVar("captured", VarNone)
	require.NoError(t, err)

	innerFn := newFakeFuncDef("inner")
	m.EnterScope(outerFn, innerFn, ArrowFunction)

	found, ok := m.FindVar(innerFn, "captured")
	require.True(t, ok, "inner function must resolve a variable declared in its enclosing function")
	assert.True(t, found.Flags.Has(VarCaptured))
	require.Len(t, innerFn.closure, 1)
	assert.Equal(t, outerInfo.Index, innerFn.closure[0].outer)
	assert.Equal(t, found.Index, innerFn.closure[0].local)
}

func TestFindVarUnresolvedReturnsFalse(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, Function)
	_, ok := m.FindVar(fn, "nonexistent")
	assert.False(t, ok)
}

func TestExitScopeDropsShadow(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, Function)
	outer, _ := m.AllocateVar("x", VarNone)
	m.EnterScope(fn, nil, Block)
	m.AllocateVar("x", VarNone)
	m.ExitScope()

	found, ok := m.FindVar(fn, "x")
	require.True(t, ok)
	assert.Equal(t, outer.Index, found.Index)
}

func TestIsInTypeScopeStopsAtFunctionBoundary(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, While)
	m.EnterScope(fn, fn, Function)
	m.EnterScope(fn, nil, Block)

	assert.False(t, m.IsInTypeScope([]Type{While, For, Switch}, []Type{Function, ArrowFunction}),
		"a break inside a nested function must not see the outer while loop")
}

func TestIsInTypeScopeFindsEnclosingLoop(t *testing.T) {
	m := NewManager()
	fn := newFakeFuncDef("main")
	m.EnterScope(nil, fn, For)
	m.EnterScope(fn, nil, Block)

	assert.True(t, m.IsInTypeScope([]Type{While, For, Switch}, []Type{Function, ArrowFunction}))
}

func TestJumpManagerRepairsBreakAndContinue(t *testing.T) {
	jm := NewJumpManager()
	var entries []RepairEntry
	jm.SetCurrentLoopEntries(&entries)
	jm.AddEntry(RepairBreak, 10)
	jm.AddEntry(RepairContinue, 20)

	fn := &fakePatcher{}
	err := jm.RepairEntries(fn, entries, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, 100, fn.patched[10])
	assert.Equal(t, 5, fn.patched[20])
}

func TestJumpManagerAddEntryWithoutLoopPanics(t *testing.T) {
	jm := NewJumpManager()
	assert.Panics(t, func() { jm.AddEntry(RepairBreak, 0) })
}

func TestJumpManagerLabels(t *testing.T) {
	jm := NewJumpManager()
	jm.SetLabel("outer", LabelInfo{LoopStartPC: 7})
	info, ok := jm.Label("outer")
	require.True(t, ok)
	assert.Equal(t, 7, info.LoopStartPC)

	jm.DeleteLabel("outer")
	_, ok = jm.Label("outer")
	assert.False(t, ok)
}

type fakePatcher struct {
	patched map[int]int
}

func (f *fakePatcher) RepairPC(repairPC, target int) {
	if f.patched == nil {
		f.patched = make(map[int]int)
	}
	f.patched[repairPC] = target
}

package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitOpcode(t *testing.T) {
	var tbl Table
	tbl.EmitOpcode(Nop)
	assert.Equal(t, 1, tbl.Size())
	pc := 0
	assert.Equal(t, Nop, tbl.GetOpcode(&pc))
}

func TestEmitConstLoadSmallIndexUsesShortForm(t *testing.T) {
	var tbl Table
	tbl.EmitConstLoad(0)
	tbl.EmitConstLoad(3)
	tbl.EmitConstLoad(5)
	assert.Equal(t, 3, tbl.Size(), "indices 0-5 must use the 1-byte short form")
	pc := 0
	assert.Equal(t, CLoad0, tbl.GetOpcode(&pc))
	assert.Equal(t, CLoad3, tbl.GetOpcode(&pc))
	assert.Equal(t, CLoad5, tbl.GetOpcode(&pc))
}

func TestEmitConstLoadLargeIndexUsesWideForm(t *testing.T) {
	var tbl Table
	tbl.EmitConstLoad(100)
	tbl.EmitConstLoad(70000)
	assert.Equal(t, 3+5, tbl.Size())
	pc := 0
	assert.Equal(t, CLoad, tbl.GetOpcode(&pc))
	assert.Equal(t, 100, tbl.GetConstIndexAsU16(&pc))
	assert.Equal(t, CLoadD, tbl.GetOpcode(&pc))
	assert.Equal(t, 70000, tbl.GetConstIndex(&pc))
}

func TestEmitConstLoadDAlwaysUsesWideForm(t *testing.T) {
	var tbl Table
	tbl.EmitConstLoadD(2)
	assert.Equal(t, 5, tbl.Size(), "EmitConstLoadD must not take the short-form shortcut")
	pc := 0
	assert.Equal(t, CLoadD, tbl.GetOpcode(&pc))
	assert.Equal(t, 2, tbl.GetConstIndex(&pc))
}

func TestRewriteOpcodePromotesConstLoadDToClosure(t *testing.T) {
	var tbl Table
	placeholderPc := tbl.EmitConstLoadD(9)
	tbl.RewriteOpcode(int(placeholderPc), Closure)
	pc := 0
	assert.Equal(t, Closure, tbl.GetOpcode(&pc))
	assert.Equal(t, 9, tbl.GetConstIndex(&pc))
}

func TestEmitVarLoadStore(t *testing.T) {
	var tbl Table
	tbl.EmitVarLoad(2)
	tbl.EmitVarStore(3)
	pc := 0
	assert.Equal(t, VarLoad, tbl.GetOpcode(&pc))
	assert.Equal(t, 2, tbl.GetVarIndex(&pc))
	assert.Equal(t, VarStore, tbl.GetOpcode(&pc))
	assert.Equal(t, 3, tbl.GetVarIndex(&pc))
}

func TestGotoRepairWritesForwardDelta(t *testing.T) {
	var tbl Table
	gotoPc := tbl.EmitGoto()
	tbl.EmitOpcode(Nop)
	end := tbl.Size()
	tbl.RepairPC(int(gotoPc), end)

	pc := int(gotoPc)
	assert.Equal(t, Goto, tbl.GetOpcode(&pc))
	assert.Equal(t, end-int(gotoPc), tbl.GetPc(&pc))
}

func TestGotoRepairWritesBackwardDelta(t *testing.T) {
	var tbl Table
	loopStart := tbl.Size()
	tbl.EmitOpcode(Nop)
	gotoPc := tbl.EmitGoto()
	tbl.RepairPC(int(gotoPc), loopStart)

	pc := int(gotoPc)
	tbl.GetOpcode(&pc)
	assert.Equal(t, loopStart-int(gotoPc), tbl.GetPc(&pc))
}

func TestDisassemblyNonEmpty(t *testing.T) {
	var tbl Table
	tbl.EmitOpcode(Nop)
	tbl.EmitConstLoad(0)
	assert.NotEmpty(t, tbl.Disassembly())
}

func TestExceptionTableFindsInnermostHandler(t *testing.T) {
	var tbl ExceptionTable
	tbl.Add(ExceptionEntry{TryStart: 0, TryEnd: 100, CatchStart: 100, CatchEnd: 110, CatchErrSlot: 0, FinallyStart: InvalidPc, FinallyEnd: InvalidPc})
	tbl.Add(ExceptionEntry{TryStart: 20, TryEnd: 40, CatchStart: 40, CatchEnd: 50, CatchErrSlot: 1, FinallyStart: InvalidPc, FinallyEnd: InvalidPc})

	entry, ok := tbl.FindHandler(30)
	require.True(t, ok)
	assert.Equal(t, 1, entry.CatchErrSlot, "the nested try region must win over the outer one")

	entry, ok = tbl.FindHandler(70)
	require.True(t, ok)
	assert.Equal(t, 0, entry.CatchErrSlot)

	_, ok = tbl.FindHandler(200)
	assert.False(t, ok)
}

func TestClosureVarTableEmptyIffNoCaptures(t *testing.T) {
	var tbl ClosureVarTable
	assert.True(t, tbl.Empty())
	tbl.AddClosureVar(0, 2)
	assert.False(t, tbl.Empty())
	assert.Equal(t, ClosureVarDef{ChildSlot: 0, ParentSlot: 2}, tbl.Get(0))
}

func TestFunctionDefAllocLocalAndClosureVar(t *testing.T) {
	fn := NewFunctionDef("f", 1, FlagNormal)
	idx := fn.AllocLocal("x")
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, fn.VarCount())
	fn.AddClosureVar(1, 0)
	assert.False(t, fn.Closure.Empty())
}

type constStr string

func (s constStr) ConstKey() string { return "str:" + string(s) }

func TestConstPoolDeduplicates(t *testing.T) {
	pool := NewConstPool()
	a := pool.FindOrInsert(constStr("hello"))
	b := pool.FindOrInsert(constStr("world"))
	c := pool.FindOrInsert(constStr("hello"))
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, pool.Len())
}

func TestLineTablePosition(t *testing.T) {
	lt := NewLineTable("abc\ndef\nghi")
	line, col := lt.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = lt.Position(5)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, _ = lt.Position(10)
	assert.Equal(t, 3, line)
}

func TestModuleDefExportVars(t *testing.T) {
	md := NewModuleDef("mod", "export const x = 1;")
	md.ExportVars.AddExportVar("x", 0)
	slot, ok := md.ExportVars.Slot("x")
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.True(t, md.Flags.Has(FlagModule))
}

package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Pc is a byte offset into a Table's code buffer.
type Pc int

const InvalidPc Pc = -1

// Table is a single function's bytecode byte buffer, grounded on
// multjs's BytecodeTable (confirmed via bytecode_test.cpp: EmitOpcode,
// EmitConstLoad, EmitVarLoad/Store, EmitPcOffset, EmitGoto,
// EmitPropertyLoad, GetOpcode/GetVarIndex/GetConstIndex/GetPc, size()).
type Table struct {
	code []byte
}

func (t *Table) Size() int { return len(t.code) }

func (t *Table) Bytes() []byte { return t.code }

// EmitOpcode appends a zero-operand opcode and returns its pc.
func (t *Table) EmitOpcode(op Opcode) Pc {
	pc := Pc(len(t.code))
	t.code = append(t.code, byte(op))
	return pc
}

// EmitConstLoad picks the short CLoad_0..5 form for the first six
// constant-pool slots, the 2-byte CLoad form for indices up to 65535,
// and the 4-byte CLoadD form beyond that — matching
// BytecodeTableEdgeCaseTest.ConstIndexBoundaryValues's boundary set.
func (t *Table) EmitConstLoad(index int) Pc {
	if index >= 0 && index <= 5 {
		return t.EmitOpcode(Opcode(int(CLoad0) + index))
	}
	pc := t.EmitOpcode(CLoad)
	if index <= 0xFFFF {
		t.emitU16(uint16(index))
		return pc
	}
	// wide index: retroactively this should have been CLoadD. Since the
	// opcode byte is already written, overwrite it in place.
	t.code[pc] = byte(CLoadD)
	t.emitU32(uint32(index))
	return pc
}

// EmitConstLoadD always uses the wide 4-byte CLoadD form, regardless of
// how small index is. The code generator uses this (rather than
// EmitConstLoad's short-form optimization) for function constants,
// since a FunctionDef placeholder may later be rewritten in place to
// Closure, which itself always carries a 4-byte operand (spec.md §4.4:
// "Emits a forward CLoadD const_index_of_FunctionDef placeholder").
func (t *Table) EmitConstLoadD(index int) Pc {
	pc := t.EmitOpcode(CLoadD)
	t.emitU32(uint32(index))
	return pc
}

// RewriteOpcode overwrites the opcode byte at pc in place, used to
// promote a CLoadD function-constant placeholder to Closure once the
// code generator discovers the function actually captures outer
// variables (spec.md §4.4).
func (t *Table) RewriteOpcode(pc int, op Opcode) {
	t.code[pc] = byte(op)
}

func (t *Table) EmitVarLoad(slot int) Pc {
	pc := t.EmitOpcode(VarLoad)
	t.emitU16(uint16(slot))
	return pc
}

func (t *Table) EmitVarStore(slot int) Pc {
	pc := t.EmitOpcode(VarStore)
	t.emitU16(uint16(slot))
	return pc
}

func (t *Table) EmitPropertyLoad(nameConstIndex int) Pc {
	pc := t.EmitOpcode(PropertyLoad)
	t.emitU16(uint16(nameConstIndex))
	return pc
}

func (t *Table) EmitPropertyStore(nameConstIndex int) Pc {
	pc := t.EmitOpcode(PropertyStore)
	t.emitU16(uint16(nameConstIndex))
	return pc
}

func (t *Table) EmitGetGlobal(nameConstIndex int) Pc {
	pc := t.EmitOpcode(GetGlobal)
	t.emitU32(uint32(nameConstIndex))
	return pc
}

func (t *Table) EmitSetGlobal(nameConstIndex int) Pc {
	pc := t.EmitOpcode(SetGlobal)
	t.emitU32(uint32(nameConstIndex))
	return pc
}

// EmitGetModule appends a static module import, whose specifier string
// is already known at compile time and interned in the constant pool.
// Dynamic `import(expr)` instead evaluates expr and emits a bare
// GetModuleAsync (see codegen's handling of ast.ImportExpression).
func (t *Table) EmitGetModule(specifierConstIndex int) Pc {
	pc := t.EmitOpcode(GetModule)
	t.emitU32(uint32(specifierConstIndex))
	return pc
}

func (t *Table) EmitClosure(funcConstIndex int) Pc {
	pc := t.EmitOpcode(Closure)
	t.emitU32(uint32(funcConstIndex))
	return pc
}

// EmitGoto appends an unconditional jump with a placeholder offset,
// returning its pc so the caller can repair it once the target is known.
func (t *Table) EmitGoto() Pc {
	pc := t.EmitOpcode(Goto)
	t.emitI16(0)
	return pc
}

// EmitIfEq appends a conditional jump (taken when the top-of-stack test
// value is falsy) with a placeholder offset.
func (t *Table) EmitIfEq() Pc {
	pc := t.EmitOpcode(IfEq)
	t.emitI16(0)
	return pc
}

func (t *Table) EmitFinallyGoto() Pc {
	pc := t.EmitOpcode(FinallyGoto)
	t.emitI16(0)
	return pc
}

func (t *Table) EmitFinallyReturn() Pc {
	pc := t.EmitOpcode(FinallyReturn)
	t.emitI16(0)
	return pc
}

func (t *Table) EmitPcOffset(offset int) Pc {
	pc := Pc(len(t.code))
	t.emitI16(int16(offset))
	return pc
}

func (t *Table) EmitVarIndex(index int) Pc {
	pc := Pc(len(t.code))
	t.emitU16(uint16(index))
	return pc
}

func (t *Table) EmitConstIndex(index int) Pc {
	pc := Pc(len(t.code))
	t.emitU32(uint32(index))
	return pc
}

func (t *Table) emitU16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	t.code = append(t.code, buf[:]...)
}

func (t *Table) emitU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	t.code = append(t.code, buf[:]...)
}

func (t *Table) emitI16(v int16) { t.emitU16(uint16(v)) }

// RepairPC overwrites a previously emitted jump's 2-byte signed operand
// (at repairPc+1) with the delta from repairPc to target. Satisfies
// scope.Patcher. Mirrors BytecodeTable::RepairPc's contract: deltas are
// measured from the jump opcode's own byte position (spec.md §4.5).
func (t *Table) RepairPC(repairPc, target int) {
	delta := int16(target - repairPc)
	binary.BigEndian.PutUint16(t.code[repairPc+1:repairPc+3], uint16(delta))
}

func (t *Table) GetOpcode(pc *int) Opcode {
	op := Opcode(t.code[*pc])
	*pc++
	return op
}

func (t *Table) GetVarIndex(pc *int) int {
	v := binary.BigEndian.Uint16(t.code[*pc:])
	*pc += 2
	return int(v)
}

// GetConstIndexAsU16 reads the 2-byte operand form used by CLoad (the
// generic, non-short, non-wide constant-load instruction).
func (t *Table) GetConstIndexAsU16(pc *int) int {
	v := binary.BigEndian.Uint16(t.code[*pc:])
	*pc += 2
	return int(v)
}

func (t *Table) GetConstIndex(pc *int) int {
	v := binary.BigEndian.Uint32(t.code[*pc:])
	*pc += 4
	return int(v)
}

func (t *Table) GetPc(pc *int) int {
	v := int16(binary.BigEndian.Uint16(t.code[*pc:]))
	*pc += 2
	return int(v)
}

// Disassembly renders the table as one mnemonic per line, pc-prefixed,
// for diagnostics and the compiler's -verbose trace.
func (t *Table) Disassembly() string {
	var b strings.Builder
	pc := 0
	for pc < len(t.code) {
		start := pc
		op := t.GetOpcode(&pc)
		width := OperandWidth(op)
		fmt.Fprintf(&b, "%04d %s", start, op)
		if width > 0 && pc+width <= len(t.code) {
			fmt.Fprintf(&b, " %v", t.code[pc:pc+width])
			pc += width
		}
		b.WriteByte('\n')
	}
	return b.String()
}

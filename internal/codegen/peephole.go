package codegen

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// OptimizePeephole runs a local, length-preserving cleanup pass over
// every FunctionDef the compiled module reaches (its own top-level
// FunctionDef plus every function literal interned into pool), the
// bytecode-table analogue of Lotus's own assembly-level peephole.go.
//
// Unlike the teacher's pass, this one never deletes bytes: Goto/IfEq/
// FinallyGoto/FinallyReturn operands are signed deltas measured from the
// jump's own byte position (internal/bytecode/table.go's RepairPC), and
// ExceptionTable/DebugEntry both record absolute Pc values into the same
// Table — relocating any of those safely would need a full relocation
// pass this package has no occasion to build yet. Instead, a matched
// redundant instruction pair is overwritten in place with one-byte Nop
// opcodes (bytecode.RewriteOpcode) covering its exact original byte span,
// so every later pc — jump target, exception region, debug entry — stays
// valid without adjustment.
func OptimizePeephole(md *bytecode.ModuleDef, pool *bytecode.ConstPool) {
	optimizeFunction(&md.FunctionDef)
	for i := 0; i < pool.Len(); i++ {
		if v, ok := pool.Get(i).(value.Value); ok && v.Kind() == value.FunctionDefRef {
			if fn := v.FunctionDef(); fn != nil {
				optimizeFunction(fn)
			}
		}
	}
}

// optimizeFunction scans one function's Code table for redundant
// adjacent-instruction pairs and nops them out. Patterns only fire on
// instructions that are truly no-ops together, regardless of what comes
// before or after:
//
//   - Dup; Pop            — duplicate then immediately discard the copy.
//   - Swap; Swap           — two swaps cancel.
//   - VarLoad s; VarStore s — load a slot and immediately store the same
//     value straight back into it.
func optimizeFunction(fn *bytecode.FunctionDef) {
	code := &fn.Code
	pc := 0
	for pc < code.Size() {
		start := pc
		op := code.GetOpcode(&pc)
		pc += bytecode.OperandWidth(op)
		tryNopPair(code, op, start, pc)
	}
}

// tryNopPair looks at the instruction beginning at secondStart (right
// after the instruction that started at firstStart) and, if the two form
// one of the recognized no-op pairs, overwrites both with Nop bytes. The
// caller's scan position is unaffected either way: nopped bytes are
// walked one Nop at a time on the next iterations, since Nop has zero
// operand width.
func tryNopPair(code *bytecode.Table, firstOp bytecode.Opcode, firstStart, secondStart int) bool {
	if secondStart >= code.Size() {
		return false
	}
	secondPc := secondStart
	secondOp := code.GetOpcode(&secondPc)

	switch {
	case firstOp == bytecode.Dup && secondOp == bytecode.Pop:
		nopRange(code, firstStart, secondPc)
		return true
	case firstOp == bytecode.Swap && secondOp == bytecode.Swap:
		nopRange(code, firstStart, secondPc)
		return true
	case firstOp == bytecode.VarLoad && secondOp == bytecode.VarStore:
		firstSlotPc := firstStart + 1
		secondSlotPc := secondStart + 1
		if code.Bytes()[firstSlotPc] == code.Bytes()[secondSlotPc] &&
			code.Bytes()[firstSlotPc+1] == code.Bytes()[secondSlotPc+1] {
			nopRange(code, firstStart, secondPc)
			return true
		}
	}
	return false
}

// nopRange overwrites every byte in [start, end) with the Nop opcode.
func nopRange(code *bytecode.Table, start, end int) {
	for i := start; i < end; i++ {
		code.RewriteOpcode(i, bytecode.Nop)
	}
}

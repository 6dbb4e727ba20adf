// Package bytecode defines the engine's instruction set and the
// per-function/per-module tables the code generator emits into and the
// VM executes: FunctionDef/ModuleDef, the exception table, the
// closure-variable table, and a deduplicating constant pool.
//
// Grounded on original_source/ (yuyuaqwq/multjs)'s bytecode_table.h/
// function_def.h/opcode.h vocabulary (EmitOpcode/EmitConstLoad/
// EmitVarLoad/RepairPc, confirmed against tests/unit/bytecode_test.cpp
// since the headers themselves were filtered out of the retrieval pack)
// and spec.md §4.5's opcode table.
package bytecode

// Opcode identifies a bytecode instruction. Variable-length: each opcode
// is followed by zero or more operand bytes, per operandWidths below.
type Opcode byte

const (
	Nop Opcode = iota

	// Constants: short forms for the first six constant-pool slots, a
	// 2-byte generic form, and a 4-byte wide form (also used for the
	// function-constant placeholder Closure rewrites, and for pool sizes
	// beyond 65535 entries).
	CLoad0
	CLoad1
	CLoad2
	CLoad3
	CLoad4
	CLoad5
	CLoad  // operand: const index, 2 bytes
	CLoadD // operand: const index, 4 bytes

	// Locals.
	VarLoad  // operand: slot, 2 bytes
	VarStore // operand: slot, 2 bytes

	// Globals.
	GetGlobal // operand: const index (interned name), 4 bytes
	SetGlobal // operand: const index (interned name), 4 bytes

	// Properties.
	PropertyLoad  // operand: const index (property name), 2 bytes
	PropertyStore // operand: const index (property name), 2 bytes
	IndexedLoad
	IndexedStore

	// Arithmetic. Mod and Pow extend spec.md's "representative, not
	// exhaustive" table to cover the parser's `%` and `**` operators.
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	Neg
	Inc
	Dec

	// Comparison: loose and strict forms.
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	StrictEq
	StrictNe

	// Bitwise/shift.
	BitAnd
	BitOr
	BitXor
	BitNot
	Shl
	Shr
	UShr

	// Relational operators with no natural arithmetic/comparison mapping.
	InstanceOf
	HasProperty // `in`
	Delete      // pops a property key then an object, removes the property

	// Logical-not and boolean coercion (used by unary `!`, `if`/`while`
	// test sequences, and Boolean() conversions).
	LNot

	// Stack manipulation.
	Pop
	Dup
	Swap
	Dump // duplicate the top of the stack, like Dup (used to keep a member
	// call's object as `this` while its method is loaded)
	ToString
	Typeof
	Undefined
	LdNull

	// Control flow. Operand: signed pc-offset, 2 bytes, measured from the
	// opcode's own byte position (spec.md §4.3/§4.5).
	Goto
	IfEq

	// Calls.
	FunctionCall
	New
	Return

	// Closures: like CLoadD (4-byte wide const index into the
	// FunctionDef constant), but tells the VM to materialise capture
	// cells from the current frame's closure-var table.
	Closure

	// Exceptions.
	TryBegin
	TryEnd
	Throw
	FinallyGoto   // operand: signed pc-offset, 2 bytes
	FinallyReturn // operand: signed pc-offset, 2 bytes

	// Coroutines.
	Yield
	YieldDelegate
	Await

	// Modules. GetModule's operand is a const index (module specifier
	// string), 4 bytes, for a static import whose specifier is known at
	// compile time. GetModuleAsync instead pops the specifier value off
	// the stack (dynamic `import(expr)` can compute it at runtime) and
	// has no operand bytes.
	GetModule
	GetModuleAsync

	// Object/array literal construction.
	NewObj
	NewArr
	SetProperty
	SetElem

	// Meta.
	GetThis
	GetOuterThis
	GetSuper
	GetNewTarget
)

var opcodeNames = map[Opcode]string{
	Nop: "nop", CLoad0: "cload_0", CLoad1: "cload_1", CLoad2: "cload_2",
	CLoad3: "cload_3", CLoad4: "cload_4", CLoad5: "cload_5", CLoad: "cload",
	CLoadD: "cloadd", VarLoad: "varload", VarStore: "varstore",
	GetGlobal: "getglobal", SetGlobal: "setglobal",
	PropertyLoad: "propload", PropertyStore: "propstore",
	IndexedLoad: "idxload", IndexedStore: "idxstore",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod", Pow: "pow",
	Neg: "neg", Inc: "inc", Dec: "dec",
	Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge",
	StrictEq: "streq", StrictNe: "strne",
	BitAnd: "bitand", BitOr: "bitor", BitXor: "bitxor", BitNot: "bitnot",
	Shl: "shl", Shr: "shr", UShr: "ushr", LNot: "lnot",
	InstanceOf: "instanceof", HasProperty: "hasproperty", Delete: "delete",
	Pop: "pop", Dup: "dup", Swap: "swap", Dump: "dump",
	ToString: "tostring", Typeof: "typeof", Undefined: "undef", LdNull: "ldnull",
	Goto: "goto", IfEq: "ifeq",
	FunctionCall: "call", New: "new", Return: "return",
	Closure:  "closure",
	TryBegin: "trybegin", TryEnd: "tryend", Throw: "throw",
	FinallyGoto: "finallygoto", FinallyReturn: "finallyreturn",
	Yield: "yield", YieldDelegate: "yield*", Await: "await",
	GetModule: "getmodule", GetModuleAsync: "getmoduleasync",
	NewObj: "newobj", NewArr: "newarr", SetProperty: "setproperty", SetElem: "setelem",
	GetThis: "getthis", GetOuterThis: "getouterthis", GetSuper: "getsuper",
	GetNewTarget: "getnewtarget",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}

// operandWidths gives the number of operand bytes following each opcode.
// Opcodes absent from this map take zero operand bytes.
var operandWidths = map[Opcode]int{
	CLoad: 2, CLoadD: 4,
	VarLoad: 2, VarStore: 2,
	GetGlobal: 4, SetGlobal: 4,
	PropertyLoad: 2, PropertyStore: 2,
	Goto: 2, IfEq: 2,
	Closure:       4,
	FinallyGoto:   2,
	FinallyReturn: 2,
	GetModule:     4,
}

// OperandWidth reports how many bytes of operand data follow op.
func OperandWidth(op Opcode) int {
	return operandWidths[op]
}

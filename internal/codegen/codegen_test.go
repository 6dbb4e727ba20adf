package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/parser"
	"lotusjs/value"
)

// compile parses src as a module and runs it through a fresh Generator,
// failing the test immediately on either a parse error or a compile
// diagnostic (most tests here care about the shape of the emitted
// bytecode, not error recovery).
func compile(t *testing.T, src string) *bytecode.ModuleDef {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	pool := bytecode.NewConstPool()
	diag := diagnostics.NewManager()
	g := NewGenerator(pool, diag)
	md, err := g.CompileModule("test", src, prog.Body)
	require.NoError(t, err, "unexpected compile diagnostics")
	return md
}

// compileWithError is for the error-path tests: it expects CompileModule
// to report at least one diagnostic.
func compileWithError(t *testing.T, src string) {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	pool := bytecode.NewConstPool()
	diag := diagnostics.NewManager()
	g := NewGenerator(pool, diag)
	_, err = g.CompileModule("test", src, prog.Body)
	require.Error(t, err)
}

func mnemonics(tbl *bytecode.Table) []string {
	lines := strings.Split(strings.TrimSpace(tbl.Disassembly()), "\n")
	out := make([]string, len(lines))
	for i, l := range lines {
		fields := strings.Fields(l)
		out[i] = fields[1]
	}
	return out
}

func TestVariableDeclarationEmitsStore(t *testing.T) {
	md := compile(t, "let x = 1;")
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "cload_0")
	assert.Contains(t, ops, "varstore")
}

func TestConstReassignmentIsCompileError(t *testing.T) {
	compileWithError(t, "const x = 1; x = 2;")
}

func TestIfElseEmitsBothBranches(t *testing.T) {
	md := compile(t, `
		let x = 1;
		if (x) {
			x = 2;
		} else {
			x = 3;
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "ifeq")
	assert.Contains(t, ops, "goto")
}

func TestWhileLoopBreakTargetsLoopEnd(t *testing.T) {
	md := compile(t, `
		let i = 0;
		while (i < 10) {
			if (i == 5) { break; }
			i = i + 1;
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "ifeq")
	// the while loop's own back-edge goto plus the break's goto (an if
	// without else emits none).
	count := 0
	for _, op := range ops {
		if op == "goto" {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 2)
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	compileWithError(t, "break;")
}

func TestContinueSkipsSwitchToNearestLoop(t *testing.T) {
	// continue inside a switch inside a loop must target the loop, not
	// the switch — this exercises the breakables stack's "search past
	// switch frames" rule rather than scope.JumpManager's single pointer.
	md := compile(t, `
		let i = 0;
		while (i < 3) {
			switch (i) {
				case 0:
					continue;
				default:
					i = i + 1;
			}
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "streq")
	assert.Contains(t, ops, "goto")
}

func TestForLoopWithAllClauses(t *testing.T) {
	md := compile(t, `
		let sum = 0;
		for (let i = 0; i < 10; i = i + 1) {
			sum = sum + i;
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "lt")
	assert.Contains(t, ops, "add")
}

func TestTryCatchFinallyRecordsExceptionEntry(t *testing.T) {
	md := compile(t, `
		try {
			throw 1;
		} catch (e) {
			e;
		} finally {
			2;
		}
	`)
	require.Equal(t, 1, md.Except.Len())
	entry := md.Except.Get(0)
	assert.True(t, entry.HasCatch())
	assert.True(t, entry.HasFinally())
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "trybegin")
	assert.Contains(t, ops, "tryend")
	assert.Contains(t, ops, "throw")
}

func TestReturnInsideTryFinallyUsesFinallyReturn(t *testing.T) {
	src := `
		function f() {
			try {
				return 1;
			} finally {
				2;
			}
		}
	`
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	pool := bytecode.NewConstPool()
	diag := diagnostics.NewManager()
	g := NewGenerator(pool, diag)
	_, err = g.CompileModule("test", src, prog.Body)
	require.NoError(t, err)

	var fnDef *bytecode.FunctionDef
	for i := 0; i < pool.Len(); i++ {
		v, ok := pool.Get(i).(value.Value)
		if ok && v.IsFunction() {
			fnDef = v.FunctionDef()
		}
	}
	require.NotNil(t, fnDef, "f's FunctionDef must be interned in the pool")
	ops := mnemonics(&fnDef.Code)
	assert.Contains(t, ops, "finallyreturn")
}

func TestFunctionDeclarationBindsName(t *testing.T) {
	md := compile(t, `
		function f(a, b) {
			return a + b;
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "cloadd")
	assert.Contains(t, ops, "varstore")
}

func TestArrowFunctionCapturesOuterVariable(t *testing.T) {
	md := compile(t, `
		let x = 1;
		let f = () => x;
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "closure")
}

func TestExportedVariableRegistersExportSlot(t *testing.T) {
	md := compile(t, "export let x = 1;")
	names := md.ExportVars.Names()
	require.Len(t, names, 1)
	assert.Equal(t, "x", names[0])
}

func TestDefaultFunctionExportRegistersUnderDefault(t *testing.T) {
	md := compile(t, "export default function f() { return 1; }")
	slot, ok := md.ExportVars.Slot("default")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, slot, 0)
	_, stillF := md.ExportVars.Slot("f")
	assert.False(t, stillF)
}

func TestDefaultAsyncFunctionExportRegistersUnderDefault(t *testing.T) {
	md := compile(t, "export default async function f() { return 1; }")
	_, ok := md.ExportVars.Slot("default")
	assert.True(t, ok)
}

func TestDefaultClassExportRegistersUnderDefault(t *testing.T) {
	md := compile(t, "export default class C {}")
	slot, ok := md.ExportVars.Slot("default")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, slot, 0)
}

func TestDefaultExpressionExportRegistersUnderDefault(t *testing.T) {
	md := compile(t, "export default 2 + 3;")
	_, ok := md.ExportVars.Slot("default")
	assert.True(t, ok)
}

func TestNamedExportListRegistersRenamedExport(t *testing.T) {
	md := compile(t, "let a = 1; export { a as b };")
	slot, ok := md.ExportVars.Slot("b")
	assert.True(t, ok)
	_, stillA := md.ExportVars.Slot("a")
	assert.False(t, stillA)
	assert.GreaterOrEqual(t, slot, 0)
}

func TestImportBindsLocalName(t *testing.T) {
	md := compile(t, `
		import { foo as bar } from "other";
		bar;
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "getmodule")
	assert.Contains(t, ops, "propload")
}

func TestTwoImportsFromDifferentModulesDoNotCollide(t *testing.T) {
	// each import statement allocates its own "#module" temp directly
	// via FunctionDef.AllocLocal; a second import in the same module
	// scope must not collide with the first (see module.go).
	md := compile(t, `
		import a from "one";
		import b from "two";
		a;
		b;
	`)
	ops := mnemonics(&md.Code)
	count := 0
	for _, op := range ops {
		if op == "getmodule" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestClassDeclarationCallsDefineClassHelper(t *testing.T) {
	md := compile(t, `
		class Point {
			constructor(x, y) {
				this.x = x;
			}
			getX() {
				return this.x;
			}
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "getglobal", "__defineClass is loaded as a global")
	assert.Contains(t, ops, "call")
	assert.Contains(t, ops, "propstore", "getX is attached to the prototype via PropertyStore")
}

func TestSwitchWithoutDefaultSkipsAllBodiesOnNoMatch(t *testing.T) {
	md := compile(t, `
		let x = 5;
		switch (x) {
			case 1:
				x = 10;
				break;
			case 2:
				x = 20;
				break;
		}
	`)
	ops := mnemonics(&md.Code)
	// two case tests plus the no-match skip-to-end goto plus each case's
	// break goto.
	count := 0
	for _, op := range ops {
		if op == "goto" {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 4)
}

func TestForOfLowersToIteratorHelperCalls(t *testing.T) {
	md := compile(t, `
		for (const v of [1, 2, 3]) {
			v;
		}
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "getglobal", "__forIterate is loaded as a global")
	assert.Contains(t, ops, "propload", "the iterator's next/done/value properties are read")
}

func TestMemberCompoundAssignment(t *testing.T) {
	md := compile(t, `
		let obj = {};
		obj.count += 1;
	`)
	ops := mnemonics(&md.Code)
	assert.Contains(t, ops, "propload")
	assert.Contains(t, ops, "propstore")
	assert.Contains(t, ops, "add")
}

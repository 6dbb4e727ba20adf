package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/parser"
	"lotusjs/value"
)

func compileWithPool(t *testing.T, src string) (*bytecode.ModuleDef, *bytecode.ConstPool) {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	pool := bytecode.NewConstPool()
	diag := diagnostics.NewManager()
	g := NewGenerator(pool, diag)
	md, err := g.CompileModule("test", src, prog.Body)
	require.NoError(t, err, "unexpected compile diagnostics")
	return md, pool
}

// totalCodeSize returns the total code size across the module's own table
// and every function literal in the pool, used to assert the peephole pass
// never changes a function's byte length.
func totalCodeSize(md *bytecode.ModuleDef, pool *bytecode.ConstPool) int {
	total := md.Code.Size()
	for i := 0; i < pool.Len(); i++ {
		if v, ok := pool.Get(i).(value.Value); ok && v.Kind() == value.FunctionDefRef {
			if fn := v.FunctionDef(); fn != nil {
				total += fn.Code.Size()
			}
		}
	}
	return total
}

func TestOptimizePeepholePreservesCodeSize(t *testing.T) {
	md, pool := compileWithPool(t, `
		function f(x) {
			let y = x;
			return y;
		}
		export default f(3);
	`)
	before := totalCodeSize(md, pool)
	OptimizePeephole(md, pool)
	after := totalCodeSize(md, pool)
	assert.Equal(t, before, after)
}

func countNops(code *bytecode.Table) int {
	count := 0
	pc := 0
	for pc < code.Size() {
		op := code.GetOpcode(&pc)
		pc += bytecode.OperandWidth(op)
		if op == bytecode.Nop {
			count++
		}
	}
	return count
}

// The three patterns tryNopPair recognizes don't arise from any source
// genAssignment/genExpression actually emits today (an assignment used as a
// statement always interposes a Dup between the load and the store, to
// leave the assigned value on the stack as the expression's result), so
// these build each pattern directly against the Table API rather than
// relying on a source snippet to produce it.

func TestOptimizePeepholeNopsDupPop(t *testing.T) {
	fn := bytecode.NewFunctionDef("f", 0, bytecode.FlagNormal)
	slot := fn.AllocLocal("x")
	fn.Code.EmitVarLoad(slot)
	fn.Code.EmitOpcode(bytecode.Dup)
	fn.Code.EmitOpcode(bytecode.Pop)
	fn.Code.EmitOpcode(bytecode.Return)

	optimizeFunction(fn)

	assert.Greater(t, countNops(&fn.Code), 0)
}

func TestOptimizePeepholeNopsSwapSwap(t *testing.T) {
	fn := bytecode.NewFunctionDef("f", 0, bytecode.FlagNormal)
	fn.AllocLocal("x")
	fn.Code.EmitOpcode(bytecode.Undefined)
	fn.Code.EmitOpcode(bytecode.Undefined)
	fn.Code.EmitOpcode(bytecode.Swap)
	fn.Code.EmitOpcode(bytecode.Swap)
	fn.Code.EmitOpcode(bytecode.Pop)
	fn.Code.EmitOpcode(bytecode.Return)

	optimizeFunction(fn)

	assert.Greater(t, countNops(&fn.Code), 0)
}

func TestOptimizePeepholeNopsRedundantSelfStore(t *testing.T) {
	fn := bytecode.NewFunctionDef("f", 1, bytecode.FlagNormal)
	slot := fn.AllocLocal("x")
	fn.Code.EmitVarLoad(slot)
	fn.Code.EmitVarStore(slot)
	fn.Code.EmitOpcode(bytecode.Undefined)
	fn.Code.EmitOpcode(bytecode.Return)

	optimizeFunction(fn)

	nopCount := countNops(&fn.Code)
	assert.Greater(t, nopCount, 0, "expected the redundant VarLoad/VarStore pair to be nopped out")
}

func TestOptimizePeepholeLeavesDistinctSlotsAlone(t *testing.T) {
	fn := bytecode.NewFunctionDef("f", 2, bytecode.FlagNormal)
	x := fn.AllocLocal("x")
	y := fn.AllocLocal("y")
	fn.Code.EmitVarLoad(x)
	fn.Code.EmitVarStore(y)
	fn.Code.EmitOpcode(bytecode.Undefined)
	fn.Code.EmitOpcode(bytecode.Return)

	optimizeFunction(fn)

	assert.Equal(t, 0, countNops(&fn.Code))
}

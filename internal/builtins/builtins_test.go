package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/value"
	"lotusjs/vm"
)

func newTestContext(t *testing.T) *vm.Context {
	t.Helper()
	rt := vm.NewRuntime(vm.DefaultRuntimeOptions())
	c := vm.NewContext(rt, vm.DefaultContextOptions())
	Install(c)
	return c
}

func eval(t *testing.T, src string) value.Value {
	t.Helper()
	c := newTestContext(t)
	v, err := c.Eval("test", src)
	require.NoError(t, err)
	c.DrainMicrotasks()
	return v
}

func TestMathFloorAndPow(t *testing.T) {
	v := eval(t, "export default Math.floor(Math.pow(2, 10) / 100);")
	assert.Equal(t, float64(10), v.Float64())
}

func TestMathMaxMin(t *testing.T) {
	v := eval(t, "export default Math.max(1, 9, 3) + Math.min(1, 9, 3);")
	assert.Equal(t, float64(10), v.Float64())
}

func TestJSONStringifyRoundTripsArray(t *testing.T) {
	v := eval(t, `export default JSON.stringify([1, "a", true]);`)
	assert.Equal(t, `[1,"a",true]`, v.Str())
}

func TestJSONParseReturnsUsableValue(t *testing.T) {
	v := eval(t, `
		let obj = JSON.parse('{"x": 1, "y": 2}');
		export default obj.x + obj.y;
	`)
	assert.Equal(t, int64(3), v.Int64())
}

func TestRegExpTestAlwaysFalse(t *testing.T) {
	v := eval(t, `
		let re = new RegExp("abc", "g");
		export default re.test("abc");
	`)
	assert.False(t, v.Boolean())
}

func TestConsoleLogDoesNotThrow(t *testing.T) {
	v := eval(t, `
		console.log("hello", 1, true);
		export default "ok";
	`)
	assert.Equal(t, "ok", v.Str())
}

func TestForOfIteratesArrayElements(t *testing.T) {
	v := eval(t, `
		let sum = 0;
		for (const x of [1, 2, 3]) {
			sum = sum + x;
		}
		export default sum;
	`)
	assert.Equal(t, int64(6), v.Int64())
}

func TestForInIteratesObjectKeys(t *testing.T) {
	v := eval(t, `
		let obj = { a: 1, b: 2 };
		let keys = "";
		for (const k in obj) {
			keys = keys + k;
		}
		export default keys;
	`)
	assert.Contains(t, v.Str(), "a")
	assert.Contains(t, v.Str(), "b")
}

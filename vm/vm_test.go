package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/value"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	rt := NewRuntime(DefaultRuntimeOptions())
	return NewContext(rt, DefaultContextOptions())
}

func eval(t *testing.T, src string) value.Value {
	t.Helper()
	c := newTestContext(t)
	v, err := c.Eval("test", src)
	require.NoError(t, err)
	c.DrainMicrotasks()
	return v
}

func TestArithmeticEvaluatesLeftToRight(t *testing.T) {
	v := eval(t, "export default 2 + 3 * 4;")
	assert.Equal(t, int64(14), v.Int64())
}

func TestStringConcatenation(t *testing.T) {
	v := eval(t, `export default "foo" + "bar";`)
	assert.Equal(t, "foobar", v.Str())
}

func TestFunctionCallAndReturn(t *testing.T) {
	v := eval(t, `
		function add(a, b) { return a + b; }
		export default add(3, 4);
	`)
	assert.Equal(t, int64(7), v.Int64())
}

func TestClosureCapturesOuterVariableByReference(t *testing.T) {
	v := eval(t, `
		function makeCounter() {
			let n = 0;
			return function () {
				n = n + 1;
				return n;
			};
		}
		let counter = makeCounter();
		counter();
		counter();
		export default counter();
	`)
	assert.Equal(t, int64(3), v.Int64())
}

func TestTwoClosuresShareOneCapturedCell(t *testing.T) {
	v := eval(t, `
		function makePair() {
			let n = 0;
			return [function () { n = n + 10; return n; },
			        function () { return n; }];
		}
		let pair = makePair();
		let bump = pair[0];
		let read = pair[1];
		bump();
		export default read();
	`)
	assert.Equal(t, int64(10), v.Int64())
}

func TestGeneratorYieldsAndResumes(t *testing.T) {
	v := eval(t, `
		function* gen() {
			yield 1;
			yield 2;
			return 3;
		}
		let g = gen();
		let a = g.next().value;
		let b = g.next().value;
		let c = g.next();
		export default a + b + c.value;
	`)
	assert.Equal(t, int64(6), v.Int64())
}

func TestClassInstanceMethodSeesOwnFields(t *testing.T) {
	v := eval(t, `
		class Point {
			constructor(x, y) {
				this.x = x;
				this.y = y;
			}
			sum() {
				return this.x + this.y;
			}
		}
		let p = new Point(2, 5);
		export default p.sum();
	`)
	assert.Equal(t, int64(7), v.Int64())
}

func TestClassInstanceFieldsAreSeparatePerInstance(t *testing.T) {
	v := eval(t, `
		class Bag {
			items = [];
		}
		let a = new Bag();
		let b = new Bag();
		a.items.push(1);
		export default b.items.length;
	`)
	assert.Equal(t, int64(0), v.Int64())
}

func TestClassInstanceFieldDefaultsToUndefinedWithoutInitializer(t *testing.T) {
	v := eval(t, `
		class Box {
			value;
		}
		let b = new Box();
		export default b.value === undefined;
	`)
	assert.True(t, v.Boolean())
}

func TestClassInstanceFieldInitializerRunsBeforeConstructorBody(t *testing.T) {
	v := eval(t, `
		class Counter {
			count = 1;
			constructor() {
				this.count = this.count + 1;
			}
		}
		export default new Counter().count;
	`)
	assert.Equal(t, int64(2), v.Int64())
}

func TestClassStaticFieldLivesOnConstructorNotPrototype(t *testing.T) {
	v := eval(t, `
		class Config {
			static version = 3;
		}
		let c = new Config();
		export default Config.version + (c.version === undefined ? 0 : 100);
	`)
	assert.Equal(t, int64(3), v.Int64())
}

func TestClassStaticMethodCallableOnConstructor(t *testing.T) {
	v := eval(t, `
		class MathUtil {
			static double(x) { return x * 2; }
		}
		export default MathUtil.double(21);
	`)
	assert.Equal(t, int64(42), v.Int64())
}

func TestClassInheritanceSharesPrototypeChain(t *testing.T) {
	v := eval(t, `
		class Animal {
			constructor(name) { this.name = name; }
			speak() { return this.name + " makes a sound"; }
		}
		class Dog extends Animal {
			speak() { return this.name + " barks"; }
		}
		let d = new Dog("Rex");
		export default d.speak();
	`)
	assert.Equal(t, "Rex barks", v.Str())
}

func TestTryCatchRecoversFromThrow(t *testing.T) {
	v := eval(t, `
		function risky() { throw "boom"; }
		let caught = "";
		try {
			risky();
		} catch (e) {
			caught = e;
		}
		export default caught;
	`)
	assert.Equal(t, "boom", v.Str())
}

func TestTryFinallyRunsOnNormalReturn(t *testing.T) {
	v := eval(t, `
		function f() {
			let log = "";
			try {
				log = log + "a";
				return log;
			} finally {
				log = log + "b";
			}
		}
		export default f();
	`)
	assert.Equal(t, "a", v.Str())
}

func TestAsyncFunctionResolvesPromiseAfterAwait(t *testing.T) {
	c := newTestContext(t)
	v, err := c.Eval("test", `
		async function f() {
			let x = await 41;
			return x + 1;
		}
		export default f();
	`)
	require.NoError(t, err)
	c.DrainMicrotasks()
	p, ok := v.Object().(*value.PromiseObject)
	require.True(t, ok)
	assert.True(t, p.IsFulfilled())
	assert.Equal(t, int64(42), p.Result().Int64())
}

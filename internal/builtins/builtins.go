// Package builtins wires the minimal illustrative global surface
// internal/codegen already assumes exists — `RegExp`, `__defineClass`,
// `__forEnumerate`, `__forIterate` — plus a console/Math/JSON namespace
// sufficient to drive the end-to-end scenarios spec.md §8 describes.
// This is deliberately not a port of Lotus's 7,600-line stdlib.go: that
// file targets x86-64 assembly emission and has no bytecode-VM analogue
// (see DESIGN.md).
package builtins

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"lotusjs/value"
	"lotusjs/vm"
)

// Install attaches every builtin this package provides to c's global
// object. Called once per Context, after vm.NewContext.
func Install(c *vm.Context) {
	installConsole(c)
	installMath(c)
	installJSON(c)
	c.AddNativeFunction("RegExp", regexpCtor)
	c.AddNativeFunction("__defineClass", defineClass)
	c.AddNativeFunction("__forEnumerate", forEnumerate)
	c.AddNativeFunction("__forIterate", forIterate)
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef()
}

// installConsole wires a `console` namespace object with log/error/warn/
// info all aliasing the same plain-text writer, the way Lotus's own
// diagnostics layer renders everything through one formatter regardless
// of severity.
func installConsole(c *vm.Context) {
	console := c.NewPlainObject()
	logFn := c.NewNativeFunction("log", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.ToDisplayString()
		}
		ctx.Logger.Print(strings.Join(parts, " "))
		return value.Undef(), nil
	})
	console.Set("log", logFn)
	console.Set("error", logFn)
	console.Set("warn", logFn)
	console.Set("info", logFn)
	c.Global.Set("console", value.Obj(value.Object, console))
}

func installMath(c *vm.Context) {
	m := c.NewPlainObject()
	m.Set("PI", value.Float(math.Pi))
	m.Set("E", value.Float(math.E))
	unary := func(name string, fn func(float64) float64) {
		m.Set(name, c.NewNativeFunction(name, func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
			return value.Float(fn(arg(args, 0).Float64())), nil
		}))
	}
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", math.Round)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("abs", math.Abs)
	unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	m.Set("pow", c.NewNativeFunction("pow", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Float(math.Pow(arg(args, 0).Float64(), arg(args, 1).Float64())), nil
	}))
	m.Set("max", c.NewNativeFunction("max", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Float(math.Inf(-1)), nil
		}
		best := args[0].Float64()
		for _, a := range args[1:] {
			if f := a.Float64(); f > best {
				best = f
			}
		}
		return value.Float(best), nil
	}))
	m.Set("min", c.NewNativeFunction("min", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Float(math.Inf(1)), nil
		}
		best := args[0].Float64()
		for _, a := range args[1:] {
			if f := a.Float64(); f < best {
				best = f
			}
		}
		return value.Float(best), nil
	}))
	m.Set("random", c.NewNativeFunction("random", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Float(rand.Float64()), nil
	}))
	c.Global.Set("Math", value.Obj(value.Object, m))
}

func installJSON(c *vm.Context) {
	j := c.NewPlainObject()
	j.Set("stringify", c.NewNativeFunction("stringify", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(stringify(arg(args, 0))), nil
	}))
	j.Set("parse", c.NewNativeFunction("parse", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		v, rest, err := parseJSON(ctx, strings.TrimSpace(arg(args, 0).Str()))
		if err != nil {
			return value.Undef(), err
		}
		if strings.TrimSpace(rest) != "" {
			return value.Undef(), fmt.Errorf("JSON.parse: unexpected trailing input")
		}
		return v, nil
	}))
	c.Global.Set("JSON", value.Obj(value.Object, j))
}

// stringify is a minimal JSON serializer covering the primitive/array/
// plain-object cases spec §8's scenarios exercise; it does not call
// user-defined toJSON()/replacer hooks.
func stringify(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "null"
	case v.IsNull():
		return "null"
	case v.IsBoolean():
		return v.ToDisplayString()
	case v.IsNumber():
		return v.ToDisplayString()
	case v.IsString():
		return strconv.Quote(v.Str())
	}
	if arr, ok := v.Object().(*value.ArrayObject); ok {
		parts := make([]string, arr.Length())
		for i, e := range arr.Elements() {
			parts[i] = stringify(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	if base, ok := v.Object().(interface{ Base() *value.Object }); ok {
		obj := base.Base()
		keys := obj.Properties().Keys()
		sort.Strings(keys) // deterministic output; JS insertion order not preserved here
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			pv, _ := obj.Get(k)
			parts = append(parts, strconv.Quote(k)+":"+stringify(pv))
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return "null"
}

// parseJSON is a small recursive-descent JSON reader good enough for the
// object/array/primitive shapes JSON.stringify above produces; it is not
// a standards-complete parser (no \uXXXX escapes, no exponent-less
// number edge cases beyond strconv.ParseFloat's own).
func parseJSON(c *vm.Context, s string) (value.Value, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return value.Undef(), "", fmt.Errorf("JSON.parse: unexpected end of input")
	}
	switch {
	case strings.HasPrefix(s, "null"):
		return value.Nil(), s[4:], nil
	case strings.HasPrefix(s, "true"):
		return value.Bool(true), s[4:], nil
	case strings.HasPrefix(s, "false"):
		return value.Bool(false), s[5:], nil
	case s[0] == '"':
		return parseJSONString(s)
	case s[0] == '[':
		return parseJSONArray(c, s)
	case s[0] == '{':
		return parseJSONObject(c, s)
	default:
		return parseJSONNumber(s)
	}
}

func parseJSONString(s string) (value.Value, string, error) {
	var b strings.Builder
	i := 1
	for i < len(s) && s[i] != '"' {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\', '/':
				b.WriteByte(s[i])
			default:
				b.WriteByte(s[i])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	if i >= len(s) {
		return value.Undef(), "", fmt.Errorf("JSON.parse: unterminated string")
	}
	return value.Str(b.String()), s[i+1:], nil
}

func parseJSONNumber(s string) (value.Value, string, error) {
	i := 0
	for i < len(s) && strings.ContainsRune("+-0123456789.eE", rune(s[i])) {
		i++
	}
	if i == 0 {
		return value.Undef(), "", fmt.Errorf("JSON.parse: unexpected token %q", s[:1])
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return value.Undef(), "", err
	}
	return value.Float(f), s[i:], nil
}

func parseJSONArray(c *vm.Context, s string) (value.Value, string, error) {
	s = strings.TrimSpace(s[1:])
	var elems []value.Value
	for {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "]") {
			s = s[1:]
			break
		}
		v, rest, err := parseJSON(c, s)
		if err != nil {
			return value.Undef(), "", err
		}
		elems = append(elems, v)
		s = strings.TrimSpace(rest)
		if strings.HasPrefix(s, ",") {
			s = s[1:]
			continue
		}
		if strings.HasPrefix(s, "]") {
			s = s[1:]
			break
		}
		return value.Undef(), "", fmt.Errorf("JSON.parse: expected ',' or ']'")
	}
	arr := value.NewArrayFromValues(c.Runtime.ArrayPrototype, elems)
	c.Heap.Register(arr)
	return value.Obj(value.Array, arr), s, nil
}

func parseJSONObject(c *vm.Context, s string) (value.Value, string, error) {
	s = strings.TrimSpace(s[1:])
	obj := c.NewPlainObject()
	for {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "}") {
			s = s[1:]
			break
		}
		if s == "" || s[0] != '"' {
			return value.Undef(), "", fmt.Errorf("JSON.parse: expected string key")
		}
		keyVal, rest, err := parseJSONString(s)
		if err != nil {
			return value.Undef(), "", err
		}
		s = strings.TrimSpace(rest)
		if !strings.HasPrefix(s, ":") {
			return value.Undef(), "", fmt.Errorf("JSON.parse: expected ':'")
		}
		v, rest2, err := parseJSON(c, strings.TrimSpace(s[1:]))
		if err != nil {
			return value.Undef(), "", err
		}
		obj.Set(keyVal.Str(), v)
		s = strings.TrimSpace(rest2)
		if strings.HasPrefix(s, ",") {
			s = s[1:]
			continue
		}
		if strings.HasPrefix(s, "}") {
			s = s[1:]
			break
		}
		return value.Undef(), "", fmt.Errorf("JSON.parse: expected ',' or '}'")
	}
	return value.Obj(value.Object, obj), s, nil
}

// regexpCtor backs `new RegExp(pattern, flags)` and the regex-literal
// lowering in internal/codegen/expr.go's genRegexLiteral. This engine
// has no actual pattern-matching implementation behind it (spec.md's
// Non-goals leave regex semantics unspecified beyond literal parsing);
// the constructed object stores `source`/`flags` and exposes a `test`
// method that always reports no match, so regex-using code at least
// runs instead of crashing on an undefined global.
func regexpCtor(c *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := this.Object().(*value.Object)
	if !ok {
		obj = c.NewPlainObject()
	}
	obj.Set("source", arg(args, 0))
	obj.Set("flags", arg(args, 1))
	obj.Set("test", c.NewNativeFunction("test", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(false), nil
	}))
	return value.Obj(value.Object, obj), nil
}

// defineClass backs genClassLiteral's `__defineClass(ctor, superclass)`
// call: genFunctionLiteral hands it a plain FunctionObject (the VM's
// Closure opcode has no way to know a function literal is a class
// constructor — there is no dedicated FunctionDef flag for it), so this
// helper is what actually promotes it into a *value.ConstructorObject
// with a fresh instance prototype (chained to superclass's instance
// prototype when `extends` was used, otherwise to Object.prototype).
// The instance prototype is set BOTH as ConstructorObject.InstancePrototype
// (doCall's `new` fast path) and as an ordinary "prototype" property
// (genClassLiteral immediately does `Dup; PropertyLoad "prototype"` on
// the returned value to attach methods, an ordinary property
// read with no knowledge of that struct field).
func defineClass(c *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
	ctor := arg(args, 0)
	super := arg(args, 1)
	fn, ok := ctor.Object().(*value.FunctionObject)
	if !ok {
		return ctor, nil
	}

	instanceProto := c.Runtime.ObjectPrototype
	if super.IsFunction() {
		if superFn, ok := super.Object().(interface{ Base() *value.Object }); ok {
			if p, ok := superFn.Base().Get("prototype"); ok {
				instanceProto = p
			}
		}
	}
	protoObj := c.NewPlainObject()
	protoObj.SetPrototype(instanceProto)

	ctorObj := value.NewConstructorFunc(c.Runtime.FunctionPrototype, value.Obj(value.Object, protoObj), fn.Def, fn.ClosureEnv)
	ctorObj.Set("prototype", value.Obj(value.Object, protoObj))
	protoObj.Set("constructor", value.Obj(value.NewConstructor, ctorObj))
	c.Heap.Register(ctorObj)
	return value.Obj(value.NewConstructor, ctorObj), nil
}

// forEnumerate backs for-in: a snapshot of obj's own-then-inherited
// string-keyed property names (SUPPLEMENTED FEATURES: enumeration order
// is insertion order, properties added mid-iteration are not visited),
// exposed as a `{ next() }` iterator per internal/codegen/control.go's
// genForIn contract.
func forEnumerate(c *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
	obj := arg(args, 0)
	seen := map[string]bool{}
	var keys []string
	base, ok := obj.Object().(interface{ Base() *value.Object })
	if !ok {
		if o, ok2 := obj.Object().(*value.Object); ok2 {
			base = o
		}
	}
	for cur := base; cur != nil; {
		b := cur.Base()
		for _, k := range b.Properties().Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		protoBase, ok := b.Prototype().Object().(interface{ Base() *value.Object })
		if !ok {
			break
		}
		cur = protoBase
	}
	return makeValueIterator(c, stringsToValues(keys)), nil
}

// forIterate backs for-of: arrays iterate their dense elements, strings
// iterate by rune, everything else (no user-defined Symbol.iterator
// support in this engine) iterates as empty.
func forIterate(c *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
	obj := arg(args, 0)
	if arr, ok := obj.Object().(*value.ArrayObject); ok {
		return makeValueIterator(c, append([]value.Value(nil), arr.Elements()...)), nil
	}
	if obj.IsString() {
		runes := []rune(obj.Str())
		vals := make([]value.Value, len(runes))
		for i, r := range runes {
			vals[i] = value.Str(string(r))
		}
		return makeValueIterator(c, vals), nil
	}
	return makeValueIterator(c, nil), nil
}

func stringsToValues(ss []string) []value.Value {
	vals := make([]value.Value, len(ss))
	for i, s := range ss {
		vals[i] = value.Str(s)
	}
	return vals
}

// makeValueIterator builds a plain object exposing a `next()` native
// method that walks a fixed, pre-materialized slice of values — the
// minimal iterator-protocol shape genForIn's loop needs (`.next()`
// returning `{ value, done }`).
func makeValueIterator(c *vm.Context, vals []value.Value) value.Value {
	obj := c.NewPlainObject()
	i := 0
	obj.Set("next", c.NewNativeFunction("next", func(ctx *vm.Context, this value.Value, args []value.Value) (value.Value, error) {
		res := ctx.NewPlainObject()
		if i < len(vals) {
			res.Set("value", vals[i])
			res.Set("done", value.Bool(false))
			i++
		} else {
			res.Set("value", value.Undef())
			res.Set("done", value.Bool(true))
		}
		return value.Obj(value.Object, res), nil
	}))
	return value.Obj(value.Object, obj)
}

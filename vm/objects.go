package vm

import (
	"strconv"

	"lotusjs/value"
)

// baseObjectOf extracts the embedded *value.Object from any object-kinded
// Value's ref payload, the same way value.protoObject does internally
// for prototype-chain walks (that helper is unexported, so property
// dispatch here re-implements the same type switch against the
// concrete subtypes this package needs to special-case: arrays read
// their dense vector first, everything else just uses the property
// map).
func baseObjectOf(ref any) *value.Object {
	switch o := ref.(type) {
	case *value.Object:
		return o
	case interface{ Base() *value.Object }:
		return o.Base()
	default:
		return nil
	}
}

// getProperty implements PropertyLoad/IndexedLoad: array dense-index and
// "length" fast paths, string "length", then the ordinary prototype-
// chain property lookup every other object kind shares.
func (c *Context) getProperty(obj value.Value, name string) (value.Value, *JSError) {
	if obj.IsNullish() {
		return value.Undef(), &JSError{Value: c.newTypeError("Cannot read properties of " + obj.ToDisplayString() + " (reading '" + name + "')")}
	}
	if obj.IsString() {
		if name == "length" {
			return value.Int(int64(len([]rune(obj.Str())))), nil
		}
		if i, err := strconv.Atoi(name); err == nil {
			runes := []rune(obj.Str())
			if i >= 0 && i < len(runes) {
				return value.Str(string(runes[i])), nil
			}
		}
		return value.Undef(), nil
	}
	if arr, ok := obj.Object().(*value.ArrayObject); ok {
		if name == "length" {
			return value.Int(int64(arr.Length())), nil
		}
		if i, err := strconv.Atoi(name); err == nil && i >= 0 {
			v, found := arr.GetComputedProperty(value.Int(int64(i)))
			if found {
				return v, nil
			}
			return value.Undef(), nil
		}
		if v, found := arr.Base().GetWithPrototypeChain(name); found {
			return v, nil
		}
		return value.Undef(), nil
	}
	if nf, ok := obj.Object().(*nativeFunction); ok {
		if v, found := nf.Base().GetWithPrototypeChain(name); found {
			return v, nil
		}
		return value.Undef(), nil
	}
	base := baseObjectOf(obj.Object())
	if base == nil {
		return value.Undef(), nil
	}
	v, _ := base.GetWithPrototypeChain(name)
	return v, nil
}

// rawGetProperty is getProperty without the nullish-receiver TypeError,
// for internal lookups (instanceof, super resolution) that already know
// obj is an object.
func (c *Context) rawGetProperty(obj value.Value, name string) (value.Value, bool) {
	base := baseObjectOf(obj.Object())
	if base == nil {
		return value.Undef(), false
	}
	return base.GetWithPrototypeChain(name)
}

func (c *Context) setProperty(obj value.Value, name string, v value.Value) {
	if arr, ok := obj.Object().(*value.ArrayObject); ok {
		if name == "length" {
			n := int(v.Int64())
			for arr.Length() > n {
				arr.Pop()
			}
			for arr.Length() < n {
				arr.Push(value.Undef())
			}
			return
		}
		if i, err := strconv.Atoi(name); err == nil && i >= 0 {
			arr.SetAt(i, v)
			c.writeBarrierFor(obj, v)
			return
		}
		arr.Base().Set(name, v)
		c.writeBarrierFor(obj, v)
		return
	}
	base := baseObjectOf(obj.Object())
	if base == nil {
		return
	}
	base.Set(name, v)
	c.writeBarrierFor(obj, v)
}

func (c *Context) writeBarrierFor(container value.Value, v value.Value) {
	if ref := container.Object(); ref != nil {
		c.Heap.WriteBarrier(ref, v)
	}
}

func (c *Context) deleteProperty(obj value.Value, name string) bool {
	base := baseObjectOf(obj.Object())
	if base == nil {
		return true
	}
	return base.Delete(name)
}

func (c *Context) hasProperty(obj value.Value, name string) bool {
	if arr, ok := obj.Object().(*value.ArrayObject); ok {
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < arr.Length() {
			return true
		}
	}
	_, ok := c.rawGetProperty(obj, name)
	return ok
}

// buildObjectLiteral pops 2*count stack slots (key/value pairs in
// source order, each either an ordinary [key, value] pair or a
// [spreadSource, Undefined] spread marker per genObjectLiteral's
// convention) and assembles them into a fresh plain object.
//
// A literal property whose value is itself literally `undefined` (e.g.
// `{a: undefined}`) is indistinguishable from a spread marker under
// this convention and will be misread as "spread the key slot" — an
// inherited ambiguity from the code generator's encoding, not fixable
// here without a new opcode operand or Value tag; see DESIGN.md.
func (c *Context) buildObjectLiteral(count int) value.Value {
	type pair struct{ first, second value.Value }
	pairs := make([]pair, count)
	for i := count - 1; i >= 0; i-- {
		second := c.pop()
		first := c.pop()
		pairs[i] = pair{first, second}
	}
	obj := value.NewObject(value.ClassObject, c.Runtime.ObjectPrototype)
	for _, p := range pairs {
		if p.second.IsUndefined() {
			c.mergeSpread(obj, p.first)
			continue
		}
		obj.Set(p.first.ToDisplayString(), p.second)
	}
	c.registerObject(obj)
	return value.Obj(value.Object, obj)
}

func (c *Context) mergeSpread(dst *value.Object, src value.Value) {
	if arr, ok := src.Object().(*value.ArrayObject); ok {
		for i, v := range arr.Elements() {
			dst.Set(strconv.Itoa(i), v)
		}
		return
	}
	base := baseObjectOf(src.Object())
	if base == nil {
		return
	}
	for _, k := range base.Properties().Keys() {
		v, _ := base.Get(k)
		dst.Set(k, v)
	}
}

// buildArrayLiteral pops count values (in source order) into a dense
// array. genArrayLiteral pushes spread elements inline with no
// distinguishing marker, so — unlike object literals — there is
// currently no bytecode-level signal telling NewArr which popped values
// came from a `...spread` versus an ordinary element; every element is
// therefore treated as a single array slot. See DESIGN.md.
func (c *Context) buildArrayLiteral(count int) value.Value {
	elems := make([]value.Value, count)
	for i := count - 1; i >= 0; i-- {
		elems[i] = c.pop()
	}
	arr := value.NewArrayFromValues(c.Runtime.ArrayPrototype, elems)
	c.registerObject(arr)
	return value.Obj(value.Array, arr)
}

// getSuper resolves the `super` reference used for method/property
// access: one step further up the prototype chain than fr.This's own
// prototype (home-object based `super` resolution, simplified — this
// engine does not track a per-method "home object" distinct from
// `this`, so a super call inside a method inherited from a grandparent
// class resolves relative to the instance's own class rather than the
// method's defining class).
func (c *Context) getSuper(fr *Frame) value.Value {
	base := baseObjectOf(fr.This.Object())
	if base == nil {
		return value.Undef()
	}
	ownProto := baseObjectOf(base.Prototype().Object())
	if ownProto == nil {
		return value.Undef()
	}
	return ownProto.Prototype()
}

// instanceOf implements `lhs instanceof rhs`: rhs must be a callable
// with a `prototype` property; lhs must have that exact object
// somewhere in its own prototype chain.
func (c *Context) instanceOf(lhs, rhs value.Value) bool {
	if !rhs.IsFunction() {
		return false
	}
	ctorProto, ok := c.rawGetProperty(rhs, "prototype")
	if !ok {
		return false
	}
	target := ctorProto.Object()
	if target == nil {
		return false
	}
	cur := baseObjectOf(lhs.Object())
	for cur != nil {
		protoRef := cur.Prototype().Object()
		if protoRef == target {
			return true
		}
		cur = baseObjectOf(protoRef)
	}
	return false
}

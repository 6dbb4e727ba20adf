package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lotusjs/internal/bytecode"
)

// Value is the engine's tagged value. Unlike the 16-byte packed C++
// union spec.md §4.4 describes, Go gives no portable way to overlay a
// float64/int64/pointer in one word without `unsafe`, so this is an
// ordinary tagged struct: a Kind, a 64-bit payload for
// boolean/int64/uint64/float64, a string payload for
// string/string_view/symbol-name, and a GC-managed reference payload
// (*Object or a closure-env cell) for everything else. The VM still
// treats Values as copied-by-value on the operand stack exactly as the
// spec requires; only the in-memory representation differs from a
// literal translation.
type Value struct {
	kind Kind
	bits uint64 // bool/int64/uint64/float64 payload, reinterpreted per kind
	str  string // string/string_view/symbol-name payload
	ref  any    // *Object (or a subtype), *bytecode.FunctionDef, or nil

	// exception marks a Value propagated through the interpreter's
	// return-value slots as a thrown error rather than a normal result
	// (spec.md §4.4: "One flag bit marks an exception-carrying value").
	exception bool
}

func Undef() Value   { return Value{kind: Undefined} }
func Nil() Value      { return Value{kind: Null} }
func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{kind: Boolean, bits: bits}
}
func Int(i int64) Value       { return Value{kind: Int64, bits: uint64(i)} }
func UintVal(u uint64) Value  { return Value{kind: Uint64, bits: u} }
func Float(f float64) Value   { return Value{kind: Float64, bits: math.Float64bits(f)} }
func Str(s string) Value      { return Value{kind: String, str: s} }
func StrView(s string) Value  { return Value{kind: StringView, str: s} }
// symbolIdentity gives each Sym() call a distinct, comparable identity:
// two symbols with the same description are still different symbols, per
// JS semantics, so identity must not be derived from the description
// text.
type symbolIdentity struct{ desc string }

func Sym(desc string) Value {
	return Value{kind: Symbol, str: desc, ref: &symbolIdentity{desc: desc}}
}
func BigIntVal(s string) Value { return Value{kind: BigInt, str: s} }

// Obj wraps any Object subtype (the embedding *Object itself, or
// *ArrayObject/*FunctionObject/... which all embed Object) behind the
// Kind that matches its concrete type.
func Obj(kind Kind, o any) Value { return Value{kind: kind, ref: o} }

// FuncDefVal wraps a raw FunctionDef constant-pool entry (see
// Kind.FunctionDefRef).
func FuncDefVal(fn *bytecode.FunctionDef) Value {
	return Value{kind: FunctionDefRef, ref: fn}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == Undefined }
func (v Value) IsNull() bool      { return v.kind == Null }
func (v Value) IsNullish() bool   { return v.kind == Undefined || v.kind == Null }
func (v Value) IsBoolean() bool   { return v.kind == Boolean }
func (v Value) IsNumber() bool    { return v.kind == Int64 || v.kind == Uint64 || v.kind == Float64 }
func (v Value) IsString() bool    { return v.kind == String || v.kind == StringView }
func (v Value) IsSymbol() bool    { return v.kind == Symbol }
func (v Value) IsBigInt() bool    { return v.kind == BigInt }
func (v Value) IsObject() bool {
	switch v.kind {
	case Object, Function, Array, Generator, Async, Promise, Module, CppModule, NewConstructor:
		return true
	default:
		return false
	}
}
func (v Value) IsFunction() bool {
	return v.kind == Function || v.kind == NewConstructor || v.kind == FunctionDefRef
}

func (v Value) Boolean() bool { return v.bits != 0 }

func (v Value) Int64() int64 {
	switch v.kind {
	case Int64:
		return int64(v.bits)
	case Uint64:
		return int64(v.bits)
	case Float64:
		return int64(math.Float64frombits(v.bits))
	default:
		return 0
	}
}

func (v Value) Uint64() uint64 { return v.bits }

func (v Value) Float64() float64 {
	switch v.kind {
	case Float64:
		return math.Float64frombits(v.bits)
	case Int64:
		return float64(int64(v.bits))
	case Uint64:
		return float64(v.bits)
	case String, StringView:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case Boolean:
		if v.bits != 0 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Str() string { return v.str }

// Object returns the ref payload for object-kinded Values (nil
// otherwise). Callers type-assert to the concrete subtype they expect
// (*Object, *ArrayObject, *FunctionObject, ...).
func (v Value) Object() any { return v.ref }

func (v Value) FunctionDef() *bytecode.FunctionDef {
	fn, _ := v.ref.(*bytecode.FunctionDef)
	return fn
}

// IsException reports whether this Value is being propagated as a
// thrown error through an interpreter return-value slot.
func (v Value) IsException() bool { return v.exception }

// AsException returns a copy of v tagged as exception-carrying.
func (v Value) AsException() Value {
	v.exception = true
	return v
}

// TypeofString implements the `typeof` operator (spec.md §4.6: "Typeof
// returns undefined/boolean/number/string/symbol/object/function").
func (v Value) TypeofString() string { return v.kind.String() }

// ToBoolean implements JS truthiness coercion for conditional tests.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case Undefined, Null:
		return false
	case Boolean:
		return v.Boolean()
	case Int64, Uint64:
		return v.bits != 0
	case Float64:
		f := v.Float64()
		return f != 0 && !math.IsNaN(f)
	case String, StringView:
		return v.str != ""
	default:
		return true
	}
}

// ToDisplayString renders v for string concatenation / template
// literals / console output — not a full ECMA ToString (no user-defined
// toString() dispatch; that belongs to the VM, which has the call
// machinery this package deliberately does not).
func (v Value) ToDisplayString() string {
	switch v.kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		if v.Boolean() {
			return "true"
		}
		return "false"
	case Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case Uint64:
		return strconv.FormatUint(v.bits, 10)
	case Float64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case String, StringView:
		return v.str
	case Symbol:
		return "Symbol(" + v.str + ")"
	case BigInt:
		return v.str + "n"
	default:
		return fmt.Sprintf("[object %s]", v.kind)
	}
}

// ConstKey makes Value satisfy bytecode.ConstValue: primitives and
// interned strings dedup by content, objects/function-defs by identity
// (spec.md §4.4: "deduplicated by structural equality across
// primitives/interned strings/function-defs").
func (v Value) ConstKey() string {
	switch v.kind {
	case Undefined, Null:
		return v.kind.String()
	case Boolean:
		return fmt.Sprintf("b:%v", v.Boolean())
	case Int64:
		return fmt.Sprintf("i:%d", v.Int64())
	case Uint64:
		return fmt.Sprintf("u:%d", v.bits)
	case Float64:
		return fmt.Sprintf("f:%x", v.bits)
	case String, StringView:
		return fmt.Sprintf("s:%s", v.str)
	case Symbol:
		return fmt.Sprintf("y:%p", v.ref)
	case BigInt:
		return fmt.Sprintf("n:%s", v.str)
	case FunctionDefRef:
		return fmt.Sprintf("fn:%p", v.ref)
	default:
		return fmt.Sprintf("o:%p", v.ref)
	}
}

package value

// ClassID indexes into a Runtime's class-def table (spec.md §4.4: "An
// Object has: class id ... prototype ... property map").
type ClassID int

const (
	ClassObject ClassID = iota
	ClassArray
	ClassFunction
	ClassGenerator
	ClassAsync
	ClassPromise
	ClassModule
	ClassError
)

// PropertyMap is an insertion-ordered string-keyed map, since JS
// property enumeration order is insertion order for string keys
// (spec.md §4.4 and the for-in Open Question resolution in
// SPEC_FULL.md). Symbol-keyed properties use the symbol's description as
// the map key here — true symbol-identity keying belongs to the VM's
// interning layer, out of scope for this plain data structure.
type PropertyMap struct {
	keys   []string
	values map[string]Value
}

func newPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string]Value)}
}

func (m *PropertyMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *PropertyMap) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *PropertyMap) Delete(key string) bool {
	if _, exists := m.values[key]; !exists {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *PropertyMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns property names in insertion order — snapshotted (a copy)
// so a for-in loop that mutates the object mid-iteration does not see
// the new keys, per SPEC_FULL.md's for-in resolution.
func (m *PropertyMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *PropertyMap) Len() int { return len(m.keys) }

// Object is the base every object-kinded Value's ref payload embeds.
type Object struct {
	classID    ClassID
	prototype  Value
	properties *PropertyMap
}

func NewObject(classID ClassID, prototype Value) *Object {
	return &Object{classID: classID, prototype: prototype, properties: newPropertyMap()}
}

func (o *Object) ClassID() ClassID { return o.classID }

func (o *Object) Prototype() Value { return o.prototype }

func (o *Object) SetPrototype(p Value) { o.prototype = p }

func (o *Object) Properties() *PropertyMap { return o.properties }

func (o *Object) Get(key string) (Value, bool) { return o.properties.Get(key) }

func (o *Object) Set(key string, v Value) { o.properties.Set(key, v) }

func (o *Object) Delete(key string) bool { return o.properties.Delete(key) }

func (o *Object) Has(key string) bool { return o.properties.Has(key) }

// GetWithPrototypeChain walks the prototype chain (each link an Object
// or ArrayObject/FunctionObject/... — anything whose ref resolves to
// *Object via Value.Object()) looking for key, per standard JS property
// lookup.
func (o *Object) GetWithPrototypeChain(key string) (Value, bool) {
	for cur := o; cur != nil; cur = protoObject(cur.prototype) {
		if v, ok := cur.properties.Get(key); ok {
			return v, true
		}
	}
	return Undef(), false
}

func protoObject(v Value) *Object {
	switch o := v.Object().(type) {
	case *Object:
		return o
	case interface{ Base() *Object }:
		return o.Base()
	default:
		return nil
	}
}

package value

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindOpaque

	// KindDraft marks a live draft handle owned by a transaction.
	// Drafts never appear in a finalized value graph.
	KindDraft
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
	KindOpaque: "opaque",
	KindDraft:  "draft",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is any node of a value graph.
type Value interface {
	Kind() Kind
}

// ErrFrozen is returned by container mutators once the container was frozen.
var ErrFrozen = errors.New("value is frozen")

// Null represents a JSON null.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Int represents an integral number.
type Int int64

func (Int) Kind() Kind { return KindInt }

// Float represents a non-integral number.
type Float float64

func (Float) Kind() Kind { return KindFloat }

// String represents a string.
type String string

func (String) Kind() Kind { return KindString }

// Opaque wraps a foreign Go value. Opaque values are never drafted and are
// compared by the identity of the wrapper.
type Opaque struct {
	v any
}

// NewOpaque wraps v.
func NewOpaque(v any) *Opaque {
	return &Opaque{v: v}
}

func (*Opaque) Kind() Kind { return KindOpaque }

// Unwrap returns the wrapped Go value.
func (o *Opaque) Unwrap() any {
	return o.v
}

// Array is an ordered sequence of values.
type Array struct {
	items  []Value
	frozen bool
}

// NewArray creates an Array holding vals.
func NewArray(vals ...Value) *Array {
	items := make([]Value, len(vals))
	copy(items, vals)
	return &Array{items: items}
}

func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the element at i, or nil when i is out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the elements.
func (a *Array) Items() []Value {
	return slices.Clone(a.items)
}

// Range calls fn for every element in order until fn returns false.
func (a *Array) Range(fn func(i int, v Value) bool) {
	for i, v := range a.items {
		if !fn(i, v) {
			return
		}
	}
}

// Frozen reports whether the array rejects mutation.
func (a *Array) Frozen() bool {
	return a.frozen
}

// Freeze makes the array immutable. With deep set, every reachable
// container is frozen too.
func (a *Array) Freeze(deep bool) {
	if a.frozen && !deep {
		return
	}
	a.frozen = true
	if deep {
		for _, v := range a.items {
			Freeze(v, true)
		}
	}
}

// Clone returns an unfrozen shallow copy.
func (a *Array) Clone() *Array {
	return &Array{items: slices.Clone(a.items)}
}

// Set replaces the element at i. Setting index Len() appends.
func (a *Array) Set(i int, v Value) error {
	if a.frozen {
		return ErrFrozen
	}
	switch {
	case i >= 0 && i < len(a.items):
		a.items[i] = v
	case i == len(a.items):
		a.items = append(a.items, v)
	default:
		return fmt.Errorf("index %d out of range [0,%d]", i, len(a.items))
	}
	return nil
}

// Append adds vals to the end.
func (a *Array) Append(vals ...Value) error {
	if a.frozen {
		return ErrFrozen
	}
	a.items = append(a.items, vals...)
	return nil
}

// SetLen truncates the array or pads it with Null.
func (a *Array) SetLen(n int) error {
	if a.frozen {
		return ErrFrozen
	}
	if n < 0 {
		return fmt.Errorf("invalid length %d", n)
	}
	if n <= len(a.items) {
		clear(a.items[n:])
		a.items = a.items[:n]
		return nil
	}
	for len(a.items) < n {
		a.items = append(a.items, Null{})
	}
	return nil
}

// Splice removes deleteCount elements at start and inserts items in their
// place. It returns the removed elements. Arguments must already be in range.
func (a *Array) Splice(start, deleteCount int, items ...Value) ([]Value, error) {
	if a.frozen {
		return nil, ErrFrozen
	}
	if start < 0 || start > len(a.items) || deleteCount < 0 || start+deleteCount > len(a.items) {
		return nil, fmt.Errorf("splice(%d, %d) out of range for length %d", start, deleteCount, len(a.items))
	}
	removed := slices.Clone(a.items[start : start+deleteCount])
	a.items = slices.Replace(a.items, start, start+deleteCount, items...)
	return removed, nil
}

// Object is a string-keyed record.
type Object struct {
	fields map[string]Value
	frozen bool
}

// Pair is a key/value pair used to build objects.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair.
// Example: NewObject(P("name", String("cart")), P("count", Int(5)))
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// NewObject creates an Object from pairs. Later pairs win on duplicate keys.
func NewObject(pairs ...Pair) *Object {
	fields := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		fields[p.Key] = p.Value
	}
	return &Object{fields: fields}
}

// ObjectFromMap creates an Object holding a copy of m.
func ObjectFromMap(m map[string]Value) *Object {
	fields := make(map[string]Value, len(m))
	for k, v := range m {
		fields[k] = v
	}
	return &Object{fields: fields}
}

func (*Object) Kind() Kind { return KindObject }

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.fields)
}

// Get returns the value stored at key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Keys returns the keys in RFC 8785 order.
func (o *Object) Keys() []string {
	return SortedKeys(o.fields)
}

// Range calls fn for every entry in key order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.Keys() {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Frozen reports whether the object rejects mutation.
func (o *Object) Frozen() bool {
	return o.frozen
}

// Freeze makes the object immutable. With deep set, every reachable
// container is frozen too.
func (o *Object) Freeze(deep bool) {
	if o.frozen && !deep {
		return
	}
	o.frozen = true
	if deep {
		for _, v := range o.fields {
			Freeze(v, true)
		}
	}
}

// Clone returns an unfrozen shallow copy.
func (o *Object) Clone() *Object {
	return ObjectFromMap(o.fields)
}

// Set stores v at key.
func (o *Object) Set(key string, v Value) error {
	if o.frozen {
		return ErrFrozen
	}
	o.fields[key] = v
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (o *Object) Delete(key string) error {
	if o.frozen {
		return ErrFrozen
	}
	delete(o.fields, key)
	return nil
}

// Freeze freezes v if it is a container. Scalars and opaque values are
// immutable already.
func Freeze(v Value, deep bool) {
	switch c := v.(type) {
	case *Array:
		c.Freeze(deep)
	case *Object:
		c.Freeze(deep)
	}
}

// IsFrozen reports whether v can no longer be mutated. Non-containers are
// always considered frozen.
func IsFrozen(v Value) bool {
	switch c := v.(type) {
	case *Array:
		return c.frozen
	case *Object:
		return c.frozen
	}
	return true
}

// SortedKeys returns the keys of m in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for supplementary characters.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// CompareKeys compares strings by UTF-16 code units as RFC 8785 requires.
func CompareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

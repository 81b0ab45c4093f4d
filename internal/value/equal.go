package value

import "math"

// Class is the drafting category of a value.
type Class uint8

const (
	// ClassScalar covers null, booleans, numbers and strings.
	ClassScalar Class = iota
	// ClassRecord is a string-keyed container (*Object).
	ClassRecord
	// ClassSequence is an index-addressed container (*Array).
	ClassSequence
	// ClassOpaque covers foreign values and anything else that is not drafted.
	ClassOpaque
)

func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassRecord:
		return "record"
	case ClassSequence:
		return "sequence"
	default:
		return "opaque"
	}
}

// Classify returns the drafting category of v.
func Classify(v Value) Class {
	switch v.(type) {
	case *Object:
		return ClassRecord
	case *Array:
		return ClassSequence
	case Null, Bool, Int, Float, String:
		return ClassScalar
	default:
		return ClassOpaque
	}
}

// Draftable reports whether v is a record or a sequence.
func Draftable(v Value) bool {
	c := Classify(v)
	return c == ClassRecord || c == ClassSequence
}

// Identical reports whether a and b are the same value in the sense of
// JavaScript's Object.is: scalars compare by value, containers and opaque
// values by pointer. NaN is identical to NaN; +0 and -0 are distinct.
func Identical(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := a.(Float); ok {
		fb, ok := b.(Float)
		if !ok {
			return false
		}
		x, y := float64(fa), float64(fb)
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y && math.Signbit(x) == math.Signbit(y)
	}
	return a == b
}

// Equal reports deep structural equality. Int and Float compare numerically.
func Equal(a, b Value) bool {
	if Identical(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case Int:
		if y, ok := b.(Float); ok {
			return float64(x) == float64(y)
		}
		return false
	case Float:
		if y, ok := b.(Int); ok {
			return float64(x) == float64(y)
		}
		return false
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || len(x.fields) != len(y.fields) {
			return false
		}
		for k, xv := range x.fields {
			yv, ok := y.fields[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// DeepClone returns an unfrozen deep copy of v. Scalars and opaque values are
// returned as is.
func DeepClone(v Value) Value {
	switch c := v.(type) {
	case *Array:
		out := &Array{items: make([]Value, len(c.items))}
		for i, item := range c.items {
			out.items[i] = DeepClone(item)
		}
		return out
	case *Object:
		out := &Object{fields: make(map[string]Value, len(c.fields))}
		for k, item := range c.fields {
			out.fields[k] = DeepClone(item)
		}
		return out
	}
	return v
}

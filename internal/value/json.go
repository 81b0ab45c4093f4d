package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Parse decodes a single JSON document into a Value.
// Integral literals become Int; any other number becomes Float.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return FromGo(raw)
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("value.MustParse(%q): %v", s, err))
	}
	return v
}

// FromGo converts decoded JSON or YAML data (maps, slices, numbers, strings,
// bools, nil) into a Value. Values that already implement Value pass through.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(int64(val)), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return fromNumber(val)
	case []any:
		arr := &Array{items: make([]Value, len(val))}
		for i, elem := range val {
			item, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr.items[i] = item
		}
		return arr, nil
	case map[string]any:
		obj := &Object{fields: make(map[string]Value, len(val))}
		for k, elem := range val {
			item, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj.fields[k] = item
		}
		return obj, nil
	case map[any]any:
		obj := &Object{fields: make(map[string]Value, len(val))}
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v: only string keys are supported", k)
			}
			item, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj.fields[key] = item
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromNumber(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return Float(f), nil
}

// ToGo converts v into plain Go data suitable for encoding/json or yaml.
// Opaque values are unwrapped; drafts are rejected.
func ToGo(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing value")
	case Null:
		return nil, nil
	case Bool:
		return bool(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case String:
		return string(val), nil
	case *Opaque:
		return val.v, nil
	case *Array:
		out := make([]any, len(val.items))
		for i, item := range val.items {
			g, err := ToGo(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = g
		}
		return out, nil
	case *Object:
		out := make(map[string]any, len(val.fields))
		for k, item := range val.fields {
			g, err := ToGo(item)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

// Marshal encodes v as JSON with keys in canonical order. Unlike
// MarshalCanonical it accepts null and does not normalize strings.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalTo(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("missing value")
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		fmt.Fprintf(buf, "%d", int64(val))
	case Float:
		b, err := marshalFloat(float64(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case String:
		b, err := json.Marshal(string(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case *Opaque:
		b, err := json.Marshal(val.v)
		if err != nil {
			return fmt.Errorf("opaque value: %w", err)
		}
		buf.Write(b)
	case *Array:
		buf.WriteByte('[')
		for i, item := range val.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalTo(buf, item); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("marshal key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := marshalTo(buf, val.fields[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot marshal value kind %s", v.Kind())
	}
	return nil
}

// marshalFloat uses encoding/json's shortest round-trip formatting, which
// matches the ECMAScript number serialization RFC 8785 asks for.
func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot encode %v as JSON", f)
	}
	return json.Marshal(f)
}

// MarshalJSON implements json.Marshaler for *Object.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// MarshalJSON implements json.Marshaler for *Array.
func (a *Array) MarshalJSON() ([]byte, error) {
	return Marshal(a)
}

// Format renders v as JSON for diagnostics. Encoding failures are rendered
// inline instead of returned.
func Format(v Value) string {
	b, err := Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/draft/internal/value"
)

// Op is a patch operation.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
)

// Path locates a value inside a state graph. Elements are string keys for
// records and int indexes for sequences. The empty path is the root.
type Path []any

// Append returns a new path with key added. The receiver is never shared
// with the result.
func (p Path) Append(key any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}

// Pointer renders the path as an RFC 6901 JSON pointer.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		switch k := seg.(type) {
		case string:
			b.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(k))
		default:
			fmt.Fprint(&b, k)
		}
	}
	return b.String()
}

// String implements fmt.Stringer.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return p.Pointer()
}

// ParsePointer parses an RFC 6901 JSON pointer. Segments made only of
// digits become int indexes; the applier converts them back to strings
// when they address a record.
func ParsePointer(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("invalid JSON pointer %q: must start with /", s)
	}
	parts := strings.Split(s[1:], "/")
	out := make(Path, len(parts))
	for i, part := range parts {
		seg := strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
		if isIndex(seg) {
			n, err := strconv.Atoi(seg)
			if err == nil {
				out[i] = n
				continue
			}
		}
		out[i] = seg
	}
	return out, nil
}

func isIndex(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Patch is one JSON-Patch-like operation. Value is nil for remove.
type Patch struct {
	Op    Op
	Path  Path
	Value value.Value
}

// MarshalJSON encodes the patch as {"op":...,"path":[...],"value":...}.
func (p Patch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"op":`)
	op, err := json.Marshal(string(p.Op))
	if err != nil {
		return nil, err
	}
	buf.Write(op)
	buf.WriteString(`,"path":`)
	path, err := json.Marshal([]any(p.normalizedPath()))
	if err != nil {
		return nil, err
	}
	buf.Write(path)
	if p.Value != nil {
		buf.WriteString(`,"value":`)
		v, err := value.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("patch %s %s: %w", p.Op, p.Path, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p Patch) normalizedPath() Path {
	if p.Path == nil {
		return Path{}
	}
	return p.Path
}

// UnmarshalJSON decodes a patch. Path elements must be strings or integers.
// A JSON pointer string is accepted in place of the path array.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Op    string          `json:"op"`
		Path  json.RawMessage `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	path, err := decodePath(raw.Path)
	if err != nil {
		return err
	}
	p.Op = Op(raw.Op)
	p.Path = path
	p.Value = nil
	if len(raw.Value) > 0 {
		v, err := value.Parse(raw.Value)
		if err != nil {
			return fmt.Errorf("patch value: %w", err)
		}
		p.Value = v
	}
	return nil
}

func decodePath(raw json.RawMessage) (Path, error) {
	if len(raw) == 0 {
		return Path{}, nil
	}
	var pointer string
	if err := json.Unmarshal(raw, &pointer); err == nil {
		return ParsePointer(pointer)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var segs []any
	if err := dec.Decode(&segs); err != nil {
		return nil, fmt.Errorf("patch path: %w", err)
	}
	return PathFrom(segs)
}

// PathFrom converts decoded JSON or YAML path segments into a Path.
func PathFrom(segs []any) (Path, error) {
	out := make(Path, len(segs))
	for i, seg := range segs {
		switch s := seg.(type) {
		case string:
			out[i] = s
		case int:
			out[i] = s
		case int64:
			out[i] = int(s)
		case uint64:
			out[i] = int(s)
		case float64:
			if s != float64(int(s)) {
				return nil, fmt.Errorf("path[%d]: non-integer index %v", i, s)
			}
			out[i] = int(s)
		case json.Number:
			n, err := s.Int64()
			if err != nil {
				return nil, fmt.Errorf("path[%d]: %w", i, err)
			}
			out[i] = int(n)
		default:
			return nil, fmt.Errorf("path[%d]: unsupported segment type %T", i, seg)
		}
	}
	return out, nil
}

// Equal reports whether two patches have the same op, path and deep-equal
// value.
func (p Patch) Equal(o Patch) bool {
	if p.Op != o.Op || !slices.Equal(p.Path, o.Path) {
		return false
	}
	if p.Value == nil || o.Value == nil {
		return p.Value == nil && o.Value == nil
	}
	return value.Equal(p.Value, o.Value)
}

// PatchesValue converts a patch list into a value.Array suitable for
// canonical serialization and fingerprinting.
func PatchesValue(patches []Patch) (*value.Array, error) {
	out := value.NewArray()
	for _, p := range patches {
		path := value.NewArray()
		for _, seg := range p.Path {
			switch k := seg.(type) {
			case string:
				_ = path.Append(value.String(k))
			case int:
				_ = path.Append(value.Int(k))
			default:
				return nil, fmt.Errorf("unsupported path segment %T", seg)
			}
		}
		obj := value.NewObject(
			value.P("op", value.String(p.Op)),
			value.P("path", path),
		)
		if p.Value != nil {
			_ = obj.Set("value", p.Value)
		}
		_ = out.Append(obj)
	}
	return out, nil
}

package draft

import (
	"strconv"

	"github.com/roach88/draft/internal/value"
)

// applyPatches replays patches onto target, which is a draft or an unfrozen
// plain container. It returns the resulting root, which differs from target
// only when a patch replaced or removed the root.
func applyPatches(target value.Value, patches []Patch) (value.Value, error) {
	for _, p := range patches {
		if len(p.Path) == 0 {
			switch p.Op {
			case OpReplace, OpAdd:
				if p.Value == nil {
					return nil, newPathError(ErrCodeInvalidValue, p.Path, "%s patch without a value", p.Op)
				}
				target = value.DeepClone(p.Value)
			case OpRemove:
				target = nil
			default:
				return nil, newPathError(ErrCodeUnsupportedOp, p.Path, "unsupported patch op %q", p.Op)
			}
			continue
		}
		if err := applyPatch(target, p); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func applyPatch(root value.Value, p Patch) error {
	parent := root
	for i, seg := range p.Path[:len(p.Path)-1] {
		next, ok, err := read(parent, seg)
		if err != nil {
			return err
		}
		if !ok || !isDraftable(next) {
			return newPathError(ErrCodeUnresolvedPath, p.Path[:i+1], "cannot resolve patch path")
		}
		parent = next
	}
	key := p.Path[len(p.Path)-1]

	switch p.Op {
	case OpReplace, OpAdd:
		if p.Value == nil {
			return newPathError(ErrCodeInvalidValue, p.Path, "%s patch without a value", p.Op)
		}
		return write(parent, key, p.Op, value.DeepClone(p.Value), p.Path)
	case OpRemove:
		return remove(parent, key, p.Path)
	default:
		return newPathError(ErrCodeUnsupportedOp, p.Path, "unsupported patch op %q", p.Op)
	}
}

func isSequenceValue(v value.Value) bool {
	switch c := v.(type) {
	case *value.Array:
		return true
	case *Draft:
		return c.IsSequence()
	}
	return false
}

// keyFor converts a path segment to the key type the container expects.
func keyFor(container value.Value, seg any) (any, bool) {
	if isSequenceValue(container) {
		switch k := seg.(type) {
		case int:
			return k, k >= 0
		case string:
			if k == "length" || k == "-" {
				return k, true
			}
			n, err := strconv.Atoi(k)
			return n, err == nil && n >= 0
		}
		return nil, false
	}
	switch k := seg.(type) {
	case string:
		return k, true
	case int:
		return strconv.Itoa(k), true
	}
	return nil, false
}

// isPseudoIndex reports whether key is "length" or "-" on a sequence. Both
// are only meaningful as the target of a write.
func isPseudoIndex(container value.Value, key any) bool {
	if !isSequenceValue(container) {
		return false
	}
	_, isString := key.(string)
	return isString
}

func read(container value.Value, seg any) (value.Value, bool, error) {
	key, ok := keyFor(container, seg)
	if !ok || isPseudoIndex(container, key) {
		return nil, false, nil
	}
	if d, isDraft := container.(*Draft); isDraft {
		return d.Lookup(key)
	}
	return peek(container, key)
}

func write(container value.Value, seg any, op Op, v value.Value, path Path) error {
	key, ok := keyFor(container, seg)
	if !ok {
		return newPathError(ErrCodeUnresolvedPath, path, "invalid key %v", seg)
	}
	switch c := container.(type) {
	case *Draft:
		if !c.IsSequence() {
			return c.Set(key, v)
		}
		length, err := c.Len()
		if err != nil {
			return err
		}
		if key == "length" {
			return c.Set("length", v)
		}
		if key == "-" {
			key = length
		}
		i := key.(int)
		if op == OpAdd {
			if i > length {
				return newPathError(ErrCodeUnresolvedPath, path, "index %d out of range [0,%d]", i, length)
			}
			return c.Insert(i, v)
		}
		if i >= length {
			return newPathError(ErrCodeUnresolvedPath, path, "index %d out of range [0,%d)", i, length)
		}
		return c.Set(i, v)
	case *value.Object:
		if c.Frozen() {
			return newPathError(ErrCodeUnresolvedPath, path, "cannot write into a frozen value")
		}
		return c.Set(key.(string), v)
	case *value.Array:
		if c.Frozen() {
			return newPathError(ErrCodeUnresolvedPath, path, "cannot write into a frozen value")
		}
		if key == "length" {
			l, isInt := v.(value.Int)
			if !isInt {
				return newPathError(ErrCodeInvalidValue, path, "length must be an int")
			}
			return c.SetLen(int(l))
		}
		if key == "-" {
			key = c.Len()
		}
		i := key.(int)
		if op == OpAdd {
			if i > c.Len() {
				return newPathError(ErrCodeUnresolvedPath, path, "index %d out of range [0,%d]", i, c.Len())
			}
			_, err := c.Splice(i, 0, v)
			return err
		}
		if i >= c.Len() {
			return newPathError(ErrCodeUnresolvedPath, path, "index %d out of range [0,%d)", i, c.Len())
		}
		return c.Set(i, v)
	}
	return newPathError(ErrCodeUnresolvedPath, path, "cannot write into a value of kind %s", kindOf(container))
}

func remove(container value.Value, seg any, path Path) error {
	key, ok := keyFor(container, seg)
	if !ok || isPseudoIndex(container, key) {
		return newPathError(ErrCodeUnresolvedPath, path, "invalid key %v", seg)
	}
	switch c := container.(type) {
	case *Draft:
		if !c.IsSequence() {
			return c.Delete(key)
		}
		length, err := c.Len()
		if err != nil {
			return err
		}
		i := key.(int)
		if i >= length {
			return newPathError(ErrCodeUnresolvedPath, path, "index %d out of range [0,%d)", i, length)
		}
		_, err = c.RemoveAt(i)
		return err
	case *value.Object:
		if c.Frozen() {
			return newPathError(ErrCodeUnresolvedPath, path, "cannot remove from a frozen value")
		}
		return c.Delete(key.(string))
	case *value.Array:
		i := key.(int)
		if c.Frozen() || i >= c.Len() {
			return newPathError(ErrCodeUnresolvedPath, path, "cannot remove index %d", i)
		}
		_, err := c.Splice(i, 1)
		return err
	}
	return newPathError(ErrCodeUnresolvedPath, path, "cannot remove from a value of kind %s", kindOf(container))
}

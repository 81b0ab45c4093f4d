package draft

import (
	"fmt"

	"github.com/roach88/draft/internal/value"
)

// node is the arena record behind a Draft.
//
// base is never mutated. copy is created on first change (or, in sweep
// mode, on first structural edit) as a shallow copy of base with any
// cached child drafts overlaid on their keys.
type node struct {
	scope  *Scope
	h      handle
	parent handle
	class  value.Class
	base   value.Value
	copy   value.Value
	draft  *Draft

	childKeys []any

	// assigned records keys written (true) or deleted (false) during the
	// transaction. Keys never touched are absent.
	assigned map[any]bool

	// proxied is the lowest sequence length seen since the draft was
	// created. Slots below it existed when the draft was made; slots at or
	// above it were written structurally and are invisible to the setter
	// path in sweep mode.
	proxied int

	modified   bool
	finalized  bool
	finalizing bool
	manual     bool
	revoked    bool
}

func (n *node) source() value.Value {
	if n.copy != nil {
		return n.copy
	}
	return n.base
}

func (n *node) parentNode() *node {
	if n.parent == noParent {
		return nil
	}
	return n.scope.nodes[n.parent]
}

func (n *node) isSequence() bool {
	return n.class == value.ClassSequence
}

// normalizeKey checks that key is valid for the node's class.
// Records take string keys; sequences take non-negative int indexes.
func (n *node) normalizeKey(key any) (any, error) {
	if !n.isSequence() {
		k, ok := key.(string)
		if !ok {
			return nil, newError(ErrCodeInvalidKey, "record keys must be strings, got %T", key)
		}
		return k, nil
	}
	switch k := key.(type) {
	case int:
		if k >= 0 {
			return k, nil
		}
	case int64:
		if k >= 0 {
			return int(k), nil
		}
	case value.Int:
		if k >= 0 {
			return int(k), nil
		}
	}
	return nil, newError(ErrCodeInvalidKey, "sequence index must be a non-negative int, got %v", key)
}

// lookup reads key through the node, drafting draftable children on demand.
// key must already be normalized.
func (n *node) lookup(key any) (value.Value, bool, error) {
	if !n.modified {
		if d, ok := n.scope.cachedChild(n, key); ok {
			return d, true, nil
		}
	}
	v, ok, err := peek(n.source(), key)
	if err != nil || !ok {
		return nil, ok, err
	}
	if n.finalized || !isDraftable(v) {
		return v, true, nil
	}
	if n.copy != nil {
		// Values assigned during the transaction are returned verbatim.
		bv, _, err := peek(n.base, key)
		if err != nil {
			return nil, false, err
		}
		if !value.Identical(v, bv) {
			return v, true, nil
		}
	}
	d, err := n.scope.wrap(v, n)
	if err != nil {
		return nil, false, err
	}
	n.scope.cacheChild(n, key, d)
	if n.copy != nil {
		if err := setIn(n.copy, key, d); err != nil {
			return nil, false, err
		}
	}
	return d, true, nil
}

// markChanged flags n and every unmodified ancestor, creating copies.
func (n *node) markChanged() error {
	for cur := n; cur != nil && !cur.modified; cur = cur.parentNode() {
		cur.modified = true
		if err := cur.prepareCopy(); err != nil {
			return err
		}
	}
	return nil
}

func (n *node) prepareCopy() error {
	if n.copy != nil {
		return nil
	}
	c, err := shallowCopy(n.base)
	if err != nil {
		return err
	}
	for _, k := range n.childKeys {
		d, ok := n.scope.cachedChild(n, k)
		if !ok {
			continue
		}
		if err := setIn(c, k, d); err != nil {
			return err
		}
	}
	n.copy = c
	return nil
}

// unchanged reports whether writing v at key would leave the node's
// observable state as it is.
func (n *node) unchanged(key any, v, bv value.Value, inBase bool) (bool, error) {
	if n.copy != nil {
		cv, inCopy, err := peek(n.copy, key)
		if err != nil {
			return false, err
		}
		if !inCopy || !value.Identical(cv, v) {
			return false, nil
		}
	}
	if inBase && value.Identical(bv, v) {
		return true, nil
	}
	d, ok := n.scope.cachedChild(n, key)
	return ok && value.Value(d) == v, nil
}

// assign writes v at an existing record key, a new record key, or an
// existing sequence slot.
func (n *node) assign(key any, v value.Value) error {
	if !n.modified {
		bv, inBase, err := peek(n.base, key)
		if err != nil {
			return err
		}
		same, err := n.unchanged(key, v, bv, inBase)
		if err != nil || same {
			return err
		}
		if n.scope.sweep() && n.deferrable(key, inBase) {
			if err := n.prepareCopy(); err != nil {
				return err
			}
			n.scope.dropChild(n, key)
			return setIn(n.copy, key, v)
		}
		if err := n.markChanged(); err != nil {
			return err
		}
	}
	n.assigned[key] = true
	n.scope.dropChild(n, key)
	return setIn(n.copy, key, v)
}

// deferrable reports whether a write in sweep mode is structural: a new
// record key, or a sequence slot written past the proxied prefix.
func (n *node) deferrable(key any, inBase bool) bool {
	if n.isSequence() {
		return key.(int) >= n.proxied
	}
	return !inBase
}

func (n *node) removeKey(key string) error {
	_, inBase, err := peek(n.base, key)
	if err != nil {
		return err
	}
	if inBase {
		if n.scope.sweep() && !n.modified {
			if err := n.prepareCopy(); err != nil {
				return err
			}
		} else {
			n.assigned[key] = false
			if err := n.markChanged(); err != nil {
				return err
			}
		}
	} else {
		delete(n.assigned, key)
	}
	n.scope.dropChild(n, key)
	if n.copy != nil {
		return n.copy.(*value.Object).Delete(key)
	}
	return nil
}

func isDraftable(v value.Value) bool {
	if _, ok := v.(*Draft); ok {
		return true
	}
	return value.Draftable(v)
}

func kindOf(v value.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

// shape reports the class and current length of a draftable value.
func shape(v value.Value) (value.Class, int, error) {
	switch c := v.(type) {
	case *value.Object:
		return value.ClassRecord, c.Len(), nil
	case *value.Array:
		return value.ClassSequence, c.Len(), nil
	case *Draft:
		n, err := c.node()
		if err != nil {
			return 0, 0, err
		}
		l, err := lengthOf(n.source())
		return n.class, l, err
	}
	return 0, 0, newError(ErrCodeNotDraftable, "cannot draft a value of kind %s", kindOf(v))
}

// peek reads key from a record, a sequence, or a draft. Missing keys and
// out-of-range indexes report false.
func peek(v value.Value, key any) (value.Value, bool, error) {
	switch c := v.(type) {
	case *value.Object:
		k, ok := key.(string)
		if !ok {
			return nil, false, nil
		}
		x, ok := c.Get(k)
		return x, ok, nil
	case *value.Array:
		i, ok := key.(int)
		if !ok || i < 0 || i >= c.Len() {
			return nil, false, nil
		}
		return c.At(i), true, nil
	case *Draft:
		n, err := c.node()
		if err != nil {
			return nil, false, err
		}
		return n.lookup(key)
	}
	return nil, false, nil
}

func setIn(container value.Value, key any, v value.Value) error {
	switch c := container.(type) {
	case *value.Object:
		return c.Set(key.(string), v)
	case *value.Array:
		return c.Set(key.(int), v)
	}
	return fmt.Errorf("cannot set %v on %s", key, kindOf(container))
}

func lengthOf(v value.Value) (int, error) {
	switch c := v.(type) {
	case *value.Object:
		return c.Len(), nil
	case *value.Array:
		return c.Len(), nil
	case *Draft:
		n, err := c.node()
		if err != nil {
			return 0, err
		}
		return lengthOf(n.source())
	}
	return 0, nil
}

func keysOf(v value.Value) ([]string, error) {
	switch c := v.(type) {
	case *value.Object:
		return c.Keys(), nil
	case *Draft:
		n, err := c.node()
		if err != nil {
			return nil, err
		}
		return keysOf(n.source())
	}
	return nil, nil
}

// itemsOf returns the entries of a sequence. Reading through a draft yields
// drafts for draftable entries.
func itemsOf(v value.Value) ([]value.Value, error) {
	switch c := v.(type) {
	case *value.Array:
		return c.Items(), nil
	case *Draft:
		l, err := lengthOf(c)
		if err != nil {
			return nil, err
		}
		out := make([]value.Value, l)
		for i := range out {
			x, _, err := peek(c, i)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}
	return nil, nil
}

// shallowCopy returns an unfrozen one-level copy of a container. Copying a
// draft reads through it, so draftable entries come back as its drafts.
func shallowCopy(v value.Value) (value.Value, error) {
	switch c := v.(type) {
	case *value.Object:
		return c.Clone(), nil
	case *value.Array:
		return c.Clone(), nil
	case *Draft:
		n, err := c.node()
		if err != nil {
			return nil, err
		}
		if n.isSequence() {
			items, err := itemsOf(c)
			if err != nil {
				return nil, err
			}
			return value.NewArray(items...), nil
		}
		keys, err := keysOf(c)
		if err != nil {
			return nil, err
		}
		obj := value.NewObject()
		for _, k := range keys {
			x, _, err := peek(c, k)
			if err != nil {
				return nil, err
			}
			if err := obj.Set(k, x); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	return nil, newError(ErrCodeNotDraftable, "cannot copy a value of kind %s", kindOf(v))
}

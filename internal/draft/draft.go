package draft

import (
	"github.com/roach88/draft/internal/value"
)

// Draft is a mutable view over a record or sequence inside a transaction.
//
// Reads see the transaction's current state. Writes are recorded on a copy;
// the base value is never touched. A Draft is only valid until its
// transaction finishes: afterwards every method returns a revoked error.
//
// Records take string keys. Sequences take int indexes plus the pseudo key
// "length" for Get and Set.
type Draft struct {
	scope *Scope
	h     handle
}

// Kind implements value.Value.
func (*Draft) Kind() value.Kind { return value.KindDraft }

func (d *Draft) node() (*node, error) {
	if d == nil {
		return nil, newError(ErrCodeInvalidValue, "nil draft")
	}
	s := d.scope
	if s.revoked || int(d.h) >= len(s.nodes) {
		return nil, errRevoked()
	}
	n := s.nodes[d.h]
	if n.revoked {
		return nil, errRevoked()
	}
	return n, nil
}

// IsDraft reports whether v is a draft. Revoked drafts are still drafts.
func IsDraft(v value.Value) bool {
	_, ok := v.(*Draft)
	return ok
}

// IsSequence reports whether the draft wraps a sequence.
func (d *Draft) IsSequence() bool {
	n, err := d.node()
	return err == nil && n.isSequence()
}

// Get returns the value at key, or nil when the key is absent.
// Draftable values come back as child drafts.
func (d *Draft) Get(key any) (value.Value, error) {
	v, _, err := d.Lookup(key)
	return v, err
}

// Lookup is Get with an explicit presence flag.
func (d *Draft) Lookup(key any) (value.Value, bool, error) {
	n, err := d.node()
	if err != nil {
		return nil, false, err
	}
	if n.isSequence() && key == "length" {
		l, err := lengthOf(n.source())
		return value.Int(l), err == nil, err
	}
	k, err := n.normalizeKey(key)
	if err != nil {
		return nil, false, err
	}
	return n.lookup(k)
}

// Has reports whether key is present.
func (d *Draft) Has(key any) (bool, error) {
	n, err := d.node()
	if err != nil {
		return false, err
	}
	k, err := n.normalizeKey(key)
	if err != nil {
		return false, err
	}
	_, ok, err := peek(n.source(), k)
	return ok, err
}

// Len returns the number of keys or elements.
func (d *Draft) Len() (int, error) {
	n, err := d.node()
	if err != nil {
		return 0, err
	}
	return lengthOf(n.source())
}

// Keys returns the record's keys in canonical order.
func (d *Draft) Keys() ([]string, error) {
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	if n.isSequence() {
		return nil, newError(ErrCodeInvalidKey, "Keys is only defined for records; use Len on sequences")
	}
	return keysOf(n.source())
}

// Items returns the sequence's elements, drafting draftable ones.
func (d *Draft) Items() ([]value.Value, error) {
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	if !n.isSequence() {
		return nil, newError(ErrCodeInvalidKey, "Items is only defined for sequences")
	}
	l, err := lengthOf(n.source())
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, l)
	for i := range out {
		if out[i], _, err = n.lookup(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Set writes v at key. Writing a value identical to what the draft already
// holds is a no-op and does not mark the draft as changed.
//
// On sequences, an index at or past the end extends the sequence, padding
// with nulls, and Set("length", value.Int(n)) truncates or pads.
func (d *Draft) Set(key any, v value.Value) error {
	n, err := d.node()
	if err != nil {
		return err
	}
	if err := checkValue(v); err != nil {
		return err
	}
	if n.isSequence() && key == "length" {
		l, ok := v.(value.Int)
		if !ok || l < 0 {
			return newError(ErrCodeInvalidValue, "length must be a non-negative int, got %s", kindOf(v))
		}
		return n.setLen(int(l))
	}
	k, err := n.normalizeKey(key)
	if err != nil {
		return err
	}
	if n.isSequence() {
		return n.setIndex(k.(int), v)
	}
	return n.assign(k, v)
}

// Delete removes key. On sequences the element is removed and later
// elements shift down. Deleting a missing key is a no-op.
func (d *Draft) Delete(key any) error {
	n, err := d.node()
	if err != nil {
		return err
	}
	k, err := n.normalizeKey(key)
	if err != nil {
		return err
	}
	if n.isSequence() {
		l, err := lengthOf(n.source())
		if err != nil || k.(int) >= l {
			return err
		}
		_, err = n.splice(k.(int), 1, nil)
		return err
	}
	return n.removeKey(k.(string))
}

// Child returns the draft at key. It fails when the key is absent or holds
// a value that cannot be drafted.
func (d *Draft) Child(key any) (*Draft, error) {
	v, ok, err := d.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newPathError(ErrCodeUnresolvedPath, Path{key}, "no value at key")
	}
	c, isDraft := v.(*Draft)
	if !isDraft {
		return nil, newPathError(ErrCodeNotDraftable, Path{key}, "value of kind %s is not a draft", kindOf(v))
	}
	return c, nil
}

// At walks path from the draft and returns the value found there. Plain
// containers assigned during the transaction are walked too.
func (d *Draft) At(path ...any) (value.Value, error) {
	var cur value.Value = d
	for i, seg := range path {
		var (
			next value.Value
			ok   bool
			err  error
		)
		switch c := cur.(type) {
		case *Draft:
			next, ok, err = c.Lookup(seg)
		case *value.Object, *value.Array:
			next, ok, err = peek(c, seg)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newPathError(ErrCodeUnresolvedPath, Path(path[:i+1]), "no value at path")
		}
		cur = next
	}
	return cur, nil
}

// Original returns the base value the draft was created from.
func (d *Draft) Original() (value.Value, error) {
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	return n.base, nil
}

// Modified reports whether the draft has been marked as changed. In sweep
// mode, structural edits are only marked at finalization.
func (d *Draft) Modified() (bool, error) {
	n, err := d.node()
	if err != nil {
		return false, err
	}
	return n.modified, nil
}

// Current returns a draft-free snapshot of the draft's present state.
// Untouched subtrees are shared with the base; everything else is copied.
// The snapshot is not frozen.
func (d *Draft) Current() (value.Value, error) {
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	return n.current(make(map[*node]bool))
}

func (n *node) current(seen map[*node]bool) (value.Value, error) {
	if n.copy == nil {
		if base, ok := n.base.(*Draft); ok {
			bn, err := base.node()
			if err != nil {
				return nil, err
			}
			return bn.current(seen)
		}
		return n.base, nil
	}
	if seen[n] {
		return nil, newError(ErrCodeCircular, "draft contains itself")
	}
	seen[n] = true
	defer delete(seen, n)
	return currentOf(n.copy, seen, true)
}

// currentOf replaces drafts inside v with snapshots. Containers are copied
// only when something inside them changes, or when force is set.
func currentOf(v value.Value, seen map[*node]bool, force bool) (value.Value, error) {
	switch c := v.(type) {
	case *Draft:
		n, err := c.node()
		if err != nil {
			return nil, err
		}
		return n.current(seen)
	case *value.Object:
		var out *value.Object
		if force {
			out = c.Clone()
		}
		for _, k := range c.Keys() {
			x, _ := c.Get(k)
			y, err := currentOf(x, seen, false)
			if err != nil {
				return nil, err
			}
			if value.Identical(x, y) {
				continue
			}
			if out == nil {
				out = c.Clone()
			}
			_ = out.Set(k, y)
		}
		if out == nil {
			return c, nil
		}
		return out, nil
	case *value.Array:
		var out *value.Array
		if force {
			out = c.Clone()
		}
		for i := 0; i < c.Len(); i++ {
			x := c.At(i)
			y, err := currentOf(x, seen, false)
			if err != nil {
				return nil, err
			}
			if value.Identical(x, y) {
				continue
			}
			if out == nil {
				out = c.Clone()
			}
			_ = out.Set(i, y)
		}
		if out == nil {
			return c, nil
		}
		return out, nil
	}
	return v, nil
}

// Current returns a snapshot of v if it is a draft, and v itself otherwise.
func Current(v value.Value) (value.Value, error) {
	if d, ok := v.(*Draft); ok {
		return d.Current()
	}
	return v, nil
}

// Original returns the base of v if it is a draft, and nil otherwise.
func Original(v value.Value) (value.Value, error) {
	if d, ok := v.(*Draft); ok {
		return d.Original()
	}
	return nil, nil
}

func checkValue(v value.Value) error {
	if v == nil {
		return newError(ErrCodeInvalidValue, "cannot store a nil value; use value.Null{}")
	}
	if d, ok := v.(*Draft); ok {
		if _, err := d.node(); err != nil {
			return err
		}
	}
	return nil
}

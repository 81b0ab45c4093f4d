package draft

import (
	"github.com/roach88/draft/internal/value"
)

// Push appends vals and returns the new length.
func (d *Draft) Push(vals ...value.Value) (int, error) {
	n, err := d.sequenceNode()
	if err != nil {
		return 0, err
	}
	for _, v := range vals {
		if err := checkValue(v); err != nil {
			return 0, err
		}
	}
	l, err := lengthOf(n.source())
	if err != nil {
		return 0, err
	}
	if _, err := n.splice(l, 0, vals); err != nil {
		return 0, err
	}
	return l + len(vals), nil
}

// Pop removes and returns the last element. It returns nil on an empty
// sequence.
func (d *Draft) Pop() (value.Value, error) {
	n, err := d.sequenceNode()
	if err != nil {
		return nil, err
	}
	l, err := lengthOf(n.source())
	if err != nil || l == 0 {
		return nil, err
	}
	last, _, err := n.lookup(l - 1)
	if err != nil {
		return nil, err
	}
	if _, err := n.splice(l-1, 1, nil); err != nil {
		return nil, err
	}
	return last, nil
}

// Insert places vals before index i. i may equal the length.
func (d *Draft) Insert(i int, vals ...value.Value) error {
	n, err := d.sequenceNode()
	if err != nil {
		return err
	}
	for _, v := range vals {
		if err := checkValue(v); err != nil {
			return err
		}
	}
	l, err := lengthOf(n.source())
	if err != nil {
		return err
	}
	if i < 0 || i > l {
		return newError(ErrCodeInvalidKey, "insert index %d out of range [0,%d]", i, l)
	}
	_, err = n.splice(i, 0, vals)
	return err
}

// RemoveAt removes and returns the element at i.
func (d *Draft) RemoveAt(i int) (value.Value, error) {
	n, err := d.sequenceNode()
	if err != nil {
		return nil, err
	}
	l, err := lengthOf(n.source())
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= l {
		return nil, newError(ErrCodeInvalidKey, "index %d out of range [0,%d)", i, l)
	}
	v, _, err := n.lookup(i)
	if err != nil {
		return nil, err
	}
	if _, err := n.splice(i, 1, nil); err != nil {
		return nil, err
	}
	return v, nil
}

// Splice removes deleteCount elements at start, inserts items there, and
// returns the removed elements. A negative start counts from the end.
// Both arguments are clamped to the sequence bounds.
func (d *Draft) Splice(start, deleteCount int, items ...value.Value) ([]value.Value, error) {
	n, err := d.sequenceNode()
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if err := checkValue(v); err != nil {
			return nil, err
		}
	}
	l, err := lengthOf(n.source())
	if err != nil {
		return nil, err
	}
	start, deleteCount = clampSplice(start, deleteCount, l)
	removed := make([]value.Value, deleteCount)
	for i := range removed {
		if removed[i], _, err = n.lookup(start + i); err != nil {
			return nil, err
		}
	}
	if _, err := n.splice(start, deleteCount, items); err != nil {
		return nil, err
	}
	return removed, nil
}

// SetLen truncates the sequence or pads it with nulls.
func (d *Draft) SetLen(length int) error {
	n, err := d.sequenceNode()
	if err != nil {
		return err
	}
	if length < 0 {
		return newError(ErrCodeInvalidValue, "invalid length %d", length)
	}
	return n.setLen(length)
}

func (d *Draft) sequenceNode() (*node, error) {
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	if !n.isSequence() {
		return nil, newError(ErrCodeInvalidKey, "sequence operation on a record draft")
	}
	return n, nil
}

func clampSplice(start, deleteCount, length int) (int, int) {
	if start < 0 {
		start = max(length+start, 0)
	}
	start = min(start, length)
	deleteCount = min(max(deleteCount, 0), length-start)
	return start, deleteCount
}

func nulls(n int) []value.Value {
	out := make([]value.Value, n)
	for i := range out {
		out[i] = value.Null{}
	}
	return out
}

// setIndex writes slot i, extending the sequence when i is past the end.
func (n *node) setIndex(i int, v value.Value) error {
	l, err := lengthOf(n.source())
	if err != nil {
		return err
	}
	if i < l {
		return n.assign(i, v)
	}
	_, err = n.splice(l, 0, append(nulls(i-l), v))
	return err
}

func (n *node) setLen(length int) error {
	l, err := lengthOf(n.source())
	if err != nil {
		return err
	}
	switch {
	case length < l:
		_, err = n.splice(length, l-length, nil)
	case length > l:
		_, err = n.splice(l, 0, nulls(length-l))
	}
	return err
}

// splice is the single structural edit on sequences. start and del must be
// in range for the current length.
func (n *node) splice(start, del int, items []value.Value) ([]value.Value, error) {
	oldLen, err := lengthOf(n.source())
	if err != nil {
		return nil, err
	}
	if del == 0 && len(items) == 0 {
		return nil, nil
	}
	newLen := oldLen - del + len(items)

	if len(items) != del {
		if err := n.draftShifted(start+del, oldLen); err != nil {
			return nil, err
		}
	}

	eager := n.modified || !n.scope.sweep()
	if !eager {
		if eager, err = n.rewritesSlots(start, del, items, oldLen); err != nil {
			return nil, err
		}
	}
	if eager {
		err = n.markChanged()
	} else {
		err = n.prepareCopy()
	}
	if err != nil {
		return nil, err
	}

	removed, err := n.copy.(*value.Array).Splice(start, del, items...)
	if err != nil {
		return nil, err
	}

	// Slots from start onward shift unless the edit kept the length.
	end := newLen
	if len(items) == del {
		end = start + len(items)
	}
	for i := start; i < end; i++ {
		n.assigned[i] = true
	}
	for i := newLen; i < oldLen; i++ {
		n.assigned[i] = false
	}
	n.proxied = min(n.proxied, newLen)

	for _, k := range n.childKeys {
		if i := k.(int); i >= start {
			n.scope.dropChild(n, i)
		}
	}
	return removed, nil
}

// draftShifted drafts the draftable elements in [from, to) before a splice
// moves them to other indexes. lookup tells base elements from assigned
// values by index, so a base element read at its new index must already be
// a draft.
func (n *node) draftShifted(from, to int) error {
	for i := from; i < to; i++ {
		if _, _, err := n.lookup(i); err != nil {
			return err
		}
	}
	return nil
}

// rewritesSlots reports whether the edit changes the value of any slot
// inside the proxied prefix. Those writes go through the setter path and are
// marked eagerly even in sweep mode.
func (n *node) rewritesSlots(start, del int, items []value.Value, oldLen int) (bool, error) {
	newLen := oldLen - del + len(items)
	src := n.source()
	for j := start; j < min(oldLen, newLen, n.proxied); j++ {
		var next value.Value
		if j-start < len(items) {
			next = items[j-start]
		} else {
			var err error
			if next, _, err = peek(src, j-len(items)+del); err != nil {
				return false, err
			}
		}
		prev, _, err := peek(src, j)
		if err != nil {
			return false, err
		}
		if !value.Identical(prev, next) {
			return true, nil
		}
	}
	return false, nil
}

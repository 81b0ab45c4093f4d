package draft

import (
	"github.com/roach88/draft/internal/value"
)

// markChangesSweep walks the scope's nodes from newest to oldest and marks
// every node whose copy differs structurally from its base. Children are
// always created after their parents, so a reverse walk sees them first.
func (s *Scope) markChangesSweep() error {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := s.nodes[i]
		if n.modified || n.copy == nil {
			continue
		}
		changed, err := n.hasChanges()
		if err != nil {
			return err
		}
		if changed {
			if err := n.markChanged(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *node) hasChanges() (bool, error) {
	if n.isSequence() {
		return n.hasSequenceChanges()
	}
	return n.hasRecordChanges()
}

func (n *node) hasRecordChanges() (bool, error) {
	c := n.copy.(*value.Object)
	baseLen, err := lengthOf(n.base)
	if err != nil {
		return false, err
	}
	for _, k := range c.Keys() {
		bv, inBase, err := peek(n.base, k)
		if err != nil {
			return false, err
		}
		if !inBase {
			return true, nil
		}
		v, _ := c.Get(k)
		if child, ok := n.scope.owns(v); ok {
			if !value.Identical(child.base, bv) {
				return true, nil
			}
			continue
		}
		if !value.Identical(v, bv) {
			return true, nil
		}
	}
	return c.Len() != baseLen, nil
}

// hasSequenceChanges compares lengths, then checks whether the last slot
// was written outside the proxied prefix. A pop followed by a push of the
// same length is caught this way; an unchanged last slot with edits in the
// middle is only caught if those edits went through assign.
func (n *node) hasSequenceChanges() (bool, error) {
	baseLen, err := lengthOf(n.base)
	if err != nil {
		return false, err
	}
	l := n.copy.(*value.Array).Len()
	if l != baseLen {
		return true, nil
	}
	return l > 0 && l-1 >= n.proxied, nil
}

// markChangesRecursively fills in the assigned bookkeeping that sweep mode
// skipped, so patch generation sees every added and removed key.
func (s *Scope) markChangesRecursively(n *node) error {
	if n.copy == nil {
		for _, k := range n.childKeys {
			if d, ok := s.cachedChild(n, k); ok {
				if err := s.markChangesRecursively(s.nodes[d.h]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if n.isSequence() {
		return s.markSequenceRecursively(n)
	}

	c := n.copy.(*value.Object)
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		_, inBase, err := peek(n.base, k)
		if err != nil {
			return err
		}
		if !inBase {
			n.assigned[k] = true
			if err := n.markChanged(); err != nil {
				return err
			}
			continue
		}
		if _, touched := n.assigned[k]; touched {
			continue
		}
		if child, ok := s.owns(v); ok {
			if err := s.markChangesRecursively(child); err != nil {
				return err
			}
		}
	}
	keys, err := keysOf(n.base)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if !c.Has(k) {
			n.assigned[k] = false
			if err := n.markChanged(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scope) markSequenceRecursively(n *node) error {
	c := n.copy.(*value.Array)
	changed, err := n.hasSequenceChanges()
	if err != nil {
		return err
	}
	if changed {
		if err := n.markChanged(); err != nil {
			return err
		}
	}
	baseLen, err := lengthOf(n.base)
	if err != nil {
		return err
	}
	for i := c.Len(); i < baseLen; i++ {
		n.assigned[i] = false
	}
	for i := baseLen; i < c.Len(); i++ {
		n.assigned[i] = true
	}
	for i := 0; i < c.Len(); i++ {
		if _, touched := n.assigned[i]; touched {
			continue
		}
		if child, ok := s.owns(c.At(i)); ok {
			if err := s.markChangesRecursively(child); err != nil {
				return err
			}
		}
	}
	return nil
}

package draft

import (
	"github.com/roach88/draft/internal/value"
)

// finalize resolves v into a draft-free value. path is non-nil when patches
// for v's subtree should be recorded at that location.
func (s *Scope) finalize(v value.Value, path Path) (value.Value, error) {
	d, ok := v.(*Draft)
	if !ok {
		if value.Draftable(v) && !value.IsFrozen(v) {
			if err := s.finalizeTree(v, nil, nil); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	if d.scope != s {
		if d.scope.revoked {
			return nil, errRevoked()
		}
		// Drafts of an enclosing scope are finalized when that scope ends.
		s.canAutoFreeze = false
		return d, nil
	}
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	if n.finalizing {
		return nil, newPathError(ErrCodeCircular, path, "draft contains itself")
	}
	if !n.modified {
		return n.base, nil
	}
	if !n.finalized {
		n.finalized = true
		n.finalizing = true
		err := s.finalizeTree(n.copy, path, n)
		n.finalizing = false
		if err != nil {
			return nil, err
		}
		if s.autoFreeze() {
			value.Freeze(n.copy, false)
		}
		if path != nil && s.wantPatches() {
			if err := s.generatePatches(n, path); err != nil {
				return nil, err
			}
		}
	}
	return n.copy, nil
}

// finalizeTree replaces drafts inside root with their finished values.
// root is either a node's copy (owner set) or a plain unfrozen container
// created during the transaction.
func (s *Scope) finalizeTree(root value.Value, path Path, owner *node) error {
	if owner == nil {
		if s.visiting[root] {
			return newPathError(ErrCodeCircular, path, "value contains itself")
		}
		s.visiting[root] = true
		defer delete(s.visiting, root)
	}
	switch c := root.(type) {
	case *value.Object:
		for _, k := range c.Keys() {
			v, _ := c.Get(k)
			if err := s.finalizeProperty(c, k, v, path, owner); err != nil {
				return err
			}
		}
	case *value.Array:
		for i := 0; i < c.Len(); i++ {
			if err := s.finalizeProperty(c, i, c.At(i), path, owner); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scope) finalizeProperty(parent value.Value, key any, v value.Value, path Path, owner *node) error {
	if v == parent {
		return newPathError(ErrCodeCircular, path, "value contains itself")
	}
	if d, ok := v.(*Draft); ok {
		if owner != nil && d == owner.draft {
			return newPathError(ErrCodeCircular, path, "draft contains itself")
		}
		var childPath Path
		// Assigned drafts are covered by the parent's own patch.
		if owner != nil && path != nil && s.wantPatches() && !owner.assigned[key] {
			childPath = path.Append(key)
		}
		fin, err := s.finalize(d, childPath)
		if err != nil {
			return err
		}
		if IsDraft(fin) {
			s.canAutoFreeze = false
		}
		return setIn(parent, key, fin)
	}
	if owner != nil {
		bv, _, err := peek(owner.base, key)
		if err != nil {
			return err
		}
		if value.Identical(v, bv) {
			return nil
		}
	}
	if value.Draftable(v) && !value.IsFrozen(v) {
		if err := s.finalizeTree(v, nil, nil); err != nil {
			return err
		}
		if s.autoFreeze() {
			value.Freeze(v, false)
		}
	}
	return nil
}

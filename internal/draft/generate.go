package draft

import (
	"slices"

	"github.com/roach88/draft/internal/value"
)

// generatePatches appends the forward and inverse patches for one finalized
// node. Nested nodes emit their own patches under their paths.
func (s *Scope) generatePatches(n *node, basePath Path) error {
	var (
		patches, inverse []Patch
		err              error
	)
	if n.isSequence() {
		patches, inverse, err = sequencePatches(n, basePath)
	} else {
		patches, inverse, err = recordPatches(n, basePath)
	}
	if err != nil {
		return err
	}
	s.patches = append(s.patches, patches...)
	s.inverse = append(s.inverse, inverse...)
	return nil
}

func recordPatches(n *node, basePath Path) ([]Patch, []Patch, error) {
	c := n.copy.(*value.Object)
	keys := make([]string, 0, len(n.assigned))
	for k := range n.assigned {
		keys = append(keys, k.(string))
	}
	slices.SortFunc(keys, value.CompareKeys)

	var patches, inverse []Patch
	for _, k := range keys {
		orig, inBase, err := peek(n.base, k)
		if err != nil {
			return nil, nil, err
		}
		cur, inCopy := c.Get(k)

		var op Op
		switch {
		case !n.assigned[k] || !inCopy:
			if !inBase {
				continue
			}
			op = OpRemove
		case inBase:
			op = OpReplace
		default:
			op = OpAdd
		}
		if op == OpReplace && value.Identical(orig, cur) {
			continue
		}

		path := basePath.Append(k)
		switch op {
		case OpRemove:
			patches = append(patches, Patch{Op: OpRemove, Path: path})
			inverse = append(inverse, Patch{Op: OpAdd, Path: path, Value: orig})
		case OpAdd:
			patches = append(patches, Patch{Op: OpAdd, Path: path, Value: cur})
			inverse = append(inverse, Patch{Op: OpRemove, Path: path})
		default:
			patches = append(patches, Patch{Op: OpReplace, Path: path, Value: cur})
			inverse = append(inverse, Patch{Op: OpReplace, Path: path, Value: orig})
		}
	}
	return patches, inverse, nil
}

// sequencePatches emits replaces for changed interior slots, adds for a
// grown tail, and removes (or a single length replace) to undo them.
// When the sequence shrank, the roles of base and copy swap, so the forward
// list carries the length-style patch and the inverse carries the adds.
func sequencePatches(n *node, basePath Path) ([]Patch, []Patch, error) {
	base, err := itemsOf(n.base)
	if err != nil {
		return nil, nil, err
	}
	cur := n.copy.(*value.Array).Items()

	var patches, inverse []Patch
	fwd, inv := &patches, &inverse
	if len(cur) < len(base) {
		base, cur = cur, base
		fwd, inv = inv, fwd
	}
	delta := len(cur) - len(base)

	start := 0
	for start < len(base) && value.Identical(base[start], cur[start]) {
		start++
	}
	end := len(base)
	for end > start && value.Identical(base[end-1], cur[end+delta-1]) {
		end--
	}

	for i := start; i < end; i++ {
		if n.assigned[i] && !value.Identical(cur[i], base[i]) {
			path := basePath.Append(i)
			*fwd = append(*fwd, Patch{Op: OpReplace, Path: path, Value: cur[i]})
			*inv = append(*inv, Patch{Op: OpReplace, Path: path, Value: base[i]})
		}
	}

	if delta == 0 {
		return patches, inverse, nil
	}

	useRemove := end != len(base)
	adds := make([]Patch, 0, delta)
	for i := end; i < end+delta; i++ {
		adds = append(adds, Patch{Op: OpAdd, Path: basePath.Append(i), Value: cur[i]})
	}
	*fwd = append(*fwd, adds...)
	if useRemove {
		for i := end + delta - 1; i >= end; i-- {
			*inv = append(*inv, Patch{Op: OpRemove, Path: basePath.Append(i)})
		}
	} else {
		*inv = append(*inv, Patch{Op: OpReplace, Path: basePath.Append("length"), Value: value.Int(len(base))})
	}
	return patches, inverse, nil
}

package draft

import (
	"time"

	"github.com/roach88/draft/internal/value"
)

// PatchListener receives the forward and inverse patches of a transaction
// once it has finished.
type PatchListener func(patches, inverse []Patch)

// handle addresses a node in its scope's arena.
type handle int

const noParent handle = -1

// childKey identifies a cached child draft: the parent handle plus the key
// (string for records, int for sequences).
type childKey struct {
	parent handle
	key    any
}

// Scope is the bookkeeping context of one transaction.
//
// INVARIANTS:
//   - nodes is append-only while the scope is open; handles are indexes into it
//   - a child draft is cached at most once per (parent, key)
//   - after revoke, nodes is nil and every Draft of this scope is unusable
type Scope struct {
	id      int64
	parent  *Scope
	engine  *Engine
	started time.Time

	nodes    []*node
	children map[childKey]*Draft

	// canAutoFreeze is cleared when the result will reference a draft
	// from another scope, which must stay mutable until that scope ends.
	canAutoFreeze bool

	listener PatchListener
	patches  []Patch
	inverse  []Patch

	visiting map[value.Value]bool

	finished bool
	revoked  bool
}

func newScope(e *Engine, parent *Scope) *Scope {
	return &Scope{
		id:            e.ids.next(),
		parent:        parent,
		engine:        e,
		started:       time.Now(),
		children:      make(map[childKey]*Draft),
		canAutoFreeze: true,
		visiting:      make(map[value.Value]bool),
	}
}

// ID returns the scope's sequence number.
func (s *Scope) ID() int64 {
	return s.id
}

// leave pops the scope if it is the innermost one. The scope stays usable.
func (s *Scope) leave() {
	if s.engine.current == s {
		s.engine.current = s.parent
	}
}

// revoke leaves the scope and invalidates every draft it issued.
func (s *Scope) revoke() {
	s.leave()
	for _, n := range s.nodes {
		n.revoked = true
	}
	s.nodes = nil
	s.children = nil
	s.visiting = nil
	s.revoked = true
}

func (s *Scope) usePatches(listener PatchListener) {
	if listener == nil {
		return
	}
	s.listener = listener
	s.patches = []Patch{}
	s.inverse = []Patch{}
}

func (s *Scope) wantPatches() bool {
	return s.listener != nil
}

func (s *Scope) autoFreeze() bool {
	return s.engine.cfg.AutoFreeze && s.canAutoFreeze
}

func (s *Scope) sweep() bool {
	return s.engine.cfg.Detection == DetectSweep
}

func (s *Scope) modifiedCount() int {
	n := 0
	for _, nd := range s.nodes {
		if nd.modified {
			n++
		}
	}
	return n
}

// wrap registers a new draft node over base. base is a record, a sequence,
// or a draft of an enclosing scope.
func (s *Scope) wrap(base value.Value, parent *node) (*Draft, error) {
	class, length, err := shape(base)
	if err != nil {
		return nil, err
	}
	n := &node{
		scope:    s,
		h:        handle(len(s.nodes)),
		parent:   noParent,
		class:    class,
		base:     base,
		assigned: make(map[any]bool),
		proxied:  length,
	}
	if parent != nil {
		n.parent = parent.h
	}
	n.draft = &Draft{scope: s, h: n.h}
	s.nodes = append(s.nodes, n)
	return n.draft, nil
}

// cacheChild records d as the draft for key under parent.
func (s *Scope) cacheChild(parent *node, key any, d *Draft) {
	s.children[childKey{parent.h, key}] = d
	parent.childKeys = append(parent.childKeys, key)
}

func (s *Scope) cachedChild(parent *node, key any) (*Draft, bool) {
	d, ok := s.children[childKey{parent.h, key}]
	return d, ok
}

func (s *Scope) dropChild(parent *node, key any) {
	delete(s.children, childKey{parent.h, key})
}

// owns reports whether v is a draft issued by this scope.
func (s *Scope) owns(v value.Value) (*node, bool) {
	d, ok := v.(*Draft)
	if !ok || d.scope != s || s.revoked {
		return nil, false
	}
	return s.nodes[d.h], true
}

// notify hands the recorded patches to the listener once the scope has
// been revoked. Failed transactions report nothing.
func (s *Scope) notify(outcome Outcome) {
	if outcome == OutcomeRevoked || s.listener == nil {
		return
	}
	s.listener(s.patches, s.inverse)
}

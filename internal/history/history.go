package history

import (
	"errors"
	"fmt"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// DefaultLimit is the undo depth used when none is configured.
const DefaultLimit = 100

var (
	// ErrNothingToUndo is returned by Undo on an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is one recorded edit.
type Entry struct {
	ID      string
	Seq     int64
	Label   string
	Patches []draft.Patch
	Inverse []draft.Patch
}

// History tracks a state value together with the edits that produced it.
// Undo replays an entry's inverse patches and Redo replays its forward
// patches, so no intermediate states are retained.
//
// A History is not safe for concurrent use.
type History struct {
	engine  *draft.Engine
	ids     IDGenerator
	seq     Sequencer
	limit   int
	current value.Value
	undo    []Entry
	redo    []Entry
}

// Option configures a History.
type Option func(*History)

// WithEngine sets the engine used to produce and replay edits.
func WithEngine(e *draft.Engine) Option {
	return func(h *History) {
		h.engine = e
	}
}

// WithIDGenerator sets the entry id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *History) {
		h.ids = g
	}
}

// WithSequencer sets the entry sequence source.
func WithSequencer(s Sequencer) Option {
	return func(h *History) {
		h.seq = s
	}
}

// WithLimit bounds the undo stack. The oldest entries are dropped first.
// A limit below 1 keeps the default.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// New starts a history at initial.
func New(initial value.Value, opts ...Option) *History {
	h := &History{
		ids:     UUIDv7Generator{},
		limit:   DefaultLimit,
		current: initial,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.engine == nil {
		h.engine = draft.New()
	}
	if h.seq == nil {
		h.seq = &counter{}
	}
	return h
}

// Current returns the present state.
func (h *History) Current() value.Value {
	return h.current
}

// Do applies recipe to the present state and records the edit. An edit
// that changes nothing is not recorded and Do returns a nil entry.
// Recording an edit discards the redo stack.
func (h *History) Do(label string, recipe draft.Recipe) (*Entry, error) {
	if recipe == nil {
		return h.DoResult(label, nil)
	}
	return h.DoResult(label, func(d *draft.Draft) (draft.Result, error) {
		return draft.Keep(), recipe(d)
	})
}

// DoResult is Do for recipes that may replace the state or return Nothing.
// After Nothing the present state is nil until the edit is undone.
func (h *History) DoResult(label string, recipe draft.ResultRecipe) (*Entry, error) {
	var patches, inverse []draft.Patch
	res, err := h.engine.ProduceResult(h.current, recipe, draft.WithPatches(func(p, inv []draft.Patch) {
		patches, inverse = p, inv
	}))
	if err != nil {
		return nil, fmt.Errorf("history %q: %w", label, err)
	}
	if len(patches) == 0 {
		return nil, nil
	}
	next, _ := res.Value()

	e := Entry{
		ID:      h.ids.Generate(),
		Seq:     h.seq.Next(),
		Label:   label,
		Patches: patches,
		Inverse: inverse,
	}
	h.current = next
	h.undo = append(h.undo, e)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append(h.undo[:0:0], h.undo[over:]...)
	}
	h.redo = nil
	return &e, nil
}

// Undo reverts the most recent edit and returns it.
func (h *History) Undo() (*Entry, error) {
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	e := h.undo[len(h.undo)-1]
	next, err := h.engine.ApplyPatches(h.current, e.Inverse)
	if err != nil {
		return nil, fmt.Errorf("undo %s: %w", e.ID, err)
	}
	h.current = next
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return &e, nil
}

// Redo reapplies the most recently undone edit and returns it.
func (h *History) Redo() (*Entry, error) {
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	e := h.redo[len(h.redo)-1]
	next, err := h.engine.ApplyPatches(h.current, e.Patches)
	if err != nil {
		return nil, fmt.Errorf("redo %s: %w", e.ID, err)
	}
	h.current = next
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return &e, nil
}

// CanUndo reports whether Undo has an entry to revert.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has an entry to reapply.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Redoable returns the number of entries Redo can reapply.
func (h *History) Redoable() int { return len(h.redo) }

// Entries returns the undo stack, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.undo))
	copy(out, h.undo)
	return out
}

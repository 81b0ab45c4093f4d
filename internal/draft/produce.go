package draft

import (
	"context"
	"fmt"

	"github.com/roach88/draft/internal/value"
)

type resultKind uint8

const (
	resultKeep resultKind = iota
	resultReplace
	resultNothing
)

// Result is what a recipe hands back: keep the draft, replace the state
// with a new value, or replace it with nothing.
type Result struct {
	kind resultKind
	v    value.Value
}

// Keep finalizes the draft as the next state.
func Keep() Result {
	return Result{kind: resultKeep}
}

// Replace makes v the next state. Replace(nil) is the same as Keep, and so
// is replacing with the root draft itself.
func Replace(v value.Value) Result {
	if v == nil {
		return Keep()
	}
	return Result{kind: resultReplace, v: v}
}

// Nothing makes the next state explicitly absent, as opposed to unchanged.
func Nothing() Result {
	return Result{kind: resultNothing}
}

// Value returns the produced state. ok is false for Nothing.
func (r Result) Value() (value.Value, bool) {
	if r.kind == resultNothing {
		return nil, false
	}
	return r.v, true
}

// IsNothing reports whether the transaction produced Nothing.
func (r Result) IsNothing() bool {
	return r.kind == resultNothing
}

// Recipe edits a draft in place.
type Recipe func(d *Draft) error

// ResultRecipe edits a draft and may replace the state.
type ResultRecipe func(d *Draft) (Result, error)

// ContextRecipe is a ResultRecipe that observes cancellation.
type ContextRecipe func(ctx context.Context, d *Draft) (Result, error)

type produceConfig struct {
	listener    PatchListener
	listenerSet bool
}

// ProduceOption configures a single transaction.
type ProduceOption func(*produceConfig)

// WithPatches registers a listener that receives the transaction's forward
// and inverse patches after it finishes. A nil listener is a usage error.
func WithPatches(listener PatchListener) ProduceOption {
	return func(c *produceConfig) {
		c.listener = listener
		c.listenerSet = true
	}
}

func buildProduceConfig(opts []ProduceOption) (produceConfig, error) {
	var cfg produceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.listenerSet && cfg.listener == nil {
		return cfg, newError(ErrCodeInvalidListener, "patch listener must be a function")
	}
	return cfg, nil
}

// Produce runs recipe over a draft of base and returns the next state.
// When the recipe changes nothing, the result is base itself.
func (e *Engine) Produce(base value.Value, recipe Recipe, opts ...ProduceOption) (value.Value, error) {
	if recipe == nil {
		return nil, newError(ErrCodeInvalidRecipe, "recipe must be a function")
	}
	res, err := e.ProduceResult(base, func(d *Draft) (Result, error) {
		return Keep(), recipe(d)
	}, opts...)
	if err != nil {
		return nil, err
	}
	v, _ := res.Value()
	return v, nil
}

// ProduceResult is Produce for recipes that may replace the state or
// return Nothing.
func (e *Engine) ProduceResult(base value.Value, recipe ResultRecipe, opts ...ProduceOption) (Result, error) {
	if recipe == nil {
		return Result{}, newError(ErrCodeInvalidRecipe, "recipe must be a function")
	}
	return e.ProduceContext(context.Background(), base, func(_ context.Context, d *Draft) (Result, error) {
		return recipe(d)
	}, opts...)
}

// ProduceContext runs a recipe that may block. If ctx is done when the
// recipe returns, the transaction is revoked and ctx's error is returned.
func (e *Engine) ProduceContext(ctx context.Context, base value.Value, recipe ContextRecipe, opts ...ProduceOption) (res Result, err error) {
	if recipe == nil {
		return Result{}, newError(ErrCodeInvalidRecipe, "recipe must be a function")
	}
	cfg, err := buildProduceConfig(opts)
	if err != nil {
		return Result{}, err
	}
	if !isDraftable(base) {
		return Result{}, newError(ErrCodeNotDraftable, "produce needs a record or sequence base, got %s", kindOf(base))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s := e.enter()
	outcome := OutcomeRevoked
	defer func() {
		e.close(s, outcome)
		s.notify(outcome)
	}()

	root, err := s.wrap(base, nil)
	if err != nil {
		return Result{}, err
	}
	r, err := recipe(ctx, root)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("recipe outlived its context: %w", err)
	}
	s.leave()
	s.usePatches(cfg.listener)

	res, outcome, err = s.processResult(r)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// ProduceWithPatches runs recipe and returns the next state together with
// its forward and inverse patches.
func (e *Engine) ProduceWithPatches(base value.Value, recipe Recipe) (value.Value, []Patch, []Patch, error) {
	var patches, inverse []Patch
	out, err := e.Produce(base, recipe, WithPatches(func(p, inv []Patch) {
		patches, inverse = p, inv
	}))
	if err != nil {
		return nil, nil, nil, err
	}
	return out, patches, inverse, nil
}

// Curry binds recipe and options into a reusable state transition.
func (e *Engine) Curry(recipe Recipe, opts ...ProduceOption) func(base value.Value) (value.Value, error) {
	return func(base value.Value) (value.Value, error) {
		return e.Produce(base, recipe, opts...)
	}
}

// CreateDraft opens a manual transaction over base and returns its root
// draft. The caller edits it at will and ends the transaction with
// FinishDraft.
func (e *Engine) CreateDraft(base value.Value) (*Draft, error) {
	if !isDraftable(base) {
		return nil, newError(ErrCodeNotDraftable, "createDraft needs a record or sequence base, got %s", kindOf(base))
	}
	s := e.enter()
	d, err := s.wrap(base, nil)
	if err != nil {
		e.close(s, OutcomeRevoked)
		return nil, err
	}
	s.nodes[d.h].manual = true
	s.leave()
	return d, nil
}

// FinishDraft finalizes a draft obtained from CreateDraft and returns the
// next state. The draft is revoked afterwards.
func (e *Engine) FinishDraft(d *Draft, opts ...ProduceOption) (value.Value, error) {
	if d == nil {
		return nil, newError(ErrCodeInvalidValue, "nil draft")
	}
	if d.scope.finished {
		return nil, newError(ErrCodeAlreadyFinalized, "draft was already finalized")
	}
	n, err := d.node()
	if err != nil {
		return nil, err
	}
	if !n.manual {
		return nil, newError(ErrCodeNotManualDraft, "FinishDraft expects a draft returned by CreateDraft")
	}
	cfg, err := buildProduceConfig(opts)
	if err != nil {
		return nil, err
	}

	s := d.scope
	outcome := OutcomeRevoked
	defer func() {
		s.engine.close(s, outcome)
		s.notify(outcome)
	}()
	s.usePatches(cfg.listener)
	res, outcome, err := s.processResult(Keep())
	if err != nil {
		return nil, err
	}
	v, _ := res.Value()
	return v, nil
}

// ApplyPatches replays patches onto base.
//
// A root-level replace or remove supersedes everything before it, so the
// list is scanned backwards for the last one. When base is a draft it is
// edited in place; otherwise a new state is produced and base is untouched.
// A result of nil means the patches removed the root.
func (e *Engine) ApplyPatches(base value.Value, patches []Patch) (value.Value, error) {
	rest := patches
	for i := len(patches) - 1; i >= 0; i-- {
		p := patches[i]
		if len(p.Path) != 0 {
			continue
		}
		switch p.Op {
		case OpReplace, OpAdd:
			if p.Value == nil {
				return nil, newPathError(ErrCodeInvalidValue, p.Path, "%s patch without a value", p.Op)
			}
			base = value.DeepClone(p.Value)
		case OpRemove:
			base = nil
		default:
			return nil, newPathError(ErrCodeUnsupportedOp, p.Path, "unsupported patch op %q", p.Op)
		}
		rest = patches[i+1:]
		break
	}

	if d, ok := base.(*Draft); ok {
		return applyPatches(d, rest)
	}
	if len(rest) == 0 {
		return base, nil
	}
	if !value.Draftable(base) {
		return nil, newPathError(ErrCodeUnresolvedPath, rest[0].Path, "cannot apply patches to a value of kind %s", kindOf(base))
	}
	res, err := e.ProduceResult(base, func(d *Draft) (Result, error) {
		out, err := applyPatches(d, rest)
		if err != nil {
			return Result{}, err
		}
		if out == nil {
			return Nothing(), nil
		}
		return Replace(out), nil
	})
	if err != nil {
		return nil, err
	}
	v, _ := res.Value()
	return v, nil
}

// processResult turns the recipe's result into the next state.
func (s *Scope) processResult(r Result) (Result, Outcome, error) {
	root := s.nodes[0]
	replaced := r.kind == resultNothing ||
		(r.kind == resultReplace && r.v != value.Value(root.draft))

	if s.sweep() {
		if !replaced && s.wantPatches() {
			if err := s.markChangesRecursively(root); err != nil {
				return Result{}, OutcomeRevoked, err
			}
		}
		if err := s.markChangesSweep(); err != nil {
			return Result{}, OutcomeRevoked, err
		}
	}

	if replaced {
		if root.modified {
			return Result{}, OutcomeRevoked, newError(ErrCodeConflict,
				"a recipe returned a new value and also modified its draft; do one or the other")
		}
		if r.kind == resultNothing {
			if s.wantPatches() {
				s.patches = append(s.patches, Patch{Op: OpRemove, Path: Path{}})
				s.inverse = append(s.inverse, Patch{Op: OpReplace, Path: Path{}, Value: root.base})
			}
			s.finished = true
			return Nothing(), OutcomeNothing, nil
		}
		out, err := s.finalize(r.v, nil)
		if err != nil {
			return Result{}, OutcomeRevoked, err
		}
		if s.autoFreeze() {
			value.Freeze(out, false)
		}
		if s.wantPatches() {
			s.patches = append(s.patches, Patch{Op: OpReplace, Path: Path{}, Value: out})
			s.inverse = append(s.inverse, Patch{Op: OpReplace, Path: Path{}, Value: root.base})
		}
		s.finished = true
		return Result{kind: resultReplace, v: out}, OutcomeReplaced, nil
	}

	out, err := s.finalize(root.draft, Path{})
	if err != nil {
		return Result{}, OutcomeRevoked, err
	}
	s.finished = true
	return Result{kind: resultReplace, v: out}, OutcomeCommitted, nil
}

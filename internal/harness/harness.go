package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/testutil"
	"github.com/roach88/draft/internal/value"
)

// Harness executes scenarios against one engine.
type Harness struct {
	engine *draft.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger    *slog.Logger
	detection draft.DetectionMode
}

// WithLogger sets the logger for engine and harness messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithDetection forces a change detection mode regardless of what the
// scenario asks for.
func WithDetection(mode draft.DetectionMode) Option {
	return func(c *runConfig) {
		c.detection = mode
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh engine and a fresh clock. An error is returned
// only when the scenario itself cannot be executed, for example when its
// base is not a document; failed expectations are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := cfg.detection
	if mode == "" {
		var err error
		if mode, err = draft.ParseDetectionMode(scenario.Detection); err != nil {
			return nil, err
		}
	}
	engineCfg := draft.DefaultConfig()
	engineCfg.Detection = mode
	if scenario.AutoFreeze != nil {
		engineCfg.AutoFreeze = *scenario.AutoFreeze
	}

	h := &Harness{
		engine: draft.New(draft.WithConfig(engineCfg), draft.WithLogger(cfg.logger)),
		clock:  testutil.NewDeterministicClock(0),
		logger: cfg.logger,
	}

	base, err := value.FromGo(scenario.Base)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: base: %w", scenario.Name, err)
	}

	result := NewResult(mode)
	out, patches, inverse, err := h.produce(base, scenario.Steps, result)
	result.Output, result.Patches, result.Inverse, result.Err = out, patches, inverse, err

	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"detection", mode,
		"steps", len(scenario.Steps),
		"patches", len(patches),
		"error", err,
	)

	for _, msg := range h.check(base, scenario.Expect, result) {
		result.AddError(msg)
	}
	return result, nil
}

// produce runs the steps as one transaction.
func (h *Harness) produce(base value.Value, steps []Step, result *Result) (value.Value, []draft.Patch, []draft.Patch, error) {
	var patches, inverse []draft.Patch
	listener := func(p, inv []draft.Patch) {
		patches, inverse = p, inv
	}

	res, err := h.engine.ProduceResult(base, func(d *draft.Draft) (draft.Result, error) {
		out := draft.Keep()
		for i, step := range steps {
			r, err := ApplyStep(d, step)
			if err != nil {
				return draft.Result{}, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
			if r != nil {
				out = *r
			}
			result.AddTrace(h.clock.Next(), step.Op, draft.Path(step.Path))
		}
		return out, nil
	}, draft.WithPatches(listener))
	if err != nil {
		return nil, nil, nil, err
	}
	out, _ := res.Value()
	return out, patches, inverse, nil
}

// ApplyStep applies one step to a transaction's root draft. A non-nil
// Result is the transaction's new return value.
func ApplyStep(root *draft.Draft, step Step) (*draft.Result, error) {
	switch step.Op {
	case OpReplaceRoot:
		v, err := value.FromGo(step.Value)
		if err != nil {
			return nil, err
		}
		r := draft.Replace(v)
		return &r, nil
	case OpNothing:
		r := draft.Nothing()
		return &r, nil
	case OpSet, OpDelete:
		parent, err := walk(root, step.Path[:len(step.Path)-1])
		if err != nil {
			return nil, err
		}
		key := step.Path[len(step.Path)-1]
		if step.Op == OpDelete {
			return nil, parent.Delete(key)
		}
		v, err := value.FromGo(step.Value)
		if err != nil {
			return nil, err
		}
		return nil, parent.Set(key, v)
	}

	seq, err := walk(root, step.Path)
	if err != nil {
		return nil, err
	}
	values, err := fromGoList(step.Values)
	if err != nil {
		return nil, err
	}
	switch step.Op {
	case OpPush:
		_, err = seq.Push(values...)
	case OpPop:
		_, err = seq.Pop()
	case OpInsert:
		err = seq.Insert(step.Index, values...)
	case OpRemove:
		_, err = seq.RemoveAt(step.Index)
	case OpSplice:
		_, err = seq.Splice(step.Index, step.Count, values...)
	case OpSetLength:
		err = seq.SetLen(step.Length)
	default:
		err = fmt.Errorf("unknown op %q", step.Op)
	}
	return nil, err
}

// walk follows path from d through child drafts.
func walk(d *draft.Draft, path []any) (*draft.Draft, error) {
	for _, key := range path {
		child, err := d.Child(key)
		if err != nil {
			return nil, err
		}
		d = child
	}
	return d, nil
}

func fromGoList(items []any) ([]value.Value, error) {
	out := make([]value.Value, len(items))
	for i, item := range items {
		v, err := value.FromGo(item)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// errorMatches reports whether err carries the expected code or class.
func errorMatches(err error, want string) bool {
	var de *draft.Error
	if !errors.As(err, &de) {
		return false
	}
	return string(de.Code) == want || string(de.Class) == want
}

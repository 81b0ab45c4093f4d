package draft

import (
	"fmt"
	"log/slog"
	"time"
)

// DetectionMode selects how the engine discovers which drafts changed.
type DetectionMode string

const (
	// DetectEager marks a draft and its ancestors as changed on the first
	// write that actually changes a value (default).
	DetectEager DetectionMode = "eager"

	// DetectSweep records structural edits without marking them and walks
	// the scope's drafts in reverse creation order before finalization to
	// find what changed.
	DetectSweep DetectionMode = "sweep"
)

// ParseDetectionMode converts a config string into a DetectionMode.
// Empty defaults to DetectEager.
func ParseDetectionMode(s string) (DetectionMode, error) {
	switch DetectionMode(s) {
	case "", DetectEager:
		return DetectEager, nil
	case DetectSweep:
		return DetectSweep, nil
	default:
		return "", fmt.Errorf("invalid detection mode %q: must be eager or sweep", s)
	}
}

// Config holds the per-engine flags that govern every transaction.
type Config struct {
	// AutoFreeze freezes newly produced containers. Base values are never
	// frozen by the engine.
	AutoFreeze bool

	// Detection selects the change detection strategy.
	Detection DetectionMode
}

// DefaultConfig returns the engine defaults: auto-freeze on, eager detection.
func DefaultConfig() Config {
	return Config{
		AutoFreeze: true,
		Detection:  DetectEager,
	}
}

// Outcome describes how a transaction ended.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeReplaced  Outcome = "replaced"
	OutcomeNothing   Outcome = "nothing"
	OutcomeRevoked   Outcome = "revoked"
)

// TransactionStats summarizes one finished transaction.
type TransactionStats struct {
	Scope    int64
	Drafts   int
	Modified int
	Patches  int
	Outcome  Outcome
	Duration time.Duration
}

// Observer is notified after every transaction, including failed ones.
// Implementations must not call back into the engine.
type Observer interface {
	TransactionFinished(stats TransactionStats)
}

// Engine runs transactions.
//
// The engine tracks the innermost open scope so that a recipe can start a
// nested transaction. It holds no other mutable state between transactions.
//
// Thread-safety: an Engine must only be used from one goroutine at a time.
type Engine struct {
	cfg      Config
	current  *Scope
	ids      *ScopeIDs
	logger   *slog.Logger
	observer Observer
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithAutoFreeze toggles freezing of produced containers.
func WithAutoFreeze(on bool) EngineOption {
	return func(e *Engine) {
		e.cfg.AutoFreeze = on
	}
}

// WithDetection selects the change detection strategy.
func WithDetection(mode DetectionMode) EngineOption {
	return func(e *Engine) {
		e.cfg.Detection = mode
	}
}

// WithConfig replaces the whole engine configuration.
func WithConfig(cfg Config) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger used for transaction diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers a transaction observer, such as metrics.Collector.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithScopeIDs sets the counter used to number scopes.
func WithScopeIDs(c *ScopeIDs) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.ids = c
		}
	}
}

// New creates an Engine. Options are applied over DefaultConfig.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		ids:    NewScopeIDs(0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.Detection == "" {
		e.cfg.Detection = DetectEager
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Depth returns the number of open scopes. Zero means no transaction is in
// progress on this engine.
func (e *Engine) Depth() int {
	n := 0
	for s := e.current; s != nil; s = s.parent {
		n++
	}
	return n
}

// enter opens a new scope nested under the current one.
func (e *Engine) enter() *Scope {
	s := newScope(e, e.current)
	e.current = s
	e.logger.Debug("scope entered",
		"scope", s.id,
		"depth", e.Depth(),
	)
	return s
}

// close revokes s and reports the transaction to the observer.
// Calling close on an already revoked scope is a no-op.
func (e *Engine) close(s *Scope, outcome Outcome) {
	if s.revoked {
		return
	}
	stats := TransactionStats{
		Scope:    s.id,
		Drafts:   len(s.nodes),
		Modified: s.modifiedCount(),
		Patches:  len(s.patches),
		Outcome:  outcome,
		Duration: time.Since(s.started),
	}
	s.revoke()

	e.logger.Debug("scope closed",
		"scope", stats.Scope,
		"outcome", stats.Outcome,
		"drafts", stats.Drafts,
		"modified", stats.Modified,
		"patches", stats.Patches,
	)
	if e.observer != nil {
		e.observer.TransactionFinished(stats)
	}
}

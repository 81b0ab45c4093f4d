package harness

import (
	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Op   string `json:"op"`
	Path string `json:"path"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Detection is the change detection mode the scenario ran under.
	Detection draft.DetectionMode `json:"detection"`

	// Output is the produced state, nil when the transaction returned Nothing
	// or failed.
	Output value.Value `json:"-"`

	Patches []draft.Patch `json:"patches"`
	Inverse []draft.Patch `json:"inverse"`

	// Err is the transaction error, if any.
	Err error `json:"-"`

	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(mode draft.DetectionMode) *Result {
	return &Result{
		Pass:      true,
		Detection: mode,
		Trace:     []TraceEvent{},
		Errors:    []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(seq int64, op string, path draft.Path) {
	r.Trace = append(r.Trace, TraceEvent{Seq: seq, Op: op, Path: path.Pointer()})
}

package harness

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// Snapshot renders a run as canonical JSON for golden comparison.
//
// The document holds the scenario name, detection mode, step trace and
// either the error code or the result with both patch lists. A removed
// result is rendered as null.
func Snapshot(name string, r *Result) ([]byte, error) {
	trace := value.NewArray()
	for _, ev := range r.Trace {
		_ = trace.Append(value.NewObject(
			value.P("seq", value.Int(ev.Seq)),
			value.P("op", value.String(ev.Op)),
			value.P("path", value.String(ev.Path)),
		))
	}
	doc := value.NewObject(
		value.P("scenario", value.String(name)),
		value.P("detection", value.String(r.Detection)),
		value.P("trace", trace),
	)

	if r.Err != nil {
		code := r.Err.Error()
		var de *draft.Error
		if errors.As(r.Err, &de) {
			code = string(de.Code)
		}
		_ = doc.Set("error", value.String(code))
		return value.MarshalCanonical(doc)
	}

	var out value.Value = value.Null{}
	if r.Output != nil {
		out = r.Output
	}
	patches, err := draft.PatchesValue(r.Patches)
	if err != nil {
		return nil, err
	}
	inverse, err := draft.PatchesValue(r.Inverse)
	if err != nil {
		return nil, err
	}
	_ = doc.Set("result", out)
	_ = doc.Set("patches", patches)
	_ = doc.Set("inverse", inverse)
	return value.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario, fails the test on any failed
// expectation and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

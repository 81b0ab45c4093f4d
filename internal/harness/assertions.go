package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// check evaluates every expectation and returns the failures.
func (h *Harness) check(base value.Value, want Expect, r *Result) []string {
	var failures []string
	fail := func(err error) {
		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	if want.Error != "" {
		if r.Err == nil {
			fail(&AssertionError{Type: "error", Expected: want.Error, Actual: "no error, result " + value.Format(r.Output)})
		} else if !errorMatches(r.Err, want.Error) {
			fail(&AssertionError{Type: "error", Expected: want.Error, Actual: r.Err.Error()})
		}
		return failures
	}
	if r.Err != nil {
		fail(&AssertionError{Type: "error", Expected: "no error", Actual: r.Err.Error()})
		return failures
	}

	if want.Removed && r.Output != nil {
		fail(&AssertionError{Type: "removed", Expected: "no result", Actual: value.Format(r.Output)})
	}
	if !want.Removed && r.Output == nil {
		fail(&AssertionError{Type: "removed", Expected: "a result", Actual: "the transaction returned nothing"})
		return failures
	}
	if want.Unchanged && !value.Identical(base, r.Output) {
		fail(&AssertionError{Type: "unchanged", Expected: "the base itself", Actual: value.Format(r.Output)})
	}
	if want.Result != nil {
		fail(assertResult(want.Result, r.Output))
	}
	for _, path := range want.Shared {
		fail(assertShared(base, r.Output, path))
	}
	if want.Patches != nil {
		fail(assertPatches("patches", want.Patches, r.Patches))
	}
	if want.Inverse != nil {
		fail(assertPatches("inverse", want.Inverse, r.Inverse))
	}
	fail(h.assertRoundTrip(base, r))
	return failures
}

func assertResult(want any, got value.Value) error {
	expected, err := value.FromGo(want)
	if err != nil {
		return fmt.Errorf("expect.result: %w", err)
	}
	if !value.Equal(expected, got) {
		return &AssertionError{Type: "result", Expected: value.Format(expected), Actual: value.Format(got)}
	}
	return nil
}

// assertShared checks that the values at path are the same object in base
// and result.
func assertShared(base, out value.Value, path []any) error {
	p := draft.Path(path)
	before, ok := lookup(base, path)
	if !ok {
		return &AssertionError{Type: "shared", Expected: "base has " + p.String(), Actual: "missing"}
	}
	after, ok := lookup(out, path)
	if !ok {
		return &AssertionError{Type: "shared", Expected: "result has " + p.String(), Actual: "missing"}
	}
	if !value.Identical(before, after) {
		return &AssertionError{Type: "shared", Expected: p.String() + " reused from base", Actual: "a different " + after.Kind().String()}
	}
	return nil
}

func assertPatches(kind string, want []any, got []draft.Patch) error {
	expected, err := value.FromGo(want)
	if err != nil {
		return fmt.Errorf("expect.%s: %w", kind, err)
	}
	actual, err := draft.PatchesValue(got)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if !value.Equal(expected, actual) {
		return &AssertionError{Type: kind, Expected: value.Format(expected), Actual: value.Format(actual)}
	}
	return nil
}

// assertRoundTrip replays the patches: forward patches must turn base into
// the result and inverse patches must turn the result back into base.
func (h *Harness) assertRoundTrip(base value.Value, r *Result) error {
	forward, err := h.engine.ApplyPatches(base, r.Patches)
	if err != nil {
		return &AssertionError{Type: "round_trip", Expected: "patches apply to base", Actual: err.Error()}
	}
	if !sameState(r.Output, forward) {
		return &AssertionError{Type: "round_trip", Expected: value.Format(r.Output), Actual: value.Format(forward)}
	}

	back, err := h.engine.ApplyPatches(r.Output, r.Inverse)
	if err != nil {
		return &AssertionError{Type: "round_trip", Expected: "inverse patches apply to result", Actual: err.Error()}
	}
	if !sameState(base, back) {
		return &AssertionError{Type: "round_trip", Expected: value.Format(base), Actual: value.Format(back)}
	}
	return nil
}

func sameState(a, b value.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return value.Equal(a, b)
}

// lookup walks a finalized value.
func lookup(v value.Value, path []any) (value.Value, bool) {
	for _, seg := range path {
		switch c := v.(type) {
		case *value.Object:
			key, ok := seg.(string)
			if !ok {
				return nil, false
			}
			next, ok := c.Get(key)
			if !ok {
				return nil, false
			}
			v = next
		case *value.Array:
			i, ok := seg.(int)
			if !ok || i < 0 || i >= c.Len() {
				return nil, false
			}
			v = c.At(i)
		default:
			return nil, false
		}
	}
	return v, true
}

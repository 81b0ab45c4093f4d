package draft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/draft/internal/value"
)

func child(t *testing.T, d *Draft, key any) *Draft {
	t.Helper()
	c, err := d.Child(key)
	require.NoError(t, err)
	return c
}

// at walks a plain value graph.
func at(t *testing.T, v value.Value, path ...any) value.Value {
	t.Helper()
	for _, seg := range path {
		next, ok, err := peek(v, seg)
		require.NoError(t, err)
		require.True(t, ok, "missing %v", seg)
		v = next
	}
	return v
}

func patchesJSON(t *testing.T, patches []Patch) string {
	t.Helper()
	arr, err := PatchesValue(patches)
	require.NoError(t, err)
	out, err := value.MarshalCanonical(arr)
	require.NoError(t, err)
	return string(out)
}

type recordingObserver struct {
	stats []TransactionStats
}

func (r *recordingObserver) TransactionFinished(s TransactionStats) {
	r.stats = append(r.stats, s)
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/draft/internal/value"
)

// JSON parses s into a value, failing the test on malformed input.
func JSON(t testing.TB, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err, "parse %s", s)
	return v
}

// Canonical renders v as canonical JSON, failing the test if v cannot be
// encoded.
func Canonical(t testing.TB, v value.Value) string {
	t.Helper()
	b, err := value.MarshalCanonical(v)
	require.NoError(t, err)
	return string(b)
}

// AssertJSON checks that v is deep-equal to the JSON document want.
func AssertJSON(t testing.TB, want string, v value.Value) {
	t.Helper()
	require.Equal(t, Canonical(t, JSON(t, want)), Canonical(t, v))
}

package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: ok
description: "valid"
base: { items: [1, 2] }
steps:
  - op: splice
    path: [items]
    index: 0
    count: 1
    values: [x, y]
expect:
  result: { items: [x, y, 2] }
`))
	require.NoError(t, err)

	assert.Equal(t, "ok", s.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, OpSplice, s.Steps[0].Op)
	assert.Equal(t, []any{"items"}, s.Steps[0].Path)
	assert.Equal(t, 1, s.Steps[0].Count)
	assert.Equal(t, []any{"x", "y"}, s.Steps[0].Values)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nbase: {}\nstep: []\n",
			want: "field step not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nbase: {}\n",
			want: "name is required",
		},
		{
			name: "missing base",
			yaml: "name: x\ndescription: d\n",
			want: "base is required",
		},
		{
			name: "bad detection",
			yaml: "name: x\ndescription: d\nbase: {}\ndetection: lazy\n",
			want: "invalid detection mode",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: d\nbase: {}\nsteps:\n  - op: shuffle\n",
			want: `steps[0]: unknown op "shuffle"`,
		},
		{
			name: "set without path",
			yaml: "name: x\ndescription: d\nbase: {}\nsteps:\n  - op: set\n    value: 1\n",
			want: "set needs a non-empty path",
		},
		{
			name: "float path segment",
			yaml: "name: x\ndescription: d\nbase: []\nsteps:\n  - op: set\n    path: [1.5]\n",
			want: "must be a string or an integer",
		},
		{
			name: "error with result",
			yaml: "name: x\ndescription: d\nbase: {}\nexpect:\n  error: CONFLICT\n  result: {}\n",
			want: "error excludes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_RejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	doc := []byte("name: same\ndescription: d\nbase: {}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), doc, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), doc, 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}

func TestLoadScenarios_EmptyDir(t *testing.T) {
	_, err := LoadScenarios(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSteps(t *testing.T) {
	steps, err := ParseSteps([]byte(`
- op: set
  path: [title]
  value: hi
- op: pop
  path: [items]
`))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "hi", steps[0].Value)

	_, err = ParseSteps([]byte("- op: set\n  path: [a]\n  valu: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valu")
}

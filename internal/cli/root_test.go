package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns stdout and
// stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "draft", cmd.Use)
	assert.Contains(t, cmd.Long, "copy-on-write")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"produce", "apply", "canon", "history", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("metrics"))
}

func TestInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{}`)

	_, _, err := executeCommand(t, "", "canon", doc, "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{}`)
	cfg := writeFile(t, dir, "engine.yaml", "detection: lazy\n")

	_, _, err := executeCommand(t, "", "canon", doc, "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "load config")
}

func TestMetricsFlag(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	patches := writeFile(t, dir, "patches.json", `[{"op":"replace","path":["a"],"value":2}]`)

	stdout, stderr, err := executeCommand(t, "", "apply", base, patches, "--metrics")
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":2}\n", stdout)
	assert.Contains(t, stderr, "draft_engine_transactions_total")
	assert.Contains(t, stderr, "draft_engine_patches_total")
}

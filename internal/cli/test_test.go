package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushScenario = `name: push_grow
base: { items: [1] }
steps:
  - op: push
    path: [items]
    values: [2, 3]
expect:
  result: { items: [1, 2, 3] }
`

const failingScenario = `name: wrong_result
base: { a: 1 }
steps:
  - op: set
    path: [a]
    value: 2
expect:
  result: { a: 3 }
`

func TestTest_HarnessScenariosPass(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "test", "../harness/testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ record_edit")
	assert.Contains(t, stdout, "✓ sweep_structural")
	assert.Contains(t, stdout, "9 passed, 0 failed, 9 total")
}

func TestTest_ForcedDetection(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "test", "../harness/testdata/scenarios", "--detection", "sweep", "--filter", "record_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTest_InvalidDetection(t *testing.T) {
	_, _, err := executeCommand(t, "", "test", "../harness/testdata/scenarios", "--detection", "proxy")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pass.yaml", pushScenario)
	writeFile(t, dir, "fail.yaml", failingScenario)

	stdout, _, err := executeCommand(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ wrong_result")
	assert.Contains(t, stdout, "Assertion failed: result")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
}

func TestTest_GoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "push.yaml", pushScenario)

	stdout, _, err := executeCommand(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ push_grow (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "push_grow.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario":"push_grow"`)

	_, _, err = executeCommand(t, "", "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{}`), 0o644))
	stdout, _, err = executeCommand(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "snapshot does not match golden file")
}

func TestTest_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "push.yaml", pushScenario)

	stdout, _, err := executeCommand(t, "", "test", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "push_grow", resp.Data.Scenarios[0].Name)
}

func TestTest_EmptyAndMissingDir(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, _, err = executeCommand(t, "", "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", pushScenario)
	writeFile(t, dir, "b.yml", pushScenario)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "golden"), 0o755))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, files)

	files, err = findScenarioFiles(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

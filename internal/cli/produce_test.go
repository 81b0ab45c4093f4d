package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todosBase = `{"todos":[{"title":"a","done":false}]}`

const todosEdits = `
- op: set
  path: [todos, 0, done]
  value: true
- op: push
  path: [todos]
  values:
    - { title: b, done: false }
`

func TestProduce_Text(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", todosBase)
	edits := writeFile(t, dir, "edits.yaml", todosEdits)

	stdout, _, err := executeCommand(t, "", "produce", base, edits)
	require.NoError(t, err)
	assert.Equal(t, "{\"todos\":[{\"done\":true,\"title\":\"a\"},{\"done\":false,\"title\":\"b\"}]}\n", stdout)
}

func TestProduce_TextWithPatches(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", todosBase)
	edits := writeFile(t, dir, "edits.yaml", todosEdits)

	stdout, _, err := executeCommand(t, "", "produce", base, edits, "--patches")
	require.NoError(t, err)
	assert.Contains(t, stdout, "patches:\n  {\"op\":\"replace\",\"path\":[\"todos\",0,\"done\"],\"value\":true}\n")
	assert.Contains(t, stdout, `{"op":"add","path":["todos",1],"value":{"done":false,"title":"b"}}`)
	assert.Contains(t, stdout, "inverse:\n  {\"op\":\"replace\",\"path\":[\"todos\",0,\"done\"],\"value\":false}\n")
	assert.Contains(t, stdout, `{"op":"replace","path":["todos","length"],"value":1}`)
}

func TestProduce_StdinBase(t *testing.T) {
	dir := t.TempDir()
	edits := writeFile(t, dir, "edits.yaml", "- op: delete\n  path: [a]\n")

	stdout, _, err := executeCommand(t, `{"a":1,"b":2}`, "produce", "-", edits)
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":2}\n", stdout)
}

func TestProduce_PatchesRoundTripThroughApply(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", todosBase)
	edits := writeFile(t, dir, "edits.yaml", todosEdits)

	stdout, _, err := executeCommand(t, "", "produce", base, edits, "-p", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Result  json.RawMessage `json:"result"`
			Patches json.RawMessage `json:"patches"`
			Inverse json.RawMessage `json:"inverse"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	next := writeFile(t, dir, "next.json", string(resp.Data.Result))
	forward := writeFile(t, dir, "forward.json", string(resp.Data.Patches))
	undo := writeFile(t, dir, "undo.json", string(resp.Data.Inverse))

	replayed, _, err := executeCommand(t, "", "apply", base, forward)
	require.NoError(t, err)
	assert.JSONEq(t, string(resp.Data.Result), replayed)

	restored, _, err := executeCommand(t, "", "apply", next, undo)
	require.NoError(t, err)
	assert.JSONEq(t, todosBase, restored)
}

func TestProduce_ConflictFails(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	edits := writeFile(t, dir, "edits.yaml", "- op: set\n  path: [a]\n  value: 2\n- op: nothing\n")

	stdout, _, err := executeCommand(t, "", "produce", base, edits)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [MODIFIED_AND_REPLACED]")
}

func TestProduce_NothingPrintsNull(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	edits := writeFile(t, dir, "edits.yaml", "- op: nothing\n")

	stdout, _, err := executeCommand(t, "", "produce", base, edits)
	require.NoError(t, err)
	assert.Equal(t, "null\n", stdout)
}

func TestProduce_BadEditScript(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	edits := writeFile(t, dir, "edits.yaml", "- op: shuffle\n")

	stdout, _, err := executeCommand(t, "", "produce", base, edits)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E003]")
}

func TestProduce_MissingBase(t *testing.T) {
	dir := t.TempDir()
	edits := writeFile(t, dir, "edits.yaml", "- op: pop\n")

	stdout, _, err := executeCommand(t, "", "produce", dir+"/missing.json", edits, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, `"code":"E002"`)
}

func TestProduce_SweepConfig(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	edits := writeFile(t, dir, "edits.yaml", "- op: set\n  path: [b]\n  value: 2\n")
	cfg := writeFile(t, dir, "engine.cue", `detection: "sweep"`)

	stdout, _, err := executeCommand(t, "", "produce", base, edits, "-p", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, `{"op":"add","path":["b"],"value":2}`)
	assert.Contains(t, stdout, `{"op":"remove","path":["b"]}`)
}

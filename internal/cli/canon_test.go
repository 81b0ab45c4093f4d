package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanon_Text(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{ "b": 1, "a": [true, null, 1.5] }`)

	stdout, _, err := executeCommand(t, "", "canon", doc)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":[true,null,1.5],\"b\":1}\n", stdout)
}

func TestCanon_FingerprintIgnoresFormatting(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"x":[1,2],"y":"z"}`)
	b := writeFile(t, dir, "b.json", "{\n  \"y\": \"z\",\n  \"x\": [1, 2]\n}")

	outA, _, err := executeCommand(t, "", "canon", a, "--fingerprint")
	require.NoError(t, err)
	outB, _, err := executeCommand(t, "", "canon", b, "--fingerprint")
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
	lines := strings.Split(strings.TrimSpace(outA), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[1], 64)
}

func TestCanon_JSON(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"b":1,"a":2}`)

	stdout, _, err := executeCommand(t, "", "canon", doc, "--format", "json", "--fingerprint")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CanonOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, `{"a":2,"b":1}`, string(resp.Data.Canonical))
	assert.Len(t, resp.Data.Fingerprint, 64)
}

func TestCanon_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a":`)

	stdout, _, err := executeCommand(t, "", "canon", doc)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E003]")
}

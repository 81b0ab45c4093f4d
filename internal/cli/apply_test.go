package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_ArrayAndPointerPaths(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1,"list":[1,2]}`)
	patches := writeFile(t, dir, "patches.json", `[
		{"op":"replace","path":"/a","value":2},
		{"op":"add","path":["b"],"value":[1]},
		{"op":"add","path":"/list/-","value":3}
	]`)

	stdout, _, err := executeCommand(t, "", "apply", base, patches)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":2,\"b\":[1],\"list\":[1,2,3]}\n", stdout)
}

func TestApply_UnresolvedPath(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"a":1}`)
	patches := writeFile(t, dir, "patches.json", `[{"op":"remove","path":["x","y"]}]`)

	stdout, _, err := executeCommand(t, "", "apply", base, patches, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, `"code":"UNRESOLVED_PATH"`)
	assert.Contains(t, stdout, `"class":"structural"`)
}

func TestApply_MalformedPatches(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{}`)
	patches := writeFile(t, dir, "patches.json", `{"op":"add"}`)

	_, _, err := executeCommand(t, "", "apply", base, patches)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_DocumentText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Document(value.MustParse(`{"b":1,"a":[true]}`)))
	assert.Equal(t, "{\"a\":[true],\"b\":1}\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Document(nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestOutputFormatter_DocumentJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Document(value.MustParse(`{"a":null}`)))
	assert.JSONEq(t, `{"status":"ok","data":{"a":null}}`, buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeReadFailed, "cannot read base", map[string]string{"file": "x.json"}))
	assert.Contains(t, buf.String(), "Error [E002]: cannot read base")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "failed", map[string]string{"file": "x.json"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_FailEngineError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	_, cause := draft.ApplyPatches(value.MustParse(`{"a":{}}`), []draft.Patch{
		{Op: draft.OpReplace, Path: draft.Path{"missing", "x"}, Value: value.Int(1)},
	})
	require.Error(t, cause)

	err := formatter.Fail("apply patches", cause)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, errors.Is(err, draft.ErrStructural))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "UNRESOLVED_PATH", resp.Error.Code)
	assert.Equal(t, "structural", resp.Error.Class)
}

func TestOutputFormatter_FailGenericError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail("produce", errors.New("boom"))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E001]: produce: boom")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("loaded %s", "base.json")
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded base.json\n", diag.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.Equal(t, "loaded base.json\n", diag.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitFailure, "scenarios failed", errors.New("2 of 3"))
	assert.Equal(t, "scenarios failed: 2 of 3", wrapped.Error())
}

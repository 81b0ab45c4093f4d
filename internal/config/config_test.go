package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/draft/internal/draft"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Engine.AutoFreeze)
	assert.Equal(t, draft.DetectEager, cfg.Engine.Detection)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "sweep.yaml"))
	require.NoError(t, err)

	assert.False(t, cfg.Engine.AutoFreeze)
	assert.Equal(t, draft.DetectSweep, cfg.Engine.Detection)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 100, cfg.HistoryLimit, "schema default")
}

func TestLoad_CUE(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "sweep.cue"))
	require.NoError(t, err)

	assert.False(t, cfg.Engine.AutoFreeze)
	assert.Equal(t, draft.DetectSweep, cfg.Engine.Detection)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 20, cfg.HistoryLimit)
}

func TestParse_EmptyYAMLTakesDefaults(t *testing.T) {
	cfg, err := Parse(nil, FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_YAMLRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("auto_freeze: true\nautofreeze: false\n"), FormatYAML, "typo.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "autofreeze")
}

func TestParse_SchemaRejectsBadDetection(t *testing.T) {
	_, err := Parse([]byte("detection: lazy\n"), FormatYAML, "bad.yaml")
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "detection", cfgErr.Field)
}

func TestParse_SchemaRejectsBadLimit(t *testing.T) {
	_, err := Parse([]byte("history_limit: 0"), FormatCUE, "bad.cue")
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "history_limit", cfgErr.Field)
}

func TestParse_CUERejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`use_proxies: true`), FormatCUE, "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use_proxies")
}

func TestParse_CUESyntaxError(t *testing.T) {
	_, err := Parse([]byte(`auto_freeze: [`), FormatCUE, "broken.cue")
	require.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_EngineOptions(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "sweep.yaml"))
	require.NoError(t, err)

	e := draft.New(cfg.EngineOptions()...)
	assert.Equal(t, cfg.Engine, e.Config())
}

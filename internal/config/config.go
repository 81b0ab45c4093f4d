// Package config loads engine settings from YAML or CUE files.
//
// Both formats are checked against the same CUE schema (schema.cue), which
// also supplies defaults. YAML files are additionally decoded strictly, so
// a misspelled key fails with a line number instead of being ignored.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/draft/internal/draft"
)

//go:embed schema.cue
var schemaSource string

// Format names a config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// File mirrors the on-disk config. Field tags serve yaml.v3 and CUE decoding.
type File struct {
	AutoFreeze   bool   `yaml:"auto_freeze" json:"auto_freeze"`
	Detection    string `yaml:"detection" json:"detection"`
	LogLevel     string `yaml:"log_level" json:"log_level"`
	HistoryLimit int    `yaml:"history_limit" json:"history_limit"`
}

// Config is the resolved configuration.
type Config struct {
	Engine       draft.Config
	LogLevel     slog.Level
	HistoryLimit int
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine:       draft.DefaultConfig(),
		LogLevel:     slog.LevelInfo,
		HistoryLimit: 100,
	}
}

// Error reports an invalid config file.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", &Error{Field: "file", Message: fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// Load reads the config file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, format, path)
}

// Parse decodes config data in the given format. name labels positions in
// error messages.
func Parse(data []byte, format Format, name string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	var doc cue.Value
	switch format {
	case FormatYAML:
		raw, err := decodeYAML(data)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", name, err)
		}
		doc = ctx.Encode(raw)
	case FormatCUE:
		doc = ctx.CompileBytes(data, cue.Filename(name))
	default:
		return Config{}, &Error{Field: "format", Message: fmt.Sprintf("unknown config format %q", format)}
	}
	if err := doc.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	merged := schema.Unify(doc)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}
	var f File
	if err := merged.Decode(&f); err != nil {
		return Config{}, formatCUEError(err)
	}
	return resolve(f)
}

// decodeYAML decodes strictly into File to reject unknown keys, then a
// second time into a generic map for schema unification. Keys absent from
// the file must stay absent so the schema defaults apply.
func decodeYAML(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func resolve(f File) (Config, error) {
	mode, err := draft.ParseDetectionMode(f.Detection)
	if err != nil {
		return Config{}, &Error{Field: "detection", Message: err.Error()}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.LogLevel)); err != nil {
		return Config{}, &Error{Field: "log_level", Message: err.Error()}
	}
	return Config{
		Engine: draft.Config{
			AutoFreeze: f.AutoFreeze,
			Detection:  mode,
		},
		LogLevel:     level,
		HistoryLimit: f.HistoryLimit,
	}, nil
}

// EngineOptions returns the engine options for c.
func (c Config) EngineOptions() []draft.EngineOption {
	return []draft.EngineOption{draft.WithConfig(c.Engine)}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	field := "config"
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	var pos token.Pos
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return &Error{Field: field, Message: first.Error(), Pos: pos}
}

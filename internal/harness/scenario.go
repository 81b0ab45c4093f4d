package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/draft/internal/draft"
)

// Scenario is one transaction over a base document plus its expected
// outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Detection selects the change detection mode. Empty means eager.
	Detection string `yaml:"detection,omitempty"`

	// AutoFreeze overrides the engine default when set.
	AutoFreeze *bool `yaml:"auto_freeze,omitempty"`

	// Base is the document the transaction starts from.
	Base any `yaml:"base"`

	// Steps are applied in order to the root draft.
	Steps []Step `yaml:"steps"`

	// Expect describes the outcome. Every field is optional.
	Expect Expect `yaml:"expect"`
}

// Step is one edit inside the transaction.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Path locates the target. For set and delete the last element is the
	// key being written; for sequence ops it names the sequence itself.
	Path []any `yaml:"path,omitempty"`

	// Value is the written value for set and replace_root.
	Value any `yaml:"value,omitempty"`

	// Values are the items for push, insert and splice.
	Values []any `yaml:"values,omitempty"`

	// Index is the position for insert and remove, and the start for splice.
	Index int `yaml:"index,omitempty"`

	// Count is the number of items splice removes.
	Count int `yaml:"count,omitempty"`

	// Length is the new length for set_length.
	Length int `yaml:"length,omitempty"`
}

// Expect lists the assertions made about a run.
type Expect struct {
	Result    any     `yaml:"result,omitempty"`
	Removed   bool    `yaml:"removed,omitempty"`
	Unchanged bool    `yaml:"unchanged,omitempty"`
	Shared    [][]any `yaml:"shared,omitempty"`
	Patches   []any   `yaml:"patches,omitempty"`
	Inverse   []any   `yaml:"inverse,omitempty"`
	Error     string  `yaml:"error,omitempty"`
}

// Step ops.
const (
	OpSet         = "set"
	OpDelete      = "delete"
	OpPush        = "push"
	OpPop         = "pop"
	OpInsert      = "insert"
	OpRemove      = "remove"
	OpSplice      = "splice"
	OpSetLength   = "set_length"
	OpReplaceRoot = "replace_root"
	OpNothing     = "nothing"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ParseSteps decodes a bare YAML list of steps, as used by edit scripts.
func ParseSteps(data []byte) ([]Step, error) {
	var steps []Step
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&steps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i, step := range steps {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return steps, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, ordered by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, p)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Base == nil {
		return fmt.Errorf("base is required")
	}
	if _, err := draft.ParseDetectionMode(s.Detection); err != nil {
		return err
	}
	if s.Expect.Removed && (s.Expect.Result != nil || s.Expect.Unchanged) {
		return fmt.Errorf("expect: removed excludes result and unchanged")
	}
	if s.Expect.Error != "" && (s.Expect.Result != nil || s.Expect.Removed || s.Expect.Unchanged) {
		return fmt.Errorf("expect: error excludes result, removed and unchanged")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	for _, seg := range step.Path {
		switch seg.(type) {
		case string, int:
		default:
			return fmt.Errorf("path segment %v must be a string or an integer", seg)
		}
	}

	switch step.Op {
	case OpSet, OpDelete:
		if len(step.Path) == 0 {
			return fmt.Errorf("%s needs a non-empty path", step.Op)
		}
	case OpPush, OpPop, OpInsert, OpRemove, OpSplice, OpSetLength:
	case OpReplaceRoot:
		if len(step.Path) != 0 {
			return fmt.Errorf("replace_root takes no path")
		}
	case OpNothing:
		if len(step.Path) != 0 || step.Value != nil {
			return fmt.Errorf("nothing takes no path or value")
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

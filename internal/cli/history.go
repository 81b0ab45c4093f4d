package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/harness"
	"github.com/roach88/draft/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Undo int // entries to undo after recording
	Redo int // entries to redo after undoing
}

// HistoryEntry describes one recorded edit.
type HistoryEntry struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Label   string `json:"label"`
	Patches int    `json:"patches"`
}

// HistoryOutput is the JSON payload of the history command.
type HistoryOutput struct {
	State    json.RawMessage `json:"state"`
	Entries  []HistoryEntry  `json:"entries"`
	Redoable int             `json:"redoable"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <base.json> <edits.yaml>",
		Short: "Record each edit step as an undoable entry",
		Long: `Record every step of an edit script as its own undoable edit, then
walk back and forth through the history.

Each step runs in its own transaction. Steps that change nothing are not
recorded. The undo depth is history_limit from the config file (default
100); older entries are dropped. --undo reverts the newest entries and
--redo reapplies them again.

Examples:
  draft history state.json edits.yaml
  draft history state.json edits.yaml --undo 2
  draft history state.json edits.yaml --undo 2 --redo 1 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Undo, "undo", 0, "number of entries to undo")
	cmd.Flags().IntVar(&opts.Redo, "redo", 0, "number of entries to redo after undoing")

	return cmd
}

func runHistory(opts *HistoryOptions, basePath, editsPath string, cmd *cobra.Command) error {
	if opts.Undo < 0 || opts.Redo < 0 {
		return NewExitError(ExitCommandError, "--undo and --redo must not be negative")
	}
	f := opts.formatter(cmd)

	base, err := readDocument(cmd, f, basePath)
	if err != nil {
		return err
	}
	data, err := readInput(cmd, f, editsPath)
	if err != nil {
		return err
	}
	steps, err := harness.ParseSteps(data)
	if err != nil {
		return f.inputFailure(ErrCodeParseFailed, "parse "+editsPath, err)
	}

	h := history.New(base,
		history.WithEngine(opts.newEngine()),
		history.WithLimit(opts.cfg.HistoryLimit),
	)
	for i, step := range steps {
		label := fmt.Sprintf("step %d: %s", i, step.Op)
		e, err := h.DoResult(label, func(d *draft.Draft) (draft.Result, error) {
			r, err := harness.ApplyStep(d, step)
			if err != nil || r == nil {
				return draft.Keep(), err
			}
			return *r, nil
		})
		if err != nil {
			return f.Fail("record", err)
		}
		if e == nil {
			f.VerboseLog("%s changed nothing", label)
		}
	}

	for range opts.Undo {
		if _, err := h.Undo(); err != nil {
			return f.Fail("undo", err)
		}
	}
	for range opts.Redo {
		if _, err := h.Redo(); err != nil {
			return f.Fail("redo", err)
		}
	}

	state, err := documentJSON(h.Current())
	if err != nil {
		return f.Fail("encode state", err)
	}
	recorded := h.Entries()
	entries := make([]HistoryEntry, len(recorded))
	for i, e := range recorded {
		entries[i] = HistoryEntry{ID: e.ID, Seq: e.Seq, Label: e.Label, Patches: len(e.Patches)}
	}

	if opts.Format == "json" {
		return f.Success(HistoryOutput{State: state, Entries: entries, Redoable: h.Redoable()})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, string(state))
	fmt.Fprintf(w, "entries: %d (redoable: %d)\n", len(entries), h.Redoable())
	for _, e := range entries {
		fmt.Fprintf(w, "  #%d %s (%d patches)\n", e.Seq, e.Label, e.Patches)
	}
	return nil
}

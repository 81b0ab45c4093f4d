package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/harness"
)

// ProduceOptions holds flags for the produce command.
type ProduceOptions struct {
	*RootOptions
	Patches bool // also print forward and inverse patches
}

// ProduceOutput is the JSON payload of the produce command.
type ProduceOutput struct {
	Result  json.RawMessage `json:"result"`
	Patches []draft.Patch   `json:"patches,omitempty"`
	Inverse []draft.Patch   `json:"inverse,omitempty"`
}

// NewProduceCommand creates the produce command.
func NewProduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "produce <base.json> <edits.yaml>",
		Short: "Apply an edit script to a document in one transaction",
		Long: `Apply an edit script to a JSON document in one transaction.

The edit script is a YAML list of steps using the same ops as test
scenarios (set, delete, push, pop, insert, remove, splice, set_length,
replace_root, nothing). Either path may be "-" for stdin.

Exit codes:
  0 - Transaction committed
  1 - Transaction failed (invalid edit, conflict, etc.)
  2 - Command error (unreadable input, bad config, etc.)

Examples:
  draft produce state.json edits.yaml
  draft produce state.json edits.yaml --patches --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProduce(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Patches, "patches", "p", false, "print forward and inverse patches")

	return cmd
}

func runProduce(opts *ProduceOptions, basePath, editsPath string, cmd *cobra.Command) error {
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

	var patches, inverse []draft.Patch
	var produceOpts []draft.ProduceOption
	if opts.Patches {
		produceOpts = append(produceOpts, draft.WithPatches(func(p, inv []draft.Patch) {
			patches, inverse = p, inv
		}))
	}

	res, err := opts.newEngine().ProduceResult(base, func(d *draft.Draft) (draft.Result, error) {
		out := draft.Keep()
		for i, step := range steps {
			r, err := harness.ApplyStep(d, step)
			if err != nil {
				return draft.Result{}, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
			if r != nil {
				out = *r
			}
		}
		return out, nil
	}, produceOpts...)
	if err != nil {
		return f.Fail("produce", err)
	}
	out, _ := res.Value()
	f.VerboseLog("applied %d steps, %d patches", len(steps), len(patches))

	if !opts.Patches {
		return f.Document(out)
	}

	raw, err := documentJSON(out)
	if err != nil {
		return f.Fail("encode result", err)
	}
	if opts.Format == "json" {
		return f.Success(ProduceOutput{Result: raw, Patches: patches, Inverse: inverse})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, string(raw))
	if err := printPatches(cmd, "patches", patches); err != nil {
		return err
	}
	return printPatches(cmd, "inverse", inverse)
}

// printPatches writes a labeled list of patches, one JSON object per line.
func printPatches(cmd *cobra.Command, label string, patches []draft.Patch) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s:\n", label)
	for _, p := range patches {
		b, err := json.Marshal(p)
		if err != nil {
			return WrapExitError(ExitFailure, "encode patch", err)
		}
		fmt.Fprintf(w, "  %s\n", b)
	}
	return nil
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <base.json> <patches.json>",
		Short: "Replay patches onto a document",
		Long: `Replay a JSON array of patches onto a document and print the result.

Patch paths may be arrays of keys and indices or JSON pointer strings.
The base document is read, never written. Either path may be "-" for stdin.

Examples:
  draft apply state.json patches.json
  draft produce state.json edits.yaml -p --format json | jq .data.inverse > undo.json
  draft apply next.json undo.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runApply(opts *RootOptions, basePath, patchesPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	base, err := readDocument(cmd, f, basePath)
	if err != nil {
		return err
	}
	patches, err := readPatches(cmd, f, patchesPath)
	if err != nil {
		return err
	}

	out, err := opts.newEngine().ApplyPatches(base, patches)
	if err != nil {
		return f.Fail("apply patches", err)
	}
	f.VerboseLog("applied %d patches", len(patches))
	return f.Document(out)
}

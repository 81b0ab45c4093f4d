package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/draft/internal/value"
)

// CanonOptions holds flags for the canon command.
type CanonOptions struct {
	*RootOptions
	Fingerprint bool
}

// CanonOutput is the JSON payload of the canon command.
type CanonOutput struct {
	Canonical   json.RawMessage `json:"canonical"`
	Fingerprint string          `json:"fingerprint,omitempty"`
}

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canon <doc.json>",
		Short: "Print a document as canonical JSON",
		Long: `Print a document as RFC 8785 canonical JSON.

Keys are sorted by UTF-16 code units, strings are NFC normalized and
numbers use their shortest form, so equal documents print identically.
With --fingerprint the SHA-256 content fingerprint is printed as well.

Examples:
  draft canon state.json
  draft canon state.json --fingerprint`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanon(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fingerprint, "fingerprint", false, "also print the content fingerprint")

	return cmd
}

func runCanon(opts *CanonOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	doc, err := readDocument(cmd, f, path)
	if err != nil {
		return err
	}
	canonical, err := value.MarshalCanonical(doc)
	if err != nil {
		return f.Fail("canonicalize", err)
	}

	var fingerprint string
	if opts.Fingerprint {
		if fingerprint, err = value.Fingerprint(doc); err != nil {
			return f.Fail("fingerprint", err)
		}
	}

	if opts.Format == "json" {
		return f.Success(CanonOutput{Canonical: canonical, Fingerprint: fingerprint})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, string(canonical))
	if fingerprint != "" {
		fmt.Fprintln(w, fingerprint)
	}
	return nil
}

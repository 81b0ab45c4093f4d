package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/draft/internal/config"
	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/metrics"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Metrics    bool // dump engine metrics to stderr after the command

	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	observer draft.Observer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the draft CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "draft - copy-on-write document edits with patches",
		Long: `Edit JSON documents through copy-on-write drafts.

Each command runs one transaction: the base document is never modified,
unchanged subtrees are shared with the result, and every change can be
recorded as forward and inverse JSON patches.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.dumpMetrics(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "engine config file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print engine metrics to stderr on exit")

	cmd.AddCommand(NewProduceCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewCanonCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the config file and builds the logger and metrics registry
// shared by every command.
func (o *RootOptions) setup(stderr io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if o.Metrics {
		o.registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(o.registry)
		if err != nil {
			return WrapExitError(ExitCommandError, "register metrics", err)
		}
		o.observer = collector
	}
	return nil
}

// newEngine builds an engine from the loaded config.
func (o *RootOptions) newEngine() *draft.Engine {
	opts := append(o.cfg.EngineOptions(), draft.WithLogger(o.logger))
	if o.observer != nil {
		opts = append(opts, draft.WithObserver(o.observer))
	}
	return draft.New(opts...)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// dumpMetrics writes the registry in the Prometheus text format.
func (o *RootOptions) dumpMetrics(w io.Writer) error {
	if o.registry == nil {
		return nil
	}
	families, err := o.registry.Gather()
	if err != nil {
		return WrapExitError(ExitCommandError, "gather metrics", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return WrapExitError(ExitCommandError, "write metrics", err)
		}
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

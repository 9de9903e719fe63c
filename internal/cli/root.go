// Package cli implements the labparse command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"labparse/internal/app"
	"labparse/internal/config"
	"labparse/internal/logging"
)

// Version is injected at build time.
var Version = "dev"

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	App    *app.App
	Logger logging.Logger

	cancel context.CancelFunc
}

// NewRootCommand creates the root command with every subcommand attached.
// appOpts are passed to app.New; tests use them to stub providers and storage.
func NewRootCommand(appOpts ...app.Option) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "labparse",
		Short: "Extract structured markers from lab, DEXA and epigenetic reports",
		Long: "labparse reads blood panel, body-composition and epigenetic test reports\n" +
			"and emits normalized markers with per-marker confidence.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts, appOpts)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if c, err := GetCLIContext(cmd); err == nil {
				c.cancel()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "console", "log format (console, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "overall operation timeout")

	cmd.AddCommand(
		NewParseCmd(),
		NewBatchCmd(),
		NewFormatsCmd(),
		NewDictCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, appOpts []app.Option) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Log.Level = opts.LogLevel
	cfg.Log.Format = opts.LogFormat
	cfg.Metrics.Enabled = false

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a, err := app.New(cfg, logger, appOpts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{App: a, Logger: logger, cancel: cancel}))
	return nil
}

// GetCLIContext extracts the CLIContext set up by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok {
			return c, nil
		}
	}
	return nil, errors.New("cli context not initialized")
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// openOutput returns the command's stdout, or a created file when path is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}

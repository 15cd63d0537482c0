package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/reglet-dev/scenepack/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

// CommonOptions contains flags shared across reporting commands.
type CommonOptions struct {
	// Output
	Format  string
	NoColor bool

	// Execution
	Timeout time.Duration
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Format: "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	// Execution
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for the whole command, including external tools (0 to disable)")

	// Output
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	// No timeout - return no-op cancel
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}

	formats := output.NewFormatterFactory().SupportedFormats()
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}

	return nil
}

// FormatterOptions converts the flags into formatter options.
func (opts *CommonOptions) FormatterOptions() output.Options {
	return output.Options{Indent: true, Color: !opts.NoColor}
}

// logLevel resolves the --verbose and --quiet flags.
func logLevel(verbose, quiet bool) (slog.Level, error) {
	switch {
	case verbose && quiet:
		return slog.LevelInfo, fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case verbose:
		return slog.LevelDebug, nil
	case quiet:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, nil
	}
}

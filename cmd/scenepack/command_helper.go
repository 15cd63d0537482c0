package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/scenepack/internal/infrastructure/container"
	"github.com/reglet-dev/scenepack/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Config    *system.Config
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// containerOptions tweak container construction for a single command.
type containerOptions struct {
	skipToolchainCheck bool
}

// withContainer wraps a command handler with container initialization.
// Flags bound to viper keys are already applied when the handler runs.
func withContainer(handler CommandHandler, opts ...func(*containerOptions)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var co containerOptions
		for _, opt := range opts {
			opt(&co)
		}

		logger := slog.Default()

		cfg, err := system.FromViper(viper.GetViper())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		c, err := container.New(container.Options{
			Logger:             logger,
			Config:             cfg,
			SkipToolchainCheck: co.skipToolchainCheck,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := &CommandContext{
			Container: c,
			Config:    cfg,
			Logger:    logger,
			Context:   cmd.Context(),
		}
		if ctx.Context == nil {
			ctx.Context = context.Background()
		}

		return handler(ctx, cmd, args)
	}
}

// withoutToolchain skips the compiler probe for commands that never compile.
func withoutToolchain(o *containerOptions) {
	o.skipToolchainCheck = true
}

// bindFlag ties a flag to a configuration key, so the flag overrides the
// config file and environment when it is set.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind %s to %s: %v", flag, key, err))
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

var (
	inspectOpts   = DefaultCommonOptions()
	inspectFilter string
)

// inspectCmd prints the extracted scene without generating or compiling anything.
var inspectCmd = &cobra.Command{
	Use:   "inspect <scene.yaml>",
	Short: "Show what a scene extracts to, with diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
		if err := inspectOpts.ValidateFlags(); err != nil {
			return err
		}

		resp, err := cc.Container.ExportSceneUseCase().Inspect(cc.Context, dto.InspectSceneRequest{
			ScenePath: args[0],
			Filters:   dto.FilterOptions{FilterExpression: inspectFilter},
		})
		if err != nil {
			return err
		}

		formatter, err := output.NewFormatterFactory().Create(inspectOpts.Format, os.Stdout, inspectOpts.FormatterOptions())
		if err != nil {
			return err
		}
		if err := formatter.FormatInspect(resp); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}, withoutToolchain),
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectFilter, "filter", "", "Keep only objects matching this expression")
	inspectOpts.RegisterFlags(inspectCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/spf13/cobra"
)

var (
	generateOut     string
	generateFilter  string
	generateExclude []string
	generateLenient bool
)

// generateCmd writes the generated Zig source without compiling it.
var generateCmd = &cobra.Command{
	Use:   "generate <scene.yaml>",
	Short: "Write the generated Zig source for a scene",
	Example: `  scenepack generate level.yaml
  scenepack generate level.yaml -o level.zig`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
		resp, err := cc.Container.ExportSceneUseCase().Generate(cc.Context, dto.GenerateSourceRequest{
			ScenePath: args[0],
			Filters: dto.FilterOptions{
				FilterExpression: generateFilter,
				ExcludeNames:     generateExclude,
			},
			Scripts: dto.ScriptOptions{Lenient: generateLenient || cc.Config.Scripts.Lenient},
		})
		if err != nil {
			return err
		}

		if generateOut == "" {
			_, err = fmt.Fprint(os.Stdout, resp.Source)
			return err
		}

		//nolint:gosec // G306: generated source is meant to be readable
		if err := os.WriteFile(generateOut, []byte(resp.Source), 0o644); err != nil {
			return fmt.Errorf("failed to write source: %w", err)
		}
		slog.Info("source written", "file", generateOut, "bytes", len(resp.Source),
			"rects", resp.Summary.RectSprites, "texts", resp.Summary.TextLabels, "strokes", resp.Summary.StrokeGroups)
		return nil
	}, withoutToolchain),
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "", "Output file path (default: stdout)")
	generateCmd.Flags().StringVar(&generateFilter, "filter", "", "Keep only objects matching this expression")
	generateCmd.Flags().StringSliceVar(&generateExclude, "exclude", nil, "Exclude objects by name (comma-separated)")
	generateCmd.Flags().BoolVar(&generateLenient, "lenient-scripts", false, "Substitute self.<property> textually and only warn on unresolved references")
}

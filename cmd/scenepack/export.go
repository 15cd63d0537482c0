package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/infrastructure/output"
	"github.com/reglet-dev/scenepack/internal/infrastructure/system"
	"github.com/spf13/cobra"
)

// exportOptions holds the export flags that are not bound to configuration keys.
type exportOptions struct {
	CommonOptions

	OutputName  string
	Parallel    int
	Filter      string
	Exclude     []string
	Collections []string
	Verify      bool
	Frames      int
}

var exportOpts = exportOptions{CommonOptions: DefaultCommonOptions(), Parallel: 1}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <scene.yaml>...",
	Short: "Compile scenes and package them as standalone documents",
	Long: `Extract each scene, generate Zig source, compile it to WebAssembly, optimize
the binary and write <name>.html and <name>.zip to the output directory.

Several scenes are exported concurrently with --parallel. Every export builds in
its own scratch directory, and two scenes that would write the same output name
are rejected before anything is built.

Filtering:
  --filter "type == 'FONT'"        Keep objects matching an expression
  --exclude Camera,Light           Drop objects by name
  --collection Actors              Keep objects from these collections`,
	Example: `  scenepack export level.yaml
  scenepack export a.yaml b.yaml -o dist --parallel 2
  scenepack export level.yaml --verify --frames 120 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: withContainer(runExport),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringP("output-dir", "o", "", "Directory receiving the document and archive (default: the scene's directory)")
	f.StringVar(&exportOpts.OutputName, "name", "", "Base name of the outputs (default: the scene name; single scene only)")
	f.IntVar(&exportOpts.Parallel, "parallel", exportOpts.Parallel, "Maximum number of concurrent exports")
	f.StringVar(&exportOpts.Filter, "filter", "", "Keep only objects matching this expression")
	f.StringSliceVar(&exportOpts.Exclude, "exclude", nil, "Exclude objects by name (comma-separated)")
	f.StringSliceVar(&exportOpts.Collections, "collection", nil, "Keep only objects in these collections (comma-separated)")
	f.BoolVar(&exportOpts.Verify, "verify", false, "Run the compiled binary headlessly before packaging")
	f.IntVar(&exportOpts.Frames, "frames", 0, "Frames to run when verifying (default 60)")

	// Flags that override configuration keys
	f.Bool("skip-optimize", false, "Package the unoptimized binary")
	f.Int("memory-multiplier", system.DefaultMemoryMultiplier, "Initial linear memory in MiB")
	f.Bool("keep-scratch", false, "Keep the scratch directory after the export")
	f.String("scratch-dir", "", "Parent directory for scratch workspaces (default: system temp)")
	f.Bool("lenient-scripts", false, "Substitute self.<property> textually and only warn on unresolved references")

	exportOpts.RegisterFlags(exportCmd)

	bindFlag(exportCmd, system.KeyOutputDir, "output-dir")
	bindFlag(exportCmd, system.KeySkipOptimize, "skip-optimize")
	bindFlag(exportCmd, system.KeyMemoryMultiplier, "memory-multiplier")
	bindFlag(exportCmd, system.KeyScratchKeep, "keep-scratch")
	bindFlag(exportCmd, system.KeyScratchDir, "scratch-dir")
	bindFlag(exportCmd, system.KeyScriptsLenient, "lenient-scripts")
}

func runExport(cc *CommandContext, _ *cobra.Command, args []string) error {
	if err := exportOpts.ValidateFlags(); err != nil {
		return err
	}
	if exportOpts.OutputName != "" && len(args) > 1 {
		return fmt.Errorf("--name cannot be used with more than one scene")
	}

	ctx, cancel := exportOpts.ApplyToContext(cc.Context)
	defer cancel()

	batch := buildBatchRequest(args, &exportOpts, cc.Config)

	resp, err := cc.Container.BatchExportUseCase().Execute(ctx, batch)
	if resp != nil && len(resp.Results) > 0 {
		formatter, ferr := output.NewFormatterFactory().Create(exportOpts.Format, os.Stdout, exportOpts.FormatterOptions())
		if ferr != nil {
			return ferr
		}
		if ferr := formatter.FormatExport(resp); ferr != nil {
			return fmt.Errorf("failed to format output: %w", ferr)
		}
	}
	return err
}

// buildBatchRequest combines per-command flags with the resolved configuration.
func buildBatchRequest(scenes []string, opts *exportOptions, cfg *system.Config) dto.BatchExportRequest {
	requestID := uuid.NewString()

	reqs := make([]dto.ExportSceneRequest, 0, len(scenes))
	for _, path := range scenes {
		reqs = append(reqs, dto.ExportSceneRequest{
			ScenePath:  path,
			OutputDir:  cfg.Output.Dir,
			OutputName: opts.OutputName,
			Filters: dto.FilterOptions{
				FilterExpression:   opts.Filter,
				ExcludeNames:       opts.Exclude,
				IncludeCollections: opts.Collections,
			},
			Toolchain: dto.ToolchainOptions{
				MemoryMultiplier: cfg.Toolchain.MemoryMultiplier,
				SkipOptimize:     cfg.Toolchain.SkipOptimize,
			},
			Verify: dto.VerifyOptions{
				Enabled: opts.Verify,
				Frames:  opts.Frames,
			},
			Scratch:  dto.ScratchOptions{Keep: cfg.Scratch.Keep},
			Scripts:  dto.ScriptOptions{Lenient: cfg.Scripts.Lenient},
			Metadata: dto.RequestMetadata{RequestID: requestID},
		})
	}

	return dto.BatchExportRequest{Requests: reqs, Parallel: opts.Parallel}
}

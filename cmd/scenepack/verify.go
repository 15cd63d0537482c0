package main

import (
	"fmt"
	"os"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

var (
	verifyOpts     = DefaultCommonOptions()
	verifyFrames   int
	verifySnapshot string
)

// verifyCmd runs a compiled binary against the headless host bridge.
var verifyCmd = &cobra.Command{
	Use:   "verify <scene.wasm|scene.html>",
	Short: "Run a compiled scene headlessly and report what it drew",
	Long: `Instantiate a compiled binary, or the binary embedded in a packaged document,
against a headless implementation of the host bridge. Every import is checked
against its expected signature, main is called and the registered frame
callback is driven for --frames frames.`,
	Example: `  scenepack verify dist/level.html --frames 120
  scenepack verify level.wasm --snapshot final.png`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
		if err := verifyOpts.ValidateFlags(); err != nil {
			return err
		}
		if verifyFrames < 0 {
			return fmt.Errorf("--frames must not be negative")
		}

		ctx, cancel := verifyOpts.ApplyToContext(cc.Context)
		defer cancel()

		report, err := cc.Container.VerifyBinaryUseCase().Execute(ctx, dto.VerifyBinaryRequest{
			Path:         args[0],
			Frames:       verifyFrames,
			SnapshotPath: verifySnapshot,
			Canvas:       dto.CanvasSize{Width: cc.Config.Canvas.Width, Height: cc.Config.Canvas.Height},
		})
		if err != nil {
			return err
		}

		formatter, err := output.NewFormatterFactory().Create(verifyOpts.Format, os.Stdout, verifyOpts.FormatterOptions())
		if err != nil {
			return err
		}
		return formatter.FormatVerify(report)
	}, withoutToolchain),
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(&verifyFrames, "frames", 0, "Frames to run (default 60)")
	verifyCmd.Flags().StringVar(&verifySnapshot, "snapshot", "", "Write a PNG of the final frame")
	verifyOpts.RegisterFlags(verifyCmd)
}

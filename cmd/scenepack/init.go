package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/scenepack/internal/infrastructure/system"
	"github.com/reglet-dev/scenepack/internal/templates"
	"github.com/spf13/cobra"
)

// InitOptions holds the answers for a starter scene.
type InitOptions struct {
	Path          string
	Name          string
	Starter       string
	Width         int
	Height        int
	NoInteractive bool
	Force         bool
}

var initCmd = &cobra.Command{
	Use:   "init [scene.yaml]",
	Short: "Scaffold a starter scene",
	Long: `Write a starter scene that exports as-is. Without --no-interactive the
missing answers are asked for in the terminal.

Starters:
  minimal   a single colored rectangle
  demo      a scripted rectangle, a text label and a stroke`,
	Example: `  scenepack init
  scenepack init level.yaml --starter demo --no-interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "Scene name (default: derived from the file name)")
	initCmd.Flags().String("starter", "", "Starter scene: minimal, demo")
	initCmd.Flags().Int("width", 0, "Canvas width in pixels")
	initCmd.Flags().Int("height", 0, "Canvas height in pixels")
	initCmd.Flags().Bool("no-interactive", false, "Disable interactive prompts")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	opts := InitOptions{Path: "scene.yaml"}
	if len(args) > 0 {
		opts.Path = args[0]
	}
	opts.Name, _ = cmd.Flags().GetString("name")
	opts.Starter, _ = cmd.Flags().GetString("starter")
	opts.Width, _ = cmd.Flags().GetInt("width")
	opts.Height, _ = cmd.Flags().GetInt("height")
	opts.NoInteractive, _ = cmd.Flags().GetBool("no-interactive")
	opts.Force, _ = cmd.Flags().GetBool("force")

	if !opts.NoInteractive {
		if err := promptInit(&opts); err != nil {
			return err
		}
	}
	opts.applyDefaults()

	if !opts.Force {
		if _, err := os.Stat(opts.Path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.Path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	data, err := templates.RenderScene(opts.Starter, templates.SceneData{
		Name:   opts.Name,
		Width:  opts.Width,
		Height: opts.Height,
	})
	if err != nil {
		return err
	}

	//nolint:gosec // G306: scene files are meant to be shared
	if err := os.WriteFile(opts.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene: %w", err)
	}

	slog.Info("scene created", "file", opts.Path, "starter", opts.Starter, "canvas", fmt.Sprintf("%dx%d", opts.Width, opts.Height))
	fmt.Fprintf(cmd.OutOrStdout(), "Next: scenepack export %s\n", opts.Path)
	return nil
}

// applyDefaults fills in every answer left empty.
func (o *InitOptions) applyDefaults() {
	if o.Name == "" {
		o.Name = sceneNameFromPath(o.Path)
	}
	if o.Starter == "" {
		o.Starter = "minimal"
	}
	if o.Width <= 0 {
		o.Width = system.DefaultCanvasWidth
	}
	if o.Height <= 0 {
		o.Height = system.DefaultCanvasHeight
	}
}

func promptInit(opts *InitOptions) error {
	if opts.Name == "" {
		opts.Name = sceneNameFromPath(opts.Path)
		err := huh.NewInput().
			Title("Scene name").
			Value(&opts.Name).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Starter == "" {
		err := huh.NewSelect[string]().
			Title("Select a starter scene").
			Options(
				huh.NewOption("Minimal (one rectangle)", "minimal"),
				huh.NewOption("Demo (script, text and stroke)", "demo"),
			).
			Value(&opts.Starter).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Width <= 0 || opts.Height <= 0 {
		size := fmt.Sprintf("%dx%d", system.DefaultCanvasWidth, system.DefaultCanvasHeight)
		err := huh.NewInput().
			Title("Canvas size").
			Value(&size).
			Validate(func(s string) error {
				_, _, err := parseCanvasSize(s)
				return err
			}).
			Run()
		if err != nil {
			return err
		}
		opts.Width, opts.Height, _ = parseCanvasSize(size)
	}

	return nil
}

// parseCanvasSize parses WIDTHxHEIGHT.
func parseCanvasSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width < 1 {
		return 0, 0, fmt.Errorf("invalid width %q", w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height < 1 {
		return 0, 0, fmt.Errorf("invalid height %q", h)
	}
	return width, height, nil
}

func sceneNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

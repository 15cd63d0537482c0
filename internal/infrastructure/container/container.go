// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/reglet-dev/scenepack/internal/application/ports"
	"github.com/reglet-dev/scenepack/internal/application/services"
	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/infrastructure/config"
	"github.com/reglet-dev/scenepack/internal/infrastructure/packaging"
	"github.com/reglet-dev/scenepack/internal/infrastructure/scratch"
	"github.com/reglet-dev/scenepack/internal/infrastructure/system"
	"github.com/reglet-dev/scenepack/internal/infrastructure/toolchain"
	"github.com/reglet-dev/scenepack/internal/infrastructure/wasm"
)

// Container holds all application dependencies.
type Container struct {
	sceneLoader   ports.SceneLoader
	exportUseCase *services.ExportSceneUseCase
	batchUseCase  *services.BatchExportUseCase
	verifyUseCase *services.VerifyBinaryUseCase
	systemCfg     *system.Config
	logger        *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	// Config is the resolved system configuration. Nil means defaults.
	Config *system.Config
	// SkipToolchainCheck disables the compiler version probe before each export.
	SkipToolchainCheck bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = system.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize adapters
	sceneLoader := config.NewSceneLoader()
	runner := toolchain.NewExecRunner(opts.Logger)
	compiler := toolchain.NewZigCompiler(runner, cfg.Toolchain.Zig, cfg.Toolchain.MemoryMultiplier, opts.Logger)
	optimizer := toolchain.NewWasmOptimizer(runner, cfg.Toolchain.WasmOpt, cfg.Toolchain.WasmOptFlags, cfg.Toolchain.SkipOptimize, opts.Logger)
	scratchProvider := scratch.NewProvider(cfg.Scratch.Dir, opts.Logger)
	packager := packaging.NewPackager(opts.Logger)
	runtime := wasm.NewRuntime(opts.Logger)

	// A nil checker skips the version probe
	var checker ports.ToolchainChecker
	if !opts.SkipToolchainCheck && cfg.Toolchain.ZigConstraint != "" {
		checker = toolchain.NewVersionChecker(runner, cfg.Toolchain.Zig, cfg.Toolchain.ZigConstraint)
	}

	// Wire up use cases
	exportUseCase := services.NewExportSceneUseCase(
		sceneLoader,
		checker,
		compiler,
		optimizer,
		runtime,
		packager,
		scratchProvider,
		services.ExportDefaults{
			Canvas: ir.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
		},
		opts.Logger,
	)
	batchUseCase := services.NewBatchExportUseCase(exportUseCase, opts.Logger)
	verifyUseCase := services.NewVerifyBinaryUseCase(runtime, packager, opts.Logger)

	return &Container{
		sceneLoader:   sceneLoader,
		exportUseCase: exportUseCase,
		batchUseCase:  batchUseCase,
		verifyUseCase: verifyUseCase,
		systemCfg:     cfg,
		logger:        opts.Logger,
	}, nil
}

// ExportSceneUseCase returns the single-scene export use case. It also
// serves source generation and inspection.
func (c *Container) ExportSceneUseCase() *services.ExportSceneUseCase {
	return c.exportUseCase
}

// BatchExportUseCase returns the concurrent export use case.
func (c *Container) BatchExportUseCase() *services.BatchExportUseCase {
	return c.batchUseCase
}

// VerifyBinaryUseCase returns the headless verification use case.
func (c *Container) VerifyBinaryUseCase() *services.VerifyBinaryUseCase {
	return c.verifyUseCase
}

// SceneLoader returns the scene loader port.
func (c *Container) SceneLoader() ports.SceneLoader {
	return c.sceneLoader
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

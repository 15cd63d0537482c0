package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"github.com/reglet-dev/scenepack/internal/application/ports"
)

// Workspace file names.
const (
	SourceFile    = "scene.zig"
	BinaryFile    = "scene.wasm"
	OptimizedFile = "scene.opt.wasm"
)

const (
	zigTarget       = "wasm32-freestanding-musl"
	zigOptimizeMode = "ReleaseSmall"
	mebibyte        = 1 << 20
)

// ZigCompiler compiles generated sources to wasm with `zig build-exe`.
type ZigCompiler struct {
	runner            Runner
	zig               string
	defaultMultiplier int
	logger            *slog.Logger
}

// NewZigCompiler creates a compiler that invokes the zig binary at path.
func NewZigCompiler(runner Runner, zig string, defaultMultiplier int, logger *slog.Logger) *ZigCompiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZigCompiler{runner: runner, zig: zig, defaultMultiplier: defaultMultiplier, logger: logger}
}

// BuildArgs returns the zig arguments for compiling source into binary.
func BuildArgs(source, binary string, memoryMultiplier int) []string {
	return []string{
		"build-exe",
		"-O", zigOptimizeMode,
		"-target", zigTarget,
		"-fno-entry",
		"--export-table",
		"-rdynamic",
		"--initial-memory=" + strconv.Itoa(memoryMultiplier*mebibyte),
		"-femit-bin=" + binary,
		source,
	}
}

// Compile writes source into the workspace and compiles it. The compiler is
// invoked exactly once; a non-zero exit becomes a ToolchainError carrying
// the captured stderr.
func (c *ZigCompiler) Compile(ctx context.Context, ws ports.Workspace, source string, opts dto.ToolchainOptions) (*dto.CompileResult, error) {
	sourcePath := ws.Path(SourceFile)
	binaryPath := ws.Path(BinaryFile)

	if err := os.WriteFile(sourcePath, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write source: %w", err)
	}

	multiplier := opts.MemoryMultiplier
	if multiplier <= 0 {
		multiplier = c.defaultMultiplier
	}

	res, err := c.runner.Run(ctx, Command{
		Name: c.zig,
		Args: BuildArgs(sourcePath, binaryPath, multiplier),
		Dir:  ws.Dir(),
	})
	if err != nil {
		return nil, startError(c.zig, err)
	}
	if res.ExitCode != 0 {
		return nil, apperrors.NewToolchainError(c.zig, res.ExitCode, res.Stderr, nil)
	}

	info, err := os.Stat(binaryPath)
	if err != nil {
		return nil, apperrors.NewToolchainError(c.zig, 0, res.Stderr, fmt.Errorf("compiler produced no binary: %w", err))
	}

	c.logger.DebugContext(ctx, "compiled scene", "binary", binaryPath, "bytes", info.Size(), "initial_memory_mib", multiplier)

	return &dto.CompileResult{
		SourcePath: sourcePath,
		BinaryPath: binaryPath,
		Size:       info.Size(),
	}, nil
}

// startError maps a failure to launch a tool. A missing executable is a
// configuration problem rather than a build failure.
func startError(tool string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return apperrors.NewConfigurationError("toolchain", fmt.Sprintf("%s not found", tool), err)
	}
	return apperrors.NewToolchainError(tool, -1, "", err)
}

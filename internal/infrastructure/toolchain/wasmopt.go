package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"github.com/reglet-dev/scenepack/internal/application/ports"
)

// WasmOptimizer shrinks compiled binaries with Binaryen's wasm-opt.
type WasmOptimizer struct {
	runner       Runner
	wasmOpt      string
	flags        []string
	skipOptimize bool
	logger       *slog.Logger
}

// NewWasmOptimizer creates an optimizer. flags are passed between -Oz and
// the input, typically feature switches such as --enable-bulk-memory.
func NewWasmOptimizer(runner Runner, wasmOpt string, flags []string, skipOptimize bool, logger *slog.Logger) *WasmOptimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WasmOptimizer{runner: runner, wasmOpt: wasmOpt, flags: flags, skipOptimize: skipOptimize, logger: logger}
}

// OptimizeArgs returns the wasm-opt arguments for optimizing in into out.
func OptimizeArgs(in, out string, flags []string) []string {
	args := make([]string, 0, len(flags)+4)
	args = append(args, "-Oz")
	args = append(args, flags...)
	return append(args, in, "-o", out)
}

// Optimize runs wasm-opt once. When optimization is skipped the input binary
// is returned unchanged.
func (o *WasmOptimizer) Optimize(ctx context.Context, ws ports.Workspace, binaryPath string, opts dto.ToolchainOptions) (*dto.OptimizeResult, error) {
	if o.skipOptimize || opts.SkipOptimize {
		info, err := os.Stat(binaryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat binary: %w", err)
		}
		o.logger.DebugContext(ctx, "optimization skipped", "binary", binaryPath)
		return &dto.OptimizeResult{BinaryPath: binaryPath, Size: info.Size(), Skipped: true}, nil
	}

	out := ws.Path(OptimizedFile)
	res, err := o.runner.Run(ctx, Command{
		Name: o.wasmOpt,
		Args: OptimizeArgs(binaryPath, out, o.flags),
		Dir:  ws.Dir(),
	})
	if err != nil {
		return nil, startError(o.wasmOpt, err)
	}
	if res.ExitCode != 0 {
		return nil, apperrors.NewToolchainError(o.wasmOpt, res.ExitCode, res.Stderr, nil)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, apperrors.NewToolchainError(o.wasmOpt, 0, res.Stderr, fmt.Errorf("optimizer produced no binary: %w", err))
	}

	o.logger.DebugContext(ctx, "optimized binary", "binary", out, "bytes", info.Size())
	return &dto.OptimizeResult{BinaryPath: out, Size: info.Size()}, nil
}

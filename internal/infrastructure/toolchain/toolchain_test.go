package toolchain

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"github.com/reglet-dev/scenepack/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and simulates the tool's effect.
type fakeRunner struct {
	calls  []Command
	result Result
	err    error
	// emit is written to the path following -femit-bin= or -o.
	emit []byte
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return nil, f.err
	}
	if f.result.ExitCode == 0 && f.emit != nil {
		if out := outputPath(cmd.Args); out != "" {
			if err := os.WriteFile(out, f.emit, 0o600); err != nil {
				return nil, err
			}
		}
	}
	res := f.result
	return &res, nil
}

func outputPath(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "-femit-bin=") {
			return strings.TrimPrefix(a, "-femit-bin=")
		}
		if a == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

type testWorkspace struct{ dir string }

func (w testWorkspace) ID() values.BuildID      { return values.BuildID{} }
func (w testWorkspace) Dir() string             { return w.dir }
func (w testWorkspace) Path(name string) string { return filepath.Join(w.dir, name) }
func (w testWorkspace) Release() error          { return nil }

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	args := BuildArgs("/s/scene.zig", "/s/scene.wasm", 4)
	assert.Equal(t, []string{
		"build-exe", "-O", "ReleaseSmall",
		"-target", "wasm32-freestanding-musl",
		"-fno-entry", "--export-table", "-rdynamic",
		"--initial-memory=4194304",
		"-femit-bin=/s/scene.wasm",
		"/s/scene.zig",
	}, args)
}

func TestZigCompiler_Compile(t *testing.T) {
	t.Parallel()

	ws := testWorkspace{dir: t.TempDir()}
	runner := &fakeRunner{emit: []byte("\x00asm\x01\x00\x00\x00")}
	compiler := NewZigCompiler(runner, "zig", 4, nil)

	res, err := compiler.Compile(context.Background(), ws, "const x = 1;\n", dto.ToolchainOptions{MemoryMultiplier: 2})
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "zig", runner.calls[0].Name)
	assert.Contains(t, runner.calls[0].Args, "--initial-memory=2097152")
	assert.Equal(t, ws.dir, runner.calls[0].Dir)

	src, err := os.ReadFile(ws.Path(SourceFile))
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;\n", string(src))

	assert.Equal(t, ws.Path(BinaryFile), res.BinaryPath)
	assert.Equal(t, int64(8), res.Size)
}

func TestZigCompiler_DefaultMultiplier(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{emit: []byte("bin")}
	_, err := NewZigCompiler(runner, "zig", 4, nil).Compile(context.Background(), testWorkspace{dir: t.TempDir()}, "", dto.ToolchainOptions{})
	require.NoError(t, err)
	assert.Contains(t, runner.calls[0].Args, "--initial-memory=4194304")
}

func TestZigCompiler_NonZeroExit(t *testing.T) {
	t.Parallel()

	ws := testWorkspace{dir: t.TempDir()}
	runner := &fakeRunner{result: Result{ExitCode: 1, Stderr: "scene.zig:3:5: error: use of undeclared identifier 'speed'\n"}}

	_, err := NewZigCompiler(runner, "zig", 4, nil).Compile(context.Background(), ws, "bad", dto.ToolchainOptions{})

	var tcErr *apperrors.ToolchainError
	require.True(t, errors.As(err, &tcErr))
	assert.Equal(t, "zig", tcErr.Tool)
	assert.Equal(t, 1, tcErr.ExitCode)
	assert.Contains(t, tcErr.Diagnostics, "undeclared identifier")
	assert.Len(t, runner.calls, 1, "the compiler is invoked exactly once")
	assert.NoFileExists(t, ws.Path(BinaryFile))
}

func TestZigCompiler_NotFound(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: exec.ErrNotFound}
	_, err := NewZigCompiler(runner, "zig", 4, nil).Compile(context.Background(), testWorkspace{dir: t.TempDir()}, "", dto.ToolchainOptions{})

	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "toolchain", cfgErr.Aspect)
}

func TestZigCompiler_NoBinary(t *testing.T) {
	t.Parallel()

	_, err := NewZigCompiler(&fakeRunner{}, "zig", 4, nil).Compile(context.Background(), testWorkspace{dir: t.TempDir()}, "", dto.ToolchainOptions{})

	var tcErr *apperrors.ToolchainError
	require.True(t, errors.As(err, &tcErr))
	assert.Contains(t, err.Error(), "no binary")
}

func TestOptimizeArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"-Oz", "--enable-bulk-memory", "in.wasm", "-o", "out.wasm"},
		OptimizeArgs("in.wasm", "out.wasm", []string{"--enable-bulk-memory"}))
}

func TestWasmOptimizer_Optimize(t *testing.T) {
	t.Parallel()

	ws := testWorkspace{dir: t.TempDir()}
	in := ws.Path(BinaryFile)
	require.NoError(t, os.WriteFile(in, []byte("unoptimized"), 0o600))

	runner := &fakeRunner{emit: []byte("opt")}
	res, err := NewWasmOptimizer(runner, "wasm-opt", nil, false, nil).Optimize(context.Background(), ws, in, dto.ToolchainOptions{})
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "wasm-opt", runner.calls[0].Name)
	assert.Equal(t, ws.Path(OptimizedFile), res.BinaryPath)
	assert.Equal(t, int64(3), res.Size)
	assert.False(t, res.Skipped)
}

func TestWasmOptimizer_Skip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configured bool
		requested  bool
	}{
		{name: "configured", configured: true},
		{name: "requested", requested: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ws := testWorkspace{dir: t.TempDir()}
			in := ws.Path(BinaryFile)
			require.NoError(t, os.WriteFile(in, []byte("raw"), 0o600))

			runner := &fakeRunner{}
			res, err := NewWasmOptimizer(runner, "wasm-opt", nil, tt.configured, nil).
				Optimize(context.Background(), ws, in, dto.ToolchainOptions{SkipOptimize: tt.requested})
			require.NoError(t, err)

			assert.Empty(t, runner.calls)
			assert.True(t, res.Skipped)
			assert.Equal(t, in, res.BinaryPath)
			assert.Equal(t, int64(3), res.Size)
		})
	}
}

func TestWasmOptimizer_Failure(t *testing.T) {
	t.Parallel()

	ws := testWorkspace{dir: t.TempDir()}
	runner := &fakeRunner{result: Result{ExitCode: 2, Stderr: "[wasm-validator error]"}}

	_, err := NewWasmOptimizer(runner, "wasm-opt", nil, false, nil).Optimize(context.Background(), ws, ws.Path(BinaryFile), dto.ToolchainOptions{})

	var tcErr *apperrors.ToolchainError
	require.True(t, errors.As(err, &tcErr))
	assert.Equal(t, 2, tcErr.ExitCode)
	assert.Equal(t, "wasm-opt", tcErr.Tool)
	assert.Len(t, runner.calls, 1)
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version    string
		constraint string
		wantErr    bool
	}{
		{version: "0.13.0", constraint: ">= 0.13.0"},
		{version: "0.14.1", constraint: ">= 0.13.0"},
		{version: "0.14.0-dev.1951+857383689", constraint: ">= 0.14.0"},
		{version: "0.12.1", constraint: ">= 0.13.0", wantErr: true},
		{version: "0.13.0", constraint: ">= 0.13.0, < 0.14.0"},
		{version: "0.14.0", constraint: ">= 0.13.0, < 0.14.0", wantErr: true},
		{version: "0.13.0", constraint: "~0.12", wantErr: true},
		{version: "garbage", constraint: ">= 0.13.0", wantErr: true},
		{version: "0.13.0", constraint: "not a constraint", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version+" "+tt.constraint, func(t *testing.T) {
			t.Parallel()
			err := CheckVersion(tt.version, tt.constraint)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVersionChecker(t *testing.T) {
	t.Parallel()

	t.Run("satisfied", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{result: Result{Stdout: "0.13.0\n"}}
		v, err := NewVersionChecker(runner, "zig", ">= 0.13.0").CheckToolchain(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "0.13.0", v)
		assert.Equal(t, []string{"version"}, runner.calls[0].Args)
	})

	t.Run("too old", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{result: Result{Stdout: "0.11.0\n"}}
		_, err := NewVersionChecker(runner, "zig", ">= 0.13.0").CheckToolchain(context.Background())
		var cfgErr *apperrors.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("no constraint", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{result: Result{Stdout: "weird-build\n"}}
		v, err := NewVersionChecker(runner, "zig", "").CheckToolchain(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "weird-build", v)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{err: exec.ErrNotFound}
		_, err := NewVersionChecker(runner, "zig", ">= 0.13.0").CheckToolchain(context.Background())
		var cfgErr *apperrors.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})
}

func TestBoundedBuffer(t *testing.T) {
	t.Parallel()

	b := NewBoundedBuffer(4)
	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.True(t, b.Truncated)
	assert.Equal(t, "abcd", b.String())

	n, err = b.Write([]byte("gh"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "abcd", b.String())
}

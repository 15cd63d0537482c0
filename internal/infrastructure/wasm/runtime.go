package wasm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/domain/codegen"
	"github.com/reglet-dev/scenepack/internal/infrastructure/wasm/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental/table"
)

// FrameDelta is the fixed dt passed to every frame callback.
const FrameDelta = float32(1.0 / 60.0)

// Default canvas when the binary never calls canvas_resize.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

// globalCache speeds up compilation across runtimes.
var globalCache = wazero.NewCompilationCache()

// Runtime verifies scene binaries against the headless host bridge.
// Each run gets a fresh wazero runtime, so concurrent runs are independent.
type Runtime struct {
	logger *slog.Logger
}

// NewRuntime creates a headless runtime.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{logger: logger}
}

// Verify runs binary and summarises the trace. When run.SnapshotPath is
// set the final display list is written there as PNG.
func (r *Runtime) Verify(ctx context.Context, binary []byte, run dto.VerifyRun) (*dto.VerificationReport, error) {
	trace, err := r.Run(ctx, binary, run.Frames, run.Canvas)
	if err != nil {
		return nil, err
	}

	report := &dto.VerificationReport{
		Frames:    run.Frames,
		Calls:     trace.Calls,
		Rects:     len(trace.Rects),
		Polylines: len(trace.Static),
		Texts:     make(map[string]string, len(trace.Texts)),
	}
	for _, t := range trace.Texts {
		report.Texts[t.ID] = t.Text
	}

	if run.SnapshotPath != "" {
		if err := WriteSnapshot(run.SnapshotPath, trace); err != nil {
			return nil, err
		}
		report.Snapshot = run.SnapshotPath
	}

	return report, nil
}

// Run instantiates binary against the host bridge, calls main, then drives
// the registered frame callback frames times.
func (r *Runtime) Run(ctx context.Context, binary []byte, frames int, canvas dto.CanvasSize) (*hostfuncs.Trace, error) {
	config := wazero.NewRuntimeConfig().
		WithCompilationCache(globalCache).
		WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, config)
	defer func() {
		_ = rt.Close(ctx) // Best-effort cleanup
	}()

	compiled, err := rt.CompileModule(ctx, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	if err := CheckImports(compiled); err != nil {
		return nil, err
	}
	if err := CheckExports(compiled); err != nil {
		return nil, err
	}

	width, height := int32(canvas.Width), int32(canvas.Height) //nolint:gosec // G115: canvas sizes are validated config values
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	rec := hostfuncs.NewRecorder(width, height)
	if err := hostfuncs.RegisterHostFunctions(ctx, rt, rec); err != nil {
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("scene"))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if _, err := mod.ExportedFunction(codegen.ExportMain).Call(ctx); err != nil {
		return nil, fmt.Errorf("main trapped: %w", err)
	}
	if err := rec.Err(); err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}
	rec.EndSetup()

	setup := rec.Trace()
	if n := len(setup.Callbacks); n != 1 {
		return nil, fmt.Errorf("main must register exactly one frame callback with %s, got %d", codegen.ImportEntryFunction, n)
	}

	callback, err := lookupCallback(mod, setup.Callbacks[0])
	if err != nil {
		return nil, err
	}

	dt := api.EncodeF32(FrameDelta)
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := callback.Call(ctx, dt); err != nil {
			return nil, fmt.Errorf("frame %d trapped: %w", i, err)
		}
		if err := rec.Err(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	trace := rec.Trace()
	r.logger.DebugContext(ctx, "headless run complete",
		"frames", frames,
		"rects", len(trace.Rects),
		"static_polylines", len(trace.Static),
		"texts", len(trace.Texts))

	return &trace, nil
}

// CheckImports verifies that every import of compiled is provided by the host
// bridge with a matching signature. Imports of memories, tables or globals
// are never provided.
func CheckImports(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		sig, ok := hostfuncs.Signatures[name]
		if module != hostfuncs.ModuleName || !ok {
			return &MissingImportError{Module: module, Name: name}
		}
		if !sig.Matches(def) {
			return &SignatureMismatchError{
				Name:     name,
				Expected: formatSignature(sig.Params, sig.Results),
				Actual:   formatSignature(def.ParamTypes(), def.ResultTypes()),
			}
		}
	}
	if mems := compiled.ImportedMemories(); len(mems) > 0 {
		module, name, _ := mems[0].Import()
		return &MissingImportError{Module: module, Name: name}
	}
	return nil
}

// CheckExports verifies the module exports main() and its linear memory.
func CheckExports(compiled wazero.CompiledModule) error {
	main, ok := compiled.ExportedFunctions()[codegen.ExportMain]
	if !ok || len(main.ParamTypes()) != 0 || len(main.ResultTypes()) != 0 {
		return &MissingExportError{Name: codegen.ExportMain}
	}
	if _, ok := compiled.ExportedMemories()[codegen.ExportMemory]; !ok {
		return &MissingExportError{Name: codegen.ExportMemory}
	}
	return nil
}

// lookupCallback resolves a function table index to fn(f32) void.
func lookupCallback(mod api.Module, idx uint32) (fn api.Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn = nil
			err = fmt.Errorf("frame callback %d is not a fn(f32) in table 0: %v", idx, r)
		}
	}()

	fn = table.LookupFunction(mod, 0, idx, []api.ValueType{api.ValueTypeF32}, nil)
	if fn == nil {
		return nil, errors.New("frame callback not found")
	}
	return fn, nil
}

func formatSignature(params, results []api.ValueType) string {
	names := func(types []api.ValueType) string {
		out := make([]string, 0, len(types))
		for _, t := range types {
			out = append(out, api.ValueTypeName(t))
		}
		return strings.Join(out, ", ")
	}
	s := "(" + names(params) + ")"
	if len(results) > 0 {
		s += " -> (" + names(results) + ")"
	}
	return s
}

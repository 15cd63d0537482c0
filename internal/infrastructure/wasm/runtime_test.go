package wasm

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/infrastructure/wasm/wasmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_RunDemoScene(t *testing.T) {
	t.Parallel()

	trace, err := NewRuntime(nil).Run(context.Background(), wasmtest.DemoScene(), 3, dto.CanvasSize{})
	require.NoError(t, err)

	assert.Equal(t, int32(320), trace.Width)
	assert.Equal(t, int32(240), trace.Height)
	assert.Equal(t, map[string]int{
		"canvas_resize":  1,
		"draw_polyline":  1,
		"create_text":    1,
		"entry_function": 1,
		"canvas_clear":   3,
		"draw_rect":      3,
		"update_text":    3,
	}, trace.Calls)

	require.Len(t, trace.Static, 1)
	assert.Equal(t, []float32{0, 0, 10, 0, 10, 10}, trace.Static[0].Points)
	assert.Equal(t, float32(2), trace.Static[0].Width)
	assert.Equal(t, uint8(255), trace.Static[0].B)

	require.Len(t, trace.Rects, 1, "canvas_clear resets the frame's display list")
	assert.Equal(t, float32(160), trace.Rects[0].X)
	assert.Equal(t, uint8(255), trace.Rects[0].R)

	require.Len(t, trace.Texts, 1)
	assert.Equal(t, "score", trace.Texts[0].ID)
	assert.Equal(t, "1", trace.Texts[0].Text)
	assert.True(t, trace.Texts[0].Visible)
	assert.Equal(t, float32(12), trace.Texts[0].Size)
}

func TestRuntime_ZeroFrames(t *testing.T) {
	t.Parallel()

	trace, err := NewRuntime(nil).Run(context.Background(), wasmtest.DemoScene(), 0, dto.CanvasSize{})
	require.NoError(t, err)
	assert.Zero(t, trace.Calls["draw_rect"])
	assert.Equal(t, "0", trace.Texts[0].Text)
}

func TestRuntime_Verify(t *testing.T) {
	t.Parallel()

	snapshot := filepath.Join(t.TempDir(), "frame.png")
	report, err := NewRuntime(nil).Verify(context.Background(), wasmtest.DemoScene(), dto.VerifyRun{
		Frames:       2,
		SnapshotPath: snapshot,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Frames)
	assert.Equal(t, 1, report.Rects)
	assert.Equal(t, 1, report.Polylines)
	assert.Equal(t, map[string]string{"score": "1"}, report.Texts)
	assert.Equal(t, snapshot, report.Snapshot)

	data, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())

	r, g, b, a := img.At(160, 120).RGBA()
	assert.Greater(t, r>>8, uint32(200), "rect is drawn centered on its position")
	assert.Less(t, g>>8, uint32(50))
	assert.Less(t, b>>8, uint32(50))
	assert.Equal(t, uint32(0xff), a>>8)

	_, _, _, a = img.At(300, 200).RGBA()
	assert.Zero(t, a, "background stays transparent")
}

func TestRuntime_MissingImport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module string
		field  string
	}{
		{name: "unknown env function", module: "env", field: "play_sound"},
		{name: "foreign module", module: "wasi_snapshot_preview1", field: "proc_exit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var m wasmtest.Module
			m.Import(tt.module, tt.field, wasmtest.FuncType{})
			main := m.Func(wasmtest.MainType)
			m.Memory(1)
			m.ExportFunc("main", main)
			m.ExportMemory("memory")

			_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})

			var missing *MissingImportError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tt.module, missing.Module)
			assert.Equal(t, tt.field, missing.Name)
			assert.Contains(t, err.Error(), "missing import")
		})
	}
}

func TestRuntime_SignatureMismatch(t *testing.T) {
	t.Parallel()

	var m wasmtest.Module
	m.Import("env", "canvas_resize", wasmtest.FuncType{Params: []wasmtest.ValType{wasmtest.I32}})
	main := m.Func(wasmtest.MainType)
	m.Memory(1)
	m.ExportFunc("main", main)
	m.ExportMemory("memory")

	_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})

	var mismatch *SignatureMismatchError
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	assert.Equal(t, "canvas_resize", mismatch.Name)
	assert.Equal(t, "(i32, i32)", mismatch.Expected)
	assert.Equal(t, "(i32)", mismatch.Actual)
}

func TestRuntime_MissingExports(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		var m wasmtest.Module
		main := m.Func(wasmtest.MainType)
		m.Memory(1)
		m.ExportFunc("main", main)

		_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})
		var missing *MissingExportError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "memory", missing.Name)
	})

	t.Run("main", func(t *testing.T) {
		t.Parallel()
		var m wasmtest.Module
		m.Memory(1)
		m.ExportMemory("memory")

		_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})
		var missing *MissingExportError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "main", missing.Name)
	})
}

func TestRuntime_NoFrameCallback(t *testing.T) {
	t.Parallel()

	var m wasmtest.Module
	main := m.Func(wasmtest.MainType)
	m.Memory(1)
	m.ExportFunc("main", main)
	m.ExportMemory("memory")

	_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one frame callback")
}

func TestRuntime_BadStringPointer(t *testing.T) {
	t.Parallel()

	var m wasmtest.Module
	create := m.Import("env", "create_text", wasmtest.CreateTextType)
	main := m.Func(wasmtest.MainType,
		wasmtest.I32Const(70000), wasmtest.I32Const(0), wasmtest.F32Const(1), wasmtest.I32Const(0), wasmtest.Call(create),
	)
	m.Memory(1)
	m.ExportFunc("main", main)
	m.ExportMemory("memory")

	_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create_text")
	assert.Contains(t, err.Error(), "out of bounds")
}

func TestRuntime_OversizedPolylineLength(t *testing.T) {
	t.Parallel()

	var m wasmtest.Module
	poly := m.Import("env", "draw_polyline", wasmtest.DrawPolylineType)
	main := m.Func(wasmtest.MainType,
		wasmtest.I32Const(0), wasmtest.I32Const(0x7fffffff), wasmtest.F32Const(1), wasmtest.I32Const(0),
		wasmtest.I32Const(0), wasmtest.I32Const(0), wasmtest.I32Const(0), wasmtest.F32Const(1), wasmtest.Call(poly),
	)
	m.Memory(1)
	m.ExportFunc("main", main)
	m.ExportMemory("memory")

	_, err := NewRuntime(nil).Run(context.Background(), m.Bytes(), 1, dto.CanvasSize{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw_polyline")
	assert.Contains(t, err.Error(), "out of bounds")
}

func TestRuntime_InvalidBinary(t *testing.T) {
	t.Parallel()

	_, err := NewRuntime(nil).Run(context.Background(), []byte("not wasm"), 1, dto.CanvasSize{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile")
}

func TestRuntime_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(nil)
	errs := make(chan error, 4)
	for range 4 {
		go func() {
			_, err := rt.Run(context.Background(), wasmtest.DemoScene(), 5, dto.CanvasSize{})
			errs <- err
		}()
	}
	for range 4 {
		assert.NoError(t, <-errs)
	}
}

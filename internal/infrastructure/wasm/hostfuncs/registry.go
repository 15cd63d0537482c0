package hostfuncs

import (
	"context"
	"fmt"

	"github.com/reglet-dev/scenepack/internal/domain/codegen"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// RegisterHostFunctions instantiates the "env" host module on runtime, with
// every function recording into rec. A runtime holds one env module, so each
// recorder needs its own runtime.
func RegisterHostFunctions(ctx context.Context, runtime wazero.Runtime, rec *Recorder) error {
	builder := runtime.NewHostModuleBuilder(ModuleName)

	export := func(name string, fn func(ctx context.Context, mod api.Module, stack []uint64) error) {
		sig := Signatures[name]
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				rec.mu.Lock()
				defer rec.mu.Unlock()
				rec.count(name)
				if err := fn(ctx, mod, stack); err != nil {
					rec.fail(fmt.Errorf("%s: %w", name, err))
				}
			}), sig.Params, sig.Results).
			Export(name)
	}

	// canvas_resize(w: i32, h: i32)
	export(codegen.ImportCanvasResize, func(_ context.Context, _ api.Module, stack []uint64) error {
		rec.resize(api.DecodeI32(stack[0]), api.DecodeI32(stack[1]))
		return nil
	})

	// canvas_clear()
	export(codegen.ImportCanvasClear, func(context.Context, api.Module, []uint64) error {
		rec.clear()
		return nil
	})

	// draw_rect(x, y, w, h: f32, r, g, b: i32, a: f32)
	export(codegen.ImportDrawRect, func(_ context.Context, _ api.Module, stack []uint64) error {
		rec.rect(Rect{
			X: api.DecodeF32(stack[0]),
			Y: api.DecodeF32(stack[1]),
			W: api.DecodeF32(stack[2]),
			H: api.DecodeF32(stack[3]),
			R: channel(stack[4]),
			G: channel(stack[5]),
			B: channel(stack[6]),
			A: api.DecodeF32(stack[7]),
		})
		return nil
	})

	// draw_polyline(ptr: i32, len: i32, width: f32, fill: i32, r, g, b: i32, a: f32)
	export(codegen.ImportDrawPolyline, func(_ context.Context, mod api.Module, stack []uint64) error {
		points, err := readFloats(mod.Memory(), api.DecodeU32(stack[0]), api.DecodeI32(stack[1]))
		if err != nil {
			return err
		}
		rec.polyline(Polyline{
			Points: points,
			Width:  api.DecodeF32(stack[2]),
			Fill:   api.DecodeU32(stack[3]) != 0,
			R:      channel(stack[4]),
			G:      channel(stack[5]),
			B:      channel(stack[6]),
			A:      api.DecodeF32(stack[7]),
		})
		return nil
	})

	// create_text(id: i32, text: i32, size: f32, hidden: i32)
	export(codegen.ImportCreateText, func(_ context.Context, mod api.Module, stack []uint64) error {
		id, err := readCString(mod.Memory(), api.DecodeU32(stack[0]))
		if err != nil {
			return err
		}
		text, err := readCString(mod.Memory(), api.DecodeU32(stack[1]))
		if err != nil {
			return err
		}
		rec.createText(TextNode{
			ID:      id,
			Text:    text,
			Size:    api.DecodeF32(stack[2]),
			Visible: api.DecodeU32(stack[3]) == 0,
		})
		return nil
	})

	// update_text(id: i32, text: i32)
	export(codegen.ImportUpdateText, func(_ context.Context, mod api.Module, stack []uint64) error {
		id, err := readCString(mod.Memory(), api.DecodeU32(stack[0]))
		if err != nil {
			return err
		}
		text, err := readCString(mod.Memory(), api.DecodeU32(stack[1]))
		if err != nil {
			return err
		}
		rec.updateText(id, text)
		return nil
	})

	// set_text_visible(id: i32, visible: i32)
	export(codegen.ImportSetTextVisible, func(_ context.Context, mod api.Module, stack []uint64) error {
		id, err := readCString(mod.Memory(), api.DecodeU32(stack[0]))
		if err != nil {
			return err
		}
		rec.setVisible(id, api.DecodeU32(stack[1]) != 0)
		return nil
	})

	// random() -> f32
	export(codegen.ImportRandom, func(_ context.Context, _ api.Module, stack []uint64) error {
		stack[0] = api.EncodeF32(rec.random())
		return nil
	})

	// entry_function(callback: i32) where callback is a table index
	export(codegen.ImportEntryFunction, func(_ context.Context, _ api.Module, stack []uint64) error {
		rec.entry(api.DecodeU32(stack[0]))
		return nil
	})

	_, err := builder.Instantiate(ctx)
	return err
}

// channel truncates an i32 color argument to the u8 the guest passed.
func channel(v uint64) uint8 {
	return uint8(api.DecodeU32(v)) //nolint:gosec // G115: guest passes u8 widened to i32
}

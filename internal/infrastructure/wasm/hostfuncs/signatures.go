// Package hostfuncs implements the headless host bridge: the "env" module a
// generated scene binary imports, recording every call instead of drawing.
package hostfuncs

import (
	"slices"

	"github.com/reglet-dev/scenepack/internal/domain/codegen"
	"github.com/tetratelabs/wazero/api"
)

// ModuleName is the import module every host function lives in.
const ModuleName = "env"

// Signature is the wasm-level type of a host function.
type Signature struct {
	Params  []api.ValueType
	Results []api.ValueType
}

var (
	i32 = api.ValueTypeI32
	f32 = api.ValueTypeF32
)

// Signatures maps each host import to its wasm type. u8, bool, c_int and
// pointers all lower to i32.
var Signatures = map[string]Signature{
	codegen.ImportCanvasResize:   {Params: []api.ValueType{i32, i32}},
	codegen.ImportCanvasClear:    {},
	codegen.ImportDrawRect:       {Params: []api.ValueType{f32, f32, f32, f32, i32, i32, i32, f32}},
	codegen.ImportDrawPolyline:   {Params: []api.ValueType{i32, i32, f32, i32, i32, i32, i32, f32}},
	codegen.ImportCreateText:     {Params: []api.ValueType{i32, i32, f32, i32}},
	codegen.ImportUpdateText:     {Params: []api.ValueType{i32, i32}},
	codegen.ImportSetTextVisible: {Params: []api.ValueType{i32, i32}},
	codegen.ImportRandom:         {Results: []api.ValueType{f32}},
	codegen.ImportEntryFunction:  {Params: []api.ValueType{i32}},
}

// Matches reports whether def has this signature.
func (s Signature) Matches(def api.FunctionDefinition) bool {
	return slices.Equal(s.Params, def.ParamTypes()) && slices.Equal(s.Results, def.ResultTypes())
}

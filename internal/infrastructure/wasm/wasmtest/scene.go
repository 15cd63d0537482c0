package wasmtest

// Signatures of the host imports, mirroring the generated header.
var (
	CanvasResizeType  = FuncType{Params: []ValType{I32, I32}}
	CanvasClearType   = FuncType{}
	DrawRectType      = FuncType{Params: []ValType{F32, F32, F32, F32, I32, I32, I32, F32}}
	DrawPolylineType  = FuncType{Params: []ValType{I32, I32, F32, I32, I32, I32, I32, F32}}
	CreateTextType    = FuncType{Params: []ValType{I32, I32, F32, I32}}
	UpdateTextType    = FuncType{Params: []ValType{I32, I32}}
	EntryFunctionType = FuncType{Params: []ValType{I32}}
	MainType          = FuncType{}
	FrameType         = FuncType{Params: []ValType{F32}}
)

// Memory layout of DemoScene.
const (
	DemoTextID     = 16
	DemoTextInit   = 24
	DemoTextUpdate = 32
	DemoPoints     = 64
)

// DemoScene returns a module shaped like a compiled scene: main resizes the
// canvas to 320x240, draws one static polyline, creates text "score" and
// registers frame. Each frame clears, draws a red 20x10 rect centered at
// (160, 120) and sets the score text to "1".
func DemoScene() []byte {
	var m Module
	resize := m.Import("env", "canvas_resize", CanvasResizeType)
	clearCanvas := m.Import("env", "canvas_clear", CanvasClearType)
	rect := m.Import("env", "draw_rect", DrawRectType)
	poly := m.Import("env", "draw_polyline", DrawPolylineType)
	create := m.Import("env", "create_text", CreateTextType)
	update := m.Import("env", "update_text", UpdateTextType)
	entry := m.Import("env", "entry_function", EntryFunctionType)

	frame := uint32(len(m.imports) + 1) //nolint:gosec // G115: defined right after main
	main := m.Func(MainType,
		I32Const(320), I32Const(240), Call(resize),
		I32Const(DemoPoints), I32Const(6), F32Const(2), I32Const(0),
		I32Const(0), I32Const(0), I32Const(255), F32Const(1), Call(poly),
		I32Const(DemoTextID), I32Const(DemoTextInit), F32Const(12), I32Const(0), Call(create),
		I32Const(0), Call(entry),
	)
	m.Func(FrameType,
		Call(clearCanvas),
		F32Const(160), F32Const(120), F32Const(20), F32Const(10),
		I32Const(255), I32Const(0), I32Const(0), F32Const(1), Call(rect),
		I32Const(DemoTextID), I32Const(DemoTextUpdate), Call(update),
	)

	m.Table(frame)
	m.Memory(1)
	m.ExportFunc("main", main)
	m.ExportMemory("memory")
	m.ExportTable("__indirect_function_table")

	m.Data(DemoTextID, CString("score"))
	m.Data(DemoTextInit, CString("0"))
	m.Data(DemoTextUpdate, CString("1"))
	m.Data(DemoPoints, Floats(0, 0, 10, 0, 10, 10))

	return m.Bytes()
}

package codegen

// Host imports, in the order they appear in the generated header. The
// headless bridge registers exactly this set.
const (
	ImportCanvasResize   = "canvas_resize"
	ImportCanvasClear    = "canvas_clear"
	ImportDrawRect       = "draw_rect"
	ImportDrawPolyline   = "draw_polyline"
	ImportCreateText     = "create_text"
	ImportUpdateText     = "update_text"
	ImportSetTextVisible = "set_text_visible"
	ImportRandom         = "random"
	ImportEntryFunction  = "entry_function"
)

// Imports lists every host function the generated program may import.
var Imports = []string{
	ImportCanvasResize,
	ImportCanvasClear,
	ImportDrawRect,
	ImportDrawPolyline,
	ImportCreateText,
	ImportUpdateText,
	ImportSetTextVisible,
	ImportRandom,
	ImportEntryFunction,
}

// Exported symbols of the generated program.
const (
	ExportMain   = "main"
	ExportMemory = "memory"
)

// Fixed names declared by the header and routines.
const (
	objectType  = "Object"
	stateTable  = "objects"
	frameFunc   = "frame"
	selfBinding = "self"
	deltaParam  = "dt"
)

// objectMembers are the fields and methods a script may reach through self.
var objectMembers = map[string]bool{
	"x": true, "y": true, "sx": true, "sy": true,
	"r": true, "g": true, "b": true, "a": true,
	"size": true, "id": true, "text": true, "hidden": true,
	"setPos": true, "setScale": true, "setFont": true,
	"setColor": true, "setLabel": true, "sync": true,
}

// cPrimitives are Zig's C ABI type names, used by the extern declarations.
var cPrimitives = []string{
	"c_char", "c_short", "c_ushort", "c_int", "c_uint",
	"c_long", "c_ulong", "c_longlong", "c_ulonglong", "c_longdouble",
}

// reservedNames cannot be used by generated declarations.
func reservedNames() []string {
	names := append([]string{objectType, stateTable, frameFunc, ExportMain, "std", "builtin"}, Imports...)
	return append(names, cPrimitives...)
}

const prelude = `extern fn canvas_resize(w: c_int, h: c_int) void;
extern fn canvas_clear() void;
extern fn draw_rect(x: f32, y: f32, w: f32, h: f32, r: u8, g: u8, b: u8, a: f32) void;
extern fn draw_polyline(ptr: [*]const f32, len: c_int, width: f32, fill: bool, r: u8, g: u8, b: u8, a: f32) void;
extern fn create_text(id: [*:0]const u8, text: [*:0]const u8, size: f32, hidden: bool) void;
extern fn update_text(id: [*:0]const u8, text: [*:0]const u8) void;
extern fn set_text_visible(id: [*:0]const u8, visible: bool) void;
extern fn random() f32;
extern fn entry_function(callback: *const fn (f32) callconv(.C) void) void;

const Object = struct {
    x: f32 = 0,
    y: f32 = 0,
    sx: f32 = 1,
    sy: f32 = 1,
    r: u8 = 255,
    g: u8 = 255,
    b: u8 = 255,
    a: f32 = 1,
    size: f32 = 0,
    id: [*:0]const u8 = "",
    text: [*:0]const u8 = "",
    hidden: bool = false,

    fn setPos(o: *Object, x: f32, y: f32) void {
        o.x = x;
        o.y = y;
    }

    fn setScale(o: *Object, sx: f32, sy: f32) void {
        o.sx = sx;
        o.sy = sy;
    }

    fn setFont(o: *Object, size: f32) void {
        o.size = size;
    }

    fn setColor(o: *Object, r: u8, g: u8, b: u8, a: f32) void {
        o.r = r;
        o.g = g;
        o.b = b;
        o.a = a;
    }

    fn setLabel(o: *Object, id: [*:0]const u8, text: [*:0]const u8, hidden: bool) void {
        o.id = id;
        o.text = text;
        o.hidden = hidden;
        create_text(id, text, o.size, hidden);
    }

    fn sync(o: *Object) void {
        update_text(o.id, o.text);
        set_text_visible(o.id, !o.hidden);
    }
};
`

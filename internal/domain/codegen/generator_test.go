package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(name string, slot int, scripts ...string) *ir.Entity {
	e := ir.NewEntity(ir.KindRectSprite, name, name)
	e.Slot = slot
	e.Transform = ir.Transform{X: 64, Y: 64, ScaleX: 32, ScaleY: 32}
	e.Color = ir.Color{R: 255, G: 0, B: 0, A: 1}
	for i, src := range scripts {
		e.Scripts = append(e.Scripts, ir.Script{Slot: i, Source: src})
	}
	return e
}

func label(name string, slot int) *ir.Entity {
	e := ir.NewEntity(ir.KindTextLabel, name, name)
	e.Slot = slot
	e.Transform = ir.Transform{X: 10, Y: 20}
	e.Text = &ir.TextLabel{Label: "Score: 0", FontSize: 24, DOMID: name}
	return e
}

func strokes(name, asset string) *ir.Entity {
	e := ir.NewEntity(ir.KindStrokeGroup, name, name)
	e.Strokes = &ir.Strokes{DataBlock: "Sketch", Items: []ir.Stroke{{
		Asset: asset, Width: 0.5, Color: ir.Color{A: 1},
	}}}
	return e
}

func newScene(entities ...*ir.Entity) *ir.Scene {
	return &ir.Scene{Name: "demo", Canvas: ir.Canvas{Width: 800, Height: 600}, Entities: entities}
}

func generate(t *testing.T, s *ir.Scene, opts Options) (*Program, *ir.Diagnostics) {
	t.Helper()
	p, diags, err := NewGenerator(opts).Generate(s)
	require.NoError(t, err)
	return p, diags
}

func TestGenerate_EmptyScene(t *testing.T) {
	t.Parallel()

	p, diags := generate(t, newScene(), Options{})
	assert.Zero(t, diags.Len())
	assert.Equal(t, 0, p.Slots)
	assert.Equal(t, "var objects: [0]Object = .{};\n", p.State)
	assert.Equal(t, "    canvas_resize(800, 600);\n    entry_function(&frame);\n", p.Setup)
	assert.Equal(t, "    _ = dt;\n", p.Frame)
	assert.Equal(t, prelude, p.Header)
}

func TestGenerate_SourceOrder(t *testing.T) {
	t.Parallel()

	p, _ := generate(t, newScene(rect("Cube", 0)), Options{})
	src := p.Source()

	header := strings.Index(src, "extern fn canvas_resize")
	state := strings.Index(src, "var objects: [1]Object")
	setup := strings.Index(src, "export fn main() void {")
	frame := strings.Index(src, "fn frame(dt: f32) callconv(.C) void {")

	require.True(t, header >= 0 && state >= 0 && setup >= 0 && frame >= 0, src)
	assert.Less(t, header, state)
	assert.Less(t, state, setup)
	assert.Less(t, setup, frame)
	assert.True(t, strings.HasSuffix(src, "}\n"))
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	build := func() *ir.Scene {
		a := rect("A", 0, "self.x += self.speed;")
		a.Properties = []ir.Property{ir.NumberProperty("speed", 0.5), ir.StringProperty("title", "hi")}
		return newScene(a, label("B", 1), rect("C", 2))
	}

	first, _ := generate(t, build(), Options{})
	second, _ := generate(t, build(), Options{})
	assert.Equal(t, first.Source(), second.Source())
}

func TestGenerate_StateTableAndSetupPasses(t *testing.T) {
	t.Parallel()

	s := newScene(rect("A", 0), strokes("S", "gp_Sketch_0"), label("B", 1), rect("C", 2))
	s.Assets = []*ir.Asset{{Name: "gp_Sketch_0", Points: []float32{1, 2, 3, 4}, Refs: 1}}

	p, _ := generate(t, s, Options{})
	assert.Equal(t, 3, p.Slots)
	assert.Equal(t, "var objects: [3]Object = [_]Object{.{}} ** 3;\n", p.State)

	lines := strings.Split(strings.TrimSpace(p.Setup), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	assert.Equal(t, []string{
		"canvas_resize(800, 600);",
		"entry_function(&frame);",
		"objects[0].setScale(32, 32);",
		"objects[1].setFont(24);",
		"objects[2].setScale(32, 32);",
		"objects[0].setColor(255, 0, 0, 1);",
		`objects[1].setLabel("B", "Score: 0", false);`,
		"objects[2].setColor(255, 0, 0, 1);",
		"objects[0].setPos(64, 64);",
		"objects[1].setPos(10, 20);",
		"objects[2].setPos(64, 64);",
		"draw_polyline(&gp_Sketch_0, 4, 0.5, false, 0, 0, 0, 1);",
	}, lines)
}

func TestGenerate_PropertySubstitution(t *testing.T) {
	t.Parallel()

	cube := rect("Cube", 0, "self.x += self.speed;")
	cube.Properties = []ir.Property{ir.NumberProperty("speed", 0.5)}

	p, _ := generate(t, newScene(cube), Options{})

	assert.Contains(t, p.Header, "var speed_Cube: f32 = 0.5;\n")
	assert.NotContains(t, p.Frame, "self.speed")
	assert.Contains(t, p.Frame, "self.x += speed_Cube;")
	assert.Equal(t, strings.Join([]string{
		"    var self: Object = undefined;",
		"    _ = dt;",
		"    canvas_clear();",
		"    {",
		"        self = objects[0];",
		"        self.x += speed_Cube;",
		"        draw_rect(self.x, self.y, self.sx, self.sy, self.r, self.g, self.b, self.a);",
		"        objects[0] = self;",
		"    }",
		"",
	}, "\n"), p.Frame)
}

func TestGenerate_StringProperty(t *testing.T) {
	t.Parallel()

	l := label("Title", 0)
	l.Properties = []ir.Property{ir.StringProperty("greeting", "say \"hi\"\n")}
	l.Scripts = []ir.Script{{Slot: 0, Source: "self.text = self.greeting;"}}

	p, _ := generate(t, newScene(l), Options{})
	assert.Contains(t, p.Header, `var greeting_Title: [*:0]const u8 = "say \"hi\"\n";`)
	assert.Contains(t, p.Frame, "self.text = greeting_Title;")
	assert.Contains(t, p.Frame, "self.sync();")
	assert.NotContains(t, p.Frame, "canvas_clear", "no rect sprites means no clear")
}

func TestGenerate_UnscriptedRectDrawsFromTable(t *testing.T) {
	t.Parallel()

	p, _ := generate(t, newScene(rect("A", 0), label("B", 1)), Options{})
	assert.NotContains(t, p.Frame, "self")
	assert.Contains(t, p.Frame, "draw_rect(objects[0].x, objects[0].y, objects[0].sx, objects[0].sy, objects[0].r, objects[0].g, objects[0].b, objects[0].a);")
	assert.NotContains(t, p.Frame, "objects[1]", "unscripted labels are not touched per frame")
}

func TestGenerate_DeltaUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		script    string
		wantGuard bool
	}{
		{"uses dt", "self.x += 60 * dt;", false},
		{"dt only in comment", "// dt\nself.x += 1;", true},
		{"dt only in string", `self.text = "dt";`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, _ := generate(t, newScene(rect("A", 0, tt.script)), Options{})
			assert.Equal(t, tt.wantGuard, strings.Contains(p.Frame, "_ = dt;"))
		})
	}
}

func TestGenerate_UnresolvedReference(t *testing.T) {
	t.Parallel()

	s := newScene(rect("Cube", 0, "self.x += self.velocity;"))

	_, diags, err := NewGenerator(Options{}).Generate(s)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	require.Len(t, resErr.Problems, 1)
	assert.Equal(t, ir.CodeUnresolvedReference, resErr.Problems[0].Code)
	assert.Equal(t, "Cube", resErr.Problems[0].Object)
	assert.Contains(t, err.Error(), "self.velocity")
	assert.Len(t, diags.ByCode(ir.CodeUnresolvedReference), 1)
}

func TestGenerate_LenientMode(t *testing.T) {
	t.Parallel()

	cube := rect("Cube", 0, "self.x += self.speedy + self.velocity; // self.speed")
	cube.Properties = []ir.Property{ir.NumberProperty("speed", 1), ir.NumberProperty("speedy", 2)}

	p, diags := generate(t, newScene(cube), Options{Lenient: true})
	assert.Contains(t, p.Frame, "self.x += speedy_Cube + self.velocity; // speed_Cube")

	warnings := diags.ByCode(ir.CodeUnresolvedReference)
	require.Len(t, warnings, 1)
	assert.Equal(t, ir.SeverityWarning, warnings[0].Severity)
}

func TestGenerate_StrictModeLeavesCommentsAndStrings(t *testing.T) {
	t.Parallel()

	cube := rect("Cube", 0, "// self.speed\nself.text = \"self.speed\";\nself.x += self . speed;")
	cube.Properties = []ir.Property{ir.NumberProperty("speed", 1)}

	p, _ := generate(t, newScene(cube), Options{})
	assert.Contains(t, p.Frame, "// self.speed\n")
	assert.Contains(t, p.Frame, `self.text = "self.speed";`)
	assert.Contains(t, p.Frame, "self.x += speed_Cube;")
}

func TestGenerate_DeclarationCollision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entities func() []*ir.Entity
		assets   []*ir.Asset
	}{
		{
			name: "same safe name on two entities",
			entities: func() []*ir.Entity {
				a := rect("Cube_1", 0)
				a.Properties = []ir.Property{ir.NumberProperty("speed", 1)}
				b := ir.NewEntity(ir.KindRectSprite, "Cube.1", "Cube_1")
				b.Slot = 1
				b.Properties = []ir.Property{ir.NumberProperty("speed", 2)}
				return []*ir.Entity{a, b}
			},
		},
		{
			name: "property shadows a host import",
			entities: func() []*ir.Entity {
				e := rect("clear", 0)
				e.Properties = []ir.Property{ir.NumberProperty("canvas", 1)}
				return []*ir.Entity{e}
			},
		},
		{
			name: "property shadows a C primitive type",
			entities: func() []*ir.Entity {
				e := rect("int", 0)
				e.Properties = []ir.Property{ir.NumberProperty("c", 1)}
				return []*ir.Entity{e}
			},
		},
		{
			name: "property shadows an asset",
			entities: func() []*ir.Entity {
				e := rect("Sketch_0", 0)
				e.Properties = []ir.Property{ir.NumberProperty("gp", 1)}
				return []*ir.Entity{e}
			},
			assets: []*ir.Asset{{Name: "gp_Sketch_0", Points: []float32{0, 0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newScene(tt.entities()...)
			s.Assets = tt.assets

			_, diags, err := NewGenerator(Options{}).Generate(s)
			require.Error(t, err)
			assert.Len(t, diags.ByCode(ir.CodeDeclarationCollision), 1)
		})
	}
}

func TestGenerate_StrokeGroups(t *testing.T) {
	t.Parallel()

	first := strokes("First", "gp_Sketch_0")
	second := strokes("Second", "gp_Sketch_0")
	second.Scripts = []ir.Script{{Source: "self.x += 1;"}}

	s := newScene(first, second)
	s.Assets = []*ir.Asset{{Name: "gp_Sketch_0", Points: make([]float32, 10), Refs: 2}}

	p, diags := generate(t, s, Options{})

	assert.Equal(t, 1, strings.Count(p.Header, "const gp_Sketch_0 = [_]f32{"))
	assert.Equal(t, 2, strings.Count(p.Setup, "draw_polyline(&gp_Sketch_0, 10,"))
	assert.Equal(t, "var objects: [0]Object = .{};\n", p.State)
	assert.Equal(t, "    _ = dt;\n", p.Frame)
	assert.Len(t, diags.ByCode(ir.CodeStrokeScriptsIgnored), 1)
}

func TestGenerate_MultilineFragmentsIndented(t *testing.T) {
	t.Parallel()

	p, _ := generate(t, newScene(rect("A", 0, "if (self.x > 800) {\n    self.x = 0;\n}\n")), Options{})
	assert.Contains(t, p.Frame, "        if (self.x > 800) {\n            self.x = 0;\n        }\n")
}

func TestDeclarationName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "speed_Cube_001", DeclarationName("speed", "Cube_001"))
}

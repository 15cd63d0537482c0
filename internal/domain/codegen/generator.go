// Package codegen emits a freestanding Zig program from the scene IR.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

// StageGenerate names the generation stage in diagnostics.
const StageGenerate = "generate"

const indent = "    "

// Options configures a Generator.
type Options struct {
	// Lenient restores literal self.<property> substitution and reports
	// unresolved references as warnings instead of failing.
	Lenient bool
}

// ResolutionError reports script references or declarations that could not be
// bound to a unique name.
type ResolutionError struct {
	Problems []ir.Diagnostic
}

func (e *ResolutionError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].String()
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}
	return fmt.Sprintf("%d generation errors:\n  %s", len(e.Problems), strings.Join(msgs, "\n  "))
}

// Generator turns an IR scene into a Program. Output depends only on the IR.
type Generator struct {
	opts   Options
	binder *Binder
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts, binder: NewBinder(opts.Lenient)}
}

// Generate emits the program for s. Assets must already be deduplicated.
// A *ResolutionError is returned when a declaration collides or, outside
// lenient mode, when a script references an unknown self member.
func (g *Generator) Generate(s *ir.Scene) (*Program, *ir.Diagnostics, error) {
	diags := ir.NewDiagnostics(StageGenerate)

	header := g.header(s, diags)
	state := g.state(s)
	setup := g.setup(s)
	frame := g.frame(s, diags)

	if n := diags.Count(ir.SeverityError); n > 0 {
		problems := make([]ir.Diagnostic, 0, n)
		for _, d := range diags.Items() {
			if d.Severity == ir.SeverityError {
				problems = append(problems, d)
			}
		}
		return nil, diags, &ResolutionError{Problems: problems}
	}

	return &Program{
		Header: header,
		State:  state,
		Setup:  setup,
		Frame:  frame,
		Slots:  s.StateCount(),
	}, diags, nil
}

func (g *Generator) header(s *ir.Scene, diags *ir.Diagnostics) string {
	var buf bytes.Buffer
	buf.WriteString(prelude)

	declared := make(map[string]string)
	for _, name := range reservedNames() {
		declared[name] = "the program header"
	}
	declare := func(name, owner string) bool {
		if prev, ok := declared[name]; ok {
			diags.Errorf(owner, ir.CodeDeclarationCollision, "declaration %s collides with %s", name, prev)
			return false
		}
		declared[name] = owner
		return true
	}

	if len(s.Assets) > 0 {
		buf.WriteString("\n")
	}
	for _, a := range s.Assets {
		if !declare(a.Name, "asset "+a.Name) {
			continue
		}
		fmt.Fprintf(&buf, "const %s = [_]f32{", a.Name)
		for i, v := range a.Points {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(floatLit32(v))
		}
		buf.WriteString("};\n")
	}

	first := true
	for _, e := range s.Entities {
		if len(e.Properties) == 0 {
			continue
		}
		if first {
			buf.WriteString("\n")
			first = false
		}
		syms := NewSymbols(e)
		for _, p := range e.Properties {
			decl, _ := syms.Declaration(p.Name)
			if !declare(decl, fmt.Sprintf("property %s of %s", p.Name, e.Name)) {
				continue
			}
			switch p.Type {
			case ir.PropertyString:
				fmt.Fprintf(&buf, "var %s: [*:0]const u8 = %s;\n", decl, stringLit(p.String))
			default:
				fmt.Fprintf(&buf, "var %s: f32 = %s;\n", decl, floatLit(p.Number))
			}
		}
	}

	return buf.String()
}

func (g *Generator) state(s *ir.Scene) string {
	n := s.StateCount()
	if n == 0 {
		return fmt.Sprintf("var %s: [0]%s = .{};\n", stateTable, objectType)
	}
	return fmt.Sprintf("var %s: [%d]%s = [_]%s{.{}} ** %d;\n", stateTable, n, objectType, objectType, n)
}

func (g *Generator) setup(s *ir.Scene) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%s(%d, %d);\n", indent, ImportCanvasResize, s.Canvas.Width, s.Canvas.Height)
	fmt.Fprintf(&buf, "%s%s(&%s);\n", indent, ImportEntryFunction, frameFunc)

	// scale or font
	for _, e := range s.Entities {
		switch e.Kind() {
		case ir.KindRectSprite:
			fmt.Fprintf(&buf, "%s%s[%d].setScale(%s, %s);\n", indent, stateTable, e.Slot,
				floatLit(e.Transform.ScaleX), floatLit(e.Transform.ScaleY))
		case ir.KindTextLabel:
			fmt.Fprintf(&buf, "%s%s[%d].setFont(%s);\n", indent, stateTable, e.Slot, floatLit(e.Text.FontSize))
		}
	}

	// color or label
	for _, e := range s.Entities {
		switch e.Kind() {
		case ir.KindRectSprite:
			fmt.Fprintf(&buf, "%s%s[%d].setColor(%d, %d, %d, %s);\n", indent, stateTable, e.Slot,
				e.Color.R, e.Color.G, e.Color.B, floatLit(e.Color.A))
		case ir.KindTextLabel:
			fmt.Fprintf(&buf, "%s%s[%d].setLabel(%s, %s, %s);\n", indent, stateTable, e.Slot,
				stringLit(e.Text.DOMID), stringLit(e.Text.Label), boolLit(e.Text.InitiallyHidden))
		}
	}

	// position
	for _, e := range s.Entities {
		if !e.Kind().HasState() {
			continue
		}
		fmt.Fprintf(&buf, "%s%s[%d].setPos(%s, %s);\n", indent, stateTable, e.Slot,
			floatLit(e.Transform.X), floatLit(e.Transform.Y))
	}

	for _, e := range s.Entities {
		if e.Kind() != ir.KindStrokeGroup || e.Strokes == nil {
			continue
		}
		for _, st := range e.Strokes.Items {
			asset, ok := s.Asset(st.Asset)
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "%s%s(&%s, %d, %s, %s, %d, %d, %d, %s);\n", indent, ImportDrawPolyline,
				asset.Name, len(asset.Points), floatLit(st.Width), boolLit(st.Filled),
				st.Color.R, st.Color.G, st.Color.B, floatLit(st.Color.A))
		}
	}

	return buf.String()
}

func (g *Generator) frame(s *ir.Scene, diags *ir.Diagnostics) string {
	var body bytes.Buffer

	if s.CountKind(ir.KindRectSprite) > 0 {
		fmt.Fprintf(&body, "%s%s();\n", indent, ImportCanvasClear)
	}

	for _, e := range s.Entities {
		if e.Kind() == ir.KindStrokeGroup {
			if len(e.Scripts) > 0 {
				diags.Warnf(e.Name, ir.CodeStrokeScriptsIgnored,
					"%d scripts ignored, stroke groups are drawn once at setup", len(e.Scripts))
			}
			continue
		}

		if len(e.Scripts) == 0 {
			if e.Kind() == ir.KindRectSprite {
				writeDrawRect(&body, fmt.Sprintf("%s[%d]", stateTable, e.Slot))
			}
			continue
		}

		syms := NewSymbols(e)
		fmt.Fprintf(&body, "%s{\n", indent)
		fmt.Fprintf(&body, "%s%s%s = %s[%d];\n", indent, indent, selfBinding, stateTable, e.Slot)
		for _, sc := range e.Scripts {
			bound := g.binder.Bind(sc.Source, syms, diags)
			writeFragment(&body, bound)
		}
		switch e.Kind() {
		case ir.KindRectSprite:
			body.WriteString(indent)
			writeDrawRect(&body, selfBinding)
		case ir.KindTextLabel:
			fmt.Fprintf(&body, "%s%s%s.sync();\n", indent, indent, selfBinding)
		}
		fmt.Fprintf(&body, "%s%s%s[%d] = %s;\n", indent, indent, stateTable, e.Slot, selfBinding)
		fmt.Fprintf(&body, "%s}\n", indent)
	}

	emitted := body.String()

	var frame strings.Builder
	if References(emitted, selfBinding) {
		fmt.Fprintf(&frame, "%svar %s: %s = undefined;\n", indent, selfBinding, objectType)
	}
	if !References(emitted, deltaParam) {
		fmt.Fprintf(&frame, "%s_ = %s;\n", indent, deltaParam)
	}
	frame.WriteString(emitted)
	return frame.String()
}

func writeDrawRect(buf *bytes.Buffer, target string) {
	fmt.Fprintf(buf, "%s%s(%[3]s.x, %[3]s.y, %[3]s.sx, %[3]s.sy, %[3]s.r, %[3]s.g, %[3]s.b, %[3]s.a);\n",
		indent, ImportDrawRect, target)
}

// writeFragment copies a script into the frame body, re-indented by two levels.
func writeFragment(buf *bytes.Buffer, src string) {
	src = strings.TrimRight(src, " \t\r\n")
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(indent + indent + line + "\n")
	}
}

// DeclarationName returns the scoped declaration of a property on an entity,
// as emitted in the header.
func DeclarationName(property, entitySafeName string) string {
	return values.NewIdentifier(property).Scoped(values.NewIdentifier(entitySafeName)).String()
}

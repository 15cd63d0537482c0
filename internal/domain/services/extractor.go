package services

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

// Scale converts host units into target pixels for font sizes and stroke geometry.
const Scale = 100

// ReservedPropertyPrefix marks host properties that are never exported.
const ReservedPropertyPrefix = "_"

// StageExtract names the extraction stage in diagnostics.
const StageExtract = "extract"

// planeVertexCount is the vertex count of a host plane mesh.
const planeVertexCount = 4

// ExtractorOptions configures a SceneExtractor.
type ExtractorOptions struct {
	// DefaultCanvas is used when the document does not request a canvas size.
	DefaultCanvas ir.Canvas
	// Filter narrows which objects are extracted. Nil admits everything.
	Filter *ObjectFilter
}

// SceneExtractor converts a host scene document into the typed IR.
// Extraction never fails: everything it drops is reported as a diagnostic.
type SceneExtractor struct {
	opts ExtractorOptions
}

// NewSceneExtractor creates an extractor.
func NewSceneExtractor(opts ExtractorOptions) *SceneExtractor {
	return &SceneExtractor{opts: opts}
}

// Extract walks doc.Objects in order and returns the IR together with the
// diagnostics recorded along the way. The document is not modified.
func (x *SceneExtractor) Extract(doc *scene.Document) (*ir.Scene, *ir.Diagnostics) {
	diags := ir.NewDiagnostics(StageExtract)

	out := &ir.Scene{
		Name:   doc.Name,
		Canvas: x.canvas(doc),
	}

	slot := 0
	for i := range doc.Objects {
		obj := &doc.Objects[i]

		if obj.Hidden {
			diags.Infof(obj.Name, ir.CodeHidden, "hidden object skipped")
			continue
		}

		if ok, reason := x.opts.Filter.Admit(obj); !ok {
			diags.Infof(obj.Name, ir.CodeFiltered, "%s", reason)
			continue
		}

		var entity *ir.Entity
		switch obj.Type {
		case scene.TypeMesh:
			entity = x.extractRect(obj, diags)
		case scene.TypeFont:
			entity = x.extractText(obj)
		case scene.TypeStroke:
			entity = x.extractStrokes(doc, obj, diags)
		default:
			diags.Warnf(obj.Name, ir.CodeUnsupportedType, "object type %q is not supported", obj.Type)
		}
		if entity == nil {
			continue
		}

		entity.Properties = extractProperties(obj, diags)
		entity.Scripts = extractScripts(doc, obj, diags)

		if entity.Kind().HasState() {
			entity.Slot = slot
			slot++
		}
		out.Entities = append(out.Entities, entity)
	}

	return out, diags
}

func (x *SceneExtractor) canvas(doc *scene.Document) ir.Canvas {
	if doc.Canvas != nil && doc.Canvas.Width > 0 && doc.Canvas.Height > 0 {
		return ir.Canvas{Width: doc.Canvas.Width, Height: doc.Canvas.Height}
	}
	return x.opts.DefaultCanvas
}

func (x *SceneExtractor) extractRect(obj *scene.Object, diags *ir.Diagnostics) *ir.Entity {
	if obj.Mesh == nil || len(obj.Mesh.Vertices) != planeVertexCount {
		n := 0
		if obj.Mesh != nil {
			n = len(obj.Mesh.Vertices)
		}
		diags.Warnf(obj.Name, ir.CodeMalformedGeometry,
			"mesh has %d vertices, expected %d", n, planeVertexCount)
		return nil
	}

	e := ir.NewEntity(ir.KindRectSprite, obj.Name, safeName(obj.Name))
	scale := obj.ScaleOrIdentity()
	e.Transform = ir.Transform{
		X:      round(obj.Location.X()),
		Y:      round(-obj.Location.Z()),
		ScaleX: round(2 * scale.X()),
		ScaleY: round(2 * scale.Y()),
	}
	e.Color = convertColor(obj.ColorOrWhite())
	return e
}

func (x *SceneExtractor) extractText(obj *scene.Object) *ir.Entity {
	name := safeName(obj.Name)
	e := ir.NewEntity(ir.KindTextLabel, obj.Name, name)
	e.Transform = ir.Transform{
		X: round(obj.Location.X()),
		Y: round(-obj.Location.Z()),
	}
	e.Color = convertColor(obj.ColorOrWhite())
	e.Text = &ir.TextLabel{
		Label:           obj.Body,
		FontSize:        round(obj.Size * Scale),
		DOMID:           name,
		InitiallyHidden: obj.InitiallyHidden,
	}
	return e
}

func (x *SceneExtractor) extractStrokes(doc *scene.Document, obj *scene.Object, diags *ir.Diagnostics) *ir.Entity {
	data, ok := doc.Strokes[obj.Data]
	if obj.Data == "" || !ok {
		diags.Warnf(obj.Name, ir.CodeMissingDataBlock, "stroke data block %q not found", obj.Data)
		return nil
	}

	e := ir.NewEntity(ir.KindStrokeGroup, obj.Name, safeName(obj.Name))
	e.Transform = ir.Transform{
		X: round(obj.Location.X()),
		Y: round(-obj.Location.Z()),
	}
	e.Strokes = &ir.Strokes{
		DataBlock: obj.Data,
		OriginX:   obj.Location.X(),
		OriginZ:   obj.Location.Z(),
	}

	for _, src := range data.Strokes {
		stroke := ir.Stroke{
			LineWidth: src.LineWidth,
			Points:    make([]ir.SourcePoint, 0, len(src.Points)),
		}
		for _, p := range src.Points {
			stroke.Points = append(stroke.Points, ir.SourcePoint{
				X:        p.Co.X(),
				Z:        p.Co.Z(),
				Pressure: p.Pressure,
			})
		}

		mat, ok := doc.Materials[src.Material]
		if !ok {
			diags.Warnf(obj.Name, ir.CodeMissingMaterial,
				"material %q not found, stroke drawn black and unfilled", src.Material)
			stroke.Color = ir.Color{A: 1}
		} else {
			stroke.Filled = mat.ShowFill
			if mat.ShowFill {
				stroke.Color = convertColor(mat.FillColor)
			} else {
				stroke.Color = convertColor(mat.Color)
			}
		}

		e.Strokes.Items = append(e.Strokes.Items, stroke)
	}

	return e
}

func extractProperties(obj *scene.Object, diags *ir.Diagnostics) []ir.Property {
	if len(obj.Properties) == 0 {
		return nil
	}

	keys := make([]string, 0, len(obj.Properties))
	for k := range obj.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]ir.Property, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, ReservedPropertyPrefix) {
			diags.Warnf(obj.Name, ir.CodeReservedProperty, "property %q uses the reserved prefix %q", k, ReservedPropertyPrefix)
			continue
		}
		if !values.IsIdentifier(k) {
			diags.Warnf(obj.Name, ir.CodeUnsupportedProperty, "property name %q is not a valid identifier", k)
			continue
		}

		switch v := obj.Properties[k].(type) {
		case string:
			props = append(props, ir.StringProperty(k, v))
		case bool:
			n := 0.0
			if v {
				n = 1
			}
			props = append(props, ir.NumberProperty(k, n))
		default:
			n, ok := toFloat(v)
			if !ok {
				diags.Warnf(obj.Name, ir.CodeUnsupportedProperty, "property %q has unsupported type %T", k, v)
				continue
			}
			props = append(props, ir.NumberProperty(k, n))
		}
	}
	return props
}

func extractScripts(doc *scene.Document, obj *scene.Object, diags *ir.Diagnostics) []ir.Script {
	var scripts []ir.Script
	for i, slot := range obj.Scripts {
		if i >= scene.MaxScriptSlots {
			diags.Warnf(obj.Name, ir.CodeScriptSlotOverflow,
				"%d script slots attached, only the first %d are used", len(obj.Scripts), scene.MaxScriptSlots)
			break
		}
		if slot.Disabled {
			continue
		}

		source := slot.Source
		if slot.Text != "" {
			text, ok := doc.Texts[slot.Text]
			if !ok {
				diags.Warnf(obj.Name, ir.CodeMissingText, "script slot %d references missing text %q", i, slot.Text)
				continue
			}
			source = text
		}
		if strings.TrimSpace(source) == "" {
			continue
		}

		scripts = append(scripts, ir.Script{Slot: i, Name: slot.Text, Source: source})
	}
	return scripts
}

func safeName(name string) string {
	return values.NewIdentifier(name).String()
}

// round rounds half to even, matching the host scripting runtime.
func round(v float64) float64 {
	return math.RoundToEven(v)
}

func convertColor(c scene.RGBA) ir.Color {
	return ir.Color{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: c[3],
	}
}

func channel(v float64) uint8 {
	n := round(v * 255)
	switch {
	case math.IsNaN(n), n < 0:
		return 0
	case n > 255:
		return 255
	default:
		return uint8(n)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Package scene models the host scene document written by the authoring tool.
// These types mirror the loosely typed host data model; nothing downstream of the
// extractor reads them.
package scene

// Object type names as written by the authoring tool.
const (
	TypeMesh   = "MESH"
	TypeFont   = "FONT"
	TypeStroke = "GPENCIL"
)

// MaxScriptSlots is the number of script slots an object can carry.
const MaxScriptSlots = 8

// Document is a complete scene as exported by the host application.
type Document struct {
	Name      string                `yaml:"name" json:"name"`
	Canvas    *Canvas               `yaml:"canvas,omitempty" json:"canvas,omitempty"`
	Objects   []Object              `yaml:"objects" json:"objects"`
	Texts     map[string]string     `yaml:"texts,omitempty" json:"texts,omitempty"`
	Strokes   map[string]StrokeData `yaml:"strokes,omitempty" json:"strokes,omitempty"`
	Materials map[string]Material   `yaml:"materials,omitempty" json:"materials,omitempty"`
}

// Canvas is the requested output canvas size in pixels.
type Canvas struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Object is one scene object in host enumeration order.
type Object struct {
	Name       string         `yaml:"name" json:"name"`
	Type       string         `yaml:"type" json:"type"`
	Collection string         `yaml:"collection,omitempty" json:"collection,omitempty"`
	Hidden     bool           `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Location   Vec3           `yaml:"location,omitempty" json:"location,omitempty"`
	Scale      *Vec3          `yaml:"scale,omitempty" json:"scale,omitempty"`
	Color      *RGBA          `yaml:"color,omitempty" json:"color,omitempty"`
	Mesh       *Mesh          `yaml:"mesh,omitempty" json:"mesh,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
	Scripts    []ScriptSlot   `yaml:"scripts,omitempty" json:"scripts,omitempty"`

	// FONT objects
	Body            string  `yaml:"body,omitempty" json:"body,omitempty"`
	Size            float64 `yaml:"size,omitempty" json:"size,omitempty"`
	InitiallyHidden bool    `yaml:"initially_hidden,omitempty" json:"initially_hidden,omitempty"`

	// GPENCIL objects reference a stroke data block by name.
	Data string `yaml:"data,omitempty" json:"data,omitempty"`
}

// ScaleOrIdentity returns the object scale, defaulting to (1, 1, 1).
func (o *Object) ScaleOrIdentity() Vec3 {
	if o.Scale == nil {
		return Vec3{1, 1, 1}
	}
	return *o.Scale
}

// ColorOrWhite returns the object color, defaulting to opaque white.
func (o *Object) ColorOrWhite() RGBA {
	if o.Color == nil {
		return RGBA{1, 1, 1, 1}
	}
	return *o.Color
}

// Vec3 is an x, y, z triple in host coordinates (z up).
type Vec3 [3]float64

// X returns the first component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float64 { return v[2] }

// RGBA is a color with 0..1 channels.
type RGBA [4]float64

// Mesh is the geometry attached to a MESH object.
type Mesh struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Vertices []Vec3 `yaml:"vertices" json:"vertices"`
}

// ScriptSlot attaches a script to an object. The slot number is the list index.
type ScriptSlot struct {
	Text     string `yaml:"text,omitempty" json:"text,omitempty"`
	Source   string `yaml:"source,omitempty" json:"source,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// StrokeData is a shared stroke data block referenced by GPENCIL objects.
type StrokeData struct {
	Strokes []Stroke `yaml:"strokes" json:"strokes"`
}

// Stroke is one drawn stroke of a data block.
type Stroke struct {
	Points    []StrokePoint `yaml:"points" json:"points"`
	LineWidth float64       `yaml:"line_width" json:"line_width"`
	Material  string        `yaml:"material,omitempty" json:"material,omitempty"`
}

// StrokePoint is a single sampled stroke point.
type StrokePoint struct {
	Co       Vec3    `yaml:"co" json:"co"`
	Pressure float64 `yaml:"pressure" json:"pressure"`
}

// Material describes how a stroke is painted.
type Material struct {
	Color     RGBA `yaml:"color" json:"color"`
	FillColor RGBA `yaml:"fill_color,omitempty" json:"fill_color,omitempty"`
	ShowFill  bool `yaml:"show_fill,omitempty" json:"show_fill,omitempty"`
}

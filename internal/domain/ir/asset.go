package ir

// Strokes is the payload of a KindStrokeGroup entity.
type Strokes struct {
	// DataBlock is the name of the shared geometry block the strokes come from.
	DataBlock string `json:"data_block" yaml:"data_block"`
	// OriginX and OriginZ are the untransformed host location of the owning object.
	OriginX float64  `json:"origin_x" yaml:"origin_x"`
	OriginZ float64  `json:"origin_z" yaml:"origin_z"`
	Items   []Stroke `json:"items" yaml:"items"`
}

// SourcePoint is a stroke sample copied from the host document.
type SourcePoint struct {
	X        float64 `json:"x" yaml:"x"`
	Z        float64 `json:"z" yaml:"z"`
	Pressure float64 `json:"pressure" yaml:"pressure"`
}

// Stroke is one stroke of a StrokeGroup. Asset and Width are filled in by the
// deduplicator.
type Stroke struct {
	Points    []SourcePoint `json:"-" yaml:"-"`
	LineWidth float64       `json:"line_width" yaml:"line_width"`
	Filled    bool          `json:"filled" yaml:"filled"`
	Color     Color         `json:"color" yaml:"color"`

	Asset string  `json:"asset,omitempty" yaml:"asset,omitempty"`
	Width float64 `json:"width" yaml:"width"`
}

// Asset is deduplicated stroke geometry shared by one or more entities.
type Asset struct {
	Name string `json:"name" yaml:"name"`
	// Points alternates x, y in target coordinates.
	Points []float32 `json:"points" yaml:"points"`
	// Refs counts how many strokes reference this asset.
	Refs int `json:"refs" yaml:"refs"`
}

// PointCount returns the number of x, y pairs.
func (a *Asset) PointCount() int {
	return len(a.Points) / 2
}

// Canvas is the output canvas size.
type Canvas struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Scene is the complete IR for one export invocation.
type Scene struct {
	Name     string    `json:"name" yaml:"name"`
	Canvas   Canvas    `json:"canvas" yaml:"canvas"`
	Entities []*Entity `json:"entities" yaml:"entities"`
	Assets   []*Asset  `json:"assets" yaml:"assets"`
}

// StateCount returns the number of entities owning a runtime-state slot.
func (s *Scene) StateCount() int {
	n := 0
	for _, e := range s.Entities {
		if e.Kind().HasState() {
			n++
		}
	}
	return n
}

// Asset looks up an asset by name.
func (s *Scene) Asset(name string) (*Asset, bool) {
	for _, a := range s.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// CountKind returns the number of entities of kind k.
func (s *Scene) CountKind(k Kind) int {
	n := 0
	for _, e := range s.Entities {
		if e.Kind() == k {
			n++
		}
	}
	return n
}

package services

import (
	"testing"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strokeScene(t *testing.T, objects ...scene.Object) *ir.Scene {
	t.Helper()

	points := make([]scene.StrokePoint, 5)
	for i := range points {
		points[i] = scene.StrokePoint{Co: scene.Vec3{float64(i), 0, float64(-i)}, Pressure: 0.5}
	}

	doc := &scene.Document{
		Objects: objects,
		Strokes: map[string]scene.StrokeData{
			"Sketch": {Strokes: []scene.Stroke{{Points: points, LineWidth: 20, Material: "Ink"}}},
			"Other.1": {Strokes: []scene.Stroke{
				{Points: points[:2], LineWidth: 10, Material: "Ink"},
				{Points: points[:3], LineWidth: 10, Material: "Ink"},
			}},
		},
		Materials: map[string]scene.Material{"Ink": {Color: scene.RGBA{0, 0, 0, 1}}},
	}

	s, _ := defaultExtractor().Extract(doc)
	return s
}

func TestDeduplicate_SharedBlockEmittedOnce(t *testing.T) {
	t.Parallel()

	s := strokeScene(t,
		scene.Object{Name: "First", Type: scene.TypeStroke, Data: "Sketch"},
		scene.Object{Name: "Second", Type: scene.TypeStroke, Data: "Sketch", Location: scene.Vec3{50, 0, 50}},
	)
	require.Len(t, s.Entities, 2)

	diags := NewAssetDeduplicator().Deduplicate(s)
	assert.Zero(t, diags.Len())

	require.Len(t, s.Assets, 1)
	asset := s.Assets[0]
	assert.Equal(t, "gp_Sketch_0", asset.Name)
	assert.Len(t, asset.Points, 10)
	assert.Equal(t, 5, asset.PointCount())
	assert.Equal(t, 2, asset.Refs)

	for _, e := range s.Entities {
		require.Len(t, e.Strokes.Items, 1)
		assert.Equal(t, asset.Name, e.Strokes.Items[0].Asset)
	}
}

func TestDeduplicate_Transcription(t *testing.T) {
	t.Parallel()

	s := strokeScene(t,
		scene.Object{Name: "First", Type: scene.TypeStroke, Data: "Sketch", Location: scene.Vec3{5, 0, 7}},
	)

	NewAssetDeduplicator().Deduplicate(s)
	require.Len(t, s.Assets, 1)

	// point i is (i, -i) in host x, z
	want := make([]float32, 0, 10)
	for i := 0; i < 5; i++ {
		want = append(want, float32(float64(i)*Scale+5), float32(-(float64(-i)*Scale + 7)))
	}
	assert.Equal(t, want, s.Assets[0].Points)
}

func TestDeduplicate_StrokeWidth(t *testing.T) {
	t.Parallel()

	s := strokeScene(t, scene.Object{Name: "First", Type: scene.TypeStroke, Data: "Sketch"})
	NewAssetDeduplicator().Deduplicate(s)

	// mean pressure 0.5 * line width 20 * 0.05
	assert.InDelta(t, 0.5, s.Entities[0].Strokes.Items[0].Width, 1e-9)
}

func TestDeduplicate_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	s := strokeScene(t,
		scene.Object{Name: "A", Type: scene.TypeStroke, Data: "Other.1"},
		scene.Object{Name: "B", Type: scene.TypeStroke, Data: "Sketch"},
		scene.Object{Name: "C", Type: scene.TypeStroke, Data: "Other.1"},
	)

	NewAssetDeduplicator().Deduplicate(s)

	names := make([]string, 0, len(s.Assets))
	for _, a := range s.Assets {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"gp_Other_1_0", "gp_Other_1_1", "gp_Sketch_0"}, names)
	assert.Equal(t, 2, s.Assets[0].PointCount())
	assert.Equal(t, 3, s.Assets[1].PointCount())
	assert.Equal(t, 2, s.Assets[0].Refs)
}

func TestDeduplicate_IgnoresOtherKinds(t *testing.T) {
	t.Parallel()

	s := strokeScene(t, scene.Object{Name: "Cube", Type: scene.TypeMesh, Mesh: plane()})
	NewAssetDeduplicator().Deduplicate(s)
	assert.Empty(t, s.Assets)
}

func TestDeduplicate_NormalizedAlias(t *testing.T) {
	t.Parallel()

	s := &ir.Scene{}
	for _, block := range []string{"Sketch.1", "Sketch_1"} {
		e := ir.NewEntity(ir.KindStrokeGroup, block, block)
		e.Strokes = &ir.Strokes{DataBlock: block, Items: []ir.Stroke{{
			Points: []ir.SourcePoint{{X: 1, Z: 1, Pressure: 1}},
		}}}
		s.Entities = append(s.Entities, e)
	}

	diags := NewAssetDeduplicator().Deduplicate(s)
	require.Len(t, s.Assets, 1)
	assert.Equal(t, 2, s.Assets[0].Refs)
	assert.Len(t, diags.ByCode(ir.CodeAssetAlias), 1)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reglet-dev/scenepack/internal/domain/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoScene = `
name: Demo
canvas:
  width: 320
  height: 240
objects:
  - name: Player
    type: MESH
    collection: Actors
    location: [64, 0, -64]
    scale: [16, 1, 16]
    color: [1, 0.5, 0, 1]
    mesh:
      vertices: [[-1, 0, -1], [1, 0, -1], [1, 0, 1], [-1, 0, 1]]
    properties:
      speed: 2.5
      label: hero
      alive: true
    scripts:
      - source: "self.x += self_speed * dt;"
      - {}
      - text: tick.zig
  - name: Score
    type: FONT
    body: "0"
    size: 0.24
  - name: Sketch
    type: GPENCIL
    data: Sketch
texts:
  tick.zig: "self.y += 1;"
strokes:
  Sketch:
    strokes:
      - line_width: 20
        material: Ink
        points:
          - co: [0, 0, 0]
            pressure: 1
          - co: [1, 0, 1]
            pressure: 0.5
materials:
  Ink:
    color: [0, 0, 0, 1]
`

func TestLoadSceneFromReader_Valid(t *testing.T) {
	loader := NewSceneLoader()
	doc, err := loader.LoadSceneFromReader(strings.NewReader(demoScene))
	require.NoError(t, err)

	assert.Equal(t, "Demo", doc.Name)
	require.NotNil(t, doc.Canvas)
	assert.Equal(t, 320, doc.Canvas.Width)
	require.Len(t, doc.Objects, 3)

	player := doc.Objects[0]
	assert.Equal(t, scene.TypeMesh, player.Type)
	assert.Equal(t, "Actors", player.Collection)
	assert.Equal(t, scene.Vec3{64, 0, -64}, player.Location)
	assert.Equal(t, scene.Vec3{16, 1, 16}, player.ScaleOrIdentity())
	assert.Equal(t, scene.RGBA{1, 0.5, 0, 1}, player.ColorOrWhite())
	require.NotNil(t, player.Mesh)
	assert.Len(t, player.Mesh.Vertices, 4)
	assert.Len(t, player.Properties, 3)
	assert.Equal(t, "hero", player.Properties["label"])
	assert.Equal(t, true, player.Properties["alive"])
	require.Len(t, player.Scripts, 3)
	assert.Equal(t, "tick.zig", player.Scripts[2].Text)

	assert.InDelta(t, 0.24, doc.Objects[1].Size, 1e-9)
	assert.Equal(t, "Sketch", doc.Objects[2].Data)
	assert.Equal(t, "self.y += 1;", doc.Texts["tick.zig"])
	require.Len(t, doc.Strokes["Sketch"].Strokes, 1)
	assert.Len(t, doc.Strokes["Sketch"].Strokes[0].Points, 2)
	assert.Equal(t, scene.RGBA{0, 0, 0, 1}, doc.Materials["Ink"].Color)
}

func TestLoadSceneFromBytes_JSON(t *testing.T) {
	data := `{"name": "Json", "objects": [{"name": "A", "type": "EMPTY"}]}`

	doc, err := NewSceneLoader().LoadSceneFromBytes([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "Json", doc.Name)
	assert.Nil(t, doc.Canvas)
	require.Len(t, doc.Objects, 1)
	assert.Equal(t, "EMPTY", doc.Objects[0].Type)
}

func TestLoadSceneFromReader_InvalidYAML(t *testing.T) {
	_, err := NewSceneLoader().LoadSceneFromReader(strings.NewReader("name: [[["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestLoadSceneFromReader_Empty(t *testing.T) {
	_, err := NewSceneLoader().LoadSceneFromReader(strings.NewReader("  \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadSceneFromReader_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantLoc string
	}{
		{
			name:    "missing name",
			yaml:    "objects: []\n",
			wantLoc: "(root)",
		},
		{
			name:    "object without type",
			yaml:    "name: s\nobjects:\n  - name: a\n",
			wantLoc: "/objects/0",
		},
		{
			name:    "short location",
			yaml:    "name: s\nobjects:\n  - name: a\n    type: MESH\n    location: [1, 2]\n",
			wantLoc: "/objects/0/location",
		},
		{
			name:    "zero canvas",
			yaml:    "name: s\ncanvas:\n  width: 0\n  height: 10\n",
			wantLoc: "/canvas/width",
		},
		{
			name:    "unknown field",
			yaml:    "name: s\nlights: []\n",
			wantLoc: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSceneLoader().LoadSceneFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			require.NotEmpty(t, schemaErr.Problems)
			assert.Contains(t, strings.Join(schemaErr.Problems, "\n"), tt.wantLoc)
			assert.Contains(t, err.Error(), "scene validation failed")
		})
	}
}

func TestLoadSceneFromReader_MalformedObjectsStillLoad(t *testing.T) {
	// Shape problems the extractor reports as diagnostics must survive loading.
	yaml := `
name: s
objects:
  - name: Triangle
    type: MESH
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 0, 1]]
  - name: Orphan
    type: GPENCIL
    data: Missing
  - name: Odd
    type: MESH
    properties:
      list: [1, 2]
`
	doc, err := NewSceneLoader().LoadSceneFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Len(t, doc.Objects, 3)
}

func TestLoadScene_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoScene), 0o600))

	doc, err := NewSceneLoader().LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", doc.Name)
}

func TestLoadScene_MissingFile(t *testing.T) {
	_, err := NewSceneLoader().LoadScene(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open scene")
}

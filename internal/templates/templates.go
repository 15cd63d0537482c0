// Package templates provides embedded starter scenes for scaffolding.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed scene/*.tmpl
var sceneTemplates embed.FS

// SceneData contains the data used to render a starter scene.
type SceneData struct {
	// Name is the scene name, which also names the exported files.
	Name   string
	Width  int
	Height int
}

// CenterX is the horizontal center of the canvas.
func (d SceneData) CenterX() int { return d.Width / 2 }

// CenterY is the vertical center of the canvas.
func (d SceneData) CenterY() int { return d.Height / 2 }

// SceneTemplates returns the parsed starter scene templates.
func SceneTemplates() (*template.Template, error) {
	tmpl := template.New("")

	err := fs.WalkDir(sceneTemplates, "scene", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := sceneTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// Use filename without .yaml.tmpl as template name
		name := strings.TrimPrefix(path, "scene/")
		name = strings.TrimSuffix(name, ".yaml.tmpl")

		_, err = tmpl.New(name).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// Starters returns the names of the available starter scenes.
func Starters() []string {
	return []string{"minimal", "demo"}
}

// RenderScene renders the named starter scene.
func RenderScene(starter string, data SceneData) ([]byte, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("scene name is required")
	}
	if data.Width < 1 || data.Height < 1 {
		return nil, fmt.Errorf("canvas must be at least 1x1, got %dx%d", data.Width, data.Height)
	}

	tmpl, err := SceneTemplates()
	if err != nil {
		return nil, err
	}
	t := tmpl.Lookup(starter)
	if t == nil {
		return nil, fmt.Errorf("unknown starter scene: %s (available: %v)", starter, Starters())
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", starter, err)
	}
	return buf.Bytes(), nil
}

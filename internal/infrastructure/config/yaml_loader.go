// Package config provides infrastructure for loading scene documents.
// This package handles YAML parsing, schema validation, and file I/O.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/scene.schema.json
var sceneSchemaJSON []byte

const sceneSchemaResource = "scene.schema.json"

var (
	sceneSchemaOnce sync.Once
	sceneSchema     *jsonschema.Schema
	sceneSchemaErr  error
)

// SchemaError lists every schema violation found in a scene document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("scene validation failed:\n    - %s", strings.Join(e.Problems, "\n    - "))
}

// SceneLoader handles loading scene documents from YAML or JSON files.
type SceneLoader struct{}

// NewSceneLoader creates a new scene loader.
func NewSceneLoader() *SceneLoader {
	return &SceneLoader{}
}

// LoadScene loads, validates and parses a scene document.
func (l *SceneLoader) LoadScene(path string) (*scene.Document, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadSceneFromReader(file)
}

// LoadSceneFromReader loads a scene document from an io.Reader.
func (l *SceneLoader) LoadSceneFromReader(r io.Reader) (*scene.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return l.LoadSceneFromBytes(data)
}

// LoadSceneFromBytes validates data against the scene schema and decodes it.
// JSON input is accepted since every JSON document is also YAML.
func (l *SceneLoader) LoadSceneFromBytes(data []byte) (*scene.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("scene document is empty")
	}

	if err := ValidateScene(data); err != nil {
		return nil, err
	}

	var doc scene.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode scene YAML: %w", err)
	}

	return &doc, nil
}

// ValidateScene checks a YAML or JSON scene document against the embedded schema.
func ValidateScene(data []byte) error {
	schema, err := compiledSceneSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to decode scene YAML: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode scene YAML: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("scene validation failed: %w", err)
	}
	return nil
}

func compiledSceneSchema() (*jsonschema.Schema, error) {
	sceneSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(sceneSchemaResource, bytes.NewReader(sceneSchemaJSON)); err != nil {
			sceneSchemaErr = fmt.Errorf("failed to add scene schema resource: %w", err)
			return
		}
		sceneSchema, sceneSchemaErr = compiler.Compile(sceneSchemaResource)
		if sceneSchemaErr != nil {
			sceneSchemaErr = fmt.Errorf("failed to compile scene schema: %w", sceneSchemaErr)
		}
	})
	return sceneSchema, sceneSchemaErr
}

// formatSchemaValidationError flattens the validation error tree into one
// message per failing location.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = []string{err.Error()}
	}
	return &SchemaError{Problems: messages}
}

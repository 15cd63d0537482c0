package dto

import (
	"time"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
)

// ExportSceneResponse contains the result of exporting a scene.
type ExportSceneResponse struct {
	Scene        string              `json:"scene" yaml:"scene"`
	ScenePath    string              `json:"scene_path" yaml:"scene_path"`
	DocumentPath string              `json:"document" yaml:"document"`
	ArchivePath  string              `json:"archive" yaml:"archive"`
	Sizes        ArtifactSizes       `json:"sizes" yaml:"sizes"`
	Summary      SceneSummary        `json:"summary" yaml:"summary"`
	Stages       []StageTiming       `json:"stages" yaml:"stages"`
	Diagnostics  []ir.Diagnostic     `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Verification *VerificationReport `json:"verification,omitempty" yaml:"verification,omitempty"`
	ScratchDir   string              `json:"scratch_dir,omitempty" yaml:"scratch_dir,omitempty"`
	Metadata     ResponseMetadata    `json:"metadata" yaml:"metadata"`
}

// ArtifactSizes reports the byte size of each produced artifact.
type ArtifactSizes struct {
	Source    int   `json:"source" yaml:"source"`
	Binary    int64 `json:"binary" yaml:"binary"`
	Optimized int64 `json:"optimized" yaml:"optimized"`
	Document  int64 `json:"document" yaml:"document"`
	Archive   int64 `json:"archive" yaml:"archive"`
}

// SceneSummary counts what was extracted.
type SceneSummary struct {
	RectSprites  int `json:"rect_sprites" yaml:"rect_sprites"`
	TextLabels   int `json:"text_labels" yaml:"text_labels"`
	StrokeGroups int `json:"stroke_groups" yaml:"stroke_groups"`
	Assets       int `json:"assets" yaml:"assets"`
	Slots        int `json:"slots" yaml:"slots"`
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Name     string        `json:"name" yaml:"name"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`

	// BuildID names the scratch workspace of this export
	BuildID string `json:"build_id" yaml:"build_id"`

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Duration is how long the request took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// GenerateSourceResponse contains generated source for a scene.
type GenerateSourceResponse struct {
	Scene       string
	Source      string
	Summary     SceneSummary
	Diagnostics []ir.Diagnostic
}

// InspectSceneResponse contains the extracted IR and everything reported on the way.
type InspectSceneResponse struct {
	Scene       *ir.Scene       `json:"scene" yaml:"scene"`
	Summary     SceneSummary    `json:"summary" yaml:"summary"`
	Diagnostics []ir.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// BatchExportResponse contains one response per request, in request order.
type BatchExportResponse struct {
	Results []*ExportSceneResponse `json:"results" yaml:"results"`
}

// VerificationReport summarises a headless run of a compiled binary.
type VerificationReport struct {
	Frames int `json:"frames" yaml:"frames"`
	// Calls counts host import invocations by name.
	Calls map[string]int `json:"calls" yaml:"calls"`
	// Rects is the number of rectangles drawn in the last frame.
	Rects int `json:"rects" yaml:"rects"`
	// Polylines is the number of static polylines drawn during setup.
	Polylines int `json:"polylines" yaml:"polylines"`
	// Texts maps DOM ids to their final text.
	Texts map[string]string `json:"texts,omitempty" yaml:"texts,omitempty"`
	// Snapshot is the PNG written for the final frame, if requested.
	Snapshot string `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

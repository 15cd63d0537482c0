// Package dto contains data transfer objects for application layer use cases.
package dto

// ExportSceneRequest encapsulates all inputs needed to export one scene.
type ExportSceneRequest struct {
	ScenePath string
	// OutputDir receives <name>.html and <name>.zip. Empty means the scene's directory.
	OutputDir string
	// OutputName overrides the base name of the outputs. Empty means the scene name.
	OutputName string
	Filters    FilterOptions
	Toolchain  ToolchainOptions
	Verify     VerifyOptions
	Scratch    ScratchOptions
	Scripts    ScriptOptions
	Metadata   RequestMetadata
}

// FilterOptions defines filters for object selection.
type FilterOptions struct {
	FilterExpression   string
	ExcludeNames       []string
	IncludeCollections []string
}

// ToolchainOptions controls the external compile and optimize steps.
type ToolchainOptions struct {
	// MemoryMultiplier is the initial linear memory in MiB. Zero means the default.
	MemoryMultiplier int
	SkipOptimize     bool
}

// VerifyOptions controls the headless run of the compiled binary.
type VerifyOptions struct {
	Enabled bool
	// Frames is the number of frame callbacks to run.
	Frames int
}

// ScratchOptions controls the per-export scratch workspace.
type ScratchOptions struct {
	// Keep leaves the workspace on disk after the export.
	Keep bool
}

// ScriptOptions controls script binding.
type ScriptOptions struct {
	// Lenient substitutes self.<property> textually and only warns on
	// unresolved references.
	Lenient bool
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// GenerateSourceRequest encapsulates inputs for source generation only.
type GenerateSourceRequest struct {
	ScenePath string
	Filters   FilterOptions
	Scripts   ScriptOptions
}

// InspectSceneRequest encapsulates inputs for scene inspection.
type InspectSceneRequest struct {
	ScenePath string
	Filters   FilterOptions
}

// BatchExportRequest exports several scenes concurrently.
type BatchExportRequest struct {
	Requests []ExportSceneRequest
	// Parallel bounds concurrent exports. Zero or less means one at a time.
	Parallel int
}

// VerifyBinaryRequest runs a compiled binary headlessly.
type VerifyBinaryRequest struct {
	// Path is a .wasm binary or a packaged .html document.
	Path   string
	Frames int
	// SnapshotPath, when set, receives a PNG of the final frame.
	SnapshotPath string
	Canvas       CanvasSize
}

// CanvasSize is a canvas size in pixels.
type CanvasSize struct {
	Width  int
	Height int
}

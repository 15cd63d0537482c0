// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

// SceneLoader loads scene documents from storage.
type SceneLoader interface {
	LoadScene(path string) (*scene.Document, error)
}

// Workspace is a scratch directory owned by a single export.
type Workspace interface {
	// ID is the build id the workspace is named after.
	ID() values.BuildID
	// Dir is the absolute workspace directory.
	Dir() string
	// Path joins name onto the workspace directory.
	Path(name string) string
	// Release removes the workspace unless it is kept.
	Release() error
}

// ScratchProvider hands out per-export workspaces.
type ScratchProvider interface {
	Acquire(id values.BuildID, keep bool) (Workspace, error)
}

// ToolchainChecker verifies the external compiler before any build.
type ToolchainChecker interface {
	// CheckToolchain returns the compiler version, or an error when the
	// compiler is missing or does not satisfy the configured constraint.
	CheckToolchain(ctx context.Context) (string, error)
}

// SourceCompiler compiles generated source into a freestanding binary.
type SourceCompiler interface {
	Compile(ctx context.Context, ws Workspace, source string, opts dto.ToolchainOptions) (*dto.CompileResult, error)
}

// BinaryOptimizer shrinks a compiled binary.
type BinaryOptimizer interface {
	Optimize(ctx context.Context, ws Workspace, binaryPath string, opts dto.ToolchainOptions) (*dto.OptimizeResult, error)
}

// BinaryVerifier runs a compiled binary against the headless host bridge.
type BinaryVerifier interface {
	Verify(ctx context.Context, binary []byte, run dto.VerifyRun) (*dto.VerificationReport, error)
}

// ArtifactPackager wraps a binary into the distributable document and archive.
type ArtifactPackager interface {
	Package(ctx context.Context, binary []byte, outputDir, name string) (*dto.PackageResult, error)
}

// ArtifactUnpacker decodes a packaged document back into its payloads.
type ArtifactUnpacker interface {
	Unpack(document []byte) (*dto.UnpackedDocument, error)
}

package dto

// CompileResult is the outcome of the compile stage.
type CompileResult struct {
	SourcePath string
	BinaryPath string
	Size       int64
}

// OptimizeResult is the outcome of the optimize stage.
type OptimizeResult struct {
	BinaryPath string
	Size       int64
	// Skipped is true when optimization was disabled and BinaryPath is the
	// unoptimized input.
	Skipped bool
}

// PackageResult is the outcome of the package stage.
type PackageResult struct {
	DocumentPath string
	ArchivePath  string
	DocumentSize int64
	ArchiveSize  int64
}

// VerifyRun configures one headless run.
type VerifyRun struct {
	Frames       int
	SnapshotPath string
	Canvas       CanvasSize
}

// UnpackedDocument holds the payloads decoded from a packaged document.
type UnpackedDocument struct {
	Bridge []byte
	Binary []byte
}

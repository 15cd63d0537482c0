package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"github.com/reglet-dev/scenepack/internal/application/ports"
)

// VerifyBinaryUseCase runs a compiled binary, or the binary inside a packaged
// document, against the headless host bridge.
type VerifyBinaryUseCase struct {
	verifier ports.BinaryVerifier
	unpacker ports.ArtifactUnpacker
	logger   *slog.Logger
}

// NewVerifyBinaryUseCase creates a new verify use case.
func NewVerifyBinaryUseCase(verifier ports.BinaryVerifier, unpacker ports.ArtifactUnpacker, logger *slog.Logger) *VerifyBinaryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyBinaryUseCase{verifier: verifier, unpacker: unpacker, logger: logger}
}

// Execute loads the binary and runs it for req.Frames frames.
func (uc *VerifyBinaryUseCase) Execute(ctx context.Context, req dto.VerifyBinaryRequest) (*dto.VerificationReport, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, apperrors.NewValidationError("path", "failed to read input", err.Error())
	}

	binary := data
	switch strings.ToLower(filepath.Ext(req.Path)) {
	case ".html", ".htm":
		unpacked, err := uc.unpacker.Unpack(data)
		if err != nil {
			return nil, apperrors.NewVerificationError("failed to unpack document", err)
		}
		binary = unpacked.Binary
		uc.logger.Debug("document unpacked", "binary_bytes", len(unpacked.Binary), "bridge_bytes", len(unpacked.Bridge))
	case ".wasm":
	default:
		return nil, apperrors.NewValidationError("path", fmt.Sprintf("unsupported input %q", req.Path), "expected a .wasm binary or a packaged .html document")
	}

	frames := req.Frames
	if frames <= 0 {
		frames = DefaultVerifyFrames
	}

	report, err := uc.verifier.Verify(ctx, binary, dto.VerifyRun{
		Frames:       frames,
		SnapshotPath: req.SnapshotPath,
		Canvas:       req.Canvas,
	})
	if err != nil {
		return nil, apperrors.NewVerificationError(filepath.Base(req.Path), err)
	}

	uc.logger.Info("binary verified", "path", req.Path, "frames", report.Frames, "rects", report.Rects, "polylines", report.Polylines)
	return report, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"golang.org/x/sync/errgroup"
)

// SceneExporter exports one scene. ExportSceneUseCase implements it.
type SceneExporter interface {
	Execute(ctx context.Context, req dto.ExportSceneRequest) (*dto.ExportSceneResponse, error)
	ResolveOutputName(req dto.ExportSceneRequest) (string, error)
}

// BatchExportUseCase runs several exports concurrently. Each export acquires
// its own scratch workspace, so the only shared resource is the output directory.
type BatchExportUseCase struct {
	exporter SceneExporter
	logger   *slog.Logger
}

// NewBatchExportUseCase creates a new batch export use case.
func NewBatchExportUseCase(exporter SceneExporter, logger *slog.Logger) *BatchExportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchExportUseCase{exporter: exporter, logger: logger}
}

// Execute validates that no two requests write the same output, then exports
// every scene with at most req.Parallel exports in flight. The first failure
// cancels exports that have not started yet.
func (uc *BatchExportUseCase) Execute(ctx context.Context, req dto.BatchExportRequest) (*dto.BatchExportResponse, error) {
	if len(req.Requests) == 0 {
		return nil, apperrors.NewValidationError("scenes", "no scenes to export")
	}

	if err := uc.checkOutputs(req.Requests); err != nil {
		return nil, err
	}

	parallel := req.Parallel
	if parallel <= 0 {
		parallel = 1
	}

	uc.logger.Info("exporting scenes", "count", len(req.Requests), "parallel", parallel)

	results := make([]*dto.ExportSceneResponse, len(req.Requests))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, r := range req.Requests {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			resp, err := uc.exporter.Execute(gCtx, r)
			if err != nil {
				return fmt.Errorf("export %s: %w", r.ScenePath, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &dto.BatchExportResponse{Results: compact(results)}, err
	}

	return &dto.BatchExportResponse{Results: results}, nil
}

func (uc *BatchExportUseCase) checkOutputs(reqs []dto.ExportSceneRequest) error {
	owners := make(map[string][]string)
	for _, r := range reqs {
		name, err := uc.exporter.ResolveOutputName(r)
		if err != nil {
			return err
		}
		dir := r.OutputDir
		if dir == "" {
			dir = filepath.Dir(r.ScenePath)
		}
		key := filepath.Join(filepath.Clean(dir), name)
		owners[key] = append(owners[key], r.ScenePath)
	}

	var details []string
	for out, scenes := range owners {
		if len(scenes) > 1 {
			details = append(details, fmt.Sprintf("%s is written by %v", out, scenes))
		}
	}
	if len(details) > 0 {
		sort.Strings(details)
		return apperrors.NewValidationError("output", "duplicate output names", details...)
	}
	return nil
}

func compact(results []*dto.ExportSceneResponse) []*dto.ExportSceneResponse {
	out := make([]*dto.ExportSceneResponse, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

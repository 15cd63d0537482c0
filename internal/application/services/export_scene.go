// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reglet-dev/scenepack/internal/application/dto"
	apperrors "github.com/reglet-dev/scenepack/internal/application/errors"
	"github.com/reglet-dev/scenepack/internal/application/ports"
	"github.com/reglet-dev/scenepack/internal/domain/codegen"
	"github.com/reglet-dev/scenepack/internal/domain/ir"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
	"github.com/reglet-dev/scenepack/internal/domain/services"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

// Pipeline stage names, as logged and reported.
const (
	StageLoad      = "load"
	StageExtract   = services.StageExtract
	StageDedup     = services.StageDedup
	StageGenerate  = codegen.StageGenerate
	StageToolchain = "toolchain"
	StageScratch   = "scratch"
	StageCompile   = "compile"
	StageOptimize  = "optimize"
	StageVerify    = "verify"
	StagePackage   = "package"
)

// DefaultVerifyFrames is used when verification is requested without a frame count.
const DefaultVerifyFrames = 60

// ExportDefaults carries configuration-derived defaults for the use case.
type ExportDefaults struct {
	Canvas ir.Canvas
}

// ExportSceneUseCase orchestrates the complete export workflow:
// load, extract, dedup, generate, compile, optimize, verify, package.
// This is a pure application layer component that depends only on ports.
type ExportSceneUseCase struct {
	loader    ports.SceneLoader
	checker   ports.ToolchainChecker
	compiler  ports.SourceCompiler
	optimizer ports.BinaryOptimizer
	verifier  ports.BinaryVerifier
	packager  ports.ArtifactPackager
	scratch   ports.ScratchProvider
	defaults  ExportDefaults
	logger    *slog.Logger
}

// NewExportSceneUseCase creates a new export use case. checker and verifier may be nil.
func NewExportSceneUseCase(
	loader ports.SceneLoader,
	checker ports.ToolchainChecker,
	compiler ports.SourceCompiler,
	optimizer ports.BinaryOptimizer,
	verifier ports.BinaryVerifier,
	packager ports.ArtifactPackager,
	scratch ports.ScratchProvider,
	defaults ExportDefaults,
	logger *slog.Logger,
) *ExportSceneUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExportSceneUseCase{
		loader:    loader,
		checker:   checker,
		compiler:  compiler,
		optimizer: optimizer,
		verifier:  verifier,
		packager:  packager,
		scratch:   scratch,
		defaults:  defaults,
		logger:    logger,
	}
}

// preparedScene is the typed result of the load..generate stages.
type preparedScene struct {
	doc     *scene.Document
	scene   *ir.Scene
	program *codegen.Program
	diags   *ir.Diagnostics
}

// Execute runs the complete export workflow. Any failure before the package
// stage returns without touching the output directory.
func (uc *ExportSceneUseCase) Execute(ctx context.Context, req dto.ExportSceneRequest) (*dto.ExportSceneResponse, error) {
	startTime := time.Now()
	buildID := values.NewBuildID()
	clock := newStageClock(uc.logger.With("build_id", buildID.Short(), "scene", req.ScenePath))

	prepared, err := uc.prepare(clock, req.ScenePath, req.Filters, req.Scripts, true)
	if err != nil {
		return nil, err
	}

	name := OutputName(req, prepared.doc)
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.ScenePath)
	}

	if uc.checker != nil {
		if err := clock.run(StageToolchain, func() error {
			version, err := uc.checker.CheckToolchain(ctx)
			if err == nil {
				clock.logger.Debug("toolchain ready", "version", version)
			}
			return err
		}); err != nil {
			return nil, err
		}
	}

	var ws ports.Workspace
	if err := clock.run(StageScratch, func() error {
		var err error
		ws, err = uc.scratch.Acquire(buildID, req.Scratch.Keep)
		return err
	}); err != nil {
		return nil, apperrors.NewConfigurationError("scratch", "failed to create scratch workspace", err)
	}
	defer func() {
		if err := ws.Release(); err != nil {
			clock.logger.Warn("failed to release scratch workspace", "dir", ws.Dir(), "error", err)
		}
	}()

	source := prepared.program.Source()

	var compiled *dto.CompileResult
	if err := clock.run(StageCompile, func() error {
		var err error
		compiled, err = uc.compiler.Compile(ctx, ws, source, req.Toolchain)
		return err
	}); err != nil {
		return nil, err
	}

	var optimized *dto.OptimizeResult
	if err := clock.run(StageOptimize, func() error {
		var err error
		optimized, err = uc.optimizer.Optimize(ctx, ws, compiled.BinaryPath, req.Toolchain)
		return err
	}); err != nil {
		return nil, err
	}

	binary, err := os.ReadFile(optimized.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read optimized binary: %w", err)
	}

	var report *dto.VerificationReport
	if req.Verify.Enabled && uc.verifier != nil {
		frames := req.Verify.Frames
		if frames <= 0 {
			frames = DefaultVerifyFrames
		}
		if err := clock.run(StageVerify, func() error {
			var err error
			report, err = uc.verifier.Verify(ctx, binary, dto.VerifyRun{
				Frames: frames,
				Canvas: dto.CanvasSize{Width: prepared.scene.Canvas.Width, Height: prepared.scene.Canvas.Height},
			})
			return err
		}); err != nil {
			var verr *apperrors.VerificationError
			if errors.As(err, &verr) {
				return nil, err
			}
			return nil, apperrors.NewVerificationError("headless run failed", err)
		}
	}

	var packaged *dto.PackageResult
	if err := clock.run(StagePackage, func() error {
		var err error
		packaged, err = uc.packager.Package(ctx, binary, outputDir, name)
		return err
	}); err != nil {
		var perr *apperrors.PackagingError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, apperrors.NewPackagingError(filepath.Join(outputDir, name), err)
	}

	resp := &dto.ExportSceneResponse{
		Scene:        prepared.scene.Name,
		ScenePath:    req.ScenePath,
		DocumentPath: packaged.DocumentPath,
		ArchivePath:  packaged.ArchivePath,
		Sizes: dto.ArtifactSizes{
			Source:    len(source),
			Binary:    compiled.Size,
			Optimized: optimized.Size,
			Document:  packaged.DocumentSize,
			Archive:   packaged.ArchiveSize,
		},
		Summary:      summarize(prepared.scene),
		Stages:       clock.stages,
		Diagnostics:  prepared.diags.Items(),
		Verification: report,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			BuildID:     buildID.String(),
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
	}
	if req.Scratch.Keep {
		resp.ScratchDir = ws.Dir()
	}

	uc.logger.Info("scene exported",
		"scene", resp.Scene,
		"document", resp.DocumentPath,
		"bytes", resp.Sizes.Document,
		"duration", resp.Metadata.Duration)

	return resp, nil
}

// Generate runs the load..generate stages and returns the program source.
func (uc *ExportSceneUseCase) Generate(_ context.Context, req dto.GenerateSourceRequest) (*dto.GenerateSourceResponse, error) {
	clock := newStageClock(uc.logger.With("scene", req.ScenePath))

	prepared, err := uc.prepare(clock, req.ScenePath, req.Filters, req.Scripts, true)
	if err != nil {
		return nil, err
	}

	return &dto.GenerateSourceResponse{
		Scene:       prepared.scene.Name,
		Source:      prepared.program.Source(),
		Summary:     summarize(prepared.scene),
		Diagnostics: prepared.diags.Items(),
	}, nil
}

// Inspect runs the load..dedup stages and returns the IR. Generation problems
// are reported as diagnostics rather than errors.
func (uc *ExportSceneUseCase) Inspect(_ context.Context, req dto.InspectSceneRequest) (*dto.InspectSceneResponse, error) {
	clock := newStageClock(uc.logger.With("scene", req.ScenePath))

	prepared, err := uc.prepare(clock, req.ScenePath, req.Filters, dto.ScriptOptions{}, false)
	if err != nil {
		return nil, err
	}

	return &dto.InspectSceneResponse{
		Scene:       prepared.scene,
		Summary:     summarize(prepared.scene),
		Diagnostics: prepared.diags.Items(),
	}, nil
}

// ResolveOutputName loads the scene and returns the base name its outputs will use.
func (uc *ExportSceneUseCase) ResolveOutputName(req dto.ExportSceneRequest) (string, error) {
	doc, err := uc.load(req.ScenePath)
	if err != nil {
		return "", err
	}
	return OutputName(req, doc), nil
}

func (uc *ExportSceneUseCase) prepare(
	clock *stageClock,
	path string,
	filters dto.FilterOptions,
	scripts dto.ScriptOptions,
	strict bool,
) (*preparedScene, error) {
	filter, err := buildObjectFilter(filters)
	if err != nil {
		return nil, err
	}

	out := &preparedScene{diags: ir.NewDiagnostics("")}

	if err := clock.run(StageLoad, func() error {
		var err error
		out.doc, err = uc.load(path)
		return err
	}); err != nil {
		return nil, err
	}

	_ = clock.run(StageExtract, func() error {
		extractor := services.NewSceneExtractor(services.ExtractorOptions{
			DefaultCanvas: uc.defaults.Canvas,
			Filter:        filter,
		})
		var diags *ir.Diagnostics
		out.scene, diags = extractor.Extract(out.doc)
		out.diags.Merge(diags)
		return nil
	})

	_ = clock.run(StageDedup, func() error {
		out.diags.Merge(services.NewAssetDeduplicator().Deduplicate(out.scene))
		return nil
	})

	err = clock.run(StageGenerate, func() error {
		program, diags, err := codegen.NewGenerator(codegen.Options{Lenient: scripts.Lenient}).Generate(out.scene)
		out.diags.Merge(diags)
		out.program = program
		return err
	})

	out.diags.Log(clock.logger)

	if err != nil {
		if !strict {
			return out, nil
		}
		var resErr *codegen.ResolutionError
		if errors.As(err, &resErr) {
			details := make([]string, 0, len(resErr.Problems))
			for _, p := range resErr.Problems {
				details = append(details, p.String())
			}
			return nil, apperrors.NewGenerationError(out.scene.Name, err, details...)
		}
		return nil, apperrors.NewGenerationError(out.scene.Name, err)
	}

	return out, nil
}

func (uc *ExportSceneUseCase) load(path string) (*scene.Document, error) {
	doc, err := uc.loader.LoadScene(path)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, apperrors.NewValidationError("scene", "failed to load scene", err.Error())
	}
	return doc, nil
}

func buildObjectFilter(opts dto.FilterOptions) (*services.ObjectFilter, error) {
	filter := services.NewObjectFilter().
		WithExcludedNames(opts.ExcludeNames).
		WithIncludedCollections(opts.IncludeCollections)

	if opts.FilterExpression != "" {
		program, err := services.CompileObjectFilter(opts.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", "invalid filter expression", err.Error())
		}
		filter = filter.WithFilterExpression(program)
	}
	return filter, nil
}

// OutputName returns the base name (no extension) of the document and archive.
func OutputName(req dto.ExportSceneRequest, doc *scene.Document) string {
	name := req.OutputName
	if name == "" && doc != nil {
		name = doc.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(req.ScenePath), filepath.Ext(req.ScenePath))
	}
	return values.NewIdentifier(name).String()
}

func summarize(s *ir.Scene) dto.SceneSummary {
	return dto.SceneSummary{
		RectSprites:  s.CountKind(ir.KindRectSprite),
		TextLabels:   s.CountKind(ir.KindTextLabel),
		StrokeGroups: s.CountKind(ir.KindStrokeGroup),
		Assets:       len(s.Assets),
		Slots:        s.StateCount(),
	}
}

// stageClock times pipeline stages and logs each one.
type stageClock struct {
	logger *slog.Logger
	stages []dto.StageTiming
}

func newStageClock(logger *slog.Logger) *stageClock {
	return &stageClock{logger: logger}
}

func (c *stageClock) run(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	c.stages = append(c.stages, dto.StageTiming{Name: name, Duration: elapsed})

	if err != nil {
		c.logger.Debug("stage failed", "stage", name, "duration", elapsed, "error", err)
		return err
	}
	c.logger.Debug("stage complete", "stage", name, "duration", elapsed)
	return nil
}

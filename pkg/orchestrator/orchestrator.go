// Package orchestrator coordinates the pipeline stages behind the CLI
// commands.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/mp4inspect"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// Orchestrator runs one pipeline per command and owns the surrounding
// logging and output verification.
type Orchestrator struct {
	extractStage    pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult]
	reassembleStage pipeline.Stage[pipeline.ReassembleInput, pipeline.ReassembleResult]
	optimizeStage   pipeline.Stage[pipeline.OptimizeInput, pipeline.OptimizeResult]
	logger          ports.Logger

	// inspect is swappable in tests.
	inspect func(path string) (mp4inspect.Info, error)
}

// New creates a new Orchestrator.
func New(
	extractStage pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult],
	reassembleStage pipeline.Stage[pipeline.ReassembleInput, pipeline.ReassembleResult],
	optimizeStage pipeline.Stage[pipeline.OptimizeInput, pipeline.OptimizeResult],
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		extractStage:    extractStage,
		reassembleStage: reassembleStage,
		optimizeStage:   optimizeStage,
		logger:          logger,
		inspect:         mp4inspect.InspectFile,
	}
}

// RunExtract extracts unique frames and the change timeline.
func (o *Orchestrator) RunExtract(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	o.logger.Info(l10n.F("Extracting unique frames from %s", input.VideoPath))

	result, err := o.extractStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error(l10n.F("Extraction failed: %s", err))
		return result, fmt.Errorf("extract stage: %w", err)
	}

	o.logger.Info(l10n.F("Extracted %d changes, %d unique images (%d frames processed)",
		result.Model.FrameChangesCount, result.Model.UniqueImagesCount, result.FramesProcessed))
	o.logger.Info(l10n.F("Timeline written to %s", result.OutputDir))
	return result, nil
}

// RunReassemble rebuilds a video from a persisted timeline.
func (o *Orchestrator) RunReassemble(ctx context.Context, input pipeline.ReassembleInput) (pipeline.ReassembleResult, error) {
	o.logger.Info(l10n.F("Reassembling %s (%s)", input.FramesDir, string(input.Mode)))

	result, err := o.reassembleStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error(l10n.F("Reassembly failed: %s", err))
		return result, fmt.Errorf("reassemble stage: %w", err)
	}

	o.logger.Info(l10n.F("Rebuilt %d entries, %.2fs of video", result.Entries, result.Duration))
	o.verifyOutput(result.OutputPath)
	return result, nil
}

// RunOptimize runs the one-pass slide-recording optimizer.
func (o *Orchestrator) RunOptimize(ctx context.Context, input pipeline.OptimizeInput) (pipeline.OptimizeResult, error) {
	o.logger.Info(l10n.F("Optimizing slide recording %s", input.VideoPath))

	result, err := o.optimizeStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error(l10n.F("Optimization failed: %s", err))
		return result, fmt.Errorf("optimize stage: %w", err)
	}

	o.logger.Info(l10n.F("Kept %d unique slides out of %d frames", result.UniqueSlides, result.FramesProcessed))
	o.verifyOutput(result.OutputPath)
	return result, nil
}

// verifyOutput sanity-checks a freshly encoded MP4. Problems are
// reported but do not fail the run, the file is already on disk.
func (o *Orchestrator) verifyOutput(path string) {
	info, err := o.inspect(path)
	if err != nil {
		o.logger.Warn(l10n.F("Could not verify output %s: %s", path, err))
		return
	}
	if !info.HasVideo {
		o.logger.Warn(l10n.F("Output %s has no video track", path))
		return
	}
	o.logger.Info(l10n.F("Output %s verified: %.2fs", path, info.Duration))
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/logger"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/mp4inspect"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
)

func okExtract(result pipeline.ExtractResult) pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult] {
	return pipeline.StageFunc[pipeline.ExtractInput, pipeline.ExtractResult](
		func(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
			return result, nil
		})
}

func okReassemble(result pipeline.ReassembleResult) pipeline.Stage[pipeline.ReassembleInput, pipeline.ReassembleResult] {
	return pipeline.StageFunc[pipeline.ReassembleInput, pipeline.ReassembleResult](
		func(ctx context.Context, input pipeline.ReassembleInput) (pipeline.ReassembleResult, error) {
			return result, nil
		})
}

func okOptimize(result pipeline.OptimizeResult) pipeline.Stage[pipeline.OptimizeInput, pipeline.OptimizeResult] {
	return pipeline.StageFunc[pipeline.OptimizeInput, pipeline.OptimizeResult](
		func(ctx context.Context, input pipeline.OptimizeInput) (pipeline.OptimizeResult, error) {
			return result, nil
		})
}

func newOrchestrator() *Orchestrator {
	o := New(
		okExtract(pipeline.ExtractResult{FramesProcessed: 10}),
		okReassemble(pipeline.ReassembleResult{Entries: 3, OutputPath: "out.mp4"}),
		okOptimize(pipeline.OptimizeResult{UniqueSlides: 2, OutputPath: "out.mp4"}),
		logger.NewNoop(),
	)
	o.inspect = func(path string) (mp4inspect.Info, error) {
		return mp4inspect.Info{HasVideo: true, Duration: 5}, nil
	}
	return o
}

func TestOrchestrator_RunExtract(t *testing.T) {
	o := newOrchestrator()

	result, err := o.RunExtract(context.Background(), pipeline.DefaultExtractInput())
	if err != nil {
		t.Fatalf("RunExtract failed: %v", err)
	}
	if result.FramesProcessed != 10 {
		t.Errorf("FramesProcessed = %d, want 10", result.FramesProcessed)
	}
}

func TestOrchestrator_RunReassemble(t *testing.T) {
	o := newOrchestrator()

	inspected := ""
	o.inspect = func(path string) (mp4inspect.Info, error) {
		inspected = path
		return mp4inspect.Info{HasVideo: true, Duration: 5}, nil
	}

	result, err := o.RunReassemble(context.Background(), pipeline.DefaultReassembleInput())
	if err != nil {
		t.Fatalf("RunReassemble failed: %v", err)
	}
	if result.Entries != 3 {
		t.Errorf("Entries = %d, want 3", result.Entries)
	}
	if inspected != "out.mp4" {
		t.Errorf("inspected %q, want out.mp4", inspected)
	}
}

func TestOrchestrator_RunOptimize_VerificationFailureIsNotFatal(t *testing.T) {
	o := newOrchestrator()
	o.inspect = func(path string) (mp4inspect.Info, error) {
		return mp4inspect.Info{}, fmt.Errorf("unreadable")
	}

	if _, err := o.RunOptimize(context.Background(), pipeline.DefaultOptimizeInput()); err != nil {
		t.Fatalf("verification problems must not fail the run: %v", err)
	}
}

func TestOrchestrator_StageErrorsAreWrapped(t *testing.T) {
	stageErr := errors.New("boom")
	failing := pipeline.StageFunc[pipeline.ExtractInput, pipeline.ExtractResult](
		func(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
			return pipeline.ExtractResult{}, stageErr
		})

	o := newOrchestrator()
	o.extractStage = failing

	_, err := o.RunExtract(context.Background(), pipeline.DefaultExtractInput())
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected wrapped stage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "extract stage") {
		t.Errorf("error should name the stage: %v", err)
	}
}

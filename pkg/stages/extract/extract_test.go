package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/logger"
	"github.com/Schrubitteflau/compression-suite/pkg/mocks"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

const (
	testW = 32
	testH = 32
)

// gradientFrame has a strong horizontal luminance ramp.
func gradientFrame() []byte {
	buf := make([]byte, testW*testH*3)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			v := byte(x * 255 / (testW - 1))
			i := (y*testW + x) * 3
			buf[i], buf[i+1], buf[i+2] = v, v, v
		}
	}
	return buf
}

// checkerFrame alternates blocks, structurally unrelated to the ramp.
func checkerFrame() []byte {
	buf := make([]byte, testW*testH*3)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			var v byte
			if (x/4+y/4)%2 == 0 {
				v = 255
			}
			i := (y*testW + x) * 3
			buf[i], buf[i+1], buf[i+2] = v, v, v
		}
	}
	return buf
}

// newHarness wires a stage around mocks streaming the given frames.
func newHarness(frames [][]byte) (*Stage, *mocks.FrameDecoder, *mocks.VideoAssembler, *mocks.FileSystem, *mocks.DebugSink) {
	var pixels []byte
	var log strings.Builder
	for i, f := range frames {
		pixels = append(pixels, f...)
		log.WriteString(mocks.DecodeLogLine(i, float64(i)*0.04))
	}

	decoder := &mocks.FrameDecoder{
		Stream: &mocks.FrameStream{PixelData: pixels, LogData: log.String()},
	}
	prober := &mocks.VideoProber{
		Info: ports.VideoInfo{Width: testW, Height: testH, FPS: 25, Duration: 4.0},
	}
	assembler := &mocks.VideoAssembler{}
	fs := mocks.NewFileSystem()
	sink := mocks.NewDebugSink(true)

	stage := NewStage(prober, decoder, assembler, fs, sink, logger.NewNoop())
	return stage, decoder, assembler, fs, sink
}

func TestStage_Execute_PNG(t *testing.T) {
	g, c := gradientFrame(), checkerFrame()
	// g g c g: three changes, two unique images.
	stage, _, _, fs, _ := newHarness([][]byte{g, g, c, g})

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"
	input.Format = timeline.FormatPNG

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.FramesProcessed != 4 {
		t.Errorf("FramesProcessed = %d, want 4", result.FramesProcessed)
	}
	m := result.Model
	if m.FrameChangesCount != 3 {
		t.Errorf("FrameChangesCount = %d, want 3", m.FrameChangesCount)
	}
	if m.UniqueImagesCount != 2 {
		t.Errorf("UniqueImagesCount = %d, want 2", m.UniqueImagesCount)
	}
	if m.Timestamps[0].Timestamp != 0 || m.Timestamps[1].Timestamp != 0.08 {
		t.Errorf("unexpected timestamps: %+v", m.Timestamps)
	}
	// Last change reuses image 0.
	if m.Timestamps[2].ImageIndex != 0 {
		t.Errorf("third change image index = %d, want 0", m.Timestamps[2].ImageIndex)
	}

	if _, ok := fs.GetFile(filepath.Join("out", timeline.MetadataFile)); !ok {
		t.Error("metadata.json not written")
	}
	if pngs := fs.FilesMatching("*.png"); len(pngs) != 2 {
		t.Errorf("wrote %d png files, want 2", len(pngs))
	}
}

func TestStage_Execute_WebPContainer(t *testing.T) {
	g, c := gradientFrame(), checkerFrame()
	stage, _, assembler, _, _ := newHarness([][]byte{g, c})

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"

	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(assembler.ContainerJobs) != 1 {
		t.Fatalf("container jobs = %d, want 1", len(assembler.ContainerJobs))
	}
	job := assembler.ContainerJobs[0]
	if len(job.Frames) != 2 {
		t.Errorf("container frames = %d, want 2", len(job.Frames))
	}
	if job.OutputPath != filepath.Join("out", timeline.ContainerFile) {
		t.Errorf("container path = %s", job.OutputPath)
	}
}

func TestStage_Execute_DecodeOptions(t *testing.T) {
	g := gradientFrame()
	stage, decoder, _, _, _ := newHarness([][]byte{g})

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"
	input.MPDecimate = false

	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(decoder.StartCalls) != 1 {
		t.Fatalf("decoder started %d times", len(decoder.StartCalls))
	}
	if decoder.StartCalls[0].Opts.MPDecimate {
		t.Error("mpdecimate should be off")
	}
}

func TestStage_Execute_RefusesNonEmptyDir(t *testing.T) {
	stage, _, _, fs, _ := newHarness([][]byte{gradientFrame()})
	fs.MkdirAll("out")
	fs.WriteFile(filepath.Join("out", "leftover.png"), []byte("x"))

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"

	if _, err := stage.Execute(context.Background(), input); err == nil {
		t.Fatal("expected error for non-empty output dir")
	}

	input.Overwrite = true
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("overwrite run failed: %v", err)
	}
}

func TestStage_Execute_DebugSink(t *testing.T) {
	g, c := gradientFrame(), checkerFrame()
	stage, _, _, _, sink := newHarness([][]byte{g, c})

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"

	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if sink.TimelineJSON == nil {
		t.Error("timeline artifact not saved")
	}
	if len(sink.Slides) != 2 {
		t.Errorf("contact sheet slides = %d, want 2", len(sink.Slides))
	}
	if len(sink.Timestamps) != 2 || sink.Timestamps[1] != 0.04 {
		t.Errorf("contact sheet timestamps = %v", sink.Timestamps)
	}
}

func TestStage_Execute_TruncatedFinalFrame(t *testing.T) {
	g := gradientFrame()
	pixels := append(append([]byte{}, g...), g[:100]...)
	decoder := &mocks.FrameDecoder{
		Stream: &mocks.FrameStream{PixelData: pixels, LogData: mocks.DecodeLogLine(0, 0)},
	}
	prober := &mocks.VideoProber{
		Info: ports.VideoInfo{Width: testW, Height: testH, FPS: 25, Duration: 1.0},
	}
	stage := NewStage(prober, decoder, &mocks.VideoAssembler{}, mocks.NewFileSystem(), mocks.NewDebugSink(false), logger.NewNoop())

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"
	input.Format = timeline.FormatPNG

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.FramesProcessed != 1 {
		t.Errorf("FramesProcessed = %d, want 1", result.FramesProcessed)
	}
}

func TestStage_Execute_StreamReadFailure(t *testing.T) {
	// A mid-stream read failure kills the decoder and surfaces the
	// error; the log worker is still joined.
	readErr := errors.New("broken pipe")
	stream := &mocks.FrameStream{
		PixelData: gradientFrame(),
		LogData:   mocks.DecodeLogLine(0, 0),
		PixelErr:  readErr,
	}
	decoder := &mocks.FrameDecoder{Stream: stream}
	prober := &mocks.VideoProber{
		Info: ports.VideoInfo{Width: testW, Height: testH, FPS: 25, Duration: 1.0},
	}
	fs := mocks.NewFileSystem()
	stage := NewStage(prober, decoder, &mocks.VideoAssembler{}, fs, mocks.NewDebugSink(false), logger.NewNoop())

	input := pipeline.DefaultExtractInput()
	input.VideoPath = "in.mp4"
	input.OutputDir = "out"
	input.Format = timeline.FormatPNG

	_, err := stage.Execute(context.Background(), input)
	if !errors.Is(err, readErr) {
		t.Fatalf("Execute error = %v, want wrapped %v", err, readErr)
	}
	if !stream.KillCalled {
		t.Error("decoder was not killed after the read failure")
	}
	if !stream.WaitCalled {
		t.Error("decoder was not reaped after the read failure")
	}
	if _, ok := fs.GetFile(filepath.Join("out", timeline.MetadataFile)); ok {
		t.Error("no output should be written after a failed read")
	}
}

// Package optimize implements the one-pass slide-recording optimizer:
// unique slides are collected in memory and re-encoded immediately
// through a filter graph, without persisting an intermediate folder.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/mp4inspect"
	"github.com/Schrubitteflau/compression-suite/pkg/dedupe"
	"github.com/Schrubitteflau/compression-suite/pkg/filtergraph"
	"github.com/Schrubitteflau/compression-suite/pkg/framestream"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

// Stage optimizes a slide recording in a single pass.
type Stage struct {
	prober    ports.VideoProber
	decoder   ports.FrameDecoder
	assembler ports.VideoAssembler
	sink      ports.DebugSink
	logger    ports.Logger

	// inspectAudio is swappable in tests.
	inspectAudio func(path string) (mp4inspect.Info, error)
}

// NewStage creates a new optimization stage.
func NewStage(prober ports.VideoProber, decoder ports.FrameDecoder, assembler ports.VideoAssembler, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		prober:       prober,
		decoder:      decoder,
		assembler:    assembler,
		sink:         sink,
		logger:       logger.WithComponent("optimize"),
		inspectAudio: mp4inspect.InspectFile,
	}
}

// slide is one accepted unique image with its first-seen timestamp.
type slide struct {
	timestamp float64
	hash      string
}

// Execute decodes the video, keeps globally unique slides, and encodes
// them with per-slide durations in one ffmpeg run.
func (s *Stage) Execute(ctx context.Context, input pipeline.OptimizeInput) (pipeline.OptimizeResult, error) {
	result := pipeline.OptimizeResult{OutputPath: input.OutputPath}

	info, err := s.prober.Probe(ctx, input.VideoPath)
	if err != nil {
		return result, fmt.Errorf("probe video: %w", err)
	}

	stream, err := s.decoder.Start(ctx, input.VideoPath, ports.DecodeOptions{MPDecimate: input.MPDecimate})
	if err != nil {
		return result, fmt.Errorf("start decoder: %w", err)
	}

	reader := framestream.NewReader(stream.Pixels(), stream.Log(), info.FrameSize())
	dedup := dedupe.New(dedupe.PolicyGlobal, input.Threshold, info.Width, info.Height)

	slides, processed, err := s.collect(ctx, reader, dedup)
	if err != nil {
		stream.Kill()
		reader.Close()
		stream.Wait()
		return result, err
	}
	if err := reader.Close(); err != nil {
		stream.Wait()
		return result, fmt.Errorf("close frame stream: %w", err)
	}
	if err := stream.Wait(); err != nil {
		return result, fmt.Errorf("decoder exited: %w", err)
	}

	result.FramesProcessed = processed
	if len(slides) == 0 {
		return result, fmt.Errorf("no slides detected in %s", input.VideoPath)
	}

	store := dedup.Store()
	result.UniqueSlides = store.Len()
	s.logger.Debug("Collected %d unique slides from %d frames", store.Len(), processed)

	graph, repeats := s.buildGraph(slides, info.FPS)
	s.saveDebugArtifacts(graph, store, slides)

	total := 0
	for _, k := range repeats {
		total += k
	}
	s.logger.Debug("Rendering %d frames at %g fps", total, info.FPS)

	job := ports.FilterGraphJob{
		Width:      info.Width,
		Height:     info.Height,
		FPS:        info.FPS,
		Graph:      graph.String(),
		Frames:     store.Buffers(),
		OutputPath: input.OutputPath,
		Encode:     input.Encode,
		Audio:      s.resolveAudio(input),
	}
	if err := s.assembler.AssembleFilterGraph(ctx, job); err != nil {
		return result, fmt.Errorf("filter-graph encode: %w", err)
	}
	return result, nil
}

// resolveAudio builds the audio track muxed from the source video.
// When no codec was requested, the source is probed: recordings
// without audio get no track at all, and codecs that are not safe to
// copy into MP4 fall back to AAC transcoding.
func (s *Stage) resolveAudio(input pipeline.OptimizeInput) *ports.AudioTrack {
	track := &ports.AudioTrack{
		Path:    input.VideoPath,
		Codec:   input.AudioCodec,
		Bitrate: input.AudioBitrate,
	}
	if track.Codec != "" {
		return track
	}
	info, err := s.inspectAudio(track.Path)
	if err != nil {
		s.logger.Warn("Could not inspect audio in %s: %v", track.Path, err)
		return track
	}
	if !info.HasAudio {
		s.logger.Debug("No audio track in %s", track.Path)
		return nil
	}
	if info.CanCopyAudio() {
		return track
	}
	s.logger.Warn("Audio codec %s cannot be stream copied, transcoding to aac", info.AudioCodec)
	track.Codec = "aac"
	return track
}

// collect drains the stream, keeping one frame per globally unique
// slide. Timestamps come from the blocking hand-off: a new slide is not
// accepted until its marker arrives on the log stream.
func (s *Stage) collect(ctx context.Context, reader *framestream.Reader, dedup *dedupe.Deduplicator) ([]slide, int, error) {
	var slides []slide
	processed := 0

	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return slides, processed, nil
		}
		if err != nil {
			return nil, processed, fmt.Errorf("read frame %d: %w", processed, err)
		}
		processed++

		res, err := dedup.Observe(frame.Pixels)
		if err != nil {
			return nil, processed, fmt.Errorf("hash frame %d: %w", frame.Index, err)
		}
		if !res.NewImage {
			continue
		}

		ts := frame.Timestamp
		if !frame.HasTimestamp {
			var ok bool
			ts, ok, err = reader.WaitTimestamp(ctx, frame.Index)
			if err != nil {
				return nil, processed, fmt.Errorf("wait timestamp for frame %d: %w", frame.Index, err)
			}
			if !ok {
				return nil, processed, fmt.Errorf("no timestamp for frame %d", frame.Index)
			}
		}
		slides = append(slides, slide{timestamp: ts, hash: res.Hash.String()})
	}
}

// buildGraph derives per-slide durations and the loop/concat graph.
// The final slide has no successor; it holds for a fixed tail.
func (s *Stage) buildGraph(slides []slide, fps float64) (*filtergraph.Graph, []int) {
	entries := make([]timeline.Entry, len(slides))
	for i, sl := range slides {
		entries[i] = timeline.Entry{Timestamp: sl.timestamp, Hash: sl.hash, ImageIndex: i}
	}
	durations := timeline.Durations(entries, 0, fps)
	repeats := timeline.RepeatCounts(durations, fps)
	return filtergraph.SlideLoop(fps, repeats), repeats
}

func (s *Stage) saveDebugArtifacts(graph *filtergraph.Graph, store *dedupe.Store, slides []slide) {
	if !s.sink.Enabled() {
		return
	}

	if err := s.sink.SaveFilterGraph([]byte(graph.String())); err != nil {
		s.logger.Warn("Failed to save filter graph artifact: %v", err)
	}

	images := make([]image.Image, 0, store.Len())
	timestamps := make([]float64, 0, len(slides))
	for i := 0; i < store.Len(); i++ {
		img, err := store.ImageAt(i)
		if err != nil {
			return
		}
		images = append(images, img)
	}
	for _, sl := range slides {
		timestamps = append(timestamps, sl.timestamp)
	}
	if err := s.sink.SaveContactSheet(images, timestamps); err != nil {
		s.logger.Warn("Failed to save contact sheet: %v", err)
	}
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[pipeline.OptimizeInput, pipeline.OptimizeResult] = (*Stage)(nil)

// Package extract implements the unique-frame extraction stage: decode
// the source video, keep one image per distinct slide, and persist the
// timeline of changes next to the images.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"

	"github.com/Schrubitteflau/compression-suite/pkg/dedupe"
	"github.com/Schrubitteflau/compression-suite/pkg/framestream"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

// Stage extracts unique frames and the change timeline from a video.
type Stage struct {
	prober    ports.VideoProber
	decoder   ports.FrameDecoder
	assembler ports.VideoAssembler
	fs        ports.FileSystem
	sink      ports.DebugSink
	logger    ports.Logger
}

// NewStage creates a new extraction stage.
func NewStage(prober ports.VideoProber, decoder ports.FrameDecoder, assembler ports.VideoAssembler, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		prober:    prober,
		decoder:   decoder,
		assembler: assembler,
		fs:        fs,
		sink:      sink,
		logger:    logger.WithComponent("extract"),
	}
}

// pendingChange is a change record whose timestamp may still be in
// flight on the decoder log stream.
type pendingChange struct {
	frameIndex int
	imageIndex int
	hash       string
	timestamp  float64
	resolved   bool
}

// Execute runs the extraction and persists the result to the output
// folder.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	result := pipeline.ExtractResult{OutputDir: input.OutputDir}

	if err := s.prepareOutputDir(input); err != nil {
		return result, err
	}

	info, err := s.prober.Probe(ctx, input.VideoPath)
	if err != nil {
		return result, fmt.Errorf("probe video: %w", err)
	}
	s.logger.Debug("Source: %dx%d @ %g fps, %.2fs", info.Width, info.Height, info.FPS, info.Duration)

	stream, err := s.decoder.Start(ctx, input.VideoPath, ports.DecodeOptions{MPDecimate: input.MPDecimate})
	if err != nil {
		return result, fmt.Errorf("start decoder: %w", err)
	}

	reader := framestream.NewReader(stream.Pixels(), stream.Log(), info.FrameSize())
	dedup := dedupe.New(dedupe.PolicyConsecutive, input.Threshold, info.Width, info.Height)

	changes, processed, err := s.consume(reader, dedup)
	if err != nil {
		stream.Kill()
		reader.Close()
		stream.Wait()
		return result, err
	}

	// Process exit closes the log pipe, so after Close every index is
	// either published or permanently unavailable. Close before Wait:
	// Wait tears down the pipes under the log worker otherwise.
	if err := reader.Close(); err != nil {
		stream.Wait()
		return result, fmt.Errorf("close frame stream: %w", err)
	}
	if err := stream.Wait(); err != nil {
		return result, fmt.Errorf("decoder exited: %w", err)
	}
	s.resolveTimestamps(reader, changes, info.FPS)

	entries := make([]timeline.Entry, len(changes))
	for i, c := range changes {
		entries[i] = timeline.Entry{Timestamp: c.timestamp, Hash: c.hash, ImageIndex: c.imageIndex}
	}

	store := dedup.Store()
	model := timeline.New(entries, store.Len(), input.Format, timeline.VideoInfo{
		Width:    info.Width,
		Height:   info.Height,
		FPS:      info.FPS,
		Duration: info.Duration,
	})
	if err := model.Validate(); err != nil {
		return result, err
	}

	if err := s.persist(ctx, model, store, input); err != nil {
		return result, err
	}
	s.saveDebugArtifacts(model, store, entries)

	s.logger.Debug("Extracted %d changes, %d unique images from %d frames", len(entries), store.Len(), processed)

	result.Model = model
	result.FramesProcessed = processed
	return result, nil
}

// prepareOutputDir creates the output folder, refusing a non-empty one
// unless overwrite is requested.
func (s *Stage) prepareOutputDir(input pipeline.ExtractInput) error {
	exists, err := s.fs.Exists(input.OutputDir)
	if err != nil {
		return fmt.Errorf("check output dir: %w", err)
	}
	if exists && !input.Overwrite {
		empty, err := s.fs.IsDirEmpty(input.OutputDir)
		if err != nil {
			return fmt.Errorf("check output dir: %w", err)
		}
		if !empty {
			return fmt.Errorf("output dir %s is not empty (use overwrite to proceed)", input.OutputDir)
		}
	}
	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// consume drains the frame stream, feeding every frame to the
// deduplicator and recording change events.
func (s *Stage) consume(reader *framestream.Reader, dedup *dedupe.Deduplicator) ([]*pendingChange, int, error) {
	var changes []*pendingChange
	processed := 0

	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return changes, processed, nil
		}
		if err != nil {
			return nil, processed, fmt.Errorf("read frame %d: %w", processed, err)
		}
		processed++

		res, err := dedup.Observe(frame.Pixels)
		if err != nil {
			return nil, processed, fmt.Errorf("hash frame %d: %w", frame.Index, err)
		}
		if !res.Changed {
			continue
		}

		change := &pendingChange{
			frameIndex: frame.Index,
			imageIndex: res.ImageIndex,
			hash:       res.Hash.String(),
		}
		if frame.HasTimestamp {
			change.timestamp = frame.Timestamp
			change.resolved = true
		}
		changes = append(changes, change)
	}
}

// resolveTimestamps fills in timestamps that were still in flight when
// their frame was read. Called after the log stream has ended.
func (s *Stage) resolveTimestamps(reader *framestream.Reader, changes []*pendingChange, fps float64) {
	for _, c := range changes {
		if c.resolved {
			continue
		}
		if ts, ok := reader.Lookup(c.frameIndex); ok {
			c.timestamp = ts
			c.resolved = true
			continue
		}
		// No marker for this frame. Approximate from the frame index.
		c.timestamp = float64(c.frameIndex) / fps
		c.resolved = true
		s.logger.Warn("No timestamp for frame %d, approximated %.3fs", c.frameIndex, c.timestamp)
	}
}

// persist writes metadata.json and the unique images in the selected
// storage format.
func (s *Stage) persist(ctx context.Context, model timeline.Model, store *dedupe.Store, input pipeline.ExtractInput) error {
	data, err := model.Marshal()
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(input.OutputDir, timeline.MetadataFile), data); err != nil {
		return fmt.Errorf("write %s: %w", timeline.MetadataFile, err)
	}

	if store.Len() == 0 {
		return nil
	}

	switch input.Format {
	case timeline.FormatWebP:
		job := ports.ContainerJob{
			Width:      model.VideoInfo.Width,
			Height:     model.VideoInfo.Height,
			Frames:     store.Buffers(),
			OutputPath: filepath.Join(input.OutputDir, timeline.ContainerFile),
		}
		if err := s.assembler.WriteContainer(ctx, job); err != nil {
			return fmt.Errorf("write %s: %w", timeline.ContainerFile, err)
		}
	case timeline.FormatPNG:
		for i, h := range store.Hashes() {
			img, err := store.ImageAt(i)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return fmt.Errorf("encode image %d: %w", i, err)
			}
			name := h.String() + ".png"
			if err := s.fs.WriteFile(filepath.Join(input.OutputDir, name), buf.Bytes()); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
	default:
		return fmt.Errorf("unknown storage format %q", input.Format)
	}
	return nil
}

func (s *Stage) saveDebugArtifacts(model timeline.Model, store *dedupe.Store, entries []timeline.Entry) {
	if !s.sink.Enabled() {
		return
	}

	if data, err := model.Marshal(); err == nil {
		if err := s.sink.SaveTimelineJSON(data); err != nil {
			s.logger.Warn("Failed to save timeline artifact: %v", err)
		}
	}

	slides := make([]image.Image, 0, store.Len())
	timestamps := make([]float64, store.Len())
	seen := make([]bool, store.Len())
	for _, e := range entries {
		if !seen[e.ImageIndex] {
			seen[e.ImageIndex] = true
			timestamps[e.ImageIndex] = e.Timestamp
		}
	}
	for i := 0; i < store.Len(); i++ {
		img, err := store.ImageAt(i)
		if err != nil {
			return
		}
		slides = append(slides, img)
	}
	if err := s.sink.SaveContactSheet(slides, timestamps); err != nil {
		s.logger.Warn("Failed to save contact sheet: %v", err)
	}
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult] = (*Stage)(nil)

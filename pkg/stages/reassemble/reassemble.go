// Package reassemble implements timeline reconstruction: it loads a
// persisted extraction folder and re-encodes a video that shows each
// unique image for exactly its recorded duration.
package reassemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"path/filepath"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/mp4inspect"
	"github.com/Schrubitteflau/compression-suite/pkg/dedupe"
	"github.com/Schrubitteflau/compression-suite/pkg/framestream"
	"github.com/Schrubitteflau/compression-suite/pkg/hashing"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

// Stage rebuilds a video from a persisted timeline folder.
type Stage struct {
	decoder   ports.FrameDecoder
	assembler ports.VideoAssembler
	fs        ports.FileSystem
	sink      ports.DebugSink
	logger    ports.Logger

	// inspectAudio is swappable in tests.
	inspectAudio func(path string) (mp4inspect.Info, error)
}

// NewStage creates a new reassembly stage.
func NewStage(decoder ports.FrameDecoder, assembler ports.VideoAssembler, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		decoder:      decoder,
		assembler:    assembler,
		fs:           fs,
		sink:         sink,
		logger:       logger.WithComponent("reassemble"),
		inspectAudio: mp4inspect.InspectFile,
	}
}

// Execute loads and validates the timeline, then runs the selected
// reconstruction strategy.
func (s *Stage) Execute(ctx context.Context, input pipeline.ReassembleInput) (pipeline.ReassembleResult, error) {
	result := pipeline.ReassembleResult{OutputPath: input.OutputPath}

	model, err := s.loadModel(input.FramesDir)
	if err != nil {
		return result, err
	}
	if len(model.Timestamps) == 0 {
		return result, fmt.Errorf("%w: no frame changes recorded", timeline.ErrInvalid)
	}
	result.Entries = len(model.Timestamps)

	work := newWorkDir(s.fs, input.OutputPath+".work")
	defer work.cleanup()

	stills, err := s.materializeStills(ctx, model, input.FramesDir, work)
	if err != nil {
		return result, err
	}

	input.Audio = s.resolveAudio(input.Audio)

	switch input.Mode {
	case pipeline.ModeVFR:
		result.Duration, err = s.assembleVFR(ctx, model, stills, input, work)
	case pipeline.ModeCFR:
		result.Duration, err = s.assembleCFR(ctx, model, stills, input, work)
	default:
		err = fmt.Errorf("unknown reassembly mode %q", input.Mode)
	}
	if err != nil {
		return result, err
	}

	s.logger.Debug("Rebuilt %d entries into %s (%.2fs)", result.Entries, input.OutputPath, result.Duration)
	return result, nil
}

// resolveAudio decides whether the muxed audio stream can be copied.
// When no codec was requested, the track is probed and codecs that are
// not safe to copy into MP4 fall back to AAC transcoding. Probe
// failures keep the stream copy; ffmpeg reports the real problem.
func (s *Stage) resolveAudio(track *ports.AudioTrack) *ports.AudioTrack {
	if track == nil || track.Codec != "" {
		return track
	}
	info, err := s.inspectAudio(track.Path)
	if err != nil {
		s.logger.Warn("Could not inspect audio %s: %v", track.Path, err)
		return track
	}
	if !info.HasAudio {
		s.logger.Warn("No audio track found in %s", track.Path)
		return track
	}
	if info.CanCopyAudio() {
		return track
	}
	s.logger.Warn("Audio codec %s cannot be stream copied, transcoding to aac", info.AudioCodec)
	out := *track
	out.Codec = "aac"
	return &out
}

func (s *Stage) loadModel(framesDir string) (timeline.Model, error) {
	data, err := s.fs.ReadFile(filepath.Join(framesDir, timeline.MetadataFile))
	if err != nil {
		return timeline.Model{}, fmt.Errorf("read timeline: %w", err)
	}
	return timeline.Unmarshal(data)
}

// materializeStills returns one still-image path per unique image, in
// image-index order. PNG storage is referenced in place; the WebP
// container is unpacked into the work dir.
func (s *Stage) materializeStills(ctx context.Context, model timeline.Model, framesDir string, work *workDir) ([]string, error) {
	hashes, err := model.UniqueHashes()
	if err != nil {
		return nil, err
	}

	if model.Format == timeline.FormatPNG {
		paths := make([]string, len(hashes))
		for i, h := range hashes {
			path := filepath.Join(framesDir, h.String()+".png")
			exists, err := s.fs.Exists(path)
			if err != nil {
				return nil, fmt.Errorf("check image %d: %w", i, err)
			}
			if !exists {
				return nil, fmt.Errorf("%w: image file %s missing", timeline.ErrInvalid, filepath.Base(path))
			}
			paths[i] = path
		}
		return paths, nil
	}

	store, err := s.unpackContainer(ctx, model, framesDir, hashes)
	if err != nil {
		return nil, err
	}

	paths := make([]string, store.Len())
	for i := range paths {
		img, err := store.ImageAt(i)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode still %d: %w", i, err)
		}
		path := work.path(fmt.Sprintf("still_%06d.png", i))
		if err := work.write(path, buf.Bytes()); err != nil {
			return nil, err
		}
		paths[i] = path
	}
	return paths, nil
}

// unpackContainer decodes frames.webp back into raw RGB24 buffers using
// the same fixed-size frame loop as extraction.
func (s *Stage) unpackContainer(ctx context.Context, model timeline.Model, framesDir string, hashes []hashing.Hash) (*dedupe.Store, error) {
	containerPath := filepath.Join(framesDir, timeline.ContainerFile)
	exists, err := s.fs.Exists(containerPath)
	if err != nil {
		return nil, fmt.Errorf("check container: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s missing", timeline.ErrInvalid, timeline.ContainerFile)
	}

	stream, err := s.decoder.Start(ctx, containerPath, ports.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("start container decode: %w", err)
	}

	frameSize := model.VideoInfo.Width * model.VideoInfo.Height * 3
	reader := framestream.NewReader(stream.Pixels(), stream.Log(), frameSize)

	var buffers [][]byte
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stream.Kill()
			reader.Close()
			stream.Wait()
			return nil, fmt.Errorf("read container frame %d: %w", len(buffers), err)
		}
		buffers = append(buffers, frame.Pixels)
	}
	reader.Close()
	if err := stream.Wait(); err != nil {
		return nil, fmt.Errorf("container decode exited: %w", err)
	}

	if len(buffers) != len(hashes) {
		return nil, fmt.Errorf("%w: container holds %d images, timeline declares %d", timeline.ErrInvalid, len(buffers), len(hashes))
	}
	return dedupe.BulkLoad(model.VideoInfo.Width, model.VideoInfo.Height, hashes, buffers)
}

// assembleVFR writes a concat playlist with exact per-entry durations
// and encodes it in variable-framerate mode.
func (s *Stage) assembleVFR(ctx context.Context, model timeline.Model, stills []string, input pipeline.ReassembleInput, work *workDir) (float64, error) {
	durations := timeline.Durations(model.Timestamps, model.VideoInfo.Duration, model.VideoInfo.FPS)

	var playlist bytes.Buffer
	total := 0.0
	for i, e := range model.Timestamps {
		fmt.Fprintf(&playlist, "file '%s'\nduration %.6f\n", stills[e.ImageIndex], durations[i])
		total += durations[i]
	}
	// The concat demuxer drops the last duration without a trailing
	// repeated file entry.
	last := model.Timestamps[len(model.Timestamps)-1]
	fmt.Fprintf(&playlist, "file '%s'\n", stills[last.ImageIndex])

	playlistPath := work.path("playlist.txt")
	if err := work.write(playlistPath, playlist.Bytes()); err != nil {
		return 0, err
	}
	if s.sink.Enabled() {
		if err := s.sink.SavePlaylist(playlist.Bytes()); err != nil {
			s.logger.Warn("Failed to save playlist artifact: %v", err)
		}
	}

	job := ports.ConcatJob{
		PlaylistPath: playlistPath,
		OutputPath:   input.OutputPath,
		Encode:       input.Encode,
		Audio:        input.Audio,
	}
	if err := s.assembler.AssembleConcat(ctx, job); err != nil {
		return 0, fmt.Errorf("concat encode: %w", err)
	}
	return total, nil
}

// assembleCFR lays out a sequential frame directory, one real file per
// unique image and link aliases for every repeat, then encodes it at a
// constant frame rate.
func (s *Stage) assembleCFR(ctx context.Context, model timeline.Model, stills []string, input pipeline.ReassembleInput, work *workDir) (float64, error) {
	fps := input.FPS
	if fps <= 0 {
		fps = model.VideoInfo.FPS
	}

	// Clamp and repeat share the target rate: a sub-frame entry holds
	// for exactly one output frame.
	durations := timeline.Durations(model.Timestamps, model.VideoInfo.Duration, fps)
	repeats := timeline.RepeatCounts(durations, fps)

	if err := work.ensure(); err != nil {
		return 0, fmt.Errorf("create work dir: %w", err)
	}
	seq := 0
	for i, e := range model.Timestamps {
		src := stills[e.ImageIndex]
		for k := 0; k < repeats[i]; k++ {
			dst := work.path(fmt.Sprintf("frame_%06d.png", seq))
			if err := s.fs.Link(src, dst); err != nil {
				return 0, fmt.Errorf("alias frame %d: %w", seq, err)
			}
			work.track(dst)
			seq++
		}
	}

	job := ports.SequenceJob{
		Pattern:    work.path("frame_%06d.png"),
		FPS:        fps,
		OutputPath: input.OutputPath,
		Encode:     input.Encode,
		Audio:      input.Audio,
	}
	if err := s.assembler.AssembleSequence(ctx, job); err != nil {
		return 0, fmt.Errorf("sequence encode: %w", err)
	}
	return float64(seq) / fps, nil
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[pipeline.ReassembleInput, pipeline.ReassembleResult] = (*Stage)(nil)

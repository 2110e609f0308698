// Package ffmpegassembler implements ports.VideoAssembler by driving
// the ffmpeg binary: the concat demuxer for VFR output, a sequential
// image input for CFR output, and a filter_complex graph fed with raw
// frames on stdin for the one-pass path.
package ffmpegassembler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// Assembler implements ports.VideoAssembler using the ffmpeg binary.
type Assembler struct {
	binary string
	logger ports.Logger
}

// New creates an Assembler. An empty binary path defaults to "ffmpeg"
// on PATH.
func New(binary string, logger ports.Logger) *Assembler {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Assembler{binary: binary, logger: logger.WithComponent("ffmpegassembler")}
}

// AssembleConcat encodes a concat playlist in variable-frame-rate mode
// so that displayed frame timing matches the playlist durations
// exactly.
func (a *Assembler) AssembleConcat(ctx context.Context, job ports.ConcatJob) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", job.PlaylistPath,
	}
	if job.Audio != nil {
		args = append(args, "-i", job.Audio.Path)
	}
	args = append(args, encodeArgs(job.Encode)...)
	args = append(args, "-vsync", "vfr")
	if job.Audio != nil {
		// The concat demuxer reports Duration: N/A, so -shortest would
		// trim the video; rely on exact durations instead.
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		args = append(args, audioArgs(job.Audio)...)
	}
	args = append(args, job.OutputPath)

	return a.run(ctx, args, nil, "concat encode")
}

// AssembleSequence encodes a sequential still-image input at a fixed
// frame rate.
func (a *Assembler) AssembleSequence(ctx context.Context, job ports.SequenceJob) error {
	args := []string{
		"-y",
		"-framerate", formatFPS(job.FPS),
		"-i", job.Pattern,
	}
	if job.Audio != nil {
		args = append(args, "-i", job.Audio.Path)
	}
	args = append(args, encodeArgs(job.Encode)...)
	if job.Audio != nil {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		args = append(args, audioArgs(job.Audio)...)
	}
	args = append(args, job.OutputPath)

	return a.run(ctx, args, nil, "sequence encode")
}

// AssembleFilterGraph streams raw RGB24 frames through a filter graph.
// Audio, when present, is taken from the second input.
func (a *Assembler) AssembleFilterGraph(ctx context.Context, job ports.FilterGraphJob) error {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-r", formatFPS(job.FPS),
		"-i", "-",
	}
	if job.Audio != nil {
		args = append(args, "-i", job.Audio.Path)
	}
	args = append(args, "-filter_complex", job.Graph, "-map", "[vout]")
	if job.Audio != nil {
		args = append(args, "-map", "1:a:0")
	}
	args = append(args, encodeArgs(job.Encode)...)
	if job.Audio != nil {
		args = append(args, audioArgs(job.Audio)...)
	}
	args = append(args, job.OutputPath)

	return a.run(ctx, args, job.Frames, "filter-graph encode")
}

// WriteContainer stores frames as one multi-frame lossless-leaning WebP
// container, in order.
func (a *Assembler) WriteContainer(ctx context.Context, job ports.ContainerJob) error {
	quality := job.Quality
	if quality <= 0 {
		quality = 95
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-framerate", "1",
		"-i", "-",
		"-c:v", "libwebp",
		"-quality", strconv.Itoa(quality),
		"-compression_level", "6",
		"-loop", "0",
		job.OutputPath,
	}
	return a.run(ctx, args, job.Frames, "container write")
}

// run executes ffmpeg, optionally feeding raw frames on stdin. On
// failure the error carries the tail of ffmpeg's stderr.
func (a *Assembler) run(ctx context.Context, args []string, frames [][]byte, stage string) error {
	a.logger.Debug("running encoder: %s %v", a.binary, args)

	cmd := exec.CommandContext(ctx, a.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if frames == nil {
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w: %s", stage, err, stderrTail(&stderr))
		}
		return nil
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%s: stdin pipe: %w", stage, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start encoder: %w", stage, err)
	}

	var writeErr error
	for i, frame := range frames {
		if _, err := stdin.Write(frame); err != nil {
			writeErr = fmt.Errorf("%s: write frame %d: %w", stage, i, err)
			break
		}
	}
	stdin.Close()

	if writeErr != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return writeErr
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", stage, err, stderrTail(&stderr))
	}
	return nil
}

// stderrTail keeps error messages readable: ffmpeg logs its whole
// configuration before the actual failure.
func stderrTail(buf *bytes.Buffer) string {
	const max = 600
	s := bytes.TrimSpace(buf.Bytes())
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return string(s)
}

// formatFPS renders a frame rate without trailing zeros.
func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'g', -1, 64)
}

func encodeArgs(e ports.EncodeSettings) []string {
	codec := e.Codec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-vcodec", codec,
		"-crf", strconv.Itoa(e.CRF),
		"-pix_fmt", "yuv420p",
	}
	if e.Preset != "" {
		args = append(args, "-preset", e.Preset)
	}
	return args
}

func audioArgs(t *ports.AudioTrack) []string {
	if t.Codec == "" {
		// Allow experimental codec copies (e.g. Opus in MP4).
		return []string{"-c:a", "copy", "-strict", "experimental"}
	}
	args := []string{"-c:a", t.Codec}
	if t.Bitrate != "" {
		args = append(args, "-b:a", t.Bitrate)
	}
	return args
}

// Ensure Assembler implements ports.VideoAssembler
var _ ports.VideoAssembler = (*Assembler)(nil)

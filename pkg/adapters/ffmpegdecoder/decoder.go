// Package ffmpegdecoder implements ports.FrameDecoder by spawning an
// ffmpeg process that writes raw RGB24 frames to stdout and showinfo
// log lines (one pts_time marker per frame) to stderr.
package ffmpegdecoder

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// mpdecimate thresholds tuned for slide recordings: hi=64*12, lo=64*5,
// frac=0.33.
const mpdecimateFilter = "mpdecimate=hi=768:lo=320:frac=0.33"

// Decoder implements ports.FrameDecoder using the ffmpeg binary.
type Decoder struct {
	binary string
	logger ports.Logger
}

// New creates a Decoder. An empty binary path defaults to "ffmpeg" on
// PATH.
func New(binary string, logger ports.Logger) *Decoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Decoder{binary: binary, logger: logger.WithComponent("ffmpegdecoder")}
}

// Start launches the decode process for the file at path.
func (d *Decoder) Start(ctx context.Context, path string, opts ports.DecodeOptions) (ports.FrameStream, error) {
	filters := "showinfo"
	if opts.MPDecimate {
		filters = mpdecimateFilter + ",showinfo"
	}

	args := []string{
		"-i", path,
		"-vf", filters,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-vsync", "vfr",
		"-",
	}
	d.logger.Debug("starting decoder: %s %v", d.binary, args)

	cmd := exec.CommandContext(ctx, d.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start decoder for %s: %w", path, err)
	}

	return &stream{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type stream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// Pixels returns the raw pixel byte stream.
func (s *stream) Pixels() io.Reader {
	return s.stdout
}

// Log returns the decoder's stderr log stream.
func (s *stream) Log() io.Reader {
	return s.stderr
}

// Wait blocks until the decoder exits.
func (s *stream) Wait() error {
	return s.cmd.Wait()
}

// Kill force-terminates the decoder. Errors from an already-finished
// process are ignored.
func (s *stream) Kill() error {
	if s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}

// Ensure Decoder implements ports.FrameDecoder
var _ ports.FrameDecoder = (*Decoder)(nil)

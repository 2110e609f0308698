// Package ffprober implements ports.VideoProber on top of the ffprobe
// command-line tool.
package ffprober

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// Prober implements ports.VideoProber by running ffprobe.
type Prober struct {
	binary string
}

// New creates a Prober. An empty binary path defaults to "ffprobe" on
// PATH.
func New(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PixFmt    string `json:"pix_fmt"`
	FrameRate string `json:"r_frame_rate"`
	Duration  string `json:"duration"`
	NBFrames  string `json:"nb_frames"`
}

// Probe returns parameters of the first video stream of the file.
func (p *Prober) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,pix_fmt,duration,nb_frames",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return ports.VideoInfo{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return ports.VideoInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}
	if len(parsed.Streams) == 0 {
		return ports.VideoInfo{}, fmt.Errorf("no video stream in %s", path)
	}

	return streamToInfo(parsed.Streams[0], path)
}

func streamToInfo(s probeStream, path string) (ports.VideoInfo, error) {
	fps, err := parseFrameRate(s.FrameRate)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}

	info := ports.VideoInfo{
		Width:  s.Width,
		Height: s.Height,
		PixFmt: s.PixFmt,
		FPS:    fps,
	}
	if s.Duration != "" {
		if info.Duration, err = strconv.ParseFloat(s.Duration, 64); err != nil {
			return ports.VideoInfo{}, fmt.Errorf("probe %s: duration %q: %w", path, s.Duration, err)
		}
	}
	if s.NBFrames != "" {
		if info.FrameCount, err = strconv.Atoi(s.NBFrames); err != nil {
			return ports.VideoInfo{}, fmt.Errorf("probe %s: nb_frames %q: %w", path, s.NBFrames, err)
		}
	}

	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return ports.VideoInfo{}, fmt.Errorf("probe %s: implausible stream %dx%d @ %g fps", path, info.Width, info.Height, info.FPS)
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational form ("30000/1001") as
// well as a plain float.
func parseFrameRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("frame rate %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("frame rate %q: zero denominator", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", s, err)
	}
	return v, nil
}

// Ensure Prober implements ports.VideoProber
var _ ports.VideoProber = (*Prober)(nil)

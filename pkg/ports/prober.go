package ports

import "context"

// VideoInfo describes the first video stream of a media file.
type VideoInfo struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixFmt     string  `json:"pix_fmt,omitempty"`
	FPS        float64 `json:"fps"`
	Duration   float64 `json:"duration"`
	FrameCount int     `json:"frame_count,omitempty"`
}

// FrameSize returns the byte size of one decoded RGB24 frame.
func (v VideoInfo) FrameSize() int {
	return v.Width * v.Height * 3
}

// VideoProber extracts stream parameters from a media file.
type VideoProber interface {
	// Probe returns width/height/fps/duration/frame count for the first
	// video stream of the file at path.
	Probe(ctx context.Context, path string) (VideoInfo, error)
}

package ports

import "context"

// EncodeSettings are the encoder parameters shared by all assembly
// strategies.
type EncodeSettings struct {
	Codec  string // e.g. libx264
	CRF    int    // 0-51, lower is higher quality
	Preset string // ultrafast .. veryslow
}

// AudioTrack describes an audio source to mux into the output.
type AudioTrack struct {
	Path    string // file to take the audio stream from
	Codec   string // empty means stream copy
	Bitrate string // e.g. "128k", only with a non-copy codec
}

// ConcatJob encodes a playlist of still images with exact per-entry
// durations in variable-frame-rate mode.
type ConcatJob struct {
	PlaylistPath string
	OutputPath   string
	Encode       EncodeSettings
	Audio        *AudioTrack
}

// SequenceJob encodes a sequential still-image input at a constant
// frame rate.
type SequenceJob struct {
	Pattern    string // e.g. /tmp/seq/frame_%06d.png
	FPS        float64
	OutputPath string
	Encode     EncodeSettings
	Audio      *AudioTrack
}

// FilterGraphJob encodes raw RGB24 frames streamed on stdin through a
// filter-graph description, taking audio from a second input file.
type FilterGraphJob struct {
	Width      int
	Height     int
	FPS        float64
	Graph      string   // serialized filter graph with output label [vout]
	Frames     [][]byte // one RGB24 buffer per unique slide, in order
	OutputPath string
	Encode     EncodeSettings
	Audio      *AudioTrack
}

// ContainerJob writes raw RGB24 frames into a single multi-frame image
// container, in order.
type ContainerJob struct {
	Width      int
	Height     int
	Frames     [][]byte
	OutputPath string
	Quality    int // 0-100, container-specific quality
}

// VideoAssembler abstracts the encode side of the pipeline.
type VideoAssembler interface {
	// AssembleConcat runs the variable-framerate concat strategy.
	AssembleConcat(ctx context.Context, job ConcatJob) error

	// AssembleSequence runs the constant-framerate frame-repeat strategy.
	AssembleSequence(ctx context.Context, job SequenceJob) error

	// AssembleFilterGraph runs the in-memory filter-graph strategy.
	AssembleFilterGraph(ctx context.Context, job FilterGraphJob) error

	// WriteContainer stores unique images as one multi-frame container
	// file.
	WriteContainer(ctx context.Context, job ContainerJob) error
}

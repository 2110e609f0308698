package ports

import (
	"context"
	"io"
)

// DecodeOptions configures the frame decoder.
type DecodeOptions struct {
	// MPDecimate enables the decoder-side duplicate-dropping pre-filter.
	// The surviving frames keep their original presentation timestamps.
	MPDecimate bool
}

// FrameStream is a running decode process. Pixels carries raw RGB24
// frames back to back; Log carries the decoder's text output with one
// pts_time marker per emitted frame, in the same order as Pixels.
type FrameStream interface {
	// Pixels returns the raw pixel byte stream.
	Pixels() io.Reader

	// Log returns the decoder's line-oriented log stream.
	Log() io.Reader

	// Wait blocks until the decode process exits and releases its pipes.
	Wait() error

	// Kill force-terminates the decode process. Safe to call after Wait.
	Kill() error
}

// FrameDecoder starts decode processes for a media file.
type FrameDecoder interface {
	// Start launches a decode of the file at path. A failure to launch is
	// fatal for the caller; there is nothing to recover.
	Start(ctx context.Context, path string, opts DecodeOptions) (FrameStream, error)
}

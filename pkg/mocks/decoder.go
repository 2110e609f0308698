package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// FrameStream is a mock implementation of ports.FrameStream backed by
// in-memory buffers.
type FrameStream struct {
	PixelData []byte
	LogData   string

	// PixelErr, when set, surfaces from the pixel reader once
	// PixelData is drained, in place of the normal end of stream.
	PixelErr error

	WaitFunc func() error
	KillFunc func() error

	WaitCalled bool
	KillCalled bool

	pixels io.Reader
	log    io.Reader
}

func (m *FrameStream) Pixels() io.Reader {
	if m.pixels == nil {
		m.pixels = bytes.NewReader(m.PixelData)
		if m.PixelErr != nil {
			m.pixels = io.MultiReader(m.pixels, errReader{m.PixelErr})
		}
	}
	return m.pixels
}

// errReader fails every read with a fixed error.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func (m *FrameStream) Log() io.Reader {
	if m.log == nil {
		m.log = bytes.NewReader([]byte(m.LogData))
	}
	return m.log
}

func (m *FrameStream) Wait() error {
	m.WaitCalled = true
	if m.WaitFunc != nil {
		return m.WaitFunc()
	}
	return nil
}

func (m *FrameStream) Kill() error {
	m.KillCalled = true
	if m.KillFunc != nil {
		return m.KillFunc()
	}
	return nil
}

var _ ports.FrameStream = (*FrameStream)(nil)

// FrameDecoder is a mock implementation of ports.FrameDecoder.
type FrameDecoder struct {
	StartFunc func(ctx context.Context, path string, opts ports.DecodeOptions) (ports.FrameStream, error)

	// Stream is returned by Start when StartFunc is nil.
	Stream *FrameStream

	StartCalls []StartCall
}

// StartCall records a call to Start.
type StartCall struct {
	Path string
	Opts ports.DecodeOptions
}

func (m *FrameDecoder) Start(ctx context.Context, path string, opts ports.DecodeOptions) (ports.FrameStream, error) {
	m.StartCalls = append(m.StartCalls, StartCall{Path: path, Opts: opts})
	if m.StartFunc != nil {
		return m.StartFunc(ctx, path, opts)
	}
	if m.Stream != nil {
		return m.Stream, nil
	}
	return nil, fmt.Errorf("mock decoder: no stream configured")
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)

// DecodeLogLine formats a frame marker line the way the decode log
// stream carries them.
func DecodeLogLine(n int, ptsTime float64) string {
	return fmt.Sprintf("[Parsed_showinfo_1 @ 0x1] n:%3d pts:%d pts_time:%g duration_time:0.04\n", n, n*40, ptsTime)
}

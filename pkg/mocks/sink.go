package mocks

import (
	"image"
	"sync"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	TimelineJSON []byte
	Playlist     []byte
	FilterGraph  []byte
	Slides       []image.Image
	Timestamps   []float64
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveTimelineJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimelineJSON = data
	return nil
}

func (m *DebugSink) SavePlaylist(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Playlist = data
	return nil
}

func (m *DebugSink) SaveFilterGraph(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterGraph = data
	return nil
}

func (m *DebugSink) SaveContactSheet(slides []image.Image, timestamps []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Slides = slides
	m.Timestamps = timestamps
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

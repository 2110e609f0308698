// Package nullsink provides a DebugSink that discards everything.
package nullsink

import (
	"image"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// Sink discards all debug artifacts.
type Sink struct{}

// New creates a new null Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false.
func (s *Sink) Enabled() bool { return false }

// SaveTimelineJSON discards the data.
func (s *Sink) SaveTimelineJSON(data []byte) error { return nil }

// SavePlaylist discards the data.
func (s *Sink) SavePlaylist(data []byte) error { return nil }

// SaveFilterGraph discards the data.
func (s *Sink) SaveFilterGraph(data []byte) error { return nil }

// SaveContactSheet discards the slides.
func (s *Sink) SaveContactSheet(slides []image.Image, timestamps []float64) error { return nil }

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)

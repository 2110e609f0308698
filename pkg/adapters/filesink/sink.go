// Package filesink saves debug artifacts from a pipeline run into a
// directory.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// Artifact file names inside the debug directory.
const (
	TimelineFile     = "timeline.json"
	PlaylistFile     = "playlist.txt"
	FilterGraphFile  = "filtergraph.txt"
	ContactSheetFile = "contact_sheet.png"
)

// Sink implements ports.DebugSink by writing artifacts into a directory.
type Sink struct {
	dir string
	fs  ports.FileSystem
}

// New creates a Sink rooted at dir. The directory is created on the
// first write.
func New(dir string, fs ports.FileSystem) *Sink {
	return &Sink{dir: dir, fs: fs}
}

// Enabled returns true, file sinks always record.
func (s *Sink) Enabled() bool {
	return true
}

// SaveTimelineJSON saves the timeline model as JSON.
func (s *Sink) SaveTimelineJSON(data []byte) error {
	return s.write(TimelineFile, data)
}

// SavePlaylist saves a generated concat playlist.
func (s *Sink) SavePlaylist(data []byte) error {
	return s.write(PlaylistFile, data)
}

// SaveFilterGraph saves a serialized filter-graph description.
func (s *Sink) SaveFilterGraph(data []byte) error {
	return s.write(FilterGraphFile, data)
}

// SaveContactSheet renders the unique slides as a labeled grid image.
func (s *Sink) SaveContactSheet(slides []image.Image, timestamps []float64) error {
	if len(slides) == 0 {
		return nil
	}

	sheet := renderSheet(slides, timestamps)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	return s.write(ContactSheetFile, buf.Bytes())
}

func (s *Sink) write(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := s.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)

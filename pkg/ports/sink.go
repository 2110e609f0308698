package ports

import "image"

// DebugSink saves intermediate pipeline artifacts for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveTimelineJSON saves the timeline model as JSON.
	SaveTimelineJSON(data []byte) error

	// SavePlaylist saves a generated concat playlist.
	SavePlaylist(data []byte) error

	// SaveFilterGraph saves a serialized filter-graph description.
	SaveFilterGraph(data []byte) error

	// SaveContactSheet renders the unique slides as a labeled grid image.
	SaveContactSheet(slides []image.Image, timestamps []float64) error
}

// Package summarizer provides summary generation for pipeline runs.
package summarizer

import "time"

// Summary contains all data collected during a pipeline run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Command     string // extract, reassemble or optimize

	// Source video information
	Source SourceInfo

	// Deduplication results
	Dedup DedupInfo

	// Output details
	Output OutputInfo
}

// SourceInfo describes the input video.
type SourceInfo struct {
	Path     string
	Width    int
	Height   int
	FPS      float64
	Duration float64
}

// DedupInfo contains deduplication counters.
type DedupInfo struct {
	FramesProcessed int
	FrameChanges    int
	UniqueImages    int
	Threshold       int
}

// OutputInfo describes the produced artifact.
type OutputInfo struct {
	Path     string
	Duration float64
	Bytes    int64
}

// NewSummary creates an empty Summary stamped with the current time.
func NewSummary() *Summary {
	return &Summary{GeneratedAt: time.Now()}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder(command string) *Builder {
	s := NewSummary()
	s.Command = command
	return &Builder{summary: s}
}

// WithSource sets the source video information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithDedup sets the deduplication counters.
func (b *Builder) WithDedup(dedup DedupInfo) *Builder {
	b.summary.Dedup = dedup
	return b
}

// WithOutput sets the output details.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

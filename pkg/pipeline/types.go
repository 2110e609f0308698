package pipeline

import (
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput contains parameters for unique-frame extraction.
type ExtractInput struct {
	VideoPath  string
	OutputDir  string
	Format     timeline.Format // webp container or per-hash PNGs
	Threshold  int             // Hamming distance, 0 means default
	MPDecimate bool            // decoder-side duplicate dropping
	Overwrite  bool            // allow a non-empty output folder
}

// DefaultExtractInput returns ExtractInput with default values.
func DefaultExtractInput() ExtractInput {
	return ExtractInput{
		Format:     timeline.FormatWebP,
		MPDecimate: true,
	}
}

// ExtractResult contains the extraction output.
type ExtractResult struct {
	Model           timeline.Model
	FramesProcessed int
	OutputDir       string
}

// =============================================================================
// Reassemble Stage Types
// =============================================================================

// ReassembleMode selects the reconstruction strategy.
type ReassembleMode string

const (
	// ModeVFR writes a concat playlist with exact per-entry durations.
	// Perfect timing, weaker player compatibility.
	ModeVFR ReassembleMode = "vfr"

	// ModeCFR repeats each image at a constant frame rate. Duration
	// error is bounded by one frame interval per entry.
	ModeCFR ReassembleMode = "cfr"
)

// ReassembleInput contains parameters for timeline reconstruction.
type ReassembleInput struct {
	FramesDir  string
	OutputPath string
	Mode       ReassembleMode
	FPS        float64 // target fps for ModeCFR, 0 uses the source fps
	Encode     ports.EncodeSettings
	Audio      *ports.AudioTrack
}

// DefaultReassembleInput returns ReassembleInput with default values.
func DefaultReassembleInput() ReassembleInput {
	return ReassembleInput{
		Mode: ModeVFR,
		Encode: ports.EncodeSettings{
			Codec:  "libx264",
			CRF:    23,
			Preset: "medium",
		},
	}
}

// ReassembleResult contains the reconstruction output.
type ReassembleResult struct {
	OutputPath string
	Entries    int
	Duration   float64 // total rendered duration in seconds
}

// =============================================================================
// Optimize Stage Types
// =============================================================================

// OptimizeInput contains parameters for the one-pass slides optimizer.
type OptimizeInput struct {
	VideoPath    string
	OutputPath   string
	Threshold    int
	MPDecimate   bool // decoder-side duplicate dropping, off by default
	Encode       ports.EncodeSettings
	AudioCodec   string // empty probes the source and copies when safe
	AudioBitrate string
}

// DefaultOptimizeInput returns OptimizeInput with default values.
func DefaultOptimizeInput() OptimizeInput {
	return OptimizeInput{
		Encode: ports.EncodeSettings{
			Codec:  "libx264",
			CRF:    23,
			Preset: "medium",
		},
	}
}

// OptimizeResult contains the optimizer output.
type OptimizeResult struct {
	OutputPath      string
	FramesProcessed int
	UniqueSlides    int
}

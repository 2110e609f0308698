// Package timeline defines the persisted record of an extraction run:
// unique images plus per-change timestamps plus the source video
// parameters. It is the interchange contract between extraction and
// reconstruction and is immutable once written.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Schrubitteflau/compression-suite/pkg/hashing"
)

// Version is the schema version written by this build.
const Version = "1.0"

// MetadataFile is the metadata file name inside a frames folder.
const MetadataFile = "metadata.json"

// ContainerFile is the multi-frame container file name for FormatWebP.
const ContainerFile = "frames.webp"

// Format discriminates how unique images are stored next to the
// metadata.
type Format string

const (
	// FormatWebP stores all unique images in one multi-frame WebP
	// container, in image-index order.
	FormatWebP Format = "webp"

	// FormatPNG stores one still PNG per unique image, named by hash.
	FormatPNG Format = "png"
)

// ErrInvalid marks data-contract violations found at load time.
var ErrInvalid = errors.New("invalid timeline")

// Entry records one detected frame change.
type Entry struct {
	Timestamp  float64 `json:"timestamp"`
	Hash       string  `json:"hash"`
	ImageIndex int     `json:"image_index"`
}

// VideoInfo is the source video snapshot captured at extraction time.
type VideoInfo struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Duration float64 `json:"duration"`
}

// Model is the serialized timeline.
type Model struct {
	Version           string    `json:"version"`
	FrameChangesCount int       `json:"frame_changes_count"`
	UniqueImagesCount int       `json:"unique_images_count"`
	Timestamps        []Entry   `json:"timestamps"`
	Format            Format    `json:"format"`
	VideoInfo         VideoInfo `json:"video_info"`
}

// New builds a Model from change entries. Counts are derived, not
// trusted from the caller.
func New(entries []Entry, uniqueImages int, format Format, info VideoInfo) Model {
	return Model{
		Version:           Version,
		FrameChangesCount: len(entries),
		UniqueImagesCount: uniqueImages,
		Timestamps:        entries,
		Format:            format,
		VideoInfo:         info,
	}
}

// Marshal serializes the model as indented JSON.
func (m Model) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Unmarshal parses and validates a serialized model.
func Unmarshal(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("parse %s: %w", MetadataFile, err)
	}
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Validate checks the model's internal invariants. Reconstruction must
// reject a model that fails here before any encoder is started.
func (m Model) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalid, m.Version)
	}
	if m.Format != FormatWebP && m.Format != FormatPNG {
		return fmt.Errorf("%w: unknown storage format %q", ErrInvalid, m.Format)
	}
	if m.FrameChangesCount != len(m.Timestamps) {
		return fmt.Errorf("%w: frame_changes_count is %d but %d timestamps present", ErrInvalid, m.FrameChangesCount, len(m.Timestamps))
	}
	if m.VideoInfo.Width <= 0 || m.VideoInfo.Height <= 0 || m.VideoInfo.FPS <= 0 {
		return fmt.Errorf("%w: bad video_info %+v", ErrInvalid, m.VideoInfo)
	}

	prev := -1.0
	seen := make(map[int]bool, m.UniqueImagesCount)
	for i, e := range m.Timestamps {
		if e.ImageIndex < 0 || e.ImageIndex >= m.UniqueImagesCount {
			return fmt.Errorf("%w: entry %d references image %d, have %d images", ErrInvalid, i, e.ImageIndex, m.UniqueImagesCount)
		}
		if e.Timestamp < prev {
			return fmt.Errorf("%w: entry %d timestamp %g before %g", ErrInvalid, i, e.Timestamp, prev)
		}
		if _, err := hashing.Parse(e.Hash); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalid, i, err)
		}
		prev = e.Timestamp
		seen[e.ImageIndex] = true
	}
	if len(m.Timestamps) > 0 && len(seen) != m.UniqueImagesCount {
		return fmt.Errorf("%w: %d images declared but %d referenced", ErrInvalid, m.UniqueImagesCount, len(seen))
	}
	return nil
}

// UniqueHashes returns the hash of each unique image in image-index
// order, derived from the first entry referencing each index.
func (m Model) UniqueHashes() ([]hashing.Hash, error) {
	out := make([]hashing.Hash, m.UniqueImagesCount)
	filled := make([]bool, m.UniqueImagesCount)
	for _, e := range m.Timestamps {
		if filled[e.ImageIndex] {
			continue
		}
		h, err := hashing.Parse(e.Hash)
		if err != nil {
			return nil, err
		}
		out[e.ImageIndex] = h
		filled[e.ImageIndex] = true
	}
	for i, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("%w: image %d never referenced", ErrInvalid, i)
		}
	}
	return out, nil
}

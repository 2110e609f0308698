// Package dedupe detects unique frames by perceptual-hash distance and
// owns the mapping from hash to stored pixel buffer.
package dedupe

import (
	"fmt"

	"github.com/Schrubitteflau/compression-suite/pkg/hashing"
	"github.com/Schrubitteflau/compression-suite/pkg/rawimage"
)

// Policy selects the uniqueness test applied to each frame.
type Policy int

const (
	// PolicyConsecutive flags a frame when it differs from the
	// immediately preceding frame. A hash seen earlier in the stream is
	// still a change but reuses the stored image.
	PolicyConsecutive Policy = iota

	// PolicyGlobal flags a frame only when it differs from every
	// previously accepted frame. The accepted set only grows, so noise
	// cannot re-admit a slide that is merely similar to an old one.
	PolicyGlobal
)

// Result describes the decision for one observed frame.
type Result struct {
	Hash       hashing.Hash
	Changed    bool // the frame differs according to the policy
	NewImage   bool // the pixels were stored as a new unique image
	ImageIndex int  // index of the frame's image in the store, valid when Changed
}

// Deduplicator applies a uniqueness policy frame by frame. It is driven
// by a single goroutine; the store is mutated only here.
type Deduplicator struct {
	policy    Policy
	threshold int
	store     *Store

	prev    hashing.Hash
	hasPrev bool
}

// New creates a Deduplicator for frames of the given dimensions.
// A non-positive threshold falls back to hashing.DefaultThreshold.
func New(policy Policy, threshold, width, height int) *Deduplicator {
	if threshold <= 0 {
		threshold = hashing.DefaultThreshold
	}
	return &Deduplicator{
		policy:    policy,
		threshold: threshold,
		store:     NewStore(width, height),
	}
}

// Store returns the unique-image mapping accumulated so far.
func (d *Deduplicator) Store() *Store {
	return d.store
}

// Observe hashes one RGB24 frame and applies the policy. The pixel
// buffer is retained by the store when the frame introduces a new
// unique image, so the caller must not reuse it.
func (d *Deduplicator) Observe(pixels []byte) (Result, error) {
	img, err := rawimage.Wrap(pixels, d.store.width, d.store.height)
	if err != nil {
		return Result{}, err
	}
	h, err := hashing.Compute(img)
	if err != nil {
		return Result{}, fmt.Errorf("hash frame: %w", err)
	}

	switch d.policy {
	case PolicyConsecutive:
		return d.observeConsecutive(h, pixels), nil
	case PolicyGlobal:
		return d.observeGlobal(h, pixels), nil
	default:
		return Result{}, fmt.Errorf("unknown dedup policy %d", d.policy)
	}
}

func (d *Deduplicator) observeConsecutive(h hashing.Hash, pixels []byte) Result {
	changed := !d.hasPrev || h.Distance(d.prev) > d.threshold
	d.prev = h
	d.hasPrev = true

	res := Result{Hash: h, Changed: changed}
	if !changed {
		return res
	}

	res.NewImage = d.store.Insert(h, pixels)
	res.ImageIndex, _ = d.store.Index(h)
	return res
}

func (d *Deduplicator) observeGlobal(h hashing.Hash, pixels []byte) Result {
	// Compare against every accepted hash. The set is unbounded; slide
	// recordings stay in the low hundreds of uniques.
	for _, accepted := range d.store.Hashes() {
		if h.Distance(accepted) <= d.threshold {
			return Result{Hash: h}
		}
	}

	d.store.Insert(h, pixels)
	idx, _ := d.store.Index(h)
	return Result{Hash: h, Changed: true, NewImage: true, ImageIndex: idx}
}

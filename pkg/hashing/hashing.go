// Package hashing computes 64-bit perceptual hashes for decoded frames
// and compares them by Hamming distance.
package hashing

import (
	"fmt"
	"image"
	"math/bits"
	"strconv"

	"github.com/corona10/goimagehash"
)

// DefaultThreshold is the Hamming distance above which two frames are
// considered different.
const DefaultThreshold = 5

// Hash is a 64-bit perceptual hash (pHash).
type Hash uint64

// Compute returns the perceptual hash of img.
func Compute(img image.Image) (Hash, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return Hash(h.GetHash()), nil
}

// Distance returns the Hamming distance between two hashes.
func (h Hash) Distance(other Hash) int {
	return bits.OnesCount64(uint64(h ^ other))
}

// String returns the hash as 16 lowercase hex characters. This is the
// representation stored in timeline metadata and used as PNG file names.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Parse converts the hex representation back into a Hash.
func Parse(s string) (Hash, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("hash %q: want 16 hex characters, got %d", s, len(s))
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("hash %q: %w", s, err)
	}
	return Hash(v), nil
}

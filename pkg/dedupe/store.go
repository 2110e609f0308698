package dedupe

import (
	"fmt"
	"image"

	"github.com/Schrubitteflau/compression-suite/pkg/hashing"
	"github.com/Schrubitteflau/compression-suite/pkg/rawimage"
)

// Store is an insertion-ordered, injective mapping from perceptual hash
// to decoded pixel buffer. The position of a hash in first-seen order
// defines its image index. A Store is populated either by streaming
// inserts during extraction or in bulk when loading stored images.
type Store struct {
	width  int
	height int
	order  []hashing.Hash
	byHash map[hashing.Hash][]byte
}

// NewStore creates an empty store for frames of the given dimensions.
func NewStore(width, height int) *Store {
	return &Store{
		width:  width,
		height: height,
		byHash: make(map[hashing.Hash][]byte),
	}
}

// BulkLoad creates a store from parallel slices of hashes and RGB24
// buffers in image-index order, as read back from timeline storage.
func BulkLoad(width, height int, hashes []hashing.Hash, buffers [][]byte) (*Store, error) {
	if len(hashes) != len(buffers) {
		return nil, fmt.Errorf("store: %d hashes but %d buffers", len(hashes), len(buffers))
	}
	s := NewStore(width, height)
	for i, h := range hashes {
		if len(buffers[i]) != width*height*3 {
			return nil, fmt.Errorf("store: image %d is %d bytes, want %d", i, len(buffers[i]), width*height*3)
		}
		if !s.Insert(h, buffers[i]) {
			return nil, fmt.Errorf("store: duplicate hash %s at index %d", h, i)
		}
	}
	return s, nil
}

// Insert adds pixels under h if the hash has not been seen. It returns
// true when a new image was stored.
func (s *Store) Insert(h hashing.Hash, pixels []byte) bool {
	if _, seen := s.byHash[h]; seen {
		return false
	}
	s.byHash[h] = pixels
	s.order = append(s.order, h)
	return true
}

// Len returns the number of unique images stored.
func (s *Store) Len() int {
	return len(s.order)
}

// Index returns the image index of h in first-seen order.
func (s *Store) Index(h hashing.Hash) (int, bool) {
	for i, existing := range s.order {
		if existing == h {
			return i, true
		}
	}
	return 0, false
}

// Hashes returns the stored hashes in insertion order. The returned
// slice is owned by the store and must not be mutated.
func (s *Store) Hashes() []hashing.Hash {
	return s.order
}

// Pixels returns the buffer stored under h.
func (s *Store) Pixels(h hashing.Hash) ([]byte, bool) {
	pix, ok := s.byHash[h]
	return pix, ok
}

// PixelsAt returns the buffer at image index i.
func (s *Store) PixelsAt(i int) ([]byte, error) {
	if i < 0 || i >= len(s.order) {
		return nil, fmt.Errorf("store: image index %d out of range [0,%d)", i, len(s.order))
	}
	return s.byHash[s.order[i]], nil
}

// ImageAt returns the image at index i wrapped as an image.Image.
func (s *Store) ImageAt(i int) (image.Image, error) {
	pix, err := s.PixelsAt(i)
	if err != nil {
		return nil, err
	}
	return rawimage.Wrap(pix, s.width, s.height)
}

// Buffers returns all pixel buffers in image-index order. Repeated
// references to the same index alias the same bytes.
func (s *Store) Buffers() [][]byte {
	out := make([][]byte, len(s.order))
	for i, h := range s.order {
		out[i] = s.byHash[h]
	}
	return out
}

package hashing

import (
	"image"
	"image/color"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Hash
		want int
	}{
		{"identical", 0xdeadbeefdeadbeef, 0xdeadbeefdeadbeef, 0},
		{"one bit", 0x0, 0x1, 1},
		{"all bits", 0x0, 0xffffffffffffffff, 64},
		{"nibble", 0xf0, 0x0f, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Distance(tt.b); got != tt.want {
				t.Errorf("Distance(%x, %x) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	h := Hash(0x00ff00ffdeadbeef)

	s := h.String()
	if len(s) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", s)
	}

	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed != h {
		t.Errorf("round trip: got %x, want %x", parsed, h)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "abc", "zzzzzzzzzzzzzzzz", "0123456789abcdef0"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	img := gradient(64, 64)

	h1, err := Compute(img)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	h2, err := Compute(img)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if h1 != h2 {
		t.Errorf("same image hashed to %s and %s", h1, h2)
	}
}

func TestComputeSeparatesDistinctContent(t *testing.T) {
	a, err := Compute(gradient(64, 64))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	b, err := Compute(checkerboard(64, 64))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if a.Distance(b) <= DefaultThreshold {
		t.Errorf("gradient vs checkerboard distance %d, expected > %d", a.Distance(b), DefaultThreshold)
	}
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func checkerboard(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// Package rawimage wraps raw interleaved RGB24 pixel buffers, the wire
// format of the decoder boundary, as image.Image values without copying.
package rawimage

import (
	"fmt"
	"image"
	"image/color"
)

// RGB is an in-memory image backed by a raw RGB24 buffer. Pix holds
// width*height*3 bytes in row-major R, G, B order.
type RGB struct {
	Pix    []byte
	Width  int
	Height int
}

// Wrap creates an RGB image over pix. It returns an error when the
// buffer length does not match the dimensions.
func Wrap(pix []byte, width, height int) (*RGB, error) {
	if len(pix) != width*height*3 {
		return nil, fmt.Errorf("rawimage: buffer is %d bytes, want %d for %dx%d", len(pix), width*height*3, width, height)
	}
	return &RGB{Pix: pix, Width: width, Height: height}, nil
}

// ColorModel implements image.Image.
func (m *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (m *RGB) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *RGB) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{}
	}
	i := (y*m.Width + x) * 3
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 0xff}
}

// Flatten converts any image.Image to a raw RGB24 buffer.
func Flatten(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return out
}

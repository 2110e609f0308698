package filesink

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

const (
	sheetColumns = 4
	thumbWidth   = 320
	cellPadding  = 8
	labelHeight  = 18
)

// renderSheet lays the slides out in a grid, newest last, with an
// index and timestamp label under each thumbnail.
func renderSheet(slides []image.Image, timestamps []float64) image.Image {
	thumbHeight := thumbHeightFor(slides[0])

	columns := sheetColumns
	if len(slides) < columns {
		columns = len(slides)
	}
	rows := (len(slides) + columns - 1) / columns

	cellW := thumbWidth + cellPadding
	cellH := thumbHeight + labelHeight + cellPadding
	width := columns*cellW + cellPadding
	height := rows*cellH + cellPadding

	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{R: 24, G: 24, B: 28, A: 255})
	dc.Clear()

	for i, slide := range slides {
		col := i % columns
		row := i / columns
		x := cellPadding + col*cellW
		y := cellPadding + row*cellH

		dc.DrawImage(resize(slide, thumbWidth, thumbHeight), x, y)

		label := fmt.Sprintf("#%d", i)
		if i < len(timestamps) {
			label = fmt.Sprintf("#%d  %.3fs", i, timestamps[i])
		}
		dc.SetColor(color.White)
		dc.DrawStringAnchored(label, float64(x), float64(y+thumbHeight+labelHeight/2), 0, 0.5)
	}

	return dc.Image()
}

func thumbHeightFor(slide image.Image) int {
	bounds := slide.Bounds()
	if bounds.Dx() == 0 {
		return thumbWidth
	}
	h := thumbWidth * bounds.Dy() / bounds.Dx()
	if h < 1 {
		h = 1
	}
	return h
}

func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

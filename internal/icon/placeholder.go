package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size is the placeholder's edge length in pixels
const Size = 32

var (
	paper  = color.RGBA{255, 255, 255, 255}
	shadow = color.RGBA{128, 128, 128, 255}
	ink    = color.RGBA{192, 0, 0, 255}
)

// drawPlaceholder renders a broken-image tile: a framed page with a red
// glyph in the middle
func drawPlaceholder(glyph string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	page := image.Rect(4, 2, Size-4, Size-2)
	draw.Draw(img, page, image.NewUniform(shadow), image.Point{}, draw.Src)
	draw.Draw(img, page.Inset(1), image.NewUniform(paper), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
	}
	width := d.MeasureString(glyph).Round()
	d.Dot = fixed.Point26_6{
		X: fixed.I((Size - width) / 2),
		Y: fixed.I((Size + face.Ascent - face.Descent) / 2),
	}
	d.DrawString(glyph)
	return img
}

// placeholderPNG encodes the broken-image tile
func placeholderPNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawPlaceholder("X")); err != nil {
		return nil
	}
	return buf.Bytes()
}

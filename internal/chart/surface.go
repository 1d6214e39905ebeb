// Package chart draws candlestick charts onto an in-memory pixel surface.
package chart

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"MoexLens/internal/model"
)

// Align selects the horizontal anchor of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

var labelFace = basicfont.Face7x13

// Surface is a device-pixel backing store with a uniform scale transform.
// Every drawing call takes CSS pixel coordinates.
type Surface struct {
	img    *image.RGBA
	width  float64
	height float64
	scale  float64
}

// NewSurface returns a surface at the minimum chart size and a 1:1 scale.
func NewSurface() *Surface {
	s := &Surface{}
	Resize(s, model.HostBox{}, 1)
	return s
}

// Image returns the backing store.
func (s *Surface) Image() *image.RGBA { return s.img }

// Width is the CSS width of the surface.
func (s *Surface) Width() float64 { return s.width }

// Height is the CSS height of the surface.
func (s *Surface) Height() float64 { return s.height }

// Scale is the device pixels per CSS pixel.
func (s *Surface) Scale() float64 { return s.scale }

func (s *Surface) reset(devW, devH int, cssW, cssH, scale float64) {
	if s.img == nil || s.img.Rect.Dx() != devW || s.img.Rect.Dy() != devH {
		s.img = image.NewRGBA(image.Rect(0, 0, devW, devH))
	}
	s.width = cssW
	s.height = cssH
	s.scale = scale
}

// Clear paints the whole surface with c.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect fills the CSS rectangle at (x, y) of size w×h. Edges are rounded
// to device pixels and any non-empty rectangle covers at least one pixel.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	r := s.deviceRect(x, y, w, h).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *Surface) deviceRect(x, y, w, h float64) image.Rectangle {
	x0 := int(math.Round(x * s.scale))
	y0 := int(math.Round(y * s.scale))
	x1 := int(math.Round((x + w) * s.scale))
	y1 := int(math.Round((y + h) * s.scale))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1)
}

// TextSize returns the CSS size of text set in the label face.
func TextSize(text string) (w, h float64) {
	adv := font.MeasureString(labelFace, text).Ceil()
	return float64(adv), float64(labelFace.Metrics().Height.Ceil())
}

// Text draws a single line with its top edge at y. With AlignCenter, x is the
// horizontal midpoint of the run.
func (s *Surface) Text(x, y float64, text string, c color.Color, align Align) {
	w, h := TextSize(text)
	if w == 0 {
		return
	}
	if align == AlignCenter {
		x -= w / 2
	}

	glyphs := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(0, labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	dst := s.deviceRect(x, y, w, h)
	var src image.Image = glyphs
	if dst.Dx() != glyphs.Rect.Dx() || dst.Dy() != glyphs.Rect.Dy() {
		src = imaging.Resize(glyphs, dst.Dx(), dst.Dy(), imaging.NearestNeighbor)
	}
	draw.Draw(s.img, dst, src, image.Point{}, draw.Over)
}

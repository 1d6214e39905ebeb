package chart

import (
	"image/color"
	"math"
	"strconv"

	"MoexLens/internal/model"
)

// Layout constants, in CSS pixels.
const (
	PadTop    = 20.0
	PadBottom = 26.0
	PadLeft   = 12.0
	PadRight  = 12.0

	GridLines      = 5
	MinBodyWidth   = 3.0
	BodyWidthRatio = 0.65
	MinBodyHeight  = 1.0
)

// Palette holds the colors used by the renderer.
type Palette struct {
	Background color.RGBA
	Grid       color.RGBA
	Label      color.RGBA
	Up         color.RGBA
	Down       color.RGBA
}

// DefaultPalette is a light theme.
var DefaultPalette = Palette{
	Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	Grid:       color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff},
	Label:      color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff},
	Up:         color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	Down:       color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

// Renderer paints a RenderWindow. It keeps no state between calls; every
// Render fully redraws the surface.
type Renderer struct {
	Palette     Palette
	Placeholder string
}

func NewRenderer() *Renderer {
	return &Renderer{Palette: DefaultPalette, Placeholder: "no data"}
}

// Render clears s and draws the window: gridlines, candles and the min/max
// price labels. An empty window draws a centered placeholder instead.
func (r *Renderer) Render(s *Surface, w model.RenderWindow) {
	p := r.Palette
	s.Clear(p.Background)

	width, height := s.Width(), s.Height()
	if w.Empty() {
		_, th := TextSize(r.Placeholder)
		s.Text(width/2, (height-th)/2, r.Placeholder, p.Label, AlignCenter)
		return
	}

	plotW := width - PadLeft - PadRight
	plotH := height - PadTop - PadBottom
	span := w.Span
	if span == 0 {
		span = 1
	}
	y := func(price float64) float64 {
		return PadTop + (w.MaxPrice-price)/span*plotH
	}

	for i := 0; i < GridLines; i++ {
		gy := PadTop + plotH*float64(i)/float64(GridLines-1)
		s.FillRect(PadLeft, gy, plotW, 1, p.Grid)
	}

	step := plotW / float64(len(w.Candles))
	bodyW := math.Max(MinBodyWidth, BodyWidthRatio*step)
	for i, c := range w.Candles {
		col := p.Down
		if c.Bullish() {
			col = p.Up
		}
		cx := PadLeft + step*float64(i) + step/2

		yHigh, yLow := y(c.High), y(c.Low)
		s.FillRect(cx-0.5, yHigh, 1, yLow-yHigh, col)

		yOpen, yClose := y(c.Open), y(c.Close)
		top := math.Min(yOpen, yClose)
		bodyH := math.Max(MinBodyHeight, math.Abs(yOpen-yClose))
		s.FillRect(cx-bodyW/2, top, bodyW, bodyH, col)
	}

	s.Text(PadLeft, 4, priceLabel(w.MaxPrice), p.Label, AlignLeft)
	s.Text(PadLeft, height-PadBottom+7, priceLabel(w.MinPrice), p.Label, AlignLeft)
}

func priceLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

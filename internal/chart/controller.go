package chart

import (
	"MoexLens/internal/calculator"
	"MoexLens/internal/model"
	"MoexLens/internal/normalizer"
)

// Controller drives one chart: it owns the surface, the current geometry and
// the last submitted candle sequence, so a resize can redraw without new
// data. A Controller must be used from one goroutine at a time.
type Controller struct {
	surface  *Surface
	renderer *Renderer
	viewport model.ViewportState
	last     []model.Candle
}

// NewController returns a controller with an empty candle slot. A nil
// renderer uses NewRenderer.
func NewController(r *Renderer) *Controller {
	if r == nil {
		r = NewRenderer()
	}
	s := &Surface{}
	vp := Resize(s, model.HostBox{}, 1)
	return &Controller{surface: s, renderer: r, viewport: vp, last: []model.Candle{}}
}

// Submit normalises rows, replaces the candle slot and redraws.
func (c *Controller) Submit(rows []model.CandleRecord) *Surface {
	c.last = normalizer.Normalize(rows)
	return c.draw()
}

// SubmitCandles replaces the slot with already validated candles.
func (c *Controller) SubmitCandles(candles []model.Candle) *Surface {
	c.last = normalizer.Normalize(model.Records(candles))
	return c.draw()
}

// Resize applies new geometry and redraws the last submitted candles.
func (c *Controller) Resize(host model.HostBox, pixelRatio float64) *Surface {
	c.viewport = Resize(c.surface, host, pixelRatio)
	return c.draw()
}

// Window returns the window that the next draw would use.
func (c *Controller) Window() model.RenderWindow {
	return calculator.Select(c.last)
}

func (c *Controller) Viewport() model.ViewportState { return c.viewport }

func (c *Controller) Surface() *Surface { return c.surface }

func (c *Controller) draw() *Surface {
	c.renderer.Render(c.surface, calculator.Select(c.last))
	return c.surface
}

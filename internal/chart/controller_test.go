package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"MoexLens/internal/model"
)

func TestController_ResizeRedrawsLastCandles(t *testing.T) {
	c := NewController(nil)
	rows := model.Records([]model.Candle{
		{Open: 10, High: 25, Low: 5, Close: 20},
	})
	rows = append(rows, model.CandleRecord{Open: model.NumberOf(1)})

	c.Submit(rows)
	assert.Len(t, c.Window().Candles, 1)

	s := c.Resize(model.HostBox{Width: 400, Height: 300}, 1)
	assert.Equal(t, 400, s.Image().Bounds().Dx())
	assert.Equal(t, DefaultPalette.Up, s.Image().RGBAAt(200, 147))
	assert.Equal(t, model.ViewportState{CSSWidth: 400, CSSHeight: 300, DevicePixelRatio: 1}, c.Viewport())
}

func TestController_SubmitReplacesSlot(t *testing.T) {
	c := NewController(nil)
	c.Resize(model.HostBox{Width: 400, Height: 300}, 1)

	c.SubmitCandles([]model.Candle{{Open: 10, High: 25, Low: 5, Close: 20}})
	withCandle := append([]byte(nil), c.Surface().Image().Pix...)

	c.Submit(nil)
	assert.True(t, c.Window().Empty())
	assert.False(t, bytes.Equal(withCandle, c.Surface().Image().Pix))
}

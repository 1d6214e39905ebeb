package calculator

import (
	"math"

	"MoexLens/internal/model"
)

// WindowSize is the maximum number of candles drawn at once.
const WindowSize = 120

// Select takes the most recent WindowSize candles and scans them for the
// high and low. A flat window gets a span of 1 so that vertical scaling never
// divides by zero. An empty input yields an empty window.
func Select(candles []model.Candle) model.RenderWindow {
	n := len(candles)
	if n == 0 {
		return model.RenderWindow{Candles: []model.Candle{}, Span: 1}
	}
	start := n - WindowSize
	if start < 0 {
		start = 0
	}
	window := make([]model.Candle, n-start)
	copy(window, candles[start:])

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, c := range window {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	span := high - low
	if span == 0 {
		span = 1
	}
	return model.RenderWindow{
		Candles:  window,
		MinPrice: low,
		MaxPrice: high,
		Span:     span,
	}
}

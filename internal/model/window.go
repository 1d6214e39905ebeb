package model

// RenderWindow is the slice of candles drawn in one pass together with the
// price range used for vertical scaling. Span is never zero.
type RenderWindow struct {
	Candles  []Candle
	MinPrice float64
	MaxPrice float64
	Span     float64
}

// Empty reports whether there is nothing to draw.
func (w RenderWindow) Empty() bool { return len(w.Candles) == 0 }

// Last returns the most recent candle of the window.
func (w RenderWindow) Last() (Candle, bool) {
	if len(w.Candles) == 0 {
		return Candle{}, false
	}
	return w.Candles[len(w.Candles)-1], true
}

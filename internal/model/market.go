package model

import "math"

// Candle is a single validated OHLC bar. All four prices are finite.
type Candle struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Bullish reports whether the bar closed at or above its open.
func (c Candle) Bullish() bool {
	return c.Close >= c.Open
}

// Valid reports whether every price of the bar is a finite number.
func (c Candle) Valid() bool {
	return finite(c.Open) && finite(c.High) && finite(c.Low) && finite(c.Close)
}

// Record converts the bar back to its boundary form.
func (c Candle) Record() CandleRecord {
	return CandleRecord{
		Open:  NumberOf(c.Open),
		High:  NumberOf(c.High),
		Low:   NumberOf(c.Low),
		Close: NumberOf(c.Close),
	}
}

// CandleRecord is a raw OHLC row as delivered by the data source. Any field
// may be absent, null or malformed.
type CandleRecord struct {
	Begin string `json:"begin,omitempty"`
	Open  Number `json:"open"`
	High  Number `json:"high"`
	Low   Number `json:"low"`
	Close Number `json:"close"`
}

// Records converts validated bars back to boundary records.
func Records(candles []Candle) []CandleRecord {
	out := make([]CandleRecord, len(candles))
	for i, c := range candles {
		out[i] = c.Record()
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Package normalizer turns raw OHLC rows into validated candles.
package normalizer

import "MoexLens/internal/model"

// Report is the outcome of one normalisation pass.
type Report struct {
	Candles []model.Candle
	Kept    int
	Dropped int
}

// Normalize keeps every row whose four prices coerce to finite numbers, in
// input order. Nothing is resampled, gap-filled or deduplicated.
func Normalize(rows []model.CandleRecord) []model.Candle {
	return NormalizeReport(rows).Candles
}

// NormalizeReport is Normalize with counts of kept and dropped rows.
func NormalizeReport(rows []model.CandleRecord) Report {
	out := make([]model.Candle, 0, len(rows))
	for _, row := range rows {
		if c, ok := Candle(row); ok {
			out = append(out, c)
		}
	}
	return Report{
		Candles: out,
		Kept:    len(out),
		Dropped: len(rows) - len(out),
	}
}

// Candle validates a single row.
func Candle(row model.CandleRecord) (model.Candle, bool) {
	open, ok := row.Open.Get()
	if !ok {
		return model.Candle{}, false
	}
	high, ok := row.High.Get()
	if !ok {
		return model.Candle{}, false
	}
	low, ok := row.Low.Get()
	if !ok {
		return model.Candle{}, false
	}
	closePrice, ok := row.Close.Get()
	if !ok {
		return model.Candle{}, false
	}
	return model.Candle{Open: open, High: high, Low: low, Close: closePrice}, true
}

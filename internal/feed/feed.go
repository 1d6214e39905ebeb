// Package feed loads candle and bond documents and turns them into the
// records the chart and yield pipelines consume.
package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MoexLens/internal/model"
	"MoexLens/internal/normalizer"
)

// Snapshot is one load of the feed.
type Snapshot struct {
	Ticker   string
	Rows     []model.CandleRecord
	Candles  []model.Candle
	Dropped  int
	Bonds    []model.BondQuote
	LoadedAt time.Time
}

// Feed pulls a ticker's candles and the bond list from a Source.
type Feed struct {
	Source Source
	Ticker string
	Logger *slog.Logger
}

func NewFeed(source Source, ticker string, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{Source: source, Ticker: ticker, Logger: logger}
}

// Load reads candles for ticker (the feed's default when empty) and the bond
// list. Missing bond data is not an error; the snapshot just has no bonds.
func (f *Feed) Load(ticker string) (*Snapshot, error) {
	if ticker == "" {
		ticker = f.Ticker
	}
	rows, err := f.Source.Candles(ticker)
	if err != nil {
		return nil, fmt.Errorf("load candles %s: %w", ticker, err)
	}
	report := normalizer.NormalizeReport(rows)
	if report.Dropped > 0 {
		f.Logger.Warn("dropped malformed candle rows",
			"source", f.Source.Name(), "ticker", ticker,
			"kept", report.Kept, "dropped", report.Dropped)
	}

	list, err := f.Source.Bonds()
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			return nil, fmt.Errorf("load bonds: %w", err)
		}
		f.Logger.Warn("no bond data", "source", f.Source.Name(), "error", err)
	}

	return &Snapshot{
		Ticker:   ticker,
		Rows:     rows,
		Candles:  report.Candles,
		Dropped:  report.Dropped,
		Bonds:    list,
		LoadedAt: time.Now(),
	}, nil
}

// Bonds loads only the bond list.
func (f *Feed) Bonds() ([]model.BondQuote, error) {
	list, err := f.Source.Bonds()
	if err != nil {
		return nil, fmt.Errorf("load bonds: %w", err)
	}
	return list, nil
}

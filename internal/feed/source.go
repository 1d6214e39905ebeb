package feed

import (
	"errors"

	"MoexLens/internal/model"
)

// ErrNoData is returned when a source has nothing for the request.
var ErrNoData = errors.New("no data")

// Source delivers raw market records.
type Source interface {
	Candles(ticker string) ([]model.CandleRecord, error)
	Bonds() ([]model.BondQuote, error)
	Name() string
}

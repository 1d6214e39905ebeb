package feed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"MoexLens/internal/model"
)

// TickerPlaceholder in CandlesPath is replaced by the requested ticker.
const TickerPlaceholder = "{ticker}"

// FileSource reads documents already delivered to disk.
type FileSource struct {
	CandlesPath string
	BondsPath   string
	// Now bounds candle dates; rows dated after today are dropped.
	Now func() time.Time
}

func NewFileSource(candlesPath, bondsPath string) *FileSource {
	return &FileSource{CandlesPath: candlesPath, BondsPath: bondsPath, Now: time.Now}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Candles(ticker string) ([]model.CandleRecord, error) {
	if f.CandlesPath == "" {
		return nil, fmt.Errorf("candles path not configured: %w", ErrNoData)
	}
	path := strings.ReplaceAll(f.CandlesPath, TickerPlaceholder, strings.ToUpper(ticker))
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	rows, err := ParseCandles(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Now != nil {
		rows = UpToDate(rows, f.Now())
	}
	return rows, nil
}

func (f *FileSource) Bonds() ([]model.BondQuote, error) {
	if f.BondsPath == "" {
		return nil, fmt.Errorf("bonds path not configured: %w", ErrNoData)
	}
	data, err := readDocument(f.BondsPath)
	if err != nil {
		return nil, err
	}
	list, err := ParseBonds(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.BondsPath, err)
	}
	return list, nil
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// UpToDate drops rows whose begin date is after today. Rows without a
// parseable date are kept.
func UpToDate(rows []model.CandleRecord, now time.Time) []model.CandleRecord {
	today := model.DateOf(now)
	out := make([]model.CandleRecord, 0, len(rows))
	for _, r := range rows {
		d := model.ParseDate(r.Begin)
		if !d.IsZero() && d.After(today.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

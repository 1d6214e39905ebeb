package feed

import (
	"time"

	"MoexLens/internal/model"
)

// MockSource returns fixed data for development and tests.
type MockSource struct {
	BasePrice  float64
	Count      int
	CandleRows []model.CandleRecord
	BondQuotes []model.BondQuote
	CandlesErr error
	BondsErr   error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Candles(_ string) ([]model.CandleRecord, error) {
	if m.CandlesErr != nil {
		return nil, m.CandlesErr
	}
	if m.CandleRows != nil {
		return m.CandleRows, nil
	}
	return generateMockCandles(m.BasePrice, m.Count), nil
}

func (m *MockSource) Bonds() ([]model.BondQuote, error) {
	if m.BondsErr != nil {
		return nil, m.BondsErr
	}
	return m.BondQuotes, nil
}

func generateMockCandles(basePrice float64, count int) []model.CandleRecord {
	if basePrice == 0 {
		basePrice = 100
	}
	start := time.Now().AddDate(0, 0, -count)
	rows := make([]model.CandleRecord, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		open := p * 0.999
		if i%3 == 0 {
			open = p * 1.002
		}
		rows[i] = model.CandleRecord{
			Begin: start.AddDate(0, 0, i).Format("2006-01-02 15:04:05"),
			Open:  model.NumberOf(open),
			High:  model.NumberOf(p * 1.005),
			Low:   model.NumberOf(p * 0.995),
			Close: model.NumberOf(p),
		}
	}
	return rows
}

package normalizer

import (
	"encoding/json"
	"reflect"
	"testing"

	"MoexLens/internal/model"
)

const mixedRows = `[
	{"begin": "2026-01-05 10:00:00", "open": 100, "high": 105, "low": 99, "close": 104},
	{"open": "101,5", "high": "106", "low": "100.25", "close": 102},
	{"open": null, "high": 1, "low": 1, "close": 1},
	{"open": 1, "high": 1, "low": 1},
	{"open": "abc", "high": 1, "low": 1, "close": 1},
	{"open": 1, "high": {}, "low": 1, "close": 1},
	{"open": 103, "high": 103, "low": 103, "close": 103}
]`

func decode(t *testing.T, doc string) []model.CandleRecord {
	t.Helper()
	var rows []model.CandleRecord
	if err := json.Unmarshal([]byte(doc), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rows
}

func TestNormalize_FiltersInvalidRows(t *testing.T) {
	rows := decode(t, mixedRows)
	got := Normalize(rows)

	want := []model.Candle{
		{Open: 100, High: 105, Low: 99, Close: 104},
		{Open: 101.5, High: 106, Low: 100.25, Close: 102},
		{Open: 103, High: 103, Low: 103, Close: 103},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected candles:\n got %+v\nwant %+v", got, want)
	}
}

func TestNormalizeReport_Counts(t *testing.T) {
	rows := decode(t, mixedRows)
	r := NormalizeReport(rows)
	if r.Kept != 3 || r.Dropped != 4 {
		t.Errorf("expected kept=3 dropped=4, got kept=%d dropped=%d", r.Kept, r.Dropped)
	}
	if r.Kept+r.Dropped != len(rows) {
		t.Error("counts must add up to the input length")
	}
	if len(r.Candles) > len(rows) {
		t.Error("output cannot be longer than input")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(decode(t, mixedRows))
	second := Normalize(model.Records(first))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestNormalize_Empty(t *testing.T) {
	got := Normalize(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestNormalize_AllFinite(t *testing.T) {
	for _, c := range Normalize(decode(t, mixedRows)) {
		if !c.Valid() {
			t.Errorf("non-finite candle leaked: %+v", c)
		}
	}
}

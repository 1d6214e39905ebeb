package calculator

import (
	"testing"
	"time"

	"MoexLens/internal/model"
)

func TestMonthsToMaturity(t *testing.T) {
	today := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		maturity string
		want     int
	}{
		{"2026-03-15", -1},
		{"2025-12-31", -1},
		{"2026-03-16", 0},
		{"2026-04-14", 0},
		{"2026-04-15", 1},
		{"2027-03-15", 12},
		{"2027-03-14", 11},
		{"2031-06-20", 63},
	}
	for _, tt := range tests {
		got := MonthsToMaturity(model.ParseDate(tt.maturity), today)
		if got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.maturity, tt.want, got)
		}
	}
}

func TestDaysToMaturity(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysToMaturity(model.ParseDate("2026-01-31"), now); got != 30 {
		t.Errorf("expected 30, got %d", got)
	}
	if got := DaysToMaturity(model.ParseDate("2025-12-31"), now); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

package calculator

import (
	"testing"

	"MoexLens/internal/model"
)

func series(n int) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		p := float64(100 + i)
		out[i] = model.Candle{Open: p, High: p + 2, Low: p - 1, Close: p + 1}
	}
	return out
}

func TestSelect_TrailingWindow(t *testing.T) {
	for _, n := range []int{1, 50, 119, 120, 121, 300} {
		in := series(n)
		w := Select(in)
		want := n
		if want > WindowSize {
			want = WindowSize
		}
		if len(w.Candles) != want {
			t.Fatalf("n=%d: expected %d candles, got %d", n, want, len(w.Candles))
		}
		offset := n - want
		for i, c := range w.Candles {
			if c != in[offset+i] {
				t.Fatalf("n=%d: candle %d out of order", n, i)
			}
		}
	}
}

func TestSelect_RangeOverWindowOnly(t *testing.T) {
	in := series(200)
	// Outside the trailing window; must not affect the range.
	in[0].High = 10000
	in[1].Low = -10000

	w := Select(in)
	wantLow := in[80].Low
	wantHigh := in[199].High
	if w.MinPrice != wantLow {
		t.Errorf("expected min %.2f, got %.2f", wantLow, w.MinPrice)
	}
	if w.MaxPrice != wantHigh {
		t.Errorf("expected max %.2f, got %.2f", wantHigh, w.MaxPrice)
	}
	if w.Span != wantHigh-wantLow {
		t.Errorf("expected span %.2f, got %.2f", wantHigh-wantLow, w.Span)
	}
}

func TestSelect_FlatSpan(t *testing.T) {
	flat := []model.Candle{
		{Open: 50, High: 50, Low: 50, Close: 50},
		{Open: 50, High: 50, Low: 50, Close: 50},
	}
	w := Select(flat)
	if w.Span != 1 {
		t.Errorf("expected span 1 for flat window, got %v", w.Span)
	}
	if w.MinPrice != 50 || w.MaxPrice != 50 {
		t.Errorf("unexpected range %v..%v", w.MinPrice, w.MaxPrice)
	}
}

func TestSelect_Empty(t *testing.T) {
	w := Select(nil)
	if !w.Empty() {
		t.Fatal("expected empty window")
	}
	if _, ok := w.Last(); ok {
		t.Error("empty window has no last candle")
	}
}

func TestSelect_DoesNotAlias(t *testing.T) {
	in := series(3)
	w := Select(in)
	w.Candles[0].Open = -1
	if in[0].Open == -1 {
		t.Error("window must not share storage with the input")
	}
}

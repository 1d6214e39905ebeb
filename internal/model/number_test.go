package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"101.5", 101.5, true},
		{"101,5", 101.5, true},
		{" 42 ", 42, true},
		{"-3.25", -3.25, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Infinity", 0, false},
		{"1.234.5", 0, false},
		{"1e400", 0, false},
		{"-1e400", 0, false},
		{"0x1p3", 0, false},
		{"1_000", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n := ParseNumber(tt.in)
			v, ok := n.Get()
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.InDelta(t, tt.want, v, 1e-9)
			}
		})
	}
}

func TestNumberUnmarshalJSON(t *testing.T) {
	var rec CandleRecord
	doc := `{"open": 100, "high": "105,5", "low": null, "close": true}`
	require.NoError(t, json.Unmarshal([]byte(doc), &rec))

	v, ok := rec.Open.Get()
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = rec.High.Get()
	assert.True(t, ok)
	assert.Equal(t, 105.5, v)

	_, ok = rec.Low.Get()
	assert.False(t, ok, "null must be invalid")
	_, ok = rec.Close.Get()
	assert.False(t, ok, "bool must be invalid")
}

func TestNumberUnmarshalAbsentField(t *testing.T) {
	var rec CandleRecord
	require.NoError(t, json.Unmarshal([]byte(`{"open": 1, "high": 2, "low": 0.5}`), &rec))
	assert.False(t, rec.Close.Valid)
}

func TestNumberMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NumberOf(1.25), B: Number{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1.25, "b": null}`, string(out))
}

func TestNumberOfRejectsNonFinite(t *testing.T) {
	zero := 0.0
	assert.False(t, NumberOf(1/zero).Valid)
	assert.True(t, NumberOf(0).Valid)
}

func TestParseNumber_HugeExponentIsCheap(t *testing.T) {
	for _, doc := range []string{`"1e20000000"`, `1e2000000000`, `"-1,5e999999999"`} {
		var n Number
		start := time.Now()
		require.NoError(t, json.Unmarshal([]byte(doc), &n))
		assert.False(t, n.Valid, doc)
		assert.Less(t, time.Since(start), 100*time.Millisecond, doc)
	}
}

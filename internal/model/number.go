package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a numeric field as it arrives on the wire: a JSON number, a
// numeric string using either "." or "," as the decimal separator, or null.
// Valid is false when the field was absent, null or could not be coerced to a
// finite value.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf wraps v. Non-finite values produce an invalid Number.
func NumberOf(v float64) Number {
	if !finite(v) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// ParseNumber coerces s to a Number. It never fails; unparseable input yields
// an invalid Number.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	// ParseFloat also takes hex floats and digit separators; reject them.
	if strings.ContainsAny(s, "xXpP_") {
		return Number{}
	}
	s = strings.ReplaceAll(s, ",", ".")
	// Overflowing exponents come back as ±Inf with an error immediately.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}
	}
	return NumberOf(f)
}

// Get returns the value and whether it is usable.
func (n Number) Get() (float64, bool) {
	if !n.Valid || !finite(n.Value) {
		return 0, false
	}
	return n.Value, true
}

// Positive reports whether the number is usable and strictly greater than 0.
func (n Number) Positive() bool {
	v, ok := n.Get()
	return ok && v > 0
}

// UnmarshalJSON accepts numbers, numeric strings and null. Values of any other
// JSON type decode to an invalid Number rather than an error so that one bad
// field never rejects a whole document.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Number{}
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	*n = ParseNumber(string(data))
	return nil
}

// MarshalJSON writes the value as a JSON number, or null when invalid.
func (n Number) MarshalJSON() ([]byte, error) {
	v, ok := n.Get()
	if !ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of an undefined value.
const Placeholder = "н/д"

// FormatDecimal renders v with two fractional digits and a comma separator.
func FormatDecimal(v float64) string {
	if !finite(v) {
		return Placeholder
	}
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

// FormatOptional renders a derived value, or Placeholder when it is undefined.
func FormatOptional(o Optional) string {
	v, ok := o.Get()
	if !ok {
		return Placeholder
	}
	return FormatDecimal(v)
}

// FormatNumber renders a raw input value, or Placeholder when it is unusable.
func FormatNumber(n Number) string {
	v, ok := n.Get()
	if !ok {
		return Placeholder
	}
	return FormatDecimal(v)
}

// Package bonds filters, classifies and tabulates bond quotes.
package bonds

import (
	"strings"

	"MoexLens/internal/model"
)

var couponTypeLabels = map[model.CouponType]string{
	model.CouponFixed:   "фиксированный",
	model.CouponFloat:   "плавающий",
	model.CouponNone:    "без купона",
	model.CouponUnknown: "неизвестно",
}

var currencyLabels = map[string]string{
	"RUB": "руб",
	"RUR": "руб",
	"SUR": "руб",
	"USD": "долл. США",
	"EUR": "евро",
	"CNY": "юань",
	"GBP": "фунт стерл.",
	"CHF": "швейц. франк",
	"JPY": "иена",
}

var currencyAliases = map[string]string{
	"RUR": "RUB",
	"SUR": "RUB",
}

// CouponTypeLabel is the display name of t. Unrecognised types read
// "неизвестно".
func CouponTypeLabel(t model.CouponType) string {
	if t == "" {
		return model.Placeholder
	}
	if label, ok := couponTypeLabels[t]; ok {
		return label
	}
	return couponTypeLabels[model.CouponUnknown]
}

// CurrencyLabel is the display name of an ISO currency code.
func CurrencyLabel(code string) string {
	if code == "" {
		return model.Placeholder
	}
	if label, ok := currencyLabels[code]; ok {
		return label
	}
	return "валюта " + code
}

// NormalizeCurrency upper-cases code and folds the legacy rouble codes into
// RUB.
func NormalizeCurrency(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := currencyAliases[upper]; ok {
		return alias
	}
	return upper
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

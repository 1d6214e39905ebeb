package calculator

import (
	"time"

	"MoexLens/internal/model"
)

// MonthsToMaturity counts whole calendar months between today and maturity.
// It returns -1 when the bond has already matured and 0 when the maturity is
// unknown.
func MonthsToMaturity(maturity model.Date, now time.Time) int {
	if maturity.IsZero() {
		return 0
	}
	today := model.DateOf(now)
	if !maturity.After(today.Time) {
		return -1
	}
	months := (maturity.Year()-today.Year())*12 + int(maturity.Month()) - int(today.Month())
	if maturity.Day() < today.Day() {
		months--
	}
	return months
}

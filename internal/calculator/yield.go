package calculator

import (
	"math"
	"time"

	"MoexLens/internal/model"
)

const daysPerYear = 365.0

// Clock returns the current instant.
type Clock func() time.Time

// YieldCalculator derives coupon yield and total yield to maturity. The clock
// is injected so that results are reproducible.
type YieldCalculator struct {
	now Clock
}

// NewYieldCalculator returns a calculator reading time from now. A nil clock
// falls back to time.Now.
func NewYieldCalculator(now Clock) *YieldCalculator {
	if now == nil {
		now = time.Now
	}
	return &YieldCalculator{now: now}
}

// Now returns the calculator's current instant.
func (c *YieldCalculator) Now() time.Time { return c.now() }

// Evaluate computes both yields for b.
func (c *YieldCalculator) Evaluate(b *model.BondQuote) model.BondYield {
	return model.BondYield{
		CouponYield: CouponYield(b),
		TotalYield:  TotalYield(b, c.now()),
	}
}

// CouponYield is the coupon yield of b in percent.
func (c *YieldCalculator) CouponYield(b *model.BondQuote) model.Optional {
	return CouponYield(b)
}

// TotalYield is the simple yield to maturity of b in percent.
func (c *YieldCalculator) TotalYield(b *model.BondQuote) model.Optional {
	return TotalYield(b, c.now())
}

// CouponsPerYear prefers the coupon period in days and falls back to the
// declared frequency.
func CouponsPerYear(b *model.BondQuote) model.Optional {
	if b.CouponPeriod.Positive() {
		period, _ := b.CouponPeriod.Get()
		return model.Some(daysPerYear / period)
	}
	if b.CouponFrequency.Positive() {
		freq, _ := b.CouponFrequency.Get()
		return model.Some(freq)
	}
	if b.CouponPeriod.Valid || b.CouponFrequency.Valid {
		return model.Inapplicable()
	}
	return model.None()
}

// PriceMoney converts the quoted price (percent of face) to money.
func PriceMoney(b *model.BondQuote) model.Optional {
	face, ok := b.FaceValue.Get()
	if !ok {
		return model.None()
	}
	price, ok := b.CurrentPrice.Get()
	if !ok {
		return model.None()
	}
	return model.Some(face * price / 100)
}

// AnnualCouponAmount is the next coupon payment scaled to a year.
func AnnualCouponAmount(b *model.BondQuote) model.Optional {
	coupon, ok := b.NextCoupon.Get()
	if !ok {
		return model.None()
	}
	perYear := CouponsPerYear(b)
	n, ok := perYear.Get()
	if !ok {
		return perYear
	}
	return model.Some(coupon * n)
}

// CouponYield is the annual coupon amount relative to the money price, in
// percent.
func CouponYield(b *model.BondQuote) model.Optional {
	price, annual, res, ok := yieldInputs(b)
	if !ok {
		return res
	}
	return model.Some(annual / price * 100)
}

// TotalYield adds the straight-line gain from price to face over the
// remaining life to the annual coupon, relative to the money price. It is
// undefined once the bond has matured.
func TotalYield(b *model.BondQuote, now time.Time) model.Optional {
	price, annual, res, ok := yieldInputs(b)
	if !ok {
		return res
	}
	if b.MaturityDate.IsZero() {
		return model.None()
	}
	face, ok := b.FaceValue.Get()
	if !ok {
		return model.None()
	}
	days := DaysToMaturity(b.MaturityDate, now)
	if days <= 0 {
		return model.Inapplicable()
	}
	years := float64(days) / daysPerYear
	gain := (face - price) / years
	return model.Some((annual + gain) / price * 100)
}

// DaysToMaturity is the number of whole days from now until maturity, rounded
// down. Negative once the maturity has passed.
func DaysToMaturity(maturity model.Date, now time.Time) int {
	return int(math.Floor(maturity.Sub(now).Hours() / 24))
}

func yieldInputs(b *model.BondQuote) (price, annual float64, res model.Optional, ok bool) {
	pm := PriceMoney(b)
	price, ok = pm.Get()
	if !ok {
		return 0, 0, pm, false
	}
	am := AnnualCouponAmount(b)
	annual, ok = am.Get()
	if !ok {
		return 0, 0, am, false
	}
	if price <= 0 {
		return 0, 0, model.Inapplicable(), false
	}
	return price, annual, model.Optional{}, true
}

package bonds

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"MoexLens/internal/calculator"
	"MoexLens/internal/model"
)

// MaturityDelta is a span of time to maturity in whole years and months.
type MaturityDelta struct {
	Years  int `json:"years" yaml:"years"`
	Months int `json:"months" yaml:"months"`
}

func (d MaturityDelta) TotalMonths() int { return d.Years*12 + d.Months }

// Filters narrows a bond list. Zero-valued fields do not filter.
type Filters struct {
	MaturityFrom    *MaturityDelta   `json:"maturity_from,omitempty"`
	MaturityTo      *MaturityDelta   `json:"maturity_to,omitempty"`
	CouponType      model.CouponType `json:"coupon_type,omitempty"`
	BondKind        model.BondKind   `json:"bond_type,omitempty"`
	CouponFrequency int              `json:"coupon_frequency,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	HasAmortization *bool            `json:"has_amortization,omitempty"`
	HasOffer        *bool            `json:"has_offer,omitempty"`
}

var ErrInvalidFilter = errors.New("invalid bond filter")

// Validate rejects inverted maturity windows and unsupported enum values.
func (f Filters) Validate() error {
	if f.MaturityFrom != nil && f.MaturityTo != nil && f.MaturityFrom.TotalMonths() > f.MaturityTo.TotalMonths() {
		return fmt.Errorf("%w: maturity_from must be <= maturity_to", ErrInvalidFilter)
	}
	for _, d := range []*MaturityDelta{f.MaturityFrom, f.MaturityTo} {
		if d != nil && (d.Years < 0 || d.Months < 0 || d.Months > 11) {
			return fmt.Errorf("%w: maturity %dy%dm out of range", ErrInvalidFilter, d.Years, d.Months)
		}
	}
	switch f.CouponType {
	case "", model.CouponFixed, model.CouponFloat, model.CouponNone:
	default:
		return fmt.Errorf("%w: coupon_type %q", ErrInvalidFilter, f.CouponType)
	}
	switch f.BondKind {
	case "", model.KindOFZ, model.KindMunicipal, model.KindCorporate:
	default:
		return fmt.Errorf("%w: bond_type %q", ErrInvalidFilter, f.BondKind)
	}
	if f.CouponFrequency < 0 {
		return fmt.Errorf("%w: coupon_frequency %d", ErrInvalidFilter, f.CouponFrequency)
	}
	return nil
}

// Filter returns the bonds matching f, in input order. When a maturity
// window is set, bonds without a maturity date or already matured are
// dropped.
func Filter(bonds []model.BondQuote, f Filters, now time.Time) []model.BondQuote {
	currency := ""
	if f.Currency != "" {
		currency = NormalizeCurrency(f.Currency)
	}

	out := make([]model.BondQuote, 0, len(bonds))
	for _, b := range bonds {
		if f.MaturityFrom != nil || f.MaturityTo != nil {
			if b.MaturityDate.IsZero() {
				continue
			}
			months := calculator.MonthsToMaturity(b.MaturityDate, now)
			if months < 0 {
				continue
			}
			if f.MaturityFrom != nil && months < f.MaturityFrom.TotalMonths() {
				continue
			}
			if f.MaturityTo != nil && months > f.MaturityTo.TotalMonths() {
				continue
			}
		}
		if currency != "" && NormalizeCurrency(b.Currency) != currency {
			continue
		}
		if f.CouponFrequency > 0 {
			freq, ok := b.CouponFrequency.Get()
			if !ok || freq != float64(f.CouponFrequency) {
				continue
			}
		}
		if f.CouponType != "" && b.CouponType != f.CouponType {
			continue
		}
		if f.BondKind != "" && !hasKind(&b, f.BondKind) {
			continue
		}
		if f.HasAmortization != nil && b.HasAmortization != *f.HasAmortization {
			continue
		}
		if f.HasOffer != nil && b.HasOffer != *f.HasOffer {
			continue
		}
		out = append(out, b)
	}
	return out
}

func hasKind(b *model.BondQuote, k model.BondKind) bool {
	switch k {
	case model.KindOFZ:
		return b.IsOFZ
	case model.KindMunicipal:
		return b.IsMunicipal
	case model.KindCorporate:
		return b.IsCorporate
	}
	return false
}

// SortByCouponYield orders bonds by coupon yield, highest first. Bonds
// without a yield go last. The sort is stable.
func SortByCouponYield(bonds []model.BondQuote) {
	type ranked struct {
		bond  model.BondQuote
		yield float64
		ok    bool
	}
	rs := make([]ranked, len(bonds))
	for i := range bonds {
		y, ok := calculator.CouponYield(&bonds[i]).Get()
		rs[i] = ranked{bond: bonds[i], yield: y, ok: ok}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].ok != rs[j].ok {
			return rs[i].ok
		}
		return rs[i].yield > rs[j].yield
	})
	for i := range rs {
		bonds[i] = rs[i].bond
	}
}

// TopByCouponYield returns at most limit bonds with the highest coupon
// yield. A non-positive limit keeps all. The input is not modified.
func TopByCouponYield(bonds []model.BondQuote, limit int) []model.BondQuote {
	out := append([]model.BondQuote(nil), bonds...)
	SortByCouponYield(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortByMaturity orders bonds by maturity date, earliest first, unknown
// dates last.
func SortByMaturity(bonds []model.BondQuote) {
	sort.SliceStable(bonds, func(i, j int) bool {
		di, dj := bonds[i].MaturityDate, bonds[j].MaturityDate
		if di.IsZero() != dj.IsZero() {
			return !di.IsZero()
		}
		return di.Before(dj.Time)
	})
}

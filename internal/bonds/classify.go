package bonds

import (
	"strings"

	"MoexLens/internal/model"
)

var (
	noneMarkers  = []string{"безкупон", "бескупон", "zero", "no coupon", "нул"}
	floatMarkers = []string{
		"перем", "плав", "float", "variable", "индекс", "инфля",
		"ruonia", "mosprime", "ключ", "key rate", "link", "rate",
	}
	fixedMarkers = []string{"фикс", "fixed", "пост", "constant"}
)

// DetectCouponType infers the coupon type from free-form descriptions such as
// the exchange's BONDTYPE and COUPONTYPE columns. Markers are checked in the
// order none, float, fixed. Without a match a missing or zero coupon rate
// means no coupon.
func DetectCouponType(descriptions []string, couponPercent model.Number) model.CouponType {
	parts := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))

	if text != "" {
		switch {
		case containsAny(text, noneMarkers):
			return model.CouponNone
		case containsAny(text, floatMarkers):
			return model.CouponFloat
		case containsAny(text, fixedMarkers):
			return model.CouponFixed
		}
	}

	rate, ok := couponPercent.Get()
	if !ok || rate == 0 {
		return model.CouponNone
	}
	return model.CouponUnknown
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Classification is the issuer class flags of one security.
type Classification struct {
	OFZ       bool
	Municipal bool
	Corporate bool
}

// Classify maps a SECID and exchange SECTYPE code to issuer class flags.
// Anything that is neither federal nor municipal is treated as corporate.
func Classify(secID, secType string) Classification {
	st := strings.ToUpper(strings.TrimSpace(secType))
	c := Classification{
		OFZ:       strings.HasPrefix(secID, "SU") || st == "3" || st == "5",
		Municipal: st == "4" || st == "C",
		Corporate: st == "6" || st == "7" || st == "8",
	}
	if !c.OFZ && !c.Municipal && !c.Corporate {
		c.Corporate = true
	}
	return c
}

// Apply copies the flags onto b.
func (c Classification) Apply(b *model.BondQuote) {
	b.IsOFZ = c.OFZ
	b.IsMunicipal = c.Municipal
	b.IsCorporate = c.Corporate
}

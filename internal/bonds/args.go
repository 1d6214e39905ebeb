package bonds

import (
	"fmt"
	"strconv"
	"strings"

	"MoexLens/internal/model"
)

// MaxLimit caps the number of bonds a single report lists.
const MaxLimit = 100

// FilterUsage lists the arguments ParseFilterArgs understands.
const FilterUsage = "years_from= months_from= years_to= months_to= type=ofz|municipal|corporate " +
	"coupon=fixed|float|none freq= currency= amort=yes|no offer=yes|no limit=; any resets a filter"

// ParseFilterArgs applies key=value arguments on top of base and returns the
// resulting filters and limit. A bare integer sets the limit. A non-positive
// returned limit means the caller's default. base is never modified.
func ParseFilterArgs(args []string, base Filters) (Filters, int, error) {
	f := base
	f.MaturityFrom = copyDelta(base.MaturityFrom)
	f.MaturityTo = copyDelta(base.MaturityTo)
	limit := 0

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if _, err := strconv.Atoi(arg); err != nil {
				return base, 0, fmt.Errorf("%w: unexpected argument %q", ErrInvalidFilter, arg)
			}
			key, value = "limit", arg
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		reset := strings.EqualFold(value, "any")

		var err error
		switch key {
		case "years_from", "months_from":
			f.MaturityFrom, err = setDelta(f.MaturityFrom, key, value, reset)
		case "years_to", "months_to":
			f.MaturityTo, err = setDelta(f.MaturityTo, key, value, reset)
		case "type", "bond_type":
			f.BondKind = model.BondKind(strings.ToLower(value))
			if reset {
				f.BondKind = ""
			}
		case "coupon", "coupon_type":
			f.CouponType = model.CouponType(strings.ToLower(value))
			if reset {
				f.CouponType = ""
			}
		case "freq", "coupon_frequency":
			f.CouponFrequency = 0
			if !reset {
				f.CouponFrequency, err = atoi(key, value)
			}
		case "currency":
			f.Currency = strings.ToUpper(value)
			if reset {
				f.Currency = ""
			}
		case "amort", "has_amortization":
			f.HasAmortization, err = parseFlag(key, value)
		case "offer", "has_offer":
			f.HasOffer, err = parseFlag(key, value)
		case "limit":
			limit, err = atoi(key, value)
			if err == nil && (limit < 1 || limit > MaxLimit) {
				err = fmt.Errorf("%w: limit must be in [1, %d]", ErrInvalidFilter, MaxLimit)
			}
		default:
			err = fmt.Errorf("%w: unknown argument %q", ErrInvalidFilter, key)
		}
		if err != nil {
			return base, 0, err
		}
	}

	if err := f.Validate(); err != nil {
		return base, 0, err
	}
	return f, limit, nil
}

func copyDelta(d *MaturityDelta) *MaturityDelta {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func setDelta(d *MaturityDelta, key, value string, reset bool) (*MaturityDelta, error) {
	if reset {
		return nil, nil
	}
	n, err := atoi(key, value)
	if err != nil {
		return d, err
	}
	if d == nil {
		d = &MaturityDelta{}
	}
	if strings.HasPrefix(key, "years") {
		d.Years = n
	} else {
		d.Months = n
	}
	return d, nil
}

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidFilter, key)
	}
	return n, nil
}

// parseFlag reads yes/no in English or Russian; any clears the filter.
func parseFlag(key, value string) (*bool, error) {
	switch strings.ToLower(value) {
	case "any":
		return nil, nil
	case "yes", "y", "true", "1", "да":
		v := true
		return &v, nil
	case "no", "n", "false", "0", "нет":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("%w: %s must be yes, no or any", ErrInvalidFilter, key)
}

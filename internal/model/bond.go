package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// CouponType classifies how a bond's coupon is set.
type CouponType string

const (
	CouponFixed   CouponType = "fixed"
	CouponFloat   CouponType = "float"
	CouponNone    CouponType = "none"
	CouponUnknown CouponType = "unknown"
)

// Rank orders coupon types by how much information they carry. When two
// sources disagree the higher rank wins.
func (t CouponType) Rank() int {
	switch t {
	case CouponFloat:
		return 3
	case CouponFixed:
		return 2
	case CouponNone:
		return 1
	default:
		return 0
	}
}

// BondKind is the issuer class of a bond.
type BondKind string

const (
	KindOFZ       BondKind = "ofz"
	KindMunicipal BondKind = "municipal"
	KindCorporate BondKind = "corporate"
	KindUnknown   BondKind = "unknown"
)

// BondQuote is one bond with its reference attributes and current quote.
// CurrentPrice is a percentage of FaceValue. CouponPeriod is in days.
type BondQuote struct {
	SecID           string     `json:"secid"`
	Name            string     `json:"name"`
	MaturityDate    Date       `json:"maturity_date"`
	CouponType      CouponType `json:"coupon_type"`
	CouponPeriod    Number     `json:"coupon_period"`
	CouponFrequency Number     `json:"coupon_frequency"`
	NextCoupon      Number     `json:"next_coupon"`
	FaceValue       Number     `json:"face_value"`
	CurrentPrice    Number     `json:"current_price"`
	Currency        string     `json:"currency"`
	IsOFZ           bool       `json:"is_ofz"`
	IsMunicipal     bool       `json:"is_municipal"`
	IsCorporate     bool       `json:"is_corporate"`
	HasAmortization bool       `json:"has_amortization"`
	HasOffer        bool       `json:"has_offer"`
}

// Kind returns the issuer class implied by the classification flags.
func (b *BondQuote) Kind() BondKind {
	switch {
	case b.IsOFZ:
		return KindOFZ
	case b.IsMunicipal:
		return KindMunicipal
	case b.IsCorporate:
		return KindCorporate
	default:
		return KindUnknown
	}
}

// DateLayout is the calendar date format used by the exchange.
const DateLayout = "2006-01-02"

// Date is a calendar date at midnight UTC. The zero value means unknown.
type Date struct {
	time.Time
}

// ParseDate parses s in DateLayout. Empty or malformed input, including the
// exchange's "0000-00-00", yields the zero Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// BondYield holds the derived yields of one bond, in percent.
type BondYield struct {
	CouponYield Optional `json:"coupon_yield"`
	TotalYield  Optional `json:"total_yield"`
}

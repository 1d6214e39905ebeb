package feed

import (
	"encoding/json"
	"strings"

	"MoexLens/internal/bonds"
	"MoexLens/internal/model"
)

// ParseBonds decodes a bond document. It accepts a bare array of bond
// records or the exchange's securities and marketdata tables.
func ParseBonds(data []byte) ([]model.BondQuote, error) {
	table, items, err := decodeTable(data, "securities")
	if err != nil {
		return nil, err
	}
	if table == nil {
		out := make([]model.BondQuote, 0, len(items))
		for _, item := range items {
			var row issRow
			// A non-object element carries no bond.
			if err := json.Unmarshal(item, &row); err != nil {
				continue
			}
			if b := bondFromRecord(row); b.SecID != "" {
				out = append(out, b)
			}
		}
		return out, nil
	}

	market := map[string]issRow{}
	if mt, _, err := decodeTable(data, "marketdata"); err == nil && mt != nil {
		for _, row := range mt.rows() {
			if id := row.str("SECID"); id != "" {
				market[id] = row
			}
		}
	}
	return mergeSecurities(table.rows(), market), nil
}

// bondFromRecord reads one flat bond record. Each field is decoded on its
// own, so a mistyped field is lost without taking the record with it.
func bondFromRecord(row issRow) model.BondQuote {
	b := model.BondQuote{
		SecID:           row.str("secid"),
		Name:            row.str("name"),
		MaturityDate:    model.ParseDate(row.str("maturity_date")),
		CouponType:      couponType(row.str("coupon_type")),
		CouponPeriod:    row.num("coupon_period"),
		CouponFrequency: row.num("coupon_frequency"),
		NextCoupon:      row.num("next_coupon"),
		FaceValue:       row.num("face_value"),
		CurrentPrice:    row.num("current_price"),
		Currency:        row.str("currency"),
		IsOFZ:           row.truthy("is_ofz"),
		IsMunicipal:     row.truthy("is_municipal"),
		IsCorporate:     row.truthy("is_corporate"),
		HasAmortization: row.truthy("has_amortization"),
		HasOffer:        row.truthy("has_offer"),
	}
	if b.Currency == "" {
		b.Currency = "RUB"
	}
	return b
}

func couponType(s string) model.CouponType {
	switch t := model.CouponType(strings.ToLower(s)); t {
	case model.CouponFixed, model.CouponFloat, model.CouponNone:
		return t
	case "":
		return ""
	default:
		return model.CouponUnknown
	}
}

func bondFromRow(row issRow, market issRow) model.BondQuote {
	secID := row.str("SECID")
	b := model.BondQuote{
		SecID:           secID,
		Name:            row.str("SHORTNAME"),
		MaturityDate:    model.ParseDate(row.str("MATDATE")),
		CouponFrequency: row.num("COUPONFREQUENCY"),
		CouponPeriod:    row.num("COUPONPERIOD"),
		NextCoupon:      row.num("COUPONVALUE"),
		FaceValue:       row.num("FACEVALUE"),
		Currency:        row.str("FACEUNIT"),
		HasAmortization: row.truthy("AMORTIZATION"),
		HasOffer:        row.truthy("OFFERDATE"),
	}
	if b.Name == "" {
		b.Name = secID
	}
	if b.Currency == "" {
		b.Currency = "RUB"
	}
	b.CouponType = bonds.DetectCouponType(
		[]string{row.str("BONDTYPE"), row.str("COUPONTYPE")},
		row.num("COUPONPERCENT"),
	)
	bonds.Classify(secID, row.str("SECTYPE")).Apply(&b)

	if market != nil {
		for _, col := range []string{"LAST", "MARKETPRICE", "WAPRICE"} {
			if market.has(col) {
				b.CurrentPrice = market.num(col)
				break
			}
		}
	}
	return b
}

// mergeSecurities collapses rows sharing a SECID; the exchange lists one row
// per board. Attributes missing from the first row are filled from later
// ones and the most specific coupon type wins.
func mergeSecurities(rows []issRow, market map[string]issRow) []model.BondQuote {
	order := make([]string, 0, len(rows))
	byID := make(map[string]*model.BondQuote, len(rows))

	for _, row := range rows {
		secID := row.str("SECID")
		if secID == "" {
			continue
		}
		b := bondFromRow(row, market[secID])
		existing, ok := byID[secID]
		if !ok {
			byID[secID] = &b
			order = append(order, secID)
			continue
		}
		mergeBond(existing, &b)
	}

	out := make([]model.BondQuote, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func mergeBond(dst, src *model.BondQuote) {
	if dst.MaturityDate.IsZero() {
		dst.MaturityDate = src.MaturityDate
	}
	if !dst.CouponFrequency.Valid {
		dst.CouponFrequency = src.CouponFrequency
	}
	if !dst.CouponPeriod.Valid {
		dst.CouponPeriod = src.CouponPeriod
	}
	if src.CouponType.Rank() > dst.CouponType.Rank() {
		dst.CouponType = src.CouponType
	}
	if !dst.FaceValue.Valid {
		dst.FaceValue = src.FaceValue
	}
	if !dst.CurrentPrice.Valid {
		dst.CurrentPrice = src.CurrentPrice
	}
	if !dst.NextCoupon.Valid {
		dst.NextCoupon = src.NextCoupon
	}

	dst.HasAmortization = dst.HasAmortization || src.HasAmortization
	dst.HasOffer = dst.HasOffer || src.HasOffer
	dst.IsOFZ = dst.IsOFZ || src.IsOFZ
	dst.IsMunicipal = dst.IsMunicipal || src.IsMunicipal
	corporate := dst.IsCorporate || src.IsCorporate
	dst.IsCorporate = corporate && !dst.IsOFZ && !dst.IsMunicipal
}

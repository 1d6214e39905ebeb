package bonds

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"MoexLens/internal/calculator"
	"MoexLens/internal/model"
)

var tableHeader = []string{
	"Код",
	"Название",
	"Погашение",
	"До погаш.",
	"Тип купона",
	"Период купона, дн",
	"Валюта",
	"Цена, %",
	"След. купон",
	"Купон. доходн., %",
	"Полн. доходн., %",
	"Аморт.",
	"Оферта",
}

const columnGap = "  "

// Cyrillic is East Asian ambiguous width; pin it to one cell regardless of
// the locale.
var cellWidth = &runewidth.Condition{EastAsianWidth: false}

// MaturityLeft renders the time to maturity as "Xг Yм", counting 30-day
// months.
func MaturityLeft(maturity model.Date, now time.Time) string {
	if maturity.IsZero() {
		return model.Placeholder
	}
	days := calculator.DaysToMaturity(maturity, model.DateOf(now).Time)
	if days <= 0 {
		return "погашена"
	}
	months := days / 30
	return strconv.Itoa(months/12) + "г " + strconv.Itoa(months%12) + "м"
}

// Row renders one bond as table cells.
func Row(b *model.BondQuote, calc *calculator.YieldCalculator) []string {
	now := calc.Now()
	y := calc.Evaluate(b)

	name := b.Name
	if name == "" {
		name = model.Placeholder
	}
	maturity := "-"
	if !b.MaturityDate.IsZero() {
		maturity = b.MaturityDate.String()
	}
	return []string{
		b.SecID,
		name,
		maturity,
		MaturityLeft(b.MaturityDate, now),
		CouponTypeLabel(b.CouponType),
		formatPlain(b.CouponPeriod),
		CurrencyLabel(b.Currency),
		model.FormatNumber(b.CurrentPrice),
		model.FormatNumber(b.NextCoupon),
		model.FormatOptional(y.CouponYield),
		model.FormatOptional(y.TotalYield),
		yesNo(b.HasAmortization),
		yesNo(b.HasOffer),
	}
}

// FormatTable lays out bonds as a fixed-width text table with a header and
// a dashed separator. Rows appear in input order.
func FormatTable(bonds []model.BondQuote, calc *calculator.YieldCalculator) string {
	rows := make([][]string, 0, len(bonds)+1)
	rows = append(rows, tableHeader)
	for i := range bonds {
		rows = append(rows, Row(&bonds[i], calc))
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if w := cellWidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for idx, row := range rows {
		writeLine(&sb, row, widths)
		if idx == 0 {
			dashes := make([]string, len(widths))
			for i, w := range widths {
				dashes[i] = strings.Repeat("-", w)
			}
			sb.WriteByte('\n')
			writeLine(&sb, dashes, widths)
		}
		if idx < len(rows)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(columnGap)
		}
		sb.WriteString(cellWidth.FillRight(cell, widths[i]))
	}
}

func formatPlain(n model.Number) string {
	v, ok := n.Get()
	if !ok {
		return model.Placeholder
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package export builds spreadsheet workbooks from delivered candles.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"MoexLens/internal/model"
	"MoexLens/internal/normalizer"
)

// ContentType is the MIME type of the workbook Workbook returns.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetCandles = "Свечи"
	SheetDaily   = "По дням"
	SheetChart   = "График"
)

var candleHeader = []any{"Начало", "Открытие", "Максимум", "Минимум", "Закрытие"}

// FileName is the workbook name offered for ticker.
func FileName(ticker string) string {
	return strings.ToUpper(ticker) + ".xlsx"
}

// Workbook lays out the valid rows as delivered, the same rows rolled up
// by calendar day, and the chart image. Malformed rows are left out. png may
// be nil; scale sizes the image in the sheet (0 means 1).
func Workbook(rows []model.CandleRecord, png []byte, scale float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCandles); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	valid := validRows(rows)
	if err := writeCandles(f, SheetCandles, valid); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetDaily); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", SheetDaily, err)
	}
	if err := writeCandles(f, SheetDaily, Daily(valid)); err != nil {
		return nil, err
	}

	if len(png) > 0 {
		if _, err := f.NewSheet(SheetChart); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", SheetChart, err)
		}
		if scale <= 0 {
			scale = 1
		}
		pic := &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format:    &excelize.GraphicOptions{ScaleX: scale, ScaleY: scale},
		}
		if err := f.AddPictureFromBytes(SheetChart, "A1", pic); err != nil {
			return nil, fmt.Errorf("add chart image: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func validRows(rows []model.CandleRecord) []model.CandleRecord {
	out := make([]model.CandleRecord, 0, len(rows))
	for _, row := range rows {
		if _, ok := normalizer.Candle(row); ok {
			out = append(out, row)
		}
	}
	return out
}

func writeCandles(f *excelize.File, sheet string, rows []model.CandleRecord) error {
	if err := f.SetSheetRow(sheet, "A1", &candleHeader); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.Begin, row.Open.Value, row.High.Value, row.Low.Value, row.Close.Value}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}

// Daily rolls valid rows up by the calendar date of Begin, in input order:
// first open, highest high, lowest low, last close. Rows without a parseable
// date are skipped.
func Daily(rows []model.CandleRecord) []model.CandleRecord {
	var out []model.CandleRecord
	for _, row := range rows {
		c, ok := normalizer.Candle(row)
		if !ok {
			continue
		}
		day := model.ParseDate(row.Begin)
		if day.IsZero() {
			continue
		}
		key := day.String()
		if n := len(out); n > 0 && out[n-1].Begin == key {
			last := &out[n-1]
			if c.High > last.High.Value {
				last.High = model.NumberOf(c.High)
			}
			if c.Low < last.Low.Value {
				last.Low = model.NumberOf(c.Low)
			}
			last.Close = model.NumberOf(c.Close)
			continue
		}
		rec := c.Record()
		rec.Begin = key
		out = append(out, rec)
	}
	return out
}

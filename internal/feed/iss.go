package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"MoexLens/internal/model"
)

// issTable is the exchange's columnar table shape.
type issTable struct {
	Columns []string            `json:"columns"`
	Data    [][]json.RawMessage `json:"data"`
}

type issRow map[string]json.RawMessage

func (t *issTable) rows() []issRow {
	out := make([]issRow, 0, len(t.Data))
	for _, values := range t.Data {
		row := make(issRow, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(values) {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// str returns the cell as text. Numbers and booleans are returned in their
// JSON form; objects and arrays read as empty.
func (r issRow) str(col string) string {
	raw, ok := r[col]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

func (r issRow) num(col string) model.Number {
	var n model.Number
	if raw, ok := r[col]; ok {
		_ = n.UnmarshalJSON(raw)
	}
	return n
}

func (r issRow) has(col string) bool {
	raw, ok := r[col]
	return ok && !isNull(raw)
}

// truthy follows the exchange's loose flags: null, false, 0, "", "0" and
// "false" are false.
func (r issRow) truthy(col string) bool {
	raw, ok := r[col]
	if !ok || isNull(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		x = strings.TrimSpace(strings.ToLower(x))
		return x != "" && x != "0" && x != "false"
	default:
		return true
	}
}

// decodeTable extracts the named table from a document. The document may be
// a bare JSON array of objects, an object holding such an array under name,
// or an object holding an exchange table under name. Array elements are
// returned as single-row tables keyed by their object fields.
func decodeTable(data []byte, name string) (*issTable, []json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, ErrNoData
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, fmt.Errorf("decode %s array: %w", name, err)
		}
		return nil, items, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode %s document: %w", name, err)
	}
	raw, ok := doc[name]
	if !ok || isNull(raw) {
		return nil, nil, fmt.Errorf("table %q: %w", name, ErrNoData)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, fmt.Errorf("decode %s array: %w", name, err)
		}
		return nil, items, nil
	}
	var t issTable
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, nil, fmt.Errorf("decode %s table: %w", name, err)
	}
	return &t, nil, nil
}

// ParseCandles decodes a candle document into boundary records.
func ParseCandles(data []byte) ([]model.CandleRecord, error) {
	table, items, err := decodeTable(data, "candles")
	if err != nil {
		return nil, err
	}
	if table == nil {
		out := make([]model.CandleRecord, 0, len(items))
		for _, item := range items {
			var rec model.CandleRecord
			// A non-object element keeps an empty record so the normaliser
			// counts it as dropped.
			_ = json.Unmarshal(item, &rec)
			out = append(out, rec)
		}
		return out, nil
	}

	rows := table.rows()
	out := make([]model.CandleRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.CandleRecord{
			Begin: row.str("begin"),
			Open:  row.num("open"),
			High:  row.num("high"),
			Low:   row.num("low"),
			Close: row.num("close"),
		})
	}
	return out, nil
}

package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoexLens/internal/calculator"
	"MoexLens/internal/export"
	"MoexLens/internal/feed"
	"MoexLens/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const bondsDoc = `[
	{"secid": "SU26238RMFS4", "name": "ОФЗ 26238", "maturity_date": "2027-01-01",
	 "coupon_frequency": 2, "next_coupon": 40, "face_value": 1000, "current_price": 100,
	 "currency": "RUB", "is_ofz": true},
	{"secid": "RU000A0JX0J2", "name": "Corp", "maturity_date": "2030-06-01",
	 "coupon_period": 182, "next_coupon": "35,5", "face_value": 1000, "current_price": null,
	 "currency": "RUB", "is_corporate": true}
]`

func newTestRouter(src feed.Source) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var f *feed.Feed
	if src != nil {
		f = feed.NewFeed(src, "SiH6", logger)
	}
	vp := model.ViewportState{CSSWidth: 640, CSSHeight: 400, DevicePixelRatio: 1}
	yields := calculator.NewYieldCalculator(func() time.Time { return fixedNow })
	return NewRouter(NewHandler(yields, f, vp, 3, logger))
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(nil)

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(r, http.MethodHead, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRenderChart(t *testing.T) {
	r := newTestRouter(nil)
	body := `[
		{"open": 10, "high": 12, "low": 9, "close": 11},
		{"open": "11,5", "high": "13", "low": "11", "close": "12"},
		{"open": null, "high": 1, "low": 1, "close": 1}
	]`

	w := do(r, http.MethodPost, "/api/chart?width=320&height=200&dpr=2", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "3", w.Header().Get("X-Candles-Total"))
	assert.Equal(t, "2", w.Header().Get("X-Candles-Drawn"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestRenderChartDefaults(t *testing.T) {
	r := newTestRouter(nil)

	w := do(r, http.MethodPost, "/api/chart", `[]`)
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
	assert.Equal(t, "0", w.Header().Get("X-Candles-Drawn"))
}

func TestRenderChartRejectsBadInput(t *testing.T) {
	r := newTestRouter(nil)
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"width not a number", "/api/chart?width=wide", `[]`},
		{"width too large", "/api/chart?width=5000", `[]`},
		{"zero dpr", "/api/chart?dpr=0", `[]`},
		{"dpr too large", "/api/chart?dpr=8", `[]`},
		{"malformed body", "/api/chart", `[{`},
		{"empty body", "/api/chart", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestTickerChart(t *testing.T) {
	r := newTestRouter(&feed.MockSource{BasePrice: 90, Count: 150})
	w := do(r, http.MethodGet, "/api/chart/SiH6", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "150", w.Header().Get("X-Candles-Total"))
	assert.Equal(t, "120", w.Header().Get("X-Candles-Drawn"))

	r = newTestRouter(&feed.MockSource{CandlesErr: feed.ErrNoData})
	w = do(r, http.MethodGet, "/api/chart/XXX", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	r = newTestRouter(nil)
	w = do(r, http.MethodGet, "/api/chart/SiH6", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBondYields(t *testing.T) {
	r := newTestRouter(nil)

	w := do(r, http.MethodPost, "/api/bonds/yields", bondsDoc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			SecID           string   `json:"secid"`
			BondType        string   `json:"bond_type"`
			CouponYield     *float64 `json:"coupon_yield"`
			TotalYield      *float64 `json:"total_yield"`
			CouponYieldText string   `json:"coupon_yield_text"`
			TotalYieldText  string   `json:"total_yield_text"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)

	ofz := resp.Results[0]
	assert.Equal(t, "ofz", ofz.BondType)
	require.NotNil(t, ofz.CouponYield)
	assert.InDelta(t, 8.0, *ofz.CouponYield, 1e-9)
	require.NotNil(t, ofz.TotalYield)
	assert.InDelta(t, 8.0, *ofz.TotalYield, 1e-9)
	assert.Equal(t, "8,00", ofz.CouponYieldText)

	corp := resp.Results[1]
	assert.Equal(t, "corporate", corp.BondType)
	assert.Nil(t, corp.CouponYield)
	assert.Nil(t, corp.TotalYield)
	assert.Equal(t, model.Placeholder, corp.CouponYieldText)
	assert.Equal(t, model.Placeholder, corp.TotalYieldText)
}

func TestBondYieldsEnvelope(t *testing.T) {
	r := newTestRouter(nil)
	w := do(r, http.MethodPost, "/api/bonds/yields", `{"bonds": `+bondsDoc+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	w = do(r, http.MethodPost, "/api/bonds/yields", `{"bonds": [], "limit": 500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBondTable(t *testing.T) {
	r := newTestRouter(nil)
	w := do(r, http.MethodPost, "/api/bonds/table", `{"limit": 1, "bonds": `+bondsDoc+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Код"))
	assert.Contains(t, body, "SU26238RMFS4")
	assert.NotContains(t, body, "RU000A0JX0J2")
}

func TestSearchBonds(t *testing.T) {
	r := newTestRouter(nil)

	w := do(r, http.MethodPost, "/api/bonds/search",
		`{"filters": {"maturity_to": {"years": 2, "months": 0}}, "bonds": `+bondsDoc+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), "SU26238RMFS4")

	w = do(r, http.MethodPost, "/api/bonds/search",
		`{"filters": {"bond_type": "corporate"}, "bonds": `+bondsDoc+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "RU000A0JX0J2")
	assert.NotContains(t, w.Body.String(), "SU26238RMFS4")

	w = do(r, http.MethodPost, "/api/bonds/search", `{"filters": {"coupon_type": "zero"}, "bonds": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchBondsFromFeed(t *testing.T) {
	quotes, err := feed.ParseBonds([]byte(bondsDoc))
	require.NoError(t, err)
	r := newTestRouter(&feed.MockSource{BondQuotes: quotes})

	w := do(r, http.MethodPost, "/api/bonds/search", `{"filters": {"bond_type": "ofz"}, "limit": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)

	r = newTestRouter(nil)
	w = do(r, http.MethodPost, "/api/bonds/search", `{"filters": {}}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBondYieldsKeepsRecordsWithMistypedFields(t *testing.T) {
	r := newTestRouter(nil)
	body := `[{"secid": "A", "name": 5, "face_value": 1000, "current_price": 100,
		"next_coupon": 40, "coupon_frequency": 2, "has_offer": "1"}]`
	w := do(r, http.MethodPost, "/api/bonds/yields", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"coupon_yield_text":"8,00"`)
}

func TestTickerExport(t *testing.T) {
	r := newTestRouter(&feed.MockSource{Count: 30})
	w := do(r, http.MethodGet, "/api/export/SiH6?dpr=2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "SIH6.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	r = newTestRouter(&feed.MockSource{CandlesErr: feed.ErrNoData})
	w = do(r, http.MethodGet, "/api/export/XXX", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Package server exposes the chart and bond pipelines over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"MoexLens/internal/bonds"
	"MoexLens/internal/calculator"
	"MoexLens/internal/chart"
	"MoexLens/internal/export"
	"MoexLens/internal/feed"
	"MoexLens/internal/model"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BondResult is one bond with its derived yields.
type BondResult struct {
	model.BondQuote
	BondType        model.BondKind `json:"bond_type"`
	CouponYield     model.Optional `json:"coupon_yield"`
	TotalYield      model.Optional `json:"total_yield"`
	CouponYieldText string         `json:"coupon_yield_text"`
	TotalYieldText  string         `json:"total_yield_text"`
}

// BondsResponse lists bond results.
type BondsResponse struct {
	Count   int          `json:"count"`
	Results []BondResult `json:"results"`
}

// Handler serves the HTTP API. Feed is optional; without it the endpoints
// that read delivered data answer 503.
type Handler struct {
	Yields   *calculator.YieldCalculator
	Renderer *chart.Renderer
	Feed     *feed.Feed
	Viewport model.ViewportState
	Limit    int
	Logger   *slog.Logger
}

func NewHandler(yields *calculator.YieldCalculator, f *feed.Feed, vp model.ViewportState, limit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 || limit > bonds.MaxLimit {
		limit = 3
	}
	return &Handler{
		Yields:   yields,
		Renderer: chart.NewRenderer(),
		Feed:     f,
		Viewport: vp,
		Limit:    limit,
		Logger:   logger,
	}
}

// Health answers liveness checks.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RenderChart draws the posted candle document as PNG.
func (h *Handler) RenderChart(c *gin.Context) {
	vp, err := h.viewport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read body"})
		return
	}
	rows, err := feed.ParseCandles(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid candle document"})
		return
	}
	h.writeChart(c, rows, vp)
}

// TickerChart draws the delivered candles of a ticker.
func (h *Handler) TickerChart(c *gin.Context) {
	if h.Feed == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "feed not configured"})
		return
	}
	vp, err := h.viewport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	rows, err := h.Feed.Source.Candles(c.Param("ticker"))
	if errors.Is(err, feed.ErrNoData) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Такой тикер не существует."})
		return
	}
	if err != nil {
		h.Logger.Error("load candles", "ticker", c.Param("ticker"), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot load candles"})
		return
	}
	h.writeChart(c, rows, vp)
}

// TickerExport returns the delivered candles of a ticker and their chart as
// an xlsx workbook.
func (h *Handler) TickerExport(c *gin.Context) {
	if h.Feed == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "feed not configured"})
		return
	}
	vp, err := h.viewport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	ticker := c.Param("ticker")
	rows, err := h.Feed.Source.Candles(ticker)
	if errors.Is(err, feed.ErrNoData) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Такой тикер не существует."})
		return
	}
	if err != nil {
		h.Logger.Error("load candles", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot load candles"})
		return
	}
	png, _, err := chart.RenderPNG(rows, vp, h.Renderer)
	if err != nil {
		h.Logger.Error("render chart", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "render failed"})
		return
	}
	book, err := export.Workbook(rows, png, 1/chart.Viewport(vp.Host(), vp.DevicePixelRatio).DevicePixelRatio)
	if err != nil {
		h.Logger.Error("export workbook", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(ticker)+`"`)
	c.Data(http.StatusOK, export.ContentType, book)
}

func (h *Handler) writeChart(c *gin.Context, rows []model.CandleRecord, vp model.ViewportState) {
	png, window, err := chart.RenderPNG(rows, vp, h.Renderer)
	if err != nil {
		h.Logger.Error("render chart", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "render failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("X-Candles-Total", strconv.Itoa(len(rows)))
	c.Header("X-Candles-Drawn", strconv.Itoa(len(window.Candles)))
	c.Data(http.StatusOK, "image/png", png)
}

// viewport reads width, height and dpr query parameters over the defaults.
func (h *Handler) viewport(c *gin.Context) (model.ViewportState, error) {
	vp := h.Viewport
	fields := []struct {
		name string
		dst  *float64
		max  float64
	}{
		{"width", &vp.CSSWidth, chart.MaxSide},
		{"height", &vp.CSSHeight, chart.MaxSide},
		{"dpr", &vp.DevicePixelRatio, chart.MaxPixelRatio},
	}
	for _, f := range fields {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v > 0) || v > f.max {
			return vp, errors.New(f.name + " must be in (0, " + strconv.FormatFloat(f.max, 'f', -1, 64) + "]")
		}
		*f.dst = v
	}
	return vp, nil
}

// BondYields computes yields for the posted bonds.
func (h *Handler) BondYields(c *gin.Context) {
	req, ok := h.readBonds(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.results(req.Bonds))
}

// BondTable lays out the posted bonds as the text table, top by coupon
// yield.
func (h *Handler) BondTable(c *gin.Context) {
	req, ok := h.readBonds(c)
	if !ok {
		return
	}
	top := bonds.TopByCouponYield(req.Bonds, req.Limit)
	c.String(http.StatusOK, bonds.FormatTable(top, h.Yields))
}

// SearchBonds filters bonds by maturity window and attributes and returns
// the matches nearest to maturity first. Without posted bonds the delivered
// feed is searched.
func (h *Handler) SearchBonds(c *gin.Context) {
	req, ok := h.readBonds(c)
	if !ok {
		return
	}
	if err := req.Filters.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	list := req.Bonds
	if !req.posted {
		if h.Feed == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "feed not configured"})
			return
		}
		var err error
		list, err = h.Feed.Bonds()
		if err != nil && !errors.Is(err, feed.ErrNoData) {
			h.Logger.Error("load bonds", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cannot load bonds"})
			return
		}
	}
	found := bonds.Filter(list, req.Filters, h.Yields.Now())
	bonds.SortByMaturity(found)
	if len(found) > req.Limit {
		found = found[:req.Limit]
	}
	c.JSON(http.StatusOK, h.results(found))
}

func (h *Handler) results(list []model.BondQuote) BondsResponse {
	out := BondsResponse{Count: len(list), Results: make([]BondResult, 0, len(list))}
	for i := range list {
		b := list[i]
		y := h.Yields.Evaluate(&b)
		out.Results = append(out.Results, BondResult{
			BondQuote:       b,
			BondType:        b.Kind(),
			CouponYield:     y.CouponYield,
			TotalYield:      y.TotalYield,
			CouponYieldText: model.FormatOptional(y.CouponYield),
			TotalYieldText:  model.FormatOptional(y.TotalYield),
		})
	}
	return out
}

type bondRequest struct {
	Bonds   []model.BondQuote
	Filters bonds.Filters
	Limit   int
	posted  bool
}

// readBonds accepts a bare array of bond records, the exchange's
// securities and marketdata tables, or an envelope
// {"bonds": ..., "filters": {...}, "limit": n} wrapping either.
func (h *Handler) readBonds(c *gin.Context) (bondRequest, bool) {
	req := bondRequest{Limit: h.Limit}
	fail := func(msg string) (bondRequest, bool) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return req, false
	}

	data, err := c.GetRawData()
	if err != nil {
		return fail("cannot read body")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, true
	}

	if data[0] == '{' {
		var env struct {
			Bonds   json.RawMessage `json:"bonds"`
			Filters *bonds.Filters  `json:"filters"`
			Limit   *int            `json:"limit"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return fail("invalid bond document")
		}
		if env.Limit != nil {
			if *env.Limit < 1 || *env.Limit > bonds.MaxLimit {
				return fail("limit must be in [1, " + strconv.Itoa(bonds.MaxLimit) + "]")
			}
			req.Limit = *env.Limit
		}
		if env.Filters != nil {
			req.Filters = *env.Filters
		}
		switch {
		case len(env.Bonds) > 0:
			data = env.Bonds
		case env.Filters != nil || env.Limit != nil:
			return req, true
		}
	}

	list, err := feed.ParseBonds(data)
	if err != nil {
		return fail("invalid bond document")
	}
	req.Bonds, req.posted = list, true
	return req, true
}

// requestLogger logs every request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

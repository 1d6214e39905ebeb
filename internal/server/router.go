package server

import "github.com/gin-gonic/gin"

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.Logger))

	r.GET("/health", Health)
	r.HEAD("/health", Health)

	api := r.Group("/api")
	{
		api.POST("/chart", h.RenderChart)
		api.GET("/chart/:ticker", h.TickerChart)
		api.GET("/export/:ticker", h.TickerExport)
		api.POST("/bonds/yields", h.BondYields)
		api.POST("/bonds/table", h.BondTable)
		api.POST("/bonds/search", h.SearchBonds)
	}
	return r
}

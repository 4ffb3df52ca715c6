package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/internal/symbols"
	"StockBoard/internal/usecase"
	"StockBoard/pkg/cache"
	xhttp "StockBoard/pkg/http"
	"StockBoard/pkg/logger"
)

// marketListCacheTTL bounds how long a filtered/sorted page is reused before
// the universe is re-read from storage.
const marketListCacheTTL = 60 * time.Second

// MarketHandler serves the price and market-list surface.
type MarketHandler struct {
	logger *logger.Logger
	prices *usecase.BulkPriceFetcher
	sparks *usecase.SparklinePipeline
	lists  repository.MarketListRepo
	store  repository.CacheStore
	hot    cache.Service
}

func NewMarketHandler(
	l *logger.Logger,
	prices *usecase.BulkPriceFetcher,
	sparks *usecase.SparklinePipeline,
	lists repository.MarketListRepo,
	store repository.CacheStore,
	hot cache.Service,
) *MarketHandler {
	return &MarketHandler{
		logger: l,
		prices: prices,
		sparks: sparks,
		lists:  lists,
		store:  store,
		hot:    hot,
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/price/bulk", h.BulkPrices)
	e.GET("/marketlists", h.MarketLists)
	e.GET("/marketlists/search", h.SearchTickers)
	e.GET("/markets/hours", h.MarketHours)
	e.GET("/health", h.Health)
}

// BulkPrices resolves up to 100 tickers and returns stats for each, null for
// the ones the upstream had nothing on.
func (h *MarketHandler) BulkPrices(c echo.Context) error {
	req := &models.BulkPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	refs := make([]models.TickerRef, 0, len(req.Tickers))
	for _, t := range req.Tickers {
		refs = append(refs, models.TickerRef{Ticker: t, Country: req.Country})
	}

	results := h.prices.FetchPrices(c.Request().Context(), refs, req.Period, req.Interval)

	return c.JSON(http.StatusOK, &models.BulkPriceResponse{
		Success:  true,
		Results:  results,
		Count:    len(results),
		Period:   req.Period,
		Interval: req.Interval,
	})
}

// MarketLists returns a filtered, sorted page of the ticker universe with
// sparklines filled in. Pages are cached briefly keyed by the full query.
func (h *MarketHandler) MarketLists(c echo.Context) error {
	q := &models.MarketListQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	cacheKey := fmt.Sprintf("marketlists:%s:%s:%s:%s:%s:%d:%d",
		q.Country, q.Sector, q.Search, q.SortBy, q.Order, q.Limit, q.Offset)

	if h.hot != nil {
		var cached xhttp.ListDataResponse
		if err := h.hot.Get(ctx, cacheKey, &cached); err == nil {
			return c.JSON(http.StatusOK, &cached)
		}
	}

	items, total, err := h.lists.List(ctx, q)
	if err != nil {
		h.logger.Error("marketlist query failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	if h.sparks != nil {
		h.sparks.FillSparklines(ctx, items)
	}

	resp := xhttp.ListDataResponse{Success: true, Data: items, Total: total}
	if h.hot != nil {
		if err := h.hot.Set(ctx, cacheKey, &resp, marketListCacheTTL); err != nil {
			h.logger.Debug("marketlist cache set failed", logger.Error(err))
		}
	}
	return c.JSON(http.StatusOK, &resp)
}

// SearchTickers matches tickers by symbol or company-name substring.
func (h *MarketHandler) SearchTickers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return xhttp.BadRequestResponse(c, "query is required")
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 20)

	items, err := h.lists.Search(c.Request().Context(), query, limit)
	if err != nil {
		h.logger.Error("ticker search failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

// MarketHours returns today's session open and close for a market label, in
// the exchange's local time.
func (h *MarketHandler) MarketHours(c echo.Context) error {
	label := c.QueryParam("market")
	if label == "" {
		return xhttp.BadRequestResponse(c, "market is required")
	}

	open, clos := symbols.MarketOpenClose(label, time.Now())
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"market": label,
		"open":   open,
		"close":  clos,
	})
}

// Health pings the backing store.
func (h *MarketHandler) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			h.logger.Warn("health check failed", logger.Error(err))
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"success": false, "status": "degraded"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
}

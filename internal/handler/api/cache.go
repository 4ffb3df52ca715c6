package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	xhttp "StockBoard/pkg/http"
	"StockBoard/pkg/logger"
)

// CacheHandler exposes the chart cache for reads, manual upserts and the
// stale sweep.
type CacheHandler struct {
	logger *logger.Logger
	store  repository.CacheStore
	source repository.HistorySource

	// SweepThreshold is the default age for DELETE /cache/stale when the
	// request does not pin one.
	SweepThreshold time.Duration
}

func NewCacheHandler(l *logger.Logger, store repository.CacheStore, source repository.HistorySource, sweepThreshold time.Duration) *CacheHandler {
	if sweepThreshold <= 0 {
		sweepThreshold = 24 * time.Hour
	}
	return &CacheHandler{logger: l, store: store, source: source, SweepThreshold: sweepThreshold}
}

func (h *CacheHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cache/sparklines/all", h.AllSparklines)
	e.GET("/cache/ticker/:ticker", h.ListEntries)
	e.GET("/cache/ticker/:ticker/:interval/:period", h.GetEntry)
	e.POST("/cache/:id/upsert", h.UpsertEntry)
	e.DELETE("/cache/stale", h.DeleteStale)
}

// AllSparklines proxies the precomputed close-series set. When the upstream
// does not offer the route the 404 is passed through so clients can trip
// their own breaker.
func (h *CacheHandler) AllSparklines(c echo.Context) error {
	data, err := h.source.FetchSparklines(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotSupported) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("sparklines not available").WithError(err))
		}
		h.logger.Error("sparkline fetch failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.JSON(http.StatusOK, &models.SparklineBulkResponse{
		Success: true,
		Data:    data,
		Total:   len(data),
	})
}

// GetEntry reads one cached chart payload by its key parts.
func (h *CacheHandler) GetEntry(c echo.Context) error {
	key := models.CacheKey(c.Param("ticker"), c.Param("interval"), c.Param("period"))

	entry, err := h.store.Get(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("cache entry not found").WithError(err))
		}
		h.logger.Error("cache get failed", logger.String("key", key), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, entry)
}

// ListEntries returns every interval/period entry stored for one ticker.
func (h *CacheHandler) ListEntries(c echo.Context) error {
	ticker := c.Param("ticker")

	entries, err := h.store.ListByTicker(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("cache list failed", logger.String("ticker", ticker), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// UpsertEntry writes a payload under the key in :id. The key must match the
// chart::TICKER::interval::period shape and is canonicalized before the
// write, so lowercase tickers land under the same key the read path builds.
// fetched_at defaults to now when absent or unparseable.
func (h *CacheHandler) UpsertEntry(c echo.Context) error {
	ticker, interval, period, ok := models.ParseCacheKey(c.Param("id"))
	if !ok {
		return xhttp.BadRequestResponse(c, "cache key must look like chart::TICKER::interval::period")
	}
	key := models.CacheKey(ticker, interval, period)

	req := &models.UpsertCacheRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Payload = req.Payload.Normalize()

	fetchedAt := xhttp.ParseTimeDefault(req.FetchedAt, time.Now().UTC())

	entry, err := h.store.Upsert(c.Request().Context(), key, req.Payload, fetchedAt)
	if err != nil {
		h.logger.Error("cache upsert failed", logger.String("key", key), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, entry)
}

// DeleteStale sweeps entries older than ?threshold= minutes.
func (h *CacheHandler) DeleteStale(c echo.Context) error {
	threshold := h.SweepThreshold
	if minutes := xhttp.ParseIntDefault(c.QueryParam("threshold"), 0); minutes > 0 {
		threshold = time.Duration(minutes) * time.Minute
	}

	deleted, err := h.store.DeleteStale(c.Request().Context(), threshold)
	if err != nil {
		h.logger.Error("stale sweep failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	h.logger.Info("stale cache swept",
		logger.Duration("threshold", threshold),
		logger.Int64("deleted", deleted))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedCount": deleted,
	})
}

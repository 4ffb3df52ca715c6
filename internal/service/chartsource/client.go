package chartsource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/internal/service/ratelimit"
	"StockBoard/pkg/logger"
)

// Client talks to the analytics backend that computes OHLCV history. The
// backend is reached only through its bulk chart endpoint; per-ticker calls
// are just bulk calls with one symbol.
type Client struct {
	rc      *resty.Client
	metrics repository.Metrics
	log     *logger.Logger
	limiter *ratelimit.Limiter
	maxRPS  float64
}

func NewClient(baseURL string, timeout time.Duration, maxRPS float64, metrics repository.Metrics, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxRPS <= 0 {
		maxRPS = 8
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		})

	return &Client{rc: rc, metrics: metrics, log: log, limiter: ratelimit.New(), maxRPS: maxRPS}
}

// throttle keeps the aggregate request rate under maxRPS, with short bursts
// up to 2x allowed.
func (c *Client) throttle(ctx context.Context) error {
	return c.limiter.Wait(ctx, "upstream", c.maxRPS*2, c.maxRPS)
}

type bulkChartRequest struct {
	Ticker   []string `json:"ticker"`
	Period   string   `json:"period"`
	Interval string   `json:"interval"`
}

// FetchBulk posts one chart request for a whole batch of symbols and
// returns whatever payloads the backend had. Symbols absent from the
// response are simply absent from the map.
func (c *Client) FetchBulk(ctx context.Context, symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	start := time.Now()

	var payloads map[string]*models.PriceHistoryPayload
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(&bulkChartRequest{Ticker: symbols, Period: period, Interval: interval}).
		SetResult(&payloads).
		Post("/chart")

	c.metrics.RecordUpstreamLatency("bulk_chart", time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("chart source: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("chart source: status %d", resp.StatusCode())
	}

	c.log.Debug("bulk chart fetched",
		logger.Int("requested", len(symbols)),
		logger.Int("returned", len(payloads)),
		logger.Duration("took", time.Since(start)))
	return payloads, nil
}

type sparklinesResponse struct {
	Success bool                     `json:"success"`
	Data    []models.SparklineSeries `json:"data"`
	Total   int                      `json:"total"`
}

// FetchSparklines pulls the precomputed close-series set in one call. A 404
// means the backend does not offer the route at all, reported as
// ErrNotSupported so callers can stop asking.
func (c *Client) FetchSparklines(ctx context.Context) ([]models.SparklineSeries, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	start := time.Now()

	var out sparklinesResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/sparklines/all")

	c.metrics.RecordUpstreamLatency("bulk_sparklines", time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("sparkline source: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, repository.ErrNotSupported
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sparkline source: status %d", resp.StatusCode())
	}
	return out.Data, nil
}

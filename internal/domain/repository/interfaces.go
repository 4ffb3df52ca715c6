package repository

import (
	"context"
	"errors"
	"time"

	"StockBoard/internal/domain/models"
)

// ErrNotSupported signals a capability the upstream does not offer, e.g. a
// missing bulk sparkline route. Callers treat it as a permanent downgrade
// for the session, not as a transient failure.
var ErrNotSupported = errors.New("upstream: capability not supported")

// ErrNotFound is returned for absent cache entries and unknown tickers.
var ErrNotFound = errors.New("not found")

// CacheStore persists fetched chart payloads keyed by
// chart::{TICKER}::{interval}::{period}.
type CacheStore interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Upsert(ctx context.Context, key string, payload *models.PriceHistoryPayload, fetchedAt time.Time) (*models.CacheEntry, error)
	IsStale(ctx context.Context, key string, threshold time.Duration) (bool, error)
	DeleteStale(ctx context.Context, threshold time.Duration) (int64, error)
	ListByTicker(ctx context.Context, ticker string) ([]*models.CacheEntry, error)
	Health(ctx context.Context) error
}

// MarketListRepo reads the ticker universe.
type MarketListRepo interface {
	List(ctx context.Context, q *models.MarketListQuery) ([]*models.TickerListItem, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.TickerListItem, error)
}

// MetaStore persists company name / market labels per ticker.
type MetaStore interface {
	Get(ctx context.Context, ticker string) (*models.TickerMeta, error)
	Put(ctx context.Context, meta *models.TickerMeta) error
}

// HistorySource is the upstream analytics backend, reached only through its
// bulk chart endpoint.
type HistorySource interface {
	// FetchBulk returns one payload per ticker present in the upstream
	// response; tickers the upstream had no data for are absent from the map.
	FetchBulk(ctx context.Context, symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error)
	// FetchSparklines returns the precomputed close series set, or
	// ErrNotSupported when the route does not exist.
	FetchSparklines(ctx context.Context) ([]models.SparklineSeries, error)
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordBatchFetch(outcome string)
	RecordUpstreamLatency(op string, seconds float64)
	RecordCacheLookup(hit bool)
	RecordSweepDeletions(count int64)
	RecordSparklineRender(outcome string)
	SetBatchesInFlight(n int)
}

package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/internal/symbols"
	"StockBoard/pkg/logger"
	"StockBoard/pkg/pool"
)

// BulkPriceFetcher fills price statistics for large ticker sets. Tickers are
// split into fixed-size batches, each batch is one upstream bulk call, and
// batches run through the bounded executor so peak upstream concurrency
// stays at MaxConcurrent regardless of universe size.
type BulkPriceFetcher struct {
	source  repository.HistorySource
	cache   repository.CacheStore
	metrics repository.Metrics
	log     *logger.Logger

	BatchSize     int
	MaxConcurrent int
	BatchTimeout  time.Duration
}

func NewBulkPriceFetcher(
	source repository.HistorySource,
	cache repository.CacheStore,
	metrics repository.Metrics,
	log *logger.Logger,
	batchSize, maxConcurrent int,
	batchTimeout time.Duration,
) *BulkPriceFetcher {
	if batchSize <= 0 {
		batchSize = 30
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	if batchTimeout <= 0 {
		batchTimeout = 15 * time.Second
	}
	return &BulkPriceFetcher{
		source:        source,
		cache:         cache,
		metrics:       metrics,
		log:           log,
		BatchSize:     batchSize,
		MaxConcurrent: maxConcurrent,
		BatchTimeout:  batchTimeout,
	}
}

// FetchPrices returns one entry per requested ticker, keyed by resolved
// symbol. A failed batch degrades only its own tickers to nil; tickers the
// upstream response omitted are nil as well. Keys are never omitted, so
// callers can tell "no data" apart from "not requested".
func (f *BulkPriceFetcher) FetchPrices(ctx context.Context, tickers []models.TickerRef, period, interval string) map[string]*models.PriceStats {
	results := make(map[string]*models.PriceStats, len(tickers))
	if len(tickers) == 0 {
		return results
	}

	batches := f.partition(tickers)
	var inFlight int64

	tasks := make([]pool.Task[map[string]*models.PriceHistoryPayload], len(batches))
	for i, batch := range batches {
		batch := batch
		tasks[i] = func(ctx context.Context) (map[string]*models.PriceHistoryPayload, error) {
			f.metrics.SetBatchesInFlight(int(atomic.AddInt64(&inFlight, 1)))
			defer func() {
				f.metrics.SetBatchesInFlight(int(atomic.AddInt64(&inFlight, -1)))
			}()

			bctx, cancel := context.WithTimeout(ctx, f.BatchTimeout)
			defer cancel()
			return f.source.FetchBulk(bctx, batch, period, interval)
		}
	}

	outcomes := pool.Run(ctx, tasks, f.MaxConcurrent)

	for i, o := range outcomes {
		if o.Err != nil {
			f.metrics.RecordBatchFetch("error")
			f.log.Warn("bulk price batch failed",
				logger.Int("batch", o.Index),
				logger.Int("tickers", len(batches[i])),
				logger.Error(o.Err))
			for _, sym := range batches[i] {
				results[sym] = nil
			}
			continue
		}

		f.metrics.RecordBatchFetch("ok")
		for _, sym := range batches[i] {
			payload, ok := o.Value[sym]
			if !ok || payload.IsEmpty() {
				results[sym] = nil
				continue
			}
			results[sym] = DeriveStats(payload)
			f.storePayload(ctx, sym, interval, period, payload)
		}
	}

	return results
}

// partition resolves symbols and slices them into batches of BatchSize.
func (f *BulkPriceFetcher) partition(tickers []models.TickerRef) [][]string {
	resolved := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, ref := range tickers {
		sym := symbols.Resolve(ref.Ticker, ref.Country)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		resolved = append(resolved, sym)
	}

	var batches [][]string
	for start := 0; start < len(resolved); start += f.BatchSize {
		end := start + f.BatchSize
		if end > len(resolved) {
			end = len(resolved)
		}
		batches = append(batches, resolved[start:end])
	}
	return batches
}

// storePayload refreshes the chart cache with a fetched payload. Refreshes
// are the only write path, so concurrent writers resolve last-writer-wins.
func (f *BulkPriceFetcher) storePayload(ctx context.Context, sym, interval, period string, payload *models.PriceHistoryPayload) {
	if f.cache == nil {
		return
	}
	key := models.CacheKey(sym, interval, period)
	if _, err := f.cache.Upsert(ctx, key, payload, time.Now().UTC()); err != nil {
		f.log.Debug("cache upsert failed", logger.String("key", key), logger.Error(err))
	}
}

package usecase

import (
	"context"
	"sync"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
)

// nopMetrics satisfies repository.Metrics for tests.
type nopMetrics struct{}

func (nopMetrics) RecordBatchFetch(string) {}
func (nopMetrics) RecordUpstreamLatency(string, float64) {}
func (nopMetrics) RecordCacheLookup(bool) {}
func (nopMetrics) RecordSweepDeletions(int64) {}
func (nopMetrics) RecordSparklineRender(string) {}
func (nopMetrics) SetBatchesInFlight(int) {}

// fakeSource scripts upstream behavior per call.
type fakeSource struct {
	mu sync.Mutex

	bulkFn   func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error)
	sparksFn func() ([]models.SparklineSeries, error)

	bulkCalls   int
	sparksCalls int
	inFlight    int
	peak        int
}

func (f *fakeSource) FetchBulk(ctx context.Context, symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
	f.mu.Lock()
	f.bulkCalls++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	fn := f.bulkFn
	f.mu.Unlock()

	// give overlapping batches a chance to overlap
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if fn == nil {
		return map[string]*models.PriceHistoryPayload{}, nil
	}
	return fn(symbols, period, interval)
}

func (f *fakeSource) FetchSparklines(ctx context.Context) ([]models.SparklineSeries, error) {
	f.mu.Lock()
	f.sparksCalls++
	fn := f.sparksFn
	f.mu.Unlock()
	if fn == nil {
		return nil, repository.ErrNotSupported
	}
	return fn()
}

// memCacheStore is an in-memory CacheStore.
type memCacheStore struct {
	mu      sync.Mutex
	entries map[string]*models.CacheEntry
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{entries: make(map[string]*models.CacheEntry)}
}

func (s *memCacheStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (s *memCacheStore) Upsert(ctx context.Context, key string, payload *models.PriceHistoryPayload, fetchedAt time.Time) (*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.CacheEntry{Key: key, FetchedAt: fetchedAt, Payload: payload}
	s.entries[key] = e
	return e, nil
}

func (s *memCacheStore) IsStale(ctx context.Context, key string, threshold time.Duration) (bool, error) {
	e, err := s.Get(ctx, key)
	if err != nil {
		return true, nil
	}
	return e.IsStaleAt(time.Now().UTC(), threshold), nil
}

func (s *memCacheStore) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-threshold)
	var n int64
	for k, e := range s.entries {
		if e.FetchedAt.Before(cutoff) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

func (s *memCacheStore) ListByTicker(ctx context.Context, ticker string) ([]*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := models.CacheKeyPrefix(ticker)
	var out []*models.CacheEntry
	for k, e := range s.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memCacheStore) Health(ctx context.Context) error { return nil }

func payloadWithCloses(closes ...float64) *models.PriceHistoryPayload {
	dates := make([]string, len(closes))
	for i := range dates {
		dates[i] = time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	return &models.PriceHistoryPayload{
		Dates: dates,
		Open:  closes,
		High:  closes,
		Low:   closes,
		Close: closes,
	}
}

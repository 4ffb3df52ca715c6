package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/pkg/logger"
)

func refsN(n int) []models.TickerRef {
	refs := make([]models.TickerRef, n)
	for i := range refs {
		refs[i] = models.TickerRef{Ticker: fmt.Sprintf("SYM%03d", i)}
	}
	return refs
}

func TestFetchPricesBatchingAndBound(t *testing.T) {
	src := &fakeSource{
		bulkFn: func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
			out := make(map[string]*models.PriceHistoryPayload, len(symbols))
			for _, s := range symbols {
				out[s] = payloadWithCloses(100, 105, 98)
			}
			return out, nil
		},
	}
	f := NewBulkPriceFetcher(src, nil, nopMetrics{}, logger.Nop(), 30, 3, time.Second)

	results := f.FetchPrices(context.Background(), refsN(130), "1d", "15m")

	if len(results) != 130 {
		t.Fatalf("expected 130 keys, got %d", len(results))
	}
	if src.bulkCalls != 5 {
		t.Fatalf("130 tickers at batch size 30 should be 5 calls, got %d", src.bulkCalls)
	}
	if src.peak > 3 {
		t.Fatalf("batch concurrency exceeded limit: peak %d", src.peak)
	}
	for sym, stats := range results {
		if stats == nil {
			t.Fatalf("unexpected nil stats for %s", sym)
		}
	}
}

func TestFetchPricesFailedBatchDegradesOnlyItsTickers(t *testing.T) {
	src := &fakeSource{
		bulkFn: func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
			for _, s := range symbols {
				if s == "SYM000" {
					return nil, errors.New("upstream blew up")
				}
			}
			out := make(map[string]*models.PriceHistoryPayload, len(symbols))
			for _, s := range symbols {
				out[s] = payloadWithCloses(10, 11)
			}
			return out, nil
		},
	}
	f := NewBulkPriceFetcher(src, nil, nopMetrics{}, logger.Nop(), 30, 3, time.Second)

	results := f.FetchPrices(context.Background(), refsN(60), "1d", "15m")

	if len(results) != 60 {
		t.Fatalf("keys must never be omitted, got %d", len(results))
	}
	if results["SYM000"] != nil {
		t.Fatalf("failed batch must yield nil stats")
	}
	if results["SYM059"] == nil {
		t.Fatalf("healthy batch must still be derived")
	}
}

func TestFetchPricesMissingAndEmptyPayloadsAreNil(t *testing.T) {
	src := &fakeSource{
		bulkFn: func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
			return map[string]*models.PriceHistoryPayload{
				"AAA": payloadWithCloses(1, 2),
				"BBB": {},
			}, nil
		},
	}
	f := NewBulkPriceFetcher(src, nil, nopMetrics{}, logger.Nop(), 30, 3, time.Second)

	results := f.FetchPrices(context.Background(), []models.TickerRef{
		{Ticker: "aaa"}, {Ticker: "BBB"}, {Ticker: "CCC"},
	}, "1d", "15m")

	if results["AAA"] == nil {
		t.Fatalf("AAA has data")
	}
	if results["BBB"] != nil {
		t.Fatalf("empty payload must be nil stats")
	}
	if v, ok := results["CCC"]; !ok || v != nil {
		t.Fatalf("omitted ticker must be present and nil")
	}
}

func TestFetchPricesResolvesAndDeduplicates(t *testing.T) {
	var got []string
	src := &fakeSource{
		bulkFn: func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
			got = append(got, symbols...)
			return map[string]*models.PriceHistoryPayload{}, nil
		},
	}
	f := NewBulkPriceFetcher(src, nil, nopMetrics{}, logger.Nop(), 30, 1, time.Second)

	f.FetchPrices(context.Background(), []models.TickerRef{
		{Ticker: "ptt", Country: "TH"},
		{Ticker: "PTT.BK"},
		{Ticker: "7203", Country: "JP"},
	}, "1d", "15m")

	if len(got) != 2 {
		t.Fatalf("expected deduped symbols, got %v", got)
	}
	if got[0] != "PTT.BK" || got[1] != "7203.T" {
		t.Fatalf("unexpected resolution: %v", got)
	}
}

func TestFetchPricesWritesThroughCache(t *testing.T) {
	store := newMemCacheStore()
	src := &fakeSource{
		bulkFn: func(symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
			return map[string]*models.PriceHistoryPayload{"AAPL": payloadWithCloses(1, 2, 3)}, nil
		},
	}
	f := NewBulkPriceFetcher(src, store, nopMetrics{}, logger.Nop(), 30, 3, time.Second)

	f.FetchPrices(context.Background(), []models.TickerRef{{Ticker: "AAPL"}}, "1d", "15m")

	key := models.CacheKey("AAPL", "15m", "1d")
	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("expected cache entry under %s: %v", key, err)
	}
	if entry.Payload.IsEmpty() {
		t.Fatalf("cached payload should carry data")
	}
}

package symbols

import (
	"context"
	"sync"
	"testing"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/pkg/logger"
)

type fakeMetaStore struct {
	mu   sync.Mutex
	m    map[string]*models.TickerMeta
	gets int
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{m: make(map[string]*models.TickerMeta)}
}

func (s *fakeMetaStore) Get(ctx context.Context, ticker string) (*models.TickerMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	meta, ok := s.m[ticker]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return meta, nil
}

func (s *fakeMetaStore) Put(ctx context.Context, meta *models.TickerMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[meta.Ticker] = meta
	return nil
}

func TestMetaLookupMemoizes(t *testing.T) {
	store := newFakeMetaStore()
	store.Put(context.Background(), &models.TickerMeta{
		Ticker:      "AAPL",
		CompanyName: "Apple Inc.",
		Market:      "US (NASDAQ)",
		FetchedAt:   time.Now().UTC(),
	})

	svc := NewMetaService(store, logger.Nop())

	first := svc.Lookup(context.Background(), "aapl")
	if first.CompanyName != "Apple Inc." {
		t.Fatalf("unexpected meta: %+v", first)
	}
	svc.Lookup(context.Background(), "AAPL")

	if store.gets != 1 {
		t.Fatalf("second lookup must come from the memo, store gets = %d", store.gets)
	}
}

func TestMetaLookupFallbackNotPersisted(t *testing.T) {
	store := newFakeMetaStore()
	svc := NewMetaService(store, logger.Nop())

	meta := svc.Lookup(context.Background(), "7203.T")
	if meta.Market != "JP (TSE/TYO)" {
		t.Fatalf("suffix fallback market = %q", meta.Market)
	}
	if meta.CompanyName != "7203.T" {
		t.Fatalf("fallback company name is the symbol, got %q", meta.CompanyName)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.m) != 0 {
		t.Fatalf("fallback meta must never be persisted")
	}
}

func TestMetaRememberResolvesAndStores(t *testing.T) {
	store := newFakeMetaStore()
	svc := NewMetaService(store, logger.Nop())

	svc.Remember(context.Background(), &models.TickerMeta{
		Ticker:      "aapl",
		CompanyName: "Apple Inc.",
		Market:      "US (NASDAQ)",
	})

	got, err := store.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected persisted meta: %v", err)
	}
	if got.FetchedAt.IsZero() {
		t.Fatalf("Remember must stamp FetchedAt")
	}
}

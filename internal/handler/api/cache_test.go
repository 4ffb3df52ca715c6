package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/pkg/logger"
)

type stubCacheStore struct {
	mu      sync.Mutex
	entries map[string]*models.CacheEntry
}

func newStubCacheStore() *stubCacheStore {
	return &stubCacheStore{entries: make(map[string]*models.CacheEntry)}
}

func (s *stubCacheStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (s *stubCacheStore) Upsert(ctx context.Context, key string, payload *models.PriceHistoryPayload, fetchedAt time.Time) (*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.CacheEntry{Key: key, FetchedAt: fetchedAt, Payload: payload}
	s.entries[key] = e
	return e, nil
}

func (s *stubCacheStore) IsStale(ctx context.Context, key string, threshold time.Duration) (bool, error) {
	e, err := s.Get(ctx, key)
	if err != nil {
		return true, nil
	}
	return e.IsStaleAt(time.Now().UTC(), threshold), nil
}

func (s *stubCacheStore) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
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

func (s *stubCacheStore) ListByTicker(ctx context.Context, ticker string) ([]*models.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := models.CacheKeyPrefix(ticker)
	var out []*models.CacheEntry
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubCacheStore) Health(ctx context.Context) error { return nil }

type stubSource struct {
	sparks []models.SparklineSeries
	err    error
}

func (s *stubSource) FetchBulk(ctx context.Context, symbols []string, period, interval string) (map[string]*models.PriceHistoryPayload, error) {
	return nil, nil
}

func (s *stubSource) FetchSparklines(ctx context.Context) ([]models.SparklineSeries, error) {
	return s.sparks, s.err
}

func doRequest(h *CacheHandler, method, target string, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetEntry(t *testing.T) {
	store := newStubCacheStore()
	key := models.CacheKey("AAPL", "15m", "1d")
	store.Upsert(context.Background(), key, &models.PriceHistoryPayload{Close: []float64{1, 2}}, time.Now().UTC())

	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 0)

	rec := doRequest(h, http.MethodGet, "/cache/ticker/AAPL/15m/1d", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    models.CacheEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Key != key {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	h := NewCacheHandler(logger.Nop(), newStubCacheStore(), &stubSource{}, 0)

	rec := doRequest(h, http.MethodGet, "/cache/ticker/NOPE/15m/1d", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpsertEntry(t *testing.T) {
	store := newStubCacheStore()
	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 0)

	key := models.CacheKey("AAPL", "15m", "1d")
	body := `{"fetched_at":"2025-06-01T10:00:00Z","payload":{"close":[1,2,3]}}`
	rec := doRequest(h, http.MethodPost, "/cache/"+key+"/upsert", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !entry.FetchedAt.Equal(want) {
		t.Fatalf("fetched_at = %v, want %v", entry.FetchedAt, want)
	}
}

func TestUpsertEntryReplacesPayload(t *testing.T) {
	store := newStubCacheStore()
	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 0)

	key := models.CacheKey("AAPL", "15m", "1d")
	for _, body := range []string{
		`{"payload":{"close":[1,2,3]}}`,
		`{"payload":{"close":[4,5,6]}}`,
	} {
		rec := doRequest(h, http.MethodPost, "/cache/"+key+"/upsert", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	}

	if n := len(store.entries); n != 1 {
		t.Fatalf("entries = %d, want the second upsert to replace the first", n)
	}
	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	if len(entry.Payload.Close) != 3 || entry.Payload.Close[0] != 4 {
		t.Fatalf("payload not replaced: %+v", entry.Payload.Close)
	}
}

func TestUpsertEntryCanonicalizesKey(t *testing.T) {
	store := newStubCacheStore()
	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 0)

	rec := doRequest(h, http.MethodPost, "/cache/chart::aapl::1d::1mo/upsert", `{"payload":{"close":[1,2]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(h, http.MethodGet, "/cache/ticker/AAPL/1d/1mo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lowercase upsert unreadable through GET: %d", rec.Code)
	}
}

func TestUpsertEntryRejectsMalformedKey(t *testing.T) {
	h := NewCacheHandler(logger.Nop(), newStubCacheStore(), &stubSource{}, 0)

	rec := doRequest(h, http.MethodPost, "/cache/somekey/upsert", `{"payload":{"close":[1]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpsertEntryRejectsMissingPayload(t *testing.T) {
	h := NewCacheHandler(logger.Nop(), newStubCacheStore(), &stubSource{}, 0)

	rec := doRequest(h, http.MethodPost, "/cache/chart::AAPL::15m::1d/upsert", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListEntries(t *testing.T) {
	store := newStubCacheStore()
	store.Upsert(context.Background(), models.CacheKey("AAPL", "15m", "1d"), &models.PriceHistoryPayload{Close: []float64{1}}, time.Now().UTC())
	store.Upsert(context.Background(), models.CacheKey("AAPL", "1d", "1mo"), &models.PriceHistoryPayload{Close: []float64{2}}, time.Now().UTC())
	store.Upsert(context.Background(), models.CacheKey("MSFT", "15m", "1d"), &models.PriceHistoryPayload{Close: []float64{3}}, time.Now().UTC())

	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 0)

	rec := doRequest(h, http.MethodGet, "/cache/ticker/AAPL", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data  []*models.CacheEntry `json:"data"`
		Total int64                `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2 entries for AAPL", resp.Total)
	}
}

func TestDeleteStale(t *testing.T) {
	store := newStubCacheStore()
	old := time.Now().UTC().Add(-2 * time.Hour)
	store.Upsert(context.Background(), "chart::OLD::15m::1d", &models.PriceHistoryPayload{Close: []float64{1}}, old)
	store.Upsert(context.Background(), "chart::NEW::15m::1d", &models.PriceHistoryPayload{Close: []float64{1}}, time.Now().UTC())

	h := NewCacheHandler(logger.Nop(), store, &stubSource{}, 24*time.Hour)

	rec := doRequest(h, http.MethodDelete, "/cache/stale?threshold=60", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success      bool  `json:"success"`
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DeletedCount != 1 {
		t.Fatalf("deletedCount = %d, want 1", resp.DeletedCount)
	}
}

func TestAllSparklines(t *testing.T) {
	src := &stubSource{sparks: []models.SparklineSeries{{Ticker: "AAPL", Close: []float64{1, 2}}}}
	h := NewCacheHandler(logger.Nop(), newStubCacheStore(), src, 0)

	rec := doRequest(h, http.MethodGet, "/cache/sparklines/all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.SparklineBulkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAllSparklinesUnsupportedIs404(t *testing.T) {
	src := &stubSource{err: repository.ErrNotSupported}
	h := NewCacheHandler(logger.Nop(), newStubCacheStore(), src, 0)

	rec := doRequest(h, http.MethodGet, "/cache/sparklines/all", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

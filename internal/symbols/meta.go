package symbols

import (
	"context"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

// MetaService resolves company name / market labels per ticker. Lookups are
// memoized in process and persisted through the MetaStore so restarts do not
// refetch the whole universe.
type MetaService struct {
	store repository.MetaStore
	memo  *gocache.Cache
	log   *logger.Logger
}

func NewMetaService(store repository.MetaStore, log *logger.Logger) *MetaService {
	return &MetaService{
		store: store,
		memo:  gocache.New(6*time.Hour, 30*time.Minute),
		log:   log,
	}
}

// Lookup returns metadata for a ticker, falling back to suffix-derived
// values when nothing is stored. The fallback is never persisted.
func (s *MetaService) Lookup(ctx context.Context, ticker string) *models.TickerMeta {
	key := Resolve(ticker, "")
	if v, ok := s.memo.Get(key); ok {
		return v.(*models.TickerMeta)
	}

	if s.store != nil {
		meta, err := s.store.Get(ctx, key)
		if err == nil && meta != nil {
			s.memo.Set(key, meta, gocache.DefaultExpiration)
			return meta
		}
		if err != nil {
			s.log.Debug("meta store lookup failed", logger.String("ticker", key), logger.Error(err))
		}
	}

	return &models.TickerMeta{
		Ticker:      key,
		CompanyName: key,
		Market:      MarketLabel("", "", key),
	}
}

// Remember stores fresh metadata in both the memo and the backing store.
func (s *MetaService) Remember(ctx context.Context, meta *models.TickerMeta) {
	if meta == nil || meta.Ticker == "" {
		return
	}
	meta.Ticker = Resolve(meta.Ticker, "")
	if meta.FetchedAt.IsZero() {
		meta.FetchedAt = time.Now().UTC()
	}
	s.memo.Set(meta.Ticker, meta, gocache.DefaultExpiration)
	if s.store != nil {
		if err := s.store.Put(ctx, meta); err != nil {
			s.log.Warn("meta store write failed", logger.String("ticker", meta.Ticker), logger.Error(err))
		}
	}
}

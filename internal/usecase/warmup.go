package usecase

import (
	"context"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/internal/symbols"
	"StockBoard/pkg/logger"
)

// UniverseWarmer walks the whole ticker universe through the viewport loader
// on startup, so the chart cache and sparklines are hot before the first
// request lands. It also remembers company metadata for resolved tickers.
type UniverseWarmer struct {
	lists    repository.MarketListRepo
	viewport *ViewportLoader
	meta     *symbols.MetaService
	log      *logger.Logger
}

func NewUniverseWarmer(lists repository.MarketListRepo, viewport *ViewportLoader, meta *symbols.MetaService, log *logger.Logger) *UniverseWarmer {
	return &UniverseWarmer{lists: lists, viewport: viewport, meta: meta, log: log}
}

// Run loads the sorted universe and serves it batch by batch until done or
// canceled. Intended to run in a background goroutine.
func (w *UniverseWarmer) Run(ctx context.Context) error {
	items, total, err := w.lists.List(ctx, &models.MarketListQuery{SortBy: "ticker", Order: "asc"})
	if err != nil {
		return err
	}
	w.log.Info("universe warmup started", logger.Int64("total", total))
	start := time.Now()

	w.viewport.SetUniverse(items)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		batch, more := w.viewport.NextBatch(ctx)
		w.remember(ctx, batch)
		if !more {
			break
		}
	}

	w.log.Info("universe warmup done",
		logger.Int("tickers", len(items)),
		logger.Duration("took", time.Since(start)))
	return nil
}

func (w *UniverseWarmer) remember(ctx context.Context, batch []*models.TickerListItem) {
	if w.meta == nil {
		return
	}
	now := time.Now().UTC()
	for _, it := range batch {
		if it == nil || it.CompanyName == "" {
			continue
		}
		sym := symbols.Resolve(it.Ticker, it.Country)
		w.meta.Remember(ctx, &models.TickerMeta{
			Ticker:      sym,
			CompanyName: it.CompanyName,
			Market:      symbols.MarketLabel(it.Country, it.Exchange, sym),
			FetchedAt:   now,
		})
	}
}

package usecase

import (
	"context"
	"sync"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/symbols"
)

// ViewportLoader tracks which slice of the sorted ticker universe is
// visible and enriches it incrementally. visibleCount starts at PageSize and
// only grows; swapping the universe (filter or sort change) resets it and
// bumps the epoch so results from superseded dispatches are discarded.
type ViewportLoader struct {
	prices *BulkPriceFetcher
	sparks *SparklinePipeline

	PageSize  int
	Lookahead int
	Period    string
	Interval  string

	mu      sync.Mutex
	items   []*models.TickerListItem
	visible int
	served  int
	epoch   uint64
}

func NewViewportLoader(prices *BulkPriceFetcher, sparks *SparklinePipeline, pageSize, lookahead int, period, interval string) *ViewportLoader {
	if pageSize <= 0 {
		pageSize = 50
	}
	if lookahead < 0 {
		lookahead = 0
	}
	if period == "" {
		period = "1d"
	}
	if interval == "" {
		interval = "15m"
	}
	return &ViewportLoader{
		prices:    prices,
		sparks:    sparks,
		PageSize:  pageSize,
		Lookahead: lookahead,
		Period:    period,
		Interval:  interval,
	}
}

// SetUniverse installs a freshly filtered/sorted universe and resets the
// viewport to the first page.
func (l *ViewportLoader) SetUniverse(items []*models.TickerListItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	l.visible = l.PageSize
	if l.visible > len(items) {
		l.visible = len(items)
	}
	l.served = 0
	l.epoch++
}

// VisibleCount returns the current visible row count.
func (l *ViewportLoader) VisibleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// Epoch returns the current universe generation.
func (l *ViewportLoader) Epoch() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch
}

// Advance grows the visible window by one page, triggered by an explicit
// "load more" or by scroll proximity. It never shrinks the window.
func (l *ViewportLoader) Advance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible += l.PageSize
	if l.visible > len(l.items) {
		l.visible = len(l.items)
	}
	return l.visible
}

// Window returns the visible rows plus the lookahead buffer.
func (l *ViewportLoader) Window() []*models.TickerListItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windowLocked()
}

func (l *ViewportLoader) windowLocked() []*models.TickerListItem {
	end := l.visible + l.Lookahead
	if end > len(l.items) {
		end = len(l.items)
	}
	return l.items[:end]
}

// Refresh enriches the current window: one bounded-parallel bulk price pass
// over rows missing stats, then sparklines for rows missing them. Results
// are merged keyed by symbol, so completion order is irrelevant; a result
// arriving after the universe changed is dropped.
func (l *ViewportLoader) Refresh(ctx context.Context) {
	l.mu.Lock()
	epoch := l.epoch
	window := l.windowLocked()
	l.mu.Unlock()

	missingStats := make([]*models.TickerListItem, 0, len(window))
	refs := make([]models.TickerRef, 0, len(window))
	for _, it := range window {
		if it.Stats == nil {
			missingStats = append(missingStats, it)
			refs = append(refs, models.TickerRef{Ticker: it.Ticker, Country: it.Country})
		}
	}

	if len(refs) > 0 {
		stats := l.prices.FetchPrices(ctx, refs, l.Period, l.Interval)
		l.applyStats(epoch, missingStats, stats)
	}

	if l.sparks != nil && l.sameEpoch(epoch) {
		l.sparks.FillSparklines(ctx, window)
	}
}

// applyStats merges fetched stats into items, but only when the dispatch
// epoch still matches; fields already filled are never overwritten.
func (l *ViewportLoader) applyStats(epoch uint64, items []*models.TickerListItem, stats map[string]*models.PriceStats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		return
	}
	for _, it := range items {
		if it.Stats != nil {
			continue
		}
		if s, ok := stats[resolvedKey(it)]; ok && s != nil {
			it.Stats = s
		}
	}
}

func (l *ViewportLoader) sameEpoch(epoch uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch == epoch
}

// NextBatch enriches and returns the next unserved slice of visible rows,
// growing the window afterwards. The second return is false once the whole
// universe has been served for this epoch.
func (l *ViewportLoader) NextBatch(ctx context.Context) ([]*models.TickerListItem, bool) {
	l.mu.Lock()
	if l.served >= len(l.items) {
		l.mu.Unlock()
		return nil, false
	}
	start, end := l.served, l.visible
	l.mu.Unlock()

	l.Refresh(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if end > len(l.items) {
		end = len(l.items)
	}
	batch := l.items[start:end]
	l.served = end
	l.visible += l.PageSize
	if l.visible > len(l.items) {
		l.visible = len(l.items)
	}
	return batch, l.served < len(l.items)
}

func resolvedKey(it *models.TickerListItem) string {
	return symbols.Resolve(it.Ticker, it.Country)
}

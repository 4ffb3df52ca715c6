package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockBoard/internal/domain/models"
	"StockBoard/internal/domain/repository"
	"StockBoard/internal/symbols"
	"StockBoard/pkg/logger"
	"StockBoard/pkg/pool"
)

// Sparkline pixel box. Values are scaled into it by the series' own min/max.
const (
	sparklineWidth  = 120.0
	sparklineHeight = 36.0
)

// breakerState is the bulk-sparkline circuit breaker. It only ever moves
// closed -> open: once the upstream answers "no such route" there is no point
// probing it again this session.
type breakerState int32

const (
	breakerClosed breakerState = iota
	breakerOpen
)

// SparklinePipeline fills SparklinePath on market-list rows. It prefers one
// bulk call for precomputed close series; when that capability is absent it
// falls back to per-ticker history through the chart cache.
type SparklinePipeline struct {
	source  repository.HistorySource
	cache   repository.CacheStore
	metrics repository.Metrics
	log     *logger.Logger

	MaxConcurrent int
	Period        string
	Interval      string
	Staleness     time.Duration

	mu      sync.Mutex
	state   breakerState
	series  map[string][]float64
	fetched bool

	// fetchMu single-flights the bulk probe so concurrent fills do not
	// stampede a route that may be about to open the breaker.
	fetchMu sync.Mutex
}

func NewSparklinePipeline(
	source repository.HistorySource,
	cache repository.CacheStore,
	metrics repository.Metrics,
	log *logger.Logger,
	maxConcurrent int,
	period, interval string,
	staleness time.Duration,
) *SparklinePipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if period == "" {
		period = "1mo"
	}
	if interval == "" {
		interval = "1d"
	}
	if staleness <= 0 {
		staleness = TTLForPeriod(period)
	}
	return &SparklinePipeline{
		source:        source,
		cache:         cache,
		metrics:       metrics,
		log:           log,
		MaxConcurrent: maxConcurrent,
		Period:        period,
		Interval:      interval,
		Staleness:     staleness,
	}
}

// BreakerOpen reports whether the bulk source has been written off for this
// session.
func (s *SparklinePipeline) BreakerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == breakerOpen
}

// Reset closes the breaker and drops the cached bulk series. Intended for
// session boundaries and tests; the breaker never re-closes on its own.
func (s *SparklinePipeline) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = breakerClosed
	s.series = nil
	s.fetched = false
}

// EnsureSparkline fills item.SparklinePath unless it is already set. Any
// failure leaves the field unset; unset is a terminal state for the caller,
// not a pending one.
func (s *SparklinePipeline) EnsureSparkline(ctx context.Context, item *models.TickerListItem) {
	if item == nil || item.SparklinePath != "" {
		return
	}
	sym := symbols.Resolve(item.Ticker, item.Country)

	if closes, ok := s.bulkSeries(ctx, sym); ok {
		if path := RenderSparkline(closes); path != "" {
			item.SparklinePath = path
			s.metrics.RecordSparklineRender("ok")
			return
		}
	}

	closes, err := s.historyCloses(ctx, sym)
	if err != nil {
		s.metrics.RecordSparklineRender("error")
		s.log.Debug("sparkline history fetch failed", logger.String("symbol", sym), logger.Error(err))
		return
	}
	path := RenderSparkline(closes)
	if path == "" {
		s.metrics.RecordSparklineRender("no_data")
		return
	}
	item.SparklinePath = path
	s.metrics.RecordSparklineRender("ok")
}

// FillSparklines runs EnsureSparkline over a working set with bounded
// parallelism. Items already carrying a sparkline are skipped.
func (s *SparklinePipeline) FillSparklines(ctx context.Context, items []*models.TickerListItem) {
	missing := make([]*models.TickerListItem, 0, len(items))
	for _, it := range items {
		if it != nil && it.SparklinePath == "" {
			missing = append(missing, it)
		}
	}
	if len(missing) == 0 {
		return
	}

	tasks := make([]pool.Task[struct{}], len(missing))
	for i, it := range missing {
		it := it
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			s.EnsureSparkline(ctx, it)
			return struct{}{}, nil
		}
	}
	pool.Run(ctx, tasks, s.MaxConcurrent)
}

// bulkSeries returns the precomputed close series for sym, fetching the bulk
// set once per session. A not-supported answer opens the breaker for good.
func (s *SparklinePipeline) bulkSeries(ctx context.Context, sym string) ([]float64, bool) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.mu.Lock()
	if s.state == breakerOpen {
		s.mu.Unlock()
		return nil, false
	}
	if s.fetched {
		closes, ok := s.series[sym]
		s.mu.Unlock()
		return closes, ok
	}
	s.mu.Unlock()

	all, err := s.source.FetchSparklines(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, repository.ErrNotSupported) {
			s.state = breakerOpen
			s.log.Info("bulk sparkline route absent, disabling for session")
		} else {
			s.log.Debug("bulk sparkline fetch failed", logger.Error(err))
		}
		return nil, false
	}

	s.series = make(map[string][]float64, len(all))
	for _, sp := range all {
		s.series[symbols.Resolve(sp.Ticker, "")] = sp.Close
	}
	s.fetched = true

	closes, ok := s.series[sym]
	return closes, ok
}

// historyCloses loads a short close series for one symbol, serving from the
// chart cache when fresh and refreshing it from upstream otherwise.
func (s *SparklinePipeline) historyCloses(ctx context.Context, sym string) ([]float64, error) {
	key := models.CacheKey(sym, s.Interval, s.Period)

	if s.cache != nil {
		stale, err := s.cache.IsStale(ctx, key, s.Staleness)
		if err == nil && !stale {
			entry, err := s.cache.Get(ctx, key)
			if err == nil && entry != nil && !entry.Payload.IsEmpty() {
				s.metrics.RecordCacheLookup(true)
				return entry.Payload.Close, nil
			}
		}
		s.metrics.RecordCacheLookup(false)
	}

	payloads, err := s.source.FetchBulk(ctx, []string{sym}, s.Period, s.Interval)
	if err != nil {
		return nil, err
	}
	payload, ok := payloads[sym]
	if !ok || payload.IsEmpty() {
		return nil, fmt.Errorf("no history for %s", sym)
	}

	if s.cache != nil {
		if _, err := s.cache.Upsert(ctx, key, payload, time.Now().UTC()); err != nil {
			s.log.Debug("sparkline cache upsert failed", logger.String("key", key), logger.Error(err))
		}
	}
	return payload.Close, nil
}

// RenderSparkline scales a close series into the sparkline box and renders
// it as an SVG polyline path. Series shorter than two points render nothing;
// a flat series (min == max) renders a mid-height line instead of dividing
// by zero.
func RenderSparkline(closes []float64) string {
	if len(closes) < 2 {
		return ""
	}

	min, max := closes[0], closes[0]
	for _, v := range closes[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	step := sparklineWidth / float64(len(closes)-1)
	span := max - min

	var b strings.Builder
	for i, v := range closes {
		x := float64(i) * step
		y := sparklineHeight / 2
		if span > 0 {
			// SVG y grows downward
			y = sparklineHeight - (v-min)/span*sparklineHeight
		}
		if i == 0 {
			fmt.Fprintf(&b, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&b, " L%.1f,%.1f", x, y)
		}
	}
	return b.String()
}

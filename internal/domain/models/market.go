package models

import (
	"strings"
	"time"
)

// PriceHistoryPayload holds parallel OHLCV arrays indexed by time step.
// A payload with an empty Close series is treated as absent.
type PriceHistoryPayload struct {
	Dates  []string  `json:"dates,omitempty" bson:"dates,omitempty"`
	Open   []float64 `json:"open" bson:"open"`
	High   []float64 `json:"high" bson:"high"`
	Low    []float64 `json:"low" bson:"low"`
	Close  []float64 `json:"close" bson:"close"`
	Volume []float64 `json:"volume" bson:"volume"`
}

// IsEmpty reports whether the payload carries no usable data.
func (p *PriceHistoryPayload) IsEmpty() bool {
	return p == nil || len(p.Close) == 0
}

// Normalize returns a copy where every parallel array is non-nil, so wire
// clients always see consistent keys.
func (p *PriceHistoryPayload) Normalize() *PriceHistoryPayload {
	if p == nil {
		return &PriceHistoryPayload{
			Open: []float64{}, High: []float64{}, Low: []float64{},
			Close: []float64{}, Volume: []float64{},
		}
	}
	out := *p
	if out.Open == nil {
		out.Open = []float64{}
	}
	if out.High == nil {
		out.High = []float64{}
	}
	if out.Low == nil {
		out.Low = []float64{}
	}
	if out.Close == nil {
		out.Close = []float64{}
	}
	if out.Volume == nil {
		out.Volume = []float64{}
	}
	return &out
}

// PriceStats is the derived per-ticker snapshot shown on the market list.
// Displayed fields are rounded to two decimals; unrounded values are never
// persisted.
type PriceStats struct {
	CurrentPrice  float64 `json:"currentPrice"`
	OpenPrice     float64 `json:"openPrice"`
	PercentChange float64 `json:"percentChange"`
	IsUp          bool    `json:"isUp"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Volume        float64 `json:"volume"`
}

// CacheEntry is one stored chart payload keyed by (ticker, interval, period).
type CacheEntry struct {
	Key       string               `json:"key" bson:"_id"`
	FetchedAt time.Time            `json:"fetched_at" bson:"fetched_at"`
	Payload   *PriceHistoryPayload `json:"payload" bson:"payload"`
}

// Age returns how long ago the entry was fetched.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// IsStaleAt reports whether the entry needs a refetch as of now. Staleness is
// strict: an age of exactly the threshold is still fresh.
func (e *CacheEntry) IsStaleAt(now time.Time, threshold time.Duration) bool {
	return e.Age(now) > threshold
}

// CacheKey builds the compound cache key chart::{TICKER}::{interval}::{period}.
func CacheKey(ticker, interval, period string) string {
	return "chart::" + strings.ToUpper(ticker) + "::" + interval + "::" + period
}

// CacheKeyPrefix is the prefix matching every interval/period combination of
// one ticker.
func CacheKeyPrefix(ticker string) string {
	return "chart::" + strings.ToUpper(ticker) + "::"
}

// ParseCacheKey splits a chart::{TICKER}::{interval}::{period} key into its
// parts. ok is false for anything not matching that shape. The ticker comes
// back as written; rebuild through CacheKey to get the canonical form.
func ParseCacheKey(key string) (ticker, interval, period string, ok bool) {
	parts := strings.Split(key, "::")
	if len(parts) != 4 || parts[0] != "chart" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

// TickerRef identifies one instrument to fetch, with the country used for
// symbol qualification.
type TickerRef struct {
	Ticker  string `json:"ticker"`
	Country string `json:"country,omitempty"`
}

// TickerListItem is one row of the market-list screen. SparklinePath and
// Stats start unset and are filled in place, asynchronously and
// independently, by the enrichment pipeline.
type TickerListItem struct {
	Ticker        string      `json:"ticker" bson:"ticker"`
	CompanyName   string      `json:"companyName" bson:"name"`
	Country       string      `json:"country" bson:"country"`
	Exchange      string      `json:"exchange,omitempty" bson:"exchange,omitempty"`
	Sector        string      `json:"sector,omitempty" bson:"sector,omitempty"`
	LogoURL       string      `json:"logoUrl,omitempty" bson:"logo_url,omitempty"`
	SparklinePath string      `json:"sparklinePath,omitempty" bson:"-"`
	Stats         *PriceStats `json:"priceStats,omitempty" bson:"-"`
}

// SparklineSeries is one precomputed close series from the bulk sparkline
// source.
type SparklineSeries struct {
	Ticker string    `json:"ticker"`
	Close  []float64 `json:"close"`
}

// TickerMeta is the cached company name / market label for one ticker.
type TickerMeta struct {
	Ticker      string    `json:"ticker" bson:"_id"`
	CompanyName string    `json:"companyName" bson:"company_name"`
	Market      string    `json:"market" bson:"market"`
	FetchedAt   time.Time `json:"fetched_at" bson:"fetched_at"`
}

package models

// BulkPriceRequest is the body of POST /price/bulk.
type BulkPriceRequest struct {
	Tickers  []string `json:"tickers" validate:"required,min=1,max=100,dive,required"`
	Period   string   `json:"period" default:"1d"`
	Interval string   `json:"interval" default:"15m"`
	Country  string   `json:"country"`
}

// BulkPriceResponse maps every requested ticker to its stats, or null when
// the upstream had nothing for it.
type BulkPriceResponse struct {
	Success  bool                   `json:"success"`
	Results  map[string]*PriceStats `json:"results"`
	Count    int                    `json:"count"`
	Period   string                 `json:"period"`
	Interval string                 `json:"interval"`
}

// UpsertCacheRequest is the body of POST /cache/:id/upsert.
type UpsertCacheRequest struct {
	FetchedAt string               `json:"fetched_at"`
	Payload   *PriceHistoryPayload `json:"payload" validate:"required"`
}

// MarketListQuery filters and pages the market-list universe.
type MarketListQuery struct {
	Country string `query:"country"`
	Sector  string `query:"sector"`
	Search  string `query:"search"`
	SortBy  string `query:"sortBy" default:"ticker"`
	Order   string `query:"order" default:"asc" validate:"omitempty,oneof=asc desc"`
	Limit   int    `query:"limit" default:"50" validate:"omitempty,min=1,max=500"`
	Offset  int    `query:"offset" validate:"omitempty,min=0"`
}

// SparklineBulkResponse is the body of GET /cache/sparklines/all.
type SparklineBulkResponse struct {
	Success bool              `json:"success"`
	Data    []SparklineSeries `json:"data"`
	Total   int               `json:"total"`
}

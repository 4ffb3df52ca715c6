package usecase

import (
	"strings"
	"time"
)

// TTLForPeriod maps a chart period to how long its cached payload stays
// fresh. Intraday windows move fast, monthly windows barely move.
func TTLForPeriod(period string) time.Duration {
	p := strings.ToLower(period)
	if p == "" {
		return 15 * time.Minute
	}
	switch p {
	case "1d", "5d":
		return 5 * time.Minute
	case "1mo", "3mo", "6mo":
		return time.Hour
	}
	// bare intraday intervals used as periods, e.g. "90m" or "4h"
	if strings.HasSuffix(p, "m") || strings.HasSuffix(p, "h") {
		return 5 * time.Minute
	}
	return 24 * time.Hour
}

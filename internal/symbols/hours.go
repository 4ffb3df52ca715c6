package symbols

import (
	"strings"
	"time"
)

type marketHours struct {
	tz         string
	open, clos struct{ h, m int }
}

func hoursFor(label string) marketHours {
	l := strings.ToUpper(label)
	var h marketHours
	switch {
	case strings.Contains(l, "NASDAQ") || strings.Contains(l, "NYSE") || strings.HasPrefix(l, "US"):
		h.tz = "America/New_York"
		h.open.h, h.open.m = 9, 30
		h.clos.h, h.clos.m = 16, 0
	case strings.Contains(l, "JP") || strings.Contains(l, "TSE") || strings.Contains(l, "TOKYO"):
		h.tz = "Asia/Tokyo"
		h.open.h, h.open.m = 9, 0
		h.clos.h, h.clos.m = 15, 0
	case strings.Contains(l, "TH") || strings.Contains(l, "SET"):
		h.tz = "Asia/Bangkok"
		h.open.h, h.open.m = 9, 30
		h.clos.h, h.clos.m = 16, 30
	default:
		h.tz = "UTC"
		h.open.h, h.open.m = 9, 0
		h.clos.h, h.clos.m = 17, 0
	}
	return h
}

// MarketOpenClose returns today's session open and close for a market label,
// in the exchange's local time. Unknown labels get a generic UTC session.
func MarketOpenClose(label string, now time.Time) (time.Time, time.Time) {
	h := hoursFor(label)
	loc, err := time.LoadLocation(h.tz)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), h.open.h, h.open.m, 0, 0, loc)
	clos := time.Date(local.Year(), local.Month(), local.Day(), h.clos.h, h.clos.m, 0, 0, loc)
	return open, clos
}

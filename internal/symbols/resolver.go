package symbols

import "strings"

// countrySuffixes maps ISO-ish country codes to the exchange suffix the
// upstream chart source expects. Plain US tickers carry no suffix.
var countrySuffixes = map[string]string{
	"TH": ".BK",
	"JP": ".T",
}

// Resolve qualifies a bare ticker with the exchange suffix for countryCode.
// A ticker that already carries a suffix is returned unchanged, which makes
// Resolve idempotent. Unknown countries fall through to the bare ticker.
func Resolve(ticker, countryCode string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return t
	}
	if strings.Contains(t, ".") {
		return t
	}
	if suffix, ok := countrySuffixes[strings.ToUpper(countryCode)]; ok {
		return t + suffix
	}
	return t
}

// MarketOf derives the market code from a qualified symbol's suffix.
func MarketOf(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case strings.HasSuffix(t, ".T"):
		return "JP"
	case strings.HasSuffix(t, ".BK"):
		return "TH"
	default:
		return "US"
	}
}

// MarketLabel formats a display label from upstream metadata, falling back
// to the suffix-derived market when the metadata is missing.
func MarketLabel(market, exchange, ticker string) string {
	m := strings.ToUpper(market)
	ex := strings.ToUpper(exchange)

	if m == "US" || MarketOf(ticker) == "US" {
		if strings.Contains(ex, "NASDAQ") || strings.Contains(ex, "NMS") {
			return "US (NASDAQ)"
		}
		if strings.Contains(ex, "NYSE") || strings.Contains(ex, "NYQ") {
			return "US (NYSE)"
		}
		return "US"
	}
	if m == "JP" || m == "JPN" || m == "JAPAN" || MarketOf(ticker) == "JP" {
		return "JP (TSE/TYO)"
	}
	if m == "TH" || m == "THAILAND" || MarketOf(ticker) == "TH" {
		return "TH (SET)"
	}
	return MarketOf(ticker)
}

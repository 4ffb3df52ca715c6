package symbols

import (
	"testing"
	"time"
)

func TestMarketOpenCloseUS(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	open, clos := MarketOpenClose("US (NASDAQ)", now)

	if open.Hour() != 9 || open.Minute() != 30 {
		t.Fatalf("US open = %02d:%02d, want 09:30", open.Hour(), open.Minute())
	}
	if clos.Hour() != 16 || clos.Minute() != 0 {
		t.Fatalf("US close = %02d:%02d, want 16:00", clos.Hour(), clos.Minute())
	}
	if open.Location().String() != "America/New_York" {
		t.Fatalf("US session must be exchange-local, got %s", open.Location())
	}
}

func TestMarketOpenCloseJP(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	open, clos := MarketOpenClose("JP (TSE/TYO)", now)

	if open.Hour() != 9 || clos.Hour() != 15 {
		t.Fatalf("JP session = %02d-%02d, want 09-15", open.Hour(), clos.Hour())
	}
}

func TestMarketOpenCloseUnknownLabel(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	open, clos := MarketOpenClose("XX", now)

	if open.Location() != time.UTC {
		t.Fatalf("unknown market falls back to UTC")
	}
	if !open.Before(clos) {
		t.Fatalf("open must precede close")
	}
}

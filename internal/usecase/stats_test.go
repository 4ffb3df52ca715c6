package usecase

import (
	"testing"

	"StockBoard/internal/domain/models"
)

func TestDeriveStats(t *testing.T) {
	p := &models.PriceHistoryPayload{
		Close:  []float64{100, 105, 98},
		Open:   []float64{100},
		High:   []float64{101, 106, 99},
		Low:    []float64{99, 104, 97},
		Volume: []float64{1000, 2000, 1500},
	}

	s := DeriveStats(p)
	if s == nil {
		t.Fatalf("expected stats, got nil")
	}
	if s.CurrentPrice != 98.00 {
		t.Fatalf("currentPrice = %v, want 98.00", s.CurrentPrice)
	}
	if s.OpenPrice != 100.00 {
		t.Fatalf("openPrice = %v, want 100.00", s.OpenPrice)
	}
	if s.PercentChange != -2.00 {
		t.Fatalf("percentChange = %v, want -2.00", s.PercentChange)
	}
	if s.IsUp {
		t.Fatalf("isUp = true, want false")
	}
	if s.High != 106.00 {
		t.Fatalf("high = %v, want 106.00", s.High)
	}
	if s.Low != 97.00 {
		t.Fatalf("low = %v, want 97.00", s.Low)
	}
	if s.Volume != 1500.00 {
		t.Fatalf("volume = %v, want 1500.00", s.Volume)
	}
}

func TestDeriveStatsEmptyClose(t *testing.T) {
	if s := DeriveStats(&models.PriceHistoryPayload{Close: []float64{}}); s != nil {
		t.Fatalf("expected nil for empty close, got %+v", s)
	}
	if s := DeriveStats(nil); s != nil {
		t.Fatalf("expected nil for nil payload, got %+v", s)
	}
}

func TestDeriveStatsMissingParallelArrays(t *testing.T) {
	s := DeriveStats(&models.PriceHistoryPayload{Close: []float64{42.4567}})
	if s == nil {
		t.Fatalf("expected stats")
	}
	if s.CurrentPrice != 42.46 {
		t.Fatalf("currentPrice = %v, want 42.46", s.CurrentPrice)
	}
	if s.OpenPrice != 42.46 || s.High != 42.46 || s.Low != 42.46 {
		t.Fatalf("open/high/low should fall back to current: %+v", s)
	}
	if s.Volume != 0 {
		t.Fatalf("volume = %v, want 0", s.Volume)
	}
	if s.PercentChange != 0 {
		t.Fatalf("percentChange = %v, want 0", s.PercentChange)
	}
	if !s.IsUp {
		t.Fatalf("flat series should count as up")
	}
}

func TestDeriveStatsZeroOpenGuardsDivision(t *testing.T) {
	s := DeriveStats(&models.PriceHistoryPayload{
		Close: []float64{10},
		Open:  []float64{0},
	})
	if s.PercentChange != 0 {
		t.Fatalf("percentChange = %v, want 0 when open is 0", s.PercentChange)
	}
}

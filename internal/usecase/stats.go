package usecase

import (
	"math"

	"StockBoard/internal/domain/models"
)

// DeriveStats computes the market-list snapshot from a price history payload.
// Returns nil when the close series is empty; a payload without closes is no
// data, whatever its other fields hold.
func DeriveStats(p *models.PriceHistoryPayload) *models.PriceStats {
	if p.IsEmpty() {
		return nil
	}

	current := p.Close[len(p.Close)-1]

	open := current
	if len(p.Open) > 0 {
		open = p.Open[0]
	}

	high := current
	if len(p.High) > 0 {
		high = p.High[0]
		for _, v := range p.High[1:] {
			if v > high {
				high = v
			}
		}
	}

	low := current
	if len(p.Low) > 0 {
		low = p.Low[0]
		for _, v := range p.Low[1:] {
			if v < low {
				low = v
			}
		}
	}

	var volume float64
	if len(p.Volume) > 0 {
		volume = p.Volume[len(p.Volume)-1]
	}

	var pct float64
	if open > 0 {
		pct = (current - open) / open * 100
	}

	return &models.PriceStats{
		CurrentPrice:  round2(current),
		OpenPrice:     round2(open),
		PercentChange: round2(pct),
		IsUp:          current >= open,
		High:          round2(high),
		Low:           round2(low),
		Close:         round2(current),
		Volume:        round2(volume),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

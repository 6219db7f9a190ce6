package engine

import (
	"sort"

	"github.com/tempowatch/sentinel/internal/domain"
)

// ComputeConcentrationRisk measures how concentrated resting liquidity is
// across ticks using a Herfindahl-Hirschman index over percentage shares.
// Per-side indexes normalize against their own side's total. An empty book
// returns the all-zero low-risk result.
func ComputeConcentrationRisk(snap domain.OrderbookSnapshot) domain.ConcentrationRisk {
	levels := snap.Levels()
	total := snap.TotalBidLiquidity() + snap.TotalAskLiquidity()
	if total == 0 {
		return domain.ConcentrationRisk{Level: domain.ConcentrationLow}
	}

	shares := make([]float64, 0, len(levels))
	var hhi float64
	for _, l := range levels {
		share := l.Liquidity / total * 100
		shares = append(shares, share)
		hhi += share * share
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))

	top := shares[0]
	var top5 float64
	for i := 0; i < len(shares) && i < 5; i++ {
		top5 += shares[i]
	}

	return domain.ConcentrationRisk{
		HHI:              round(hhi),
		Level:            concentrationLevel(hhi),
		TopTickShare:     round1(top),
		Top5TickShare:    round1(top5),
		BidConcentration: sideHHI(snap.Bids, snap.TotalBidLiquidity()),
		AskConcentration: sideHHI(snap.Asks, snap.TotalAskLiquidity()),
	}
}

func sideHHI(levels []domain.OrderbookLevel, total float64) int {
	if total == 0 {
		return 0
	}
	var hhi float64
	for _, l := range levels {
		share := l.Liquidity / total * 100
		hhi += share * share
	}
	return round(hhi)
}

func concentrationLevel(hhi float64) domain.ConcentrationLevel {
	switch {
	case hhi < 1500:
		return domain.ConcentrationLow
	case hhi < 2500:
		return domain.ConcentrationModerate
	default:
		return domain.ConcentrationHigh
	}
}

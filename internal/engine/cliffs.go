package engine

import (
	"sort"

	"github.com/tempowatch/sentinel/internal/domain"
)

// criticalDrop is the drop fraction at which a cliff escalates from warning
// to critical severity.
const criticalDrop = 0.8

// DetectLiquidityCliffs walks each side of the book from the peg outward and
// flags any adjacent-level drop of at least threshold (a 0-1 fraction).
// Levels with zero liquidity never start a cliff. Results are sorted by drop
// percent descending.
func DetectLiquidityCliffs(snap domain.OrderbookSnapshot, threshold float64) []domain.LiquidityCliff {
	var cliffs []domain.LiquidityCliff
	cliffs = append(cliffs, sideCliffs(snap.Bids, threshold)...)
	cliffs = append(cliffs, sideCliffs(snap.Asks, threshold)...)
	sort.SliceStable(cliffs, func(i, j int) bool {
		return cliffs[i].DropPercent > cliffs[j].DropPercent
	})
	return cliffs
}

func sideCliffs(levels []domain.OrderbookLevel, threshold float64) []domain.LiquidityCliff {
	sorted := make([]domain.OrderbookLevel, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Tick) < abs(sorted[j].Tick)
	})

	var cliffs []domain.LiquidityCliff
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.Liquidity == 0 {
			continue
		}
		drop := (prev.Liquidity - curr.Liquidity) / prev.Liquidity
		if drop < threshold {
			continue
		}
		severity := domain.CliffWarning
		if drop >= criticalDrop {
			severity = domain.CliffCritical
		}
		cliffs = append(cliffs, domain.LiquidityCliff{
			Tick:            curr.Tick,
			Price:           curr.Price,
			Side:            curr.Side,
			DropPercent:     round(drop * 100),
			LiquidityBefore: prev.Liquidity,
			LiquidityAfter:  curr.Liquidity,
			Severity:        severity,
		})
	}
	return cliffs
}

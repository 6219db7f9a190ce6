// Package engine implements the peg-stability metrics: tick math, the Peg
// Stress Index, cliff/whale detection, flip aggregates, concentration risk,
// the stability forecast, alert generation, and report assembly. All functions
// are pure and synchronous; the only state is the explicit PSITracker.
package engine

import (
	"fmt"
	"math"

	"github.com/tempowatch/sentinel/internal/domain"
)

// TickUnit is the fractional price step per tick. A tick of +100 means the
// price sits 0.1% above the peg.
const TickUnit = 1e-5

// PegPrice is the reference price for stablecoin pairs.
const PegPrice = 1.0

// TickToPrice converts a signed tick offset to an absolute price.
func TickToPrice(tick int) float64 {
	return PegPrice * (1 + float64(tick)*TickUnit)
}

// PriceToTick converts a price to the nearest tick offset.
func PriceToTick(price float64) int {
	return int(math.Round((price/PegPrice - 1) / TickUnit))
}

// SpreadPercent returns the bid/ask spread as a percentage of the mid price.
// Zero when the mid is zero.
func SpreadPercent(bestBid, bestAsk float64) float64 {
	mid := (bestBid + bestAsk) / 2
	if mid == 0 {
		return 0
	}
	return (bestAsk - bestBid) / mid * 100
}

// ComputePegDeviation measures the mid price displacement from the peg.
// Deviations under 0.001% in magnitude count as on_peg.
func ComputePegDeviation(midPrice float64) domain.PegDeviation {
	abs := midPrice - PegPrice
	pct := abs / PegPrice * 100
	dir := domain.DeviationOnPeg
	if math.Abs(pct) >= 0.001 {
		if pct > 0 {
			dir = domain.DeviationAbove
		} else {
			dir = domain.DeviationBelow
		}
	}
	return domain.PegDeviation{Absolute: abs, Percentage: pct, Direction: dir}
}

// Normalize maps value linearly from [min,max] onto [0,100], clamping outside
// the range. A degenerate range (max <= min) yields 0.
func Normalize(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	if value <= min {
		return 0
	}
	if value >= max {
		return 100
	}
	return (value - min) / (max - min) * 100
}

// clamp bounds v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round matches the half-away-from-zero rounding used throughout the metric
// formulas.
func round(v float64) int {
	return int(math.Round(v))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatPrice renders a price with 5 decimals for display.
func FormatPrice(p float64) string {
	return fmt.Sprintf("%.5f", p)
}

// FormatLiquidity renders a liquidity figure with thousands-scale suffixes.
func FormatLiquidity(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatPercent renders a percentage with 3 decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.3f%%", v)
}

package engine

import "github.com/tempowatch/sentinel/internal/domain"

// BuildDashboard runs one full engine pass over a snapshot and assembles the
// dashboard state: every metric, detection, and alert, plus the spread, peg
// deviation, and liquidity depth summaries derived from the book.
func BuildDashboard(pair string, snap domain.OrderbookSnapshot, tracker *PSITracker, thresholds domain.AlertThresholds) domain.DashboardState {
	psi := tracker.Compute(pair, snap)
	cliffs := DetectLiquidityCliffs(snap, thresholds.CliffDropFraction())
	walls := DetectWhaleWalls(snap, thresholds.WhaleFraction())
	flip := AnalyzeFlipOrders(snap)
	concentration := ComputeConcentrationRisk(snap)
	forecast := ComputeStabilityForecast(snap, psi, cliffs)
	alerts := GenerateAlerts(snap, psi, cliffs, walls, thresholds)

	return domain.DashboardState{
		Pair:           pair,
		Orderbook:      snap,
		PSI:            psi,
		Cliffs:         cliffs,
		WhaleWalls:     walls,
		FlipMetrics:    flip,
		Forecast:       forecast,
		Alerts:         alerts,
		Concentration:  concentration,
		Spread:         buildSpread(snap),
		PegDeviation:   ComputePegDeviation(snap.MidPrice),
		LiquidityDepth: buildDepth(snap),
	}
}

func buildSpread(snap domain.OrderbookSnapshot) domain.Spread {
	return domain.Spread{
		Absolute:   snap.BestAsk.Price - snap.BestBid.Price,
		Percentage: SpreadPercent(snap.BestBid.Price, snap.BestAsk.Price),
	}
}

func buildDepth(snap domain.OrderbookSnapshot) domain.LiquidityDepth {
	totalBid := snap.TotalBidLiquidity()
	totalAsk := snap.TotalAskLiquidity()
	ratio := 1.0
	if totalAsk > 0 {
		ratio = totalBid / totalAsk
	}
	var near float64
	for _, l := range snap.Levels() {
		if abs(l.Tick) <= nearPegTicks {
			near += l.Liquidity
		}
	}
	return domain.LiquidityDepth{
		TotalBid: totalBid,
		TotalAsk: totalAsk,
		Ratio:    ratio,
		NearPeg:  near,
	}
}

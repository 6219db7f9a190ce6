package engine

import "github.com/tempowatch/sentinel/internal/domain"

// Canned outlook text per probability tier.
const (
	outlookHigh     = "Strong peg stability. Liquidity well-distributed with tight spreads."
	outlookModerate = "Moderate stability. Monitor for deterioration in key metrics."
	outlookLow      = "Elevated peg risk. Liquidity gaps and widening spreads detected."
)

// ComputeStabilityForecast synthesizes a short-term outlook from the current
// metrics. It starts from a score of 100 and subtracts penalties:
//
//	psi.Value * 0.4
//	15 per critical cliff, 5 per warning cliff
//	15 when the spread is widening (>0.2%)
//	10 when the PSI trend is worsening
//
// The clamped score maps to probability tiers at 70 and 40 and doubles as
// the confidence figure.
func ComputeStabilityForecast(snap domain.OrderbookSnapshot, psi domain.PSIResult, cliffs []domain.LiquidityCliff) domain.StabilityForecast {
	spread := SpreadPercent(snap.BestBid.Price, snap.BestAsk.Price)

	score := 100 - float64(psi.Value)*0.4
	for _, c := range cliffs {
		if c.Severity == domain.CliffCritical {
			score -= 15
		} else {
			score -= 5
		}
	}
	spreadTrend := classifySpread(spread)
	if spreadTrend == domain.SpreadWidening {
		score -= 15
	}
	if psi.Trend == domain.TrendWorsening {
		score -= 10
	}
	score = clamp(score, 0, 100)

	probability := domain.ForecastLow
	outlook := outlookLow
	switch {
	case score >= 70:
		probability, outlook = domain.ForecastHigh, outlookHigh
	case score >= 40:
		probability, outlook = domain.ForecastModerate, outlookModerate
	}

	return domain.StabilityForecast{
		Probability: probability,
		Confidence:  round(score),
		Factors: domain.ForecastFactors{
			StressTrend:       psi.Trend,
			LiquidityVelocity: liquidityVelocity(snap),
			SpreadTrend:       spreadTrend,
		},
		ShortTermOutlook: outlook,
	}
}

// liquidityVelocity is the near-peg liquidity share x100 for this snapshot.
func liquidityVelocity(snap domain.OrderbookSnapshot) int {
	total := snap.TotalBidLiquidity() + snap.TotalAskLiquidity()
	if total == 0 {
		return 0
	}
	var near float64
	for _, l := range snap.Levels() {
		if abs(l.Tick) <= nearPegTicks {
			near += l.Liquidity
		}
	}
	return round(near / total * 100)
}

func classifySpread(spread float64) domain.SpreadTrend {
	switch {
	case spread < 0.05:
		return domain.SpreadTightening
	case spread > 0.2:
		return domain.SpreadWidening
	default:
		return domain.SpreadSteady
	}
}

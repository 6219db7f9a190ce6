package engine

import (
	"math"
	"sync"

	"github.com/tempowatch/sentinel/internal/domain"
)

// nearPegTicks bounds the near-peg band used by the thinness component, the
// liquidity depth summary, and the flip density metric.
const nearPegTicks = 50

// psiSeed is the neutral baseline used before a pair has any history, so the
// first observation does not read as a trend.
const psiSeed = 25

// trendBand is the dead zone around the previous value inside which the trend
// reads stable.
const trendBand = 3

// PSITracker keeps the previous PSI value per pair so consecutive
// computations can report a trend. Safe for concurrent use. Callers own the
// tracker; there is no process-global instance.
type PSITracker struct {
	mu   sync.Mutex
	prev map[string]int
}

// NewPSITracker returns an empty tracker.
func NewPSITracker() *PSITracker {
	return &PSITracker{prev: make(map[string]int)}
}

// Compute calculates the Peg Stress Index for one snapshot and advances the
// pair's baseline.
//
// Components, each normalized to 0-100 and rounded:
//   - spread stress: spread percent over [0.01, 0.5]
//   - liquidity thinness: 1 - nearPegRatio over [0.2, 0.8], where
//     nearPegRatio is the share of liquidity within 50 ticks of the peg
//   - order imbalance: |bid-ask| / (bid+ask) over [0, 0.5]
//
// The index is the weighted sum 0.3/0.4/0.3, rounded and clamped to [0,100].
func (t *PSITracker) Compute(pair string, snap domain.OrderbookSnapshot) domain.PSIResult {
	spread := SpreadPercent(snap.BestBid.Price, snap.BestAsk.Price)
	spreadStress := round(Normalize(spread, 0.01, 0.5))

	totalBid := snap.TotalBidLiquidity()
	totalAsk := snap.TotalAskLiquidity()
	total := totalBid + totalAsk

	var nearPegRatio float64
	if total > 0 {
		var near float64
		for _, l := range snap.Levels() {
			if abs(l.Tick) <= nearPegTicks {
				near += l.Liquidity
			}
		}
		nearPegRatio = near / total
	}
	thinness := round(Normalize(1-nearPegRatio, 0.2, 0.8))

	var imbalance int
	if total > 0 {
		imbalance = round(Normalize(math.Abs(totalBid-totalAsk)/total, 0, 0.5))
	}

	value := round(0.3*float64(spreadStress) + 0.4*float64(thinness) + 0.3*float64(imbalance))
	value = int(clamp(float64(value), 0, 100))

	t.mu.Lock()
	prev, ok := t.prev[pair]
	if !ok {
		prev = psiSeed
	}
	t.prev[pair] = value
	t.mu.Unlock()

	trend := domain.TrendStable
	switch {
	case value < prev-trendBand:
		trend = domain.TrendImproving
	case value > prev+trendBand:
		trend = domain.TrendWorsening
	}

	return domain.PSIResult{
		Value: value,
		Level: psiLevel(value),
		Components: domain.PSIComponents{
			SpreadStress:      spreadStress,
			LiquidityThinness: thinness,
			OrderImbalance:    imbalance,
		},
		Trend:         trend,
		PreviousValue: prev,
	}
}

// Reset clears the baseline for a pair. Used when the monitor switches
// sources so the synthetic book does not trend against the live one.
func (t *PSITracker) Reset(pair string) {
	t.mu.Lock()
	delete(t.prev, pair)
	t.mu.Unlock()
}

func psiLevel(value int) domain.PSILevel {
	switch {
	case value <= 30:
		return domain.PSIStable
	case value <= 60:
		return domain.PSIModerate
	default:
		return domain.PSICritical
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

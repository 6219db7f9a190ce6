package domain

import (
	"fmt"
	"time"
)

// PSILevel is the tier derived from the Peg Stress Index value.
type PSILevel string

const (
	PSIStable   PSILevel = "stable"
	PSIModerate PSILevel = "moderate"
	PSICritical PSILevel = "critical"
)

// Trend describes how a metric moved relative to its previous observation.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// PSIComponents are the three normalized 0-100 sub-scores combined into the
// Peg Stress Index: spread stress (weight 30%), liquidity thinness (40%), and
// order imbalance (30%).
type PSIComponents struct {
	SpreadStress      int `json:"spreadStress"`
	LiquidityThinness int `json:"liquidityThinness"`
	OrderImbalance    int `json:"orderImbalance"`
}

// PSIResult is the output of one Peg Stress Index computation.
type PSIResult struct {
	// Value is the rounded weighted sum of the components, clamped to [0,100].
	Value      int           `json:"value"`
	Level      PSILevel      `json:"level"`
	Components PSIComponents `json:"components"`
	// Trend compares Value against the previous value for the same pair:
	// more than 3 points lower is improving, more than 3 higher is worsening.
	Trend         Trend `json:"trend"`
	PreviousValue int   `json:"previousValue"`
}

// CliffSeverity classifies a liquidity cliff by the size of the drop.
type CliffSeverity string

const (
	CliffWarning  CliffSeverity = "warning"
	CliffCritical CliffSeverity = "critical"
)

// LiquidityCliff is a sharp discontinuity between adjacent levels walking away
// from the peg. Cliffs are recomputed fresh each snapshot.
type LiquidityCliff struct {
	Tick            int           `json:"tick"`
	Price           float64       `json:"price"`
	Side            Side          `json:"side"`
	DropPercent     int           `json:"dropPercent"`
	LiquidityBefore float64       `json:"liquidityBefore"`
	LiquidityAfter  float64       `json:"liquidityAfter"`
	Severity        CliffSeverity `json:"severity"`
}

// WallClassification tags a whale wall by side and proximity to the peg.
type WallClassification string

const (
	// WallDefense is a large bid within 100 ticks of the peg.
	WallDefense WallClassification = "defense"
	// WallDistribution is a large ask within 100 ticks of the peg.
	WallDistribution WallClassification = "distribution"
	// WallAccumulation is a large level on either side beyond 100 ticks.
	WallAccumulation WallClassification = "accumulation"
)

// WhaleWall is a single level holding a disproportionate share of total
// resting liquidity.
type WhaleWall struct {
	Tick           int                `json:"tick"`
	Price          float64            `json:"price"`
	Side           Side               `json:"side"`
	Liquidity      float64            `json:"liquidity"`
	PercentOfTotal int                `json:"percentOfTotal"`
	Classification WallClassification `json:"classification"`
}

// FlipOrderMetrics aggregates flip-order activity across the whole book.
type FlipOrderMetrics struct {
	// TotalFlipOrders is the sum of OrderCount over flip-tagged levels.
	TotalFlipOrders int `json:"totalFlipOrders"`
	// FlipPercentage is TotalFlipOrders as a share of all orders in the book.
	FlipPercentage float64 `json:"flipPercentage"`
	// FlipDensityNearPeg is the share of flip levels among all levels within
	// 50 ticks of the peg, as a percentage.
	FlipDensityNearPeg float64 `json:"flipDensityNearPeg"`
	// FlipBidRatio and FlipAskRatio split flip levels by side, in percent.
	// Both default to 50 when the book has no flip levels.
	FlipBidRatio float64 `json:"flipBidRatio"`
	FlipAskRatio float64 `json:"flipAskRatio"`
	// AvgFlipSpreadCapture is a placeholder constant; deriving it requires
	// trade-level data that is not part of the snapshot contract.
	AvgFlipSpreadCapture float64 `json:"avgFlipSpreadCapture"`
}

// ConcentrationLevel is the risk tier derived from the HHI score.
type ConcentrationLevel string

const (
	ConcentrationLow      ConcentrationLevel = "low"
	ConcentrationModerate ConcentrationLevel = "moderate"
	ConcentrationHigh     ConcentrationLevel = "high"
)

// ConcentrationRisk is the Herfindahl-Hirschman concentration of resting
// liquidity across ticks.
type ConcentrationRisk struct {
	// HHI is the sum of squared percentage shares (0-10000 theoretical).
	HHI   int                `json:"hhi"`
	Level ConcentrationLevel `json:"level"`
	// TopTickShare and Top5TickShare are percentages of grand total
	// liquidity, rounded to one decimal.
	TopTickShare  float64 `json:"topTickShare"`
	Top5TickShare float64 `json:"top5TickShare"`
	// BidConcentration and AskConcentration are per-side HHIs, each
	// normalized against its own side's total.
	BidConcentration int `json:"bidConcentration"`
	AskConcentration int `json:"askConcentration"`
}

// ForecastProbability is the stability outlook label.
type ForecastProbability string

const (
	ForecastHigh     ForecastProbability = "high"
	ForecastModerate ForecastProbability = "moderate"
	ForecastLow      ForecastProbability = "low"
)

// SpreadTrend describes the current spread regime.
type SpreadTrend string

const (
	SpreadTightening SpreadTrend = "tightening"
	SpreadSteady     SpreadTrend = "stable"
	SpreadWidening   SpreadTrend = "widening"
)

// ForecastFactors are the inputs surfaced alongside a stability forecast.
type ForecastFactors struct {
	StressTrend Trend `json:"stressTrend"`
	// LiquidityVelocity is the near-peg liquidity ratio x100 for the current
	// snapshot. The name is historical; it is a point-in-time proxy, not a
	// rate of change.
	LiquidityVelocity int         `json:"liquidityVelocity"`
	SpreadTrend       SpreadTrend `json:"spreadTrend"`
}

// StabilityForecast is the synthesized short-term peg stability outlook.
type StabilityForecast struct {
	Probability      ForecastProbability `json:"probability"`
	Confidence       int                 `json:"confidence"`
	Factors          ForecastFactors     `json:"factors"`
	ShortTermOutlook string              `json:"shortTermOutlook"`
}

// AlertType identifies the rule that produced an alert.
type AlertType string

const (
	AlertPSICritical    AlertType = "psi_critical"
	AlertLiquidityCliff AlertType = "liquidity_cliff"
	AlertWhaleWall      AlertType = "whale_wall"
	AlertSpreadWarning  AlertType = "spread_warning"
	AlertPegDeviation   AlertType = "peg_deviation"
	AlertFlipAnomaly    AlertType = "flip_anomaly"
)

// AlertSeverity orders alerts by urgency.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// SentinelAlert is a single alert emitted by the generator. Alerts are
// regenerated fully on each engine pass; there is no cross-call suppression.
type SentinelAlert struct {
	// ID is a UUID, unique across process restarts and concurrent instances.
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      AlertType      `json:"type"`
	Severity  AlertSeverity  `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// AlertThresholds are the externally supplied knobs consumed by the engine.
// Every engine entry point that classifies against thresholds takes them
// explicitly; there is no implicit global fallback.
type AlertThresholds struct {
	// PSIWarning and PSICritical are on the 0-100 PSI scale.
	PSIWarning  float64 `json:"psiWarning" toml:"psi_warning"`
	PSICritical float64 `json:"psiCritical" toml:"psi_critical"`
	// SpreadWarning and SpreadCritical are spread percentages.
	SpreadWarning  float64 `json:"spreadWarning" toml:"spread_warning"`
	SpreadCritical float64 `json:"spreadCritical" toml:"spread_critical"`
	// CliffDropPercent and WhalePercent are percentages; use the fraction
	// helpers when calling the detectors.
	CliffDropPercent float64 `json:"cliffDropPercent" toml:"cliff_drop_percent"`
	WhalePercent     float64 `json:"whalePercent" toml:"whale_percent"`
}

// DefaultThresholds returns the stock threshold set.
func DefaultThresholds() AlertThresholds {
	return AlertThresholds{
		PSIWarning:       30,
		PSICritical:      60,
		SpreadWarning:    0.3,
		SpreadCritical:   0.5,
		CliffDropPercent: 60,
		WhalePercent:     5,
	}
}

// CliffDropFraction converts CliffDropPercent to the 0-1 fraction expected by
// the cliff detector.
func (t AlertThresholds) CliffDropFraction() float64 {
	return t.CliffDropPercent / 100
}

// WhaleFraction converts WhalePercent to the 0-1 fraction expected by the
// whale detector.
func (t AlertThresholds) WhaleFraction() float64 {
	return t.WhalePercent / 100
}

// ValidateThresholds rejects threshold sets with out-of-range or inverted
// values. Errors wrap ErrInvalidThresholds.
func ValidateThresholds(t AlertThresholds) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidThresholds, fmt.Sprintf(format, args...))
	}
	if t.PSIWarning < 0 || t.PSIWarning > 100 {
		return fail("psi warning %v outside [0,100]", t.PSIWarning)
	}
	if t.PSICritical < 0 || t.PSICritical > 100 {
		return fail("psi critical %v outside [0,100]", t.PSICritical)
	}
	if t.PSIWarning >= t.PSICritical {
		return fail("psi warning %v must be below critical %v", t.PSIWarning, t.PSICritical)
	}
	if t.SpreadWarning <= 0 {
		return fail("spread warning %v must be positive", t.SpreadWarning)
	}
	if t.SpreadWarning >= t.SpreadCritical {
		return fail("spread warning %v must be below critical %v", t.SpreadWarning, t.SpreadCritical)
	}
	if t.CliffDropPercent <= 0 || t.CliffDropPercent > 100 {
		return fail("cliff drop percent %v outside (0,100]", t.CliffDropPercent)
	}
	if t.WhalePercent <= 0 || t.WhalePercent > 100 {
		return fail("whale percent %v outside (0,100]", t.WhalePercent)
	}
	return nil
}

// Spread is the current bid/ask spread in absolute and percentage terms.
type Spread struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

// DeviationDirection places the mid price relative to the peg.
type DeviationDirection string

const (
	DeviationAbove DeviationDirection = "above"
	DeviationBelow DeviationDirection = "below"
	DeviationOnPeg DeviationDirection = "on_peg"
)

// PegDeviation is the mid price displacement from the peg reference.
type PegDeviation struct {
	Absolute   float64            `json:"absolute"`
	Percentage float64            `json:"percentage"`
	Direction  DeviationDirection `json:"direction"`
}

// LiquidityDepth summarizes resting liquidity by side and near the peg.
type LiquidityDepth struct {
	TotalBid float64 `json:"totalBid"`
	TotalAsk float64 `json:"totalAsk"`
	// Ratio is TotalBid/TotalAsk, or 1 when the ask side is empty.
	Ratio float64 `json:"ratio"`
	// NearPeg is liquidity within 50 ticks of the peg, both sides.
	NearPeg float64 `json:"nearPeg"`
}

// DashboardState aggregates one full engine pass over a snapshot together
// with the caller-computed spread, deviation, and depth figures.
type DashboardState struct {
	Pair          string            `json:"pair"`
	Orderbook     OrderbookSnapshot `json:"orderbook"`
	PSI           PSIResult         `json:"psi"`
	Cliffs        []LiquidityCliff  `json:"cliffs"`
	WhaleWalls    []WhaleWall       `json:"whaleWalls"`
	FlipMetrics   FlipOrderMetrics  `json:"flipMetrics"`
	Forecast      StabilityForecast `json:"forecast"`
	Alerts        []SentinelAlert   `json:"alerts"`
	Concentration ConcentrationRisk `json:"concentration"`
	Spread        Spread            `json:"spread"`
	PegDeviation  PegDeviation      `json:"pegDeviation"`
	LiquidityDepth LiquidityDepth   `json:"liquidityDepth"`
}

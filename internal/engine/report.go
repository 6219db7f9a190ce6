package engine

import (
	"time"

	"github.com/tempowatch/sentinel/internal/domain"
)

// reportTitle is the fixed heading of the export document.
const reportTitle = "Peg Stability Sentinel Report"

// ReportSummary is the headline block of the export document.
type ReportSummary struct {
	PegStressIndex    int                        `json:"pegStressIndex"`
	PegStressLevel    domain.PSILevel            `json:"pegStressLevel"`
	StabilityForecast domain.ForecastProbability `json:"stabilityForecast"`
	SpreadPercent     float64                    `json:"spreadPercent"`
	PegDeviation      domain.PegDeviation        `json:"pegDeviation"`
	ConcentrationRisk domain.ConcentrationLevel  `json:"concentrationRisk"`
}

// ReportMetrics carries the full metric set.
type ReportMetrics struct {
	PSI            domain.PSIResult         `json:"psi"`
	Concentration  domain.ConcentrationRisk `json:"concentration"`
	LiquidityDepth domain.LiquidityDepth    `json:"liquidityDepth"`
	Spread         domain.Spread            `json:"spread"`
	FlipOrders     domain.FlipOrderMetrics  `json:"flipOrders"`
	Forecast       domain.StabilityForecast `json:"forecast"`
}

// ReportDetections carries the detector outputs.
type ReportDetections struct {
	WhaleWalls      []domain.WhaleWall      `json:"whaleWalls"`
	LiquidityCliffs []domain.LiquidityCliff `json:"liquidityCliffs"`
}

// ReportDocument is the self-contained JSON export of one dashboard state.
type ReportDocument struct {
	Report      string                 `json:"report"`
	GeneratedAt string                 `json:"generatedAt"`
	Pair        string                 `json:"pair"`
	Summary     ReportSummary          `json:"summary"`
	Metrics     ReportMetrics          `json:"metrics"`
	Detections  ReportDetections       `json:"detections"`
	Alerts      []domain.SentinelAlert `json:"alerts"`
}

// GenerateReport assembles the export document from an already-computed
// dashboard state. It only rearranges values; nothing is recomputed, so the
// report always matches what the dashboard showed.
func GenerateReport(state domain.DashboardState, generatedAt time.Time) ReportDocument {
	return ReportDocument{
		Report:      reportTitle,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Pair:        state.Pair,
		Summary: ReportSummary{
			PegStressIndex:    state.PSI.Value,
			PegStressLevel:    state.PSI.Level,
			StabilityForecast: state.Forecast.Probability,
			SpreadPercent:     state.Spread.Percentage,
			PegDeviation:      state.PegDeviation,
			ConcentrationRisk: state.Concentration.Level,
		},
		Metrics: ReportMetrics{
			PSI:            state.PSI,
			Concentration:  state.Concentration,
			LiquidityDepth: state.LiquidityDepth,
			Spread:         state.Spread,
			FlipOrders:     state.FlipMetrics,
			Forecast:       state.Forecast,
		},
		Detections: ReportDetections{
			WhaleWalls:      state.WhaleWalls,
			LiquidityCliffs: state.Cliffs,
		},
		Alerts: state.Alerts,
	}
}

package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tempowatch/sentinel/internal/domain"
)

// GenerateAlerts evaluates the current metrics against the supplied
// thresholds and returns the full alert set for this cycle. Alerts are
// regenerated from scratch each call; deduplication across cycles is the
// caller's concern. IDs are UUIDs so concurrent instances never collide.
func GenerateAlerts(
	snap domain.OrderbookSnapshot,
	psi domain.PSIResult,
	cliffs []domain.LiquidityCliff,
	walls []domain.WhaleWall,
	thresholds domain.AlertThresholds,
) []domain.SentinelAlert {
	now := time.Now().UTC()
	var alerts []domain.SentinelAlert

	add := func(typ domain.AlertType, sev domain.AlertSeverity, title, msg string, data map[string]any) {
		alerts = append(alerts, domain.SentinelAlert{
			ID:        uuid.NewString(),
			Timestamp: now,
			Type:      typ,
			Severity:  sev,
			Title:     title,
			Message:   msg,
			Data:      data,
		})
	}

	if float64(psi.Value) > thresholds.PSICritical {
		add(domain.AlertPSICritical, domain.SeverityCritical,
			"Critical Peg Stress",
			fmt.Sprintf("Peg Stress Index at %d, exceeding critical threshold %.0f", psi.Value, thresholds.PSICritical),
			map[string]any{"psi": psi.Value})
	} else if float64(psi.Value) > thresholds.PSIWarning {
		add(domain.AlertPSICritical, domain.SeverityWarning,
			"Elevated Peg Stress",
			fmt.Sprintf("Peg Stress Index at %d, exceeding warning threshold %.0f", psi.Value, thresholds.PSIWarning),
			map[string]any{"psi": psi.Value})
	}

	for i, c := range cliffs {
		if i >= 3 {
			break
		}
		sev := domain.SeverityWarning
		if c.Severity == domain.CliffCritical {
			sev = domain.SeverityCritical
		}
		add(domain.AlertLiquidityCliff, sev,
			"Liquidity Cliff Detected",
			fmt.Sprintf("%d%% liquidity drop on %s side at tick %d", c.DropPercent, c.Side, c.Tick),
			map[string]any{"tick": c.Tick, "dropPercent": c.DropPercent})
	}

	for i, w := range walls {
		if i >= 2 {
			break
		}
		add(domain.AlertWhaleWall, domain.SeverityInfo,
			"Whale Wall Present",
			fmt.Sprintf("%s wall of %s (%d%% of book) at tick %d", w.Classification, FormatLiquidity(w.Liquidity), w.PercentOfTotal, w.Tick),
			map[string]any{"tick": w.Tick, "liquidity": w.Liquidity})
	}

	spread := SpreadPercent(snap.BestBid.Price, snap.BestAsk.Price)
	if spread > thresholds.SpreadWarning {
		sev := domain.SeverityWarning
		if spread > thresholds.SpreadCritical {
			sev = domain.SeverityCritical
		}
		add(domain.AlertSpreadWarning, sev,
			"Wide Spread",
			fmt.Sprintf("Spread at %s, exceeding threshold %.2f%%", FormatPercent(spread), thresholds.SpreadWarning),
			map[string]any{"spread": spread})
	}

	devPct := (snap.MidPrice - PegPrice) / PegPrice * 100
	if math.Abs(devPct) > 0.1 {
		sev := domain.SeverityWarning
		if math.Abs(devPct) > 0.5 {
			sev = domain.SeverityCritical
		}
		add(domain.AlertPegDeviation, sev,
			"Peg Deviation",
			fmt.Sprintf("Mid price %s deviates %s from peg", FormatPrice(snap.MidPrice), FormatPercent(devPct)),
			map[string]any{"midPrice": snap.MidPrice, "deviationPercent": devPct})
	}

	return alerts
}

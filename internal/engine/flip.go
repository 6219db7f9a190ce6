package engine

import "github.com/tempowatch/sentinel/internal/domain"

// avgFlipSpreadCapture is a fixed estimate of the spread fraction a flip
// order captures per round trip. Deriving the real figure needs per-order
// fill data that the snapshot contract does not carry.
const avgFlipSpreadCapture = 0.015

// AnalyzeFlipOrders aggregates flip-order activity across the book: how many
// orders rest on flip levels, their share of all orders, their density near
// the peg, and the bid/ask split of flip levels.
func AnalyzeFlipOrders(snap domain.OrderbookSnapshot) domain.FlipOrderMetrics {
	levels := snap.Levels()

	var totalOrders, flipOrders int
	var flipLevels, flipBid int
	var nearLevels, nearFlip int
	for _, l := range levels {
		totalOrders += l.OrderCount
		if l.IsFlipOrder {
			flipOrders += l.OrderCount
			flipLevels++
			if l.Side == domain.SideBid {
				flipBid++
			}
		}
		if abs(l.Tick) <= nearPegTicks {
			nearLevels++
			if l.IsFlipOrder {
				nearFlip++
			}
		}
	}

	var flipPct float64
	if totalOrders > 0 {
		flipPct = float64(flipOrders) / float64(totalOrders) * 100
	}

	var density float64
	if nearLevels > 0 {
		density = float64(nearFlip) / float64(nearLevels) * 100
	}

	bidRatio, askRatio := 50.0, 50.0
	if flipLevels > 0 {
		bidRatio = float64(flipBid) / float64(flipLevels) * 100
		askRatio = 100 - bidRatio
	}

	return domain.FlipOrderMetrics{
		TotalFlipOrders:      flipOrders,
		FlipPercentage:       flipPct,
		FlipDensityNearPeg:   density,
		FlipBidRatio:         bidRatio,
		FlipAskRatio:         askRatio,
		AvgFlipSpreadCapture: avgFlipSpreadCapture,
	}
}

package engine

import (
	"time"

	"github.com/tempowatch/sentinel/internal/domain"
)

// level builds an orderbook level with price derived from the tick.
func level(tick int, side domain.Side, liquidity float64) domain.OrderbookLevel {
	return domain.OrderbookLevel{
		Tick:       tick,
		Price:      TickToPrice(tick),
		Liquidity:  liquidity,
		Side:       side,
		OrderCount: 1,
	}
}

func flipLevel(tick int, side domain.Side, liquidity float64, orders int) domain.OrderbookLevel {
	l := level(tick, side, liquidity)
	l.IsFlipOrder = true
	l.OrderCount = orders
	return l
}

// book assembles a snapshot from explicit sides. Best levels are the minimum
// |tick| entries; mid is their price average.
func book(bids, asks []domain.OrderbookLevel) domain.OrderbookSnapshot {
	snap := domain.OrderbookSnapshot{
		Timestamp: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Bids:      bids,
		Asks:      asks,
		PegPrice:  PegPrice,
	}
	if len(bids) > 0 {
		best := bids[0]
		for _, l := range bids {
			if abs(l.Tick) < abs(best.Tick) {
				best = l
			}
		}
		snap.BestBid = best
	}
	if len(asks) > 0 {
		best := asks[0]
		for _, l := range asks {
			if abs(l.Tick) < abs(best.Tick) {
				best = l
			}
		}
		snap.BestAsk = best
	}
	snap.MidPrice = (snap.BestBid.Price + snap.BestAsk.Price) / 2
	return snap
}

// calmBook is a tight, balanced, near-peg book.
func calmBook() domain.OrderbookSnapshot {
	return book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 1000),
			level(-20, domain.SideBid, 1000),
		},
		[]domain.OrderbookLevel{
			level(10, domain.SideAsk, 1000),
			level(20, domain.SideAsk, 1000),
		},
	)
}

// stressedBook has wide spread, all liquidity far from peg, heavy imbalance.
func stressedBook() domain.OrderbookSnapshot {
	return book(
		[]domain.OrderbookLevel{level(-200, domain.SideBid, 10000)},
		[]domain.OrderbookLevel{level(200, domain.SideAsk, 1000)},
	)
}

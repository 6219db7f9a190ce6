// Package domain defines the core types shared by the sentinel: orderbook
// snapshots, the metric results produced by the engine, alert thresholds, and
// the store/cache interfaces implemented by the infrastructure packages.
package domain

import "time"

// Side identifies which half of the book a level belongs to.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// OrderbookLevel is one resting-liquidity entry at a discrete tick. Levels are
// created fresh for every snapshot and never merged across snapshots.
type OrderbookLevel struct {
	// Tick is the signed offset from the peg in tick units (peg = 0).
	Tick int `json:"tick"`
	// Price is derived from Tick and is strictly increasing in it.
	Price float64 `json:"price"`
	// Liquidity is the resting value at this tick, in quote units.
	Liquidity float64 `json:"liquidity"`
	Side      Side    `json:"side"`
	// IsFlipOrder is true when an order resting here auto-reposts on the
	// opposite side after being filled.
	IsFlipOrder bool `json:"isFlipOrder"`
	// OrderCount is the number of discrete orders resting at this tick.
	OrderCount int `json:"orderCount"`
}

// OrderbookSnapshot is a point-in-time view of the full book. It is immutable
// once produced by a BookSource.
type OrderbookSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	// BestBid and BestAsk are the levels with minimum |tick| on each side.
	// On an empty side they are synthetic zero-liquidity levels.
	BestBid OrderbookLevel   `json:"bestBid"`
	BestAsk OrderbookLevel   `json:"bestAsk"`
	Bids    []OrderbookLevel `json:"bids"`
	Asks    []OrderbookLevel `json:"asks"`
	// MidPrice is the average of the best bid and ask prices, possibly
	// perturbed by a peg deviation at the source.
	MidPrice float64 `json:"midPrice"`
	// PegPrice is the target reference price (1.0 for stablecoin pairs).
	PegPrice float64 `json:"pegPrice"`
}

// TotalBidLiquidity sums resting liquidity across all bid levels.
func (s OrderbookSnapshot) TotalBidLiquidity() float64 {
	var total float64
	for _, l := range s.Bids {
		total += l.Liquidity
	}
	return total
}

// TotalAskLiquidity sums resting liquidity across all ask levels.
func (s OrderbookSnapshot) TotalAskLiquidity() float64 {
	var total float64
	for _, l := range s.Asks {
		total += l.Liquidity
	}
	return total
}

// Levels returns bids and asks as a single slice, bids first.
func (s OrderbookSnapshot) Levels() []OrderbookLevel {
	all := make([]OrderbookLevel, 0, len(s.Bids)+len(s.Asks))
	all = append(all, s.Bids...)
	all = append(all, s.Asks...)
	return all
}

// HistoryPoint is a single time-series observation of a scalar metric.
type HistoryPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

package tempo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tempowatch/sentinel/internal/domain"
	"github.com/tempowatch/sentinel/internal/engine"
)

const (
	mockSeedBase    = 42
	mockLevelCount  = 120
	mockTickSpacing = 5
	lcgMultiplier   = 16807
	lcgModulus      = 2147483647
)

// Generator produces a simulated DEX orderbook with the texture of a live
// book: bell-curve liquidity decaying from the peg, whale walls at fixed
// ticks, a thin zone on the far bid side, and flip orders clustered near the
// peg. The stream is fully determined by the cycle counter, so restarts
// replay the same sequence.
type Generator struct {
	mu    sync.Mutex
	seed  int64
	cycle int64
}

var _ domain.BookSource = (*Generator)(nil)

// NewGenerator returns a generator at cycle zero.
func NewGenerator() *Generator {
	return &Generator{seed: mockSeedBase}
}

// Name implements domain.BookSource.
func (g *Generator) Name() string { return "mock" }

// Fetch implements domain.BookSource. It never fails.
func (g *Generator) Fetch(_ context.Context) (domain.OrderbookSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cycle++
	// Reseed per cycle so each snapshot varies but the sequence replays.
	g.seed = mockSeedBase + g.cycle*7
	volatility := 0.8 + 0.4*math.Sin(float64(g.cycle)*0.3)

	bids := g.generateSide(domain.SideBid, volatility)
	asks := g.generateSide(domain.SideAsk, volatility)

	// generateSide walks outward from the peg, so the first level is best.
	bestBid, bestAsk := bids[0], asks[0]
	midPrice := (bestBid.Price + bestAsk.Price) / 2
	midPrice += 0.0001 * math.Sin(float64(g.cycle)*0.5)

	return domain.OrderbookSnapshot{
		Timestamp: time.Now().UTC(),
		BestBid:   bestBid,
		BestAsk:   bestAsk,
		Bids:      bids,
		Asks:      asks,
		MidPrice:  midPrice,
		PegPrice:  engine.PegPrice,
	}, nil
}

func (g *Generator) generateSide(side domain.Side, volatility float64) []domain.OrderbookLevel {
	direction := 1
	if side == domain.SideBid {
		direction = -1
	}

	levels := make([]domain.OrderbookLevel, 0, mockLevelCount)
	for i := 1; i <= mockLevelCount; i++ {
		tick := direction * i * mockTickSpacing
		distance := i * mockTickSpacing

		liquidity := 500_000 * math.Exp(-float64(distance)/300) * volatility
		liquidity *= g.randRange(0.5, 1.5)

		// Fixed whale walls: one defending the peg on this side, one deep
		// in the bid book.
		if tick == -50*direction || tick == -250 {
			liquidity *= g.randRange(3, 6)
		}

		// Thin zone deep on the bid side, the seeded liquidity cliff.
		if side == domain.SideBid && distance > 400 && distance < 500 {
			liquidity *= 0.15
		}

		flipChance := 0.05
		if distance < 100 {
			flipChance = 0.25
		}
		isFlip := g.rand() < flipChance

		maxOrders := 5.0
		if distance < 50 {
			maxOrders = 15
		}
		orderCount := int(g.randRange(1, maxOrders))
		if orderCount < 1 {
			orderCount = 1
		}

		levels = append(levels, domain.OrderbookLevel{
			Tick:        tick,
			Price:       engine.TickToPrice(tick),
			Liquidity:   math.Round(liquidity),
			Side:        side,
			IsFlipOrder: isFlip,
			OrderCount:  orderCount,
		})
	}
	return levels
}

// HistoricalPSI synthesizes a PSI series for seeding sparklines before real
// history accumulates. Points are one minute apart, oldest first.
func (g *Generator) HistoricalPSI(points int) []domain.HistoryPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	data := make([]domain.HistoryPoint, 0, points+1)
	for i := points; i >= 0; i-- {
		base := 22 + 8*math.Sin(float64(i)*0.15) + 5*math.Cos(float64(i)*0.07)
		noise := (g.rand() - 0.5) * 10
		value := math.Round(base + noise)
		if value < 0 {
			value = 0
		}
		if value > 100 {
			value = 100
		}
		data = append(data, domain.HistoryPoint{
			Time:  now.Add(-time.Duration(i) * time.Minute),
			Value: value,
		})
	}
	return data
}

// HistoricalSpread synthesizes a spread-percent series, floored at 0.005.
func (g *Generator) HistoricalSpread(points int) []domain.HistoryPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	data := make([]domain.HistoryPoint, 0, points+1)
	for i := points; i >= 0; i-- {
		base := 0.04 + 0.02*math.Sin(float64(i)*0.12) + 0.01*math.Cos(float64(i)*0.08)
		value := base + (g.rand()-0.5)*0.02
		if value < 0.005 {
			value = 0.005
		}
		data = append(data, domain.HistoryPoint{
			Time:  now.Add(-time.Duration(i) * time.Minute),
			Value: value,
		})
	}
	return data
}

// rand advances the Lehmer LCG and returns a value in [0,1).
func (g *Generator) rand() float64 {
	g.seed = (g.seed * lcgMultiplier) % lcgModulus
	return float64(g.seed-1) / (lcgModulus - 1)
}

func (g *Generator) randRange(min, max float64) float64 {
	return min + g.rand()*(max-min)
}

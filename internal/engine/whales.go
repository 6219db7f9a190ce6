package engine

import (
	"sort"

	"github.com/tempowatch/sentinel/internal/domain"
)

// wallProximityTicks bounds the near-peg band for wall classification. A bid
// wall inside it reads as peg defense, an ask wall as distribution; anything
// further out is accumulation.
const wallProximityTicks = 100

// DetectWhaleWalls flags levels holding at least threshold (a 0-1 fraction)
// of the book's total liquidity. An empty book yields no walls. Results are
// sorted by liquidity descending.
func DetectWhaleWalls(snap domain.OrderbookSnapshot, threshold float64) []domain.WhaleWall {
	total := snap.TotalBidLiquidity() + snap.TotalAskLiquidity()
	if total == 0 {
		return nil
	}

	var walls []domain.WhaleWall
	for _, l := range snap.Levels() {
		pct := l.Liquidity / total
		if pct < threshold {
			continue
		}
		walls = append(walls, domain.WhaleWall{
			Tick:           l.Tick,
			Price:          l.Price,
			Side:           l.Side,
			Liquidity:      l.Liquidity,
			PercentOfTotal: round(pct * 100),
			Classification: classifyWall(l),
		})
	}
	sort.SliceStable(walls, func(i, j int) bool {
		return walls[i].Liquidity > walls[j].Liquidity
	})
	return walls
}

func classifyWall(l domain.OrderbookLevel) domain.WallClassification {
	near := abs(l.Tick) <= wallProximityTicks
	switch {
	case l.Side == domain.SideBid && near:
		return domain.WallDefense
	case l.Side == domain.SideAsk && near:
		return domain.WallDistribution
	default:
		return domain.WallAccumulation
	}
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestDetectLiquidityCliffsCritical(t *testing.T) {
	snap := book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 1000),
			level(-20, domain.SideBid, 1000),
			level(-30, domain.SideBid, 100),
		},
		nil,
	)

	cliffs := DetectLiquidityCliffs(snap, 0.6)
	require.Len(t, cliffs, 1)

	c := cliffs[0]
	assert.Equal(t, -30, c.Tick)
	assert.Equal(t, domain.SideBid, c.Side)
	assert.Equal(t, 90, c.DropPercent)
	assert.Equal(t, 1000.0, c.LiquidityBefore)
	assert.Equal(t, 100.0, c.LiquidityAfter)
	assert.Equal(t, domain.CliffCritical, c.Severity)
}

func TestDetectLiquidityCliffsWarning(t *testing.T) {
	snap := book(nil, []domain.OrderbookLevel{
		level(10, domain.SideAsk, 1000),
		level(20, domain.SideAsk, 300),
	})

	cliffs := DetectLiquidityCliffs(snap, 0.6)
	require.Len(t, cliffs, 1)
	assert.Equal(t, 70, cliffs[0].DropPercent)
	assert.Equal(t, domain.CliffWarning, cliffs[0].Severity)
}

func TestDetectLiquidityCliffsBelowThreshold(t *testing.T) {
	snap := book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 1000),
			level(-20, domain.SideBid, 500),
		},
		nil,
	)
	assert.Empty(t, DetectLiquidityCliffs(snap, 0.6))
}

func TestDetectLiquidityCliffsZeroLiquidityGuard(t *testing.T) {
	snap := book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 0),
			level(-20, domain.SideBid, 1000),
			level(-30, domain.SideBid, 0),
		},
		nil,
	)

	// The empty best level cannot start a cliff; the 1000 -> 0 pair can.
	cliffs := DetectLiquidityCliffs(snap, 0.6)
	require.Len(t, cliffs, 1)
	assert.Equal(t, -30, cliffs[0].Tick)
	assert.Equal(t, 100, cliffs[0].DropPercent)
}

func TestDetectLiquidityCliffsSortedByDrop(t *testing.T) {
	snap := book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 1000),
			level(-20, domain.SideBid, 100),
		},
		[]domain.OrderbookLevel{
			level(10, domain.SideAsk, 1000),
			level(20, domain.SideAsk, 300),
		},
	)

	cliffs := DetectLiquidityCliffs(snap, 0.6)
	require.Len(t, cliffs, 2)
	assert.Equal(t, 90, cliffs[0].DropPercent)
	assert.Equal(t, domain.SideBid, cliffs[0].Side)
	assert.Equal(t, 70, cliffs[1].DropPercent)
}

func TestDetectLiquidityCliffsUnsortedInput(t *testing.T) {
	// Input order must not matter; the walk sorts by |tick| internally.
	snap := book(
		[]domain.OrderbookLevel{
			level(-30, domain.SideBid, 100),
			level(-10, domain.SideBid, 1000),
			level(-20, domain.SideBid, 1000),
		},
		nil,
	)

	cliffs := DetectLiquidityCliffs(snap, 0.6)
	require.Len(t, cliffs, 1)
	assert.Equal(t, -30, cliffs[0].Tick)
}

func TestDetectLiquidityCliffsEmptyBook(t *testing.T) {
	assert.Empty(t, DetectLiquidityCliffs(domain.OrderbookSnapshot{}, 0.6))
}

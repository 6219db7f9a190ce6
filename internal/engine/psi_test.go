package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestPSICalmBook(t *testing.T) {
	tracker := NewPSITracker()
	psi := tracker.Compute("USDT-USD", calmBook())

	// All liquidity within 50 ticks, balanced sides, 0.02% spread.
	assert.Equal(t, 0, psi.Components.LiquidityThinness)
	assert.Equal(t, 0, psi.Components.OrderImbalance)
	assert.Equal(t, 2, psi.Components.SpreadStress)
	assert.Equal(t, 1, psi.Value)
	assert.Equal(t, domain.PSIStable, psi.Level)
	assert.Equal(t, 25, psi.PreviousValue)
	assert.Equal(t, domain.TrendImproving, psi.Trend)
}

func TestPSIStressedBook(t *testing.T) {
	tracker := NewPSITracker()
	psi := tracker.Compute("USDT-USD", stressedBook())

	assert.Equal(t, 100, psi.Components.LiquidityThinness)
	assert.Equal(t, 100, psi.Components.OrderImbalance)
	assert.Equal(t, 80, psi.Components.SpreadStress)
	assert.Equal(t, 94, psi.Value)
	assert.Equal(t, domain.PSICritical, psi.Level)
	assert.Equal(t, domain.TrendWorsening, psi.Trend)
}

func TestPSITrendStableWithinBand(t *testing.T) {
	tracker := NewPSITracker()
	first := tracker.Compute("USDT-USD", calmBook())
	second := tracker.Compute("USDT-USD", calmBook())

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Value, second.PreviousValue)
	assert.Equal(t, domain.TrendStable, second.Trend)
}

func TestPSITrackerPerPair(t *testing.T) {
	tracker := NewPSITracker()
	tracker.Compute("USDT-USD", stressedBook())

	// A different pair starts from the seed, unaffected by the first.
	psi := tracker.Compute("USDC-USD", calmBook())
	assert.Equal(t, 25, psi.PreviousValue)
	assert.Equal(t, domain.TrendImproving, psi.Trend)
}

func TestPSITrackerReset(t *testing.T) {
	tracker := NewPSITracker()
	tracker.Compute("USDT-USD", stressedBook())
	tracker.Reset("USDT-USD")

	psi := tracker.Compute("USDT-USD", calmBook())
	assert.Equal(t, 25, psi.PreviousValue)
}

func TestPSIEmptyBook(t *testing.T) {
	tracker := NewPSITracker()
	psi := tracker.Compute("USDT-USD", domain.OrderbookSnapshot{PegPrice: PegPrice})

	// Zero totals: imbalance guarded to zero, near-peg ratio zero so
	// thinness saturates, spread zero.
	require.Equal(t, 0, psi.Components.OrderImbalance)
	require.Equal(t, 100, psi.Components.LiquidityThinness)
	require.Equal(t, 0, psi.Components.SpreadStress)
	assert.Equal(t, 40, psi.Value)
	assert.Equal(t, domain.PSIModerate, psi.Level)
}

func TestPSIValueBounds(t *testing.T) {
	tracker := NewPSITracker()
	for _, snap := range []domain.OrderbookSnapshot{calmBook(), stressedBook(), {}} {
		psi := tracker.Compute("pair", snap)
		assert.GreaterOrEqual(t, psi.Value, 0)
		assert.LessOrEqual(t, psi.Value, 100)
	}
}

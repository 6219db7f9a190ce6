package tempo

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestGeneratorSnapshotShape(t *testing.T) {
	g := NewGenerator()
	snap, err := g.Fetch(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Bids, mockLevelCount)
	assert.Len(t, snap.Asks, mockLevelCount)
	assert.Equal(t, 1.0, snap.PegPrice)

	// Bids descend from the peg, asks ascend.
	for i := 1; i < len(snap.Bids); i++ {
		assert.Greater(t, snap.Bids[i-1].Price, snap.Bids[i].Price)
	}
	for i := 1; i < len(snap.Asks); i++ {
		assert.Less(t, snap.Asks[i-1].Price, snap.Asks[i].Price)
	}

	assert.Equal(t, -mockTickSpacing, snap.BestBid.Tick)
	assert.Equal(t, mockTickSpacing, snap.BestAsk.Tick)
	assert.InDelta(t, 1.0, snap.MidPrice, 0.001)

	for _, l := range snap.Bids {
		assert.Equal(t, domain.SideBid, l.Side)
		assert.GreaterOrEqual(t, l.Liquidity, 0.0)
		assert.GreaterOrEqual(t, l.OrderCount, 1)
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a, b := NewGenerator(), NewGenerator()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snapA, err := a.Fetch(ctx)
		require.NoError(t, err)
		snapB, err := b.Fetch(ctx)
		require.NoError(t, err)

		snapA.Timestamp = snapB.Timestamp
		assert.Equal(t, snapA, snapB, "cycle %d", i)
	}
}

func TestGeneratorVariesAcrossCycles(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()

	first, err := g.Fetch(ctx)
	require.NoError(t, err)
	second, err := g.Fetch(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Bids[0].Liquidity, second.Bids[0].Liquidity)
}

func TestGeneratorThinZoneOnBids(t *testing.T) {
	g := NewGenerator()
	snap, err := g.Fetch(context.Background())
	require.NoError(t, err)

	// The 400-500 tick zone is attenuated hard; it should hold far less
	// liquidity than the same depth band closer to the peg.
	var thin, reference float64
	for _, l := range snap.Bids {
		d := -l.Tick
		switch {
		case d > 400 && d < 500:
			thin += l.Liquidity
		case d > 300 && d <= 400:
			reference += l.Liquidity
		}
	}
	assert.Less(t, thin, reference)
}

func TestGeneratorHistoricalSeries(t *testing.T) {
	g := NewGenerator()

	psi := g.HistoricalPSI(60)
	require.Len(t, psi, 61)
	for i, p := range psi {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 100.0)
		if i > 0 {
			assert.True(t, p.Time.After(psi[i-1].Time))
		}
	}

	spread := g.HistoricalSpread(60)
	require.Len(t, spread, 61)
	for _, p := range spread {
		assert.GreaterOrEqual(t, p.Value, 0.005)
	}
}

func TestEstimateOrderCount(t *testing.T) {
	tests := []struct {
		name       string
		head, tail int64
		want       int
	}{
		{"empty queue", 0, 0, 0},
		{"single order", 7, 7, 1},
		{"id span", 10, 25, 15},
		{"span capped", 1, 5000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateOrderCount(big.NewInt(tt.head), big.NewInt(tt.tail))
			assert.Equal(t, tt.want, got)
		})
	}
}

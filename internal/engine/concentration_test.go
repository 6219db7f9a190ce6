package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestConcentrationEmptyBook(t *testing.T) {
	got := ComputeConcentrationRisk(domain.OrderbookSnapshot{})
	assert.Equal(t, domain.ConcentrationRisk{Level: domain.ConcentrationLow}, got)
}

func TestConcentrationSingleLevel(t *testing.T) {
	snap := book([]domain.OrderbookLevel{level(-10, domain.SideBid, 500)}, nil)

	got := ComputeConcentrationRisk(snap)
	assert.Equal(t, 10000, got.HHI)
	assert.Equal(t, domain.ConcentrationHigh, got.Level)
	assert.Equal(t, 100.0, got.TopTickShare)
	assert.Equal(t, 100.0, got.Top5TickShare)
	assert.Equal(t, 10000, got.BidConcentration)
	assert.Equal(t, 0, got.AskConcentration)
}

func TestConcentrationEvenBook(t *testing.T) {
	var bids, asks []domain.OrderbookLevel
	for i := 1; i <= 5; i++ {
		bids = append(bids, level(-i*10, domain.SideBid, 100))
		asks = append(asks, level(i*10, domain.SideAsk, 100))
	}
	snap := book(bids, asks)

	// Ten equal levels: share 10 each, HHI = 10 * 100 = 1000.
	got := ComputeConcentrationRisk(snap)
	assert.Equal(t, 1000, got.HHI)
	assert.Equal(t, domain.ConcentrationLow, got.Level)
	assert.Equal(t, 10.0, got.TopTickShare)
	assert.Equal(t, 50.0, got.Top5TickShare)
	// Per side: five equal levels, share 20 each, HHI = 5 * 400 = 2000.
	assert.Equal(t, 2000, got.BidConcentration)
	assert.Equal(t, 2000, got.AskConcentration)
}

func TestConcentrationTiers(t *testing.T) {
	tests := []struct {
		name string
		hhi  float64
		want domain.ConcentrationLevel
	}{
		{"low", 1499, domain.ConcentrationLow},
		{"moderate lower bound", 1500, domain.ConcentrationModerate},
		{"moderate upper", 2499, domain.ConcentrationModerate},
		{"high", 2500, domain.ConcentrationHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, concentrationLevel(tt.hhi))
		})
	}
}

func TestConcentrationSkewedBook(t *testing.T) {
	snap := book(
		[]domain.OrderbookLevel{
			level(-10, domain.SideBid, 800),
			level(-20, domain.SideBid, 100),
		},
		[]domain.OrderbookLevel{level(10, domain.SideAsk, 100)},
	)

	// Shares 80/10/10: HHI = 6400 + 100 + 100 = 6600.
	got := ComputeConcentrationRisk(snap)
	assert.Equal(t, 6600, got.HHI)
	assert.Equal(t, domain.ConcentrationHigh, got.Level)
	assert.Equal(t, 80.0, got.TopTickShare)
	assert.Equal(t, 100.0, got.Top5TickShare)
	assert.Equal(t, 10000, got.AskConcentration)
}

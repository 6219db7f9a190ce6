package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestTickToPrice(t *testing.T) {
	tests := []struct {
		name string
		tick int
		want float64
	}{
		{"peg", 0, 1.0},
		{"positive", 100, 1.001},
		{"negative", -50, 0.9995},
		{"far negative", -500, 0.995},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TickToPrice(tt.tick), 1e-12)
		})
	}
}

func TestPriceToTick(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  int
	}{
		{"peg", 1.0, 0},
		{"above", 1.001, 100},
		{"below", 0.9995, -50},
		{"rounds to nearest", 1.000004, 0},
		{"rounds up", 1.000006, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceToTick(tt.price))
		})
	}
}

func TestPriceToTickRoundTrip(t *testing.T) {
	for _, tick := range []int{-500, -123, -1, 0, 1, 77, 500} {
		assert.Equal(t, tick, PriceToTick(TickToPrice(tick)), "tick %d", tick)
	}
}

func TestSpreadPercent(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		want     float64
	}{
		{"tenth of a percent", 0.9995, 1.0005, 0.1},
		{"zero spread", 1.0, 1.0, 0},
		{"empty book", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SpreadPercent(tt.bid, tt.ask), 1e-9)
		})
	}
}

func TestComputePegDeviation(t *testing.T) {
	tests := []struct {
		name    string
		mid     float64
		wantDir domain.DeviationDirection
		wantPct float64
	}{
		{"on peg", 1.0, domain.DeviationOnPeg, 0},
		{"above", 1.002, domain.DeviationAbove, 0.2},
		{"below", 0.998, domain.DeviationBelow, -0.2},
		{"tiny deviation reads on peg", 1.0000005, domain.DeviationOnPeg, 0.00005},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := ComputePegDeviation(tt.mid)
			assert.Equal(t, tt.wantDir, dev.Direction)
			assert.InDelta(t, tt.wantPct, dev.Percentage, 1e-9)
			assert.InDelta(t, tt.mid-1.0, dev.Absolute, 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name             string
		value, min, max  float64
		want             float64
	}{
		{"midpoint", 0.5, 0, 1, 50},
		{"below min clamps", -5, 0, 1, 0},
		{"above max clamps", 2, 0, 1, 100},
		{"at min", 0, 0, 1, 0},
		{"at max", 1, 0, 1, 100},
		{"shifted range", 0.3, 0.2, 0.8, 16.666666666666664},
		{"degenerate range", 5, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(tt.value, tt.min, tt.max), 1e-9)
		})
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1.00050", FormatPrice(1.0005))
	assert.Equal(t, "2.50M", FormatLiquidity(2_500_000))
	assert.Equal(t, "12.3K", FormatLiquidity(12_345))
	assert.Equal(t, "999", FormatLiquidity(999))
	assert.Equal(t, "0.100%", FormatPercent(0.1))
}

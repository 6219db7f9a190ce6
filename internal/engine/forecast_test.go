package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestForecastCalm(t *testing.T) {
	snap := calmBook()
	psi := domain.PSIResult{Value: 10, Trend: domain.TrendStable}

	f := ComputeStabilityForecast(snap, psi, nil)
	// 100 - 10*0.4 = 96, no other penalties.
	assert.Equal(t, 96, f.Confidence)
	assert.Equal(t, domain.ForecastHigh, f.Probability)
	assert.Equal(t, outlookHigh, f.ShortTermOutlook)
	assert.Equal(t, domain.SpreadTightening, f.Factors.SpreadTrend)
	assert.Equal(t, domain.TrendStable, f.Factors.StressTrend)
	// All calm-book liquidity sits within 50 ticks.
	assert.Equal(t, 100, f.Factors.LiquidityVelocity)
}

func TestForecastStressed(t *testing.T) {
	snap := stressedBook()
	psi := domain.PSIResult{Value: 90, Trend: domain.TrendWorsening}
	cliffs := []domain.LiquidityCliff{
		{Severity: domain.CliffCritical},
		{Severity: domain.CliffCritical},
		{Severity: domain.CliffWarning},
	}

	f := ComputeStabilityForecast(snap, psi, cliffs)
	// 100 - 36 - 30 - 5 - 15 (widening) - 10 (worsening) = 4.
	assert.Equal(t, 4, f.Confidence)
	assert.Equal(t, domain.ForecastLow, f.Probability)
	assert.Equal(t, outlookLow, f.ShortTermOutlook)
	assert.Equal(t, domain.SpreadWidening, f.Factors.SpreadTrend)
	assert.Equal(t, 0, f.Factors.LiquidityVelocity)
}

func TestForecastModerateTier(t *testing.T) {
	snap := calmBook()
	psi := domain.PSIResult{Value: 50, Trend: domain.TrendStable}
	cliffs := []domain.LiquidityCliff{
		{Severity: domain.CliffWarning},
		{Severity: domain.CliffWarning},
	}

	// 100 - 20 - 10 = 70 sits exactly on the high boundary.
	f := ComputeStabilityForecast(snap, psi, cliffs)
	assert.Equal(t, 70, f.Confidence)
	assert.Equal(t, domain.ForecastHigh, f.Probability)

	// One more warning cliff drops it into moderate.
	cliffs = append(cliffs, domain.LiquidityCliff{Severity: domain.CliffWarning})
	f = ComputeStabilityForecast(snap, psi, cliffs)
	assert.Equal(t, 65, f.Confidence)
	assert.Equal(t, domain.ForecastModerate, f.Probability)
	assert.Equal(t, outlookModerate, f.ShortTermOutlook)
}

func TestForecastScoreClamped(t *testing.T) {
	snap := stressedBook()
	psi := domain.PSIResult{Value: 100, Trend: domain.TrendWorsening}
	var cliffs []domain.LiquidityCliff
	for i := 0; i < 10; i++ {
		cliffs = append(cliffs, domain.LiquidityCliff{Severity: domain.CliffCritical})
	}

	f := ComputeStabilityForecast(snap, psi, cliffs)
	assert.Equal(t, 0, f.Confidence)
	assert.Equal(t, domain.ForecastLow, f.Probability)
}

func TestClassifySpread(t *testing.T) {
	tests := []struct {
		name   string
		spread float64
		want   domain.SpreadTrend
	}{
		{"tightening", 0.04, domain.SpreadTightening},
		{"stable", 0.1, domain.SpreadSteady},
		{"widening", 0.21, domain.SpreadWidening},
		{"boundary stays stable", 0.2, domain.SpreadSteady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifySpread(tt.spread))
		})
	}
}

package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
)

func TestThresholdManagerUpdate(t *testing.T) {
	m := NewThresholdManager(domain.DefaultThresholds())

	next := domain.DefaultThresholds()
	next.PSIWarning = 40
	next.PSICritical = 70
	require.NoError(t, m.Update(next))
	assert.Equal(t, next, m.Current())
}

func TestThresholdManagerRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AlertThresholds)
	}{
		{"psi warning above critical", func(t *domain.AlertThresholds) { t.PSIWarning = 80 }},
		{"psi warning negative", func(t *domain.AlertThresholds) { t.PSIWarning = -1 }},
		{"psi critical above 100", func(t *domain.AlertThresholds) { t.PSICritical = 120 }},
		{"spread warning zero", func(t *domain.AlertThresholds) { t.SpreadWarning = 0 }},
		{"spread warning above critical", func(t *domain.AlertThresholds) { t.SpreadWarning = 0.9 }},
		{"cliff drop zero", func(t *domain.AlertThresholds) { t.CliffDropPercent = 0 }},
		{"whale percent above 100", func(t *domain.AlertThresholds) { t.WhalePercent = 150 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewThresholdManager(domain.DefaultThresholds())
			bad := domain.DefaultThresholds()
			tt.mutate(&bad)

			err := m.Update(bad)
			require.ErrorIs(t, err, domain.ErrInvalidThresholds)
			// The active set is untouched after a rejected update.
			assert.Equal(t, domain.DefaultThresholds(), m.Current())
		})
	}
}

package monitor

import (
	"sync"

	"github.com/tempowatch/sentinel/internal/domain"
)

// ThresholdManager holds the alert thresholds applied to engine cycles and
// lets the API update them at runtime. Updates take effect on the next cycle.
type ThresholdManager struct {
	mu sync.RWMutex
	t  domain.AlertThresholds
}

// NewThresholdManager seeds the manager with an initial threshold set.
func NewThresholdManager(initial domain.AlertThresholds) *ThresholdManager {
	return &ThresholdManager{t: initial}
}

// Current returns the active thresholds.
func (m *ThresholdManager) Current() domain.AlertThresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t
}

// Update validates and installs a new threshold set.
func (m *ThresholdManager) Update(t domain.AlertThresholds) error {
	if err := domain.ValidateThresholds(t); err != nil {
		return err
	}
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
	return nil
}

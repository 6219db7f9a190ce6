package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempowatch/sentinel/internal/domain"
)

type stubSender struct {
	name   string
	fail   bool
	titles []string
}

func (s *stubSender) Send(_ context.Context, title, _ string) error {
	if s.fail {
		return errors.New("boom")
	}
	s.titles = append(s.titles, title)
	return nil
}

func (s *stubSender) Name() string { return s.name }

func alert(typ domain.AlertType, sev domain.AlertSeverity) domain.SentinelAlert {
	return domain.SentinelAlert{
		ID:       "a-1",
		Type:     typ,
		Severity: sev,
		Title:    "Wide Spread",
		Message:  "spread exceeded threshold",
	}
}

func TestNotifierDelivers(t *testing.T) {
	s := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{s}, nil, slog.Default())

	err := n.Notify(context.Background(), "AlphaUSD-PathUSD", alert(domain.AlertSpreadWarning, domain.SeverityWarning))
	require.NoError(t, err)
	require.Len(t, s.titles, 1)
	assert.Equal(t, "[WARNING] AlphaUSD-PathUSD: Wide Spread", s.titles[0])
}

func TestNotifierFiltersTypes(t *testing.T) {
	s := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{s}, []string{"psi_critical"}, slog.Default())
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "p", alert(domain.AlertSpreadWarning, domain.SeverityWarning)))
	assert.Empty(t, s.titles)

	require.NoError(t, n.Notify(ctx, "p", alert(domain.AlertPSICritical, domain.SeverityCritical)))
	assert.Len(t, s.titles, 1)
}

func TestNotifierPartialFailure(t *testing.T) {
	bad := &stubSender{name: "bad", fail: true}
	good := &stubSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, slog.Default())

	err := n.Notify(context.Background(), "p", alert(domain.AlertPegDeviation, domain.SeverityCritical))
	assert.Error(t, err)
	// The failing channel does not block the healthy one.
	assert.Len(t, good.titles, 1)
}

func TestNotifierNoSenders(t *testing.T) {
	n := NewNotifier(nil, nil, slog.Default())
	assert.NoError(t, n.Notify(context.Background(), "p", alert(domain.AlertWhaleWall, domain.SeverityInfo)))
}

// Package notify delivers alerts to external channels. A Notifier fans one
// alert out to all registered senders (Telegram, Discord) and can be
// restricted to specific alert types so operators only receive what they
// care about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tempowatch/sentinel/internal/domain"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a short identifier for logs (e.g. "telegram").
	Name() string
}

// Notifier implements domain.Notifier over a set of Senders. When alert
// types are configured, only those types are forwarded; an empty set allows
// everything.
type Notifier struct {
	senders []Sender
	types   map[domain.AlertType]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, types []string, logger *slog.Logger) *Notifier {
	allowed := make(map[domain.AlertType]bool, len(types))
	for _, t := range types {
		allowed[domain.AlertType(strings.TrimSpace(t))] = true
	}
	return &Notifier{
		senders: senders,
		types:   allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify formats the alert and dispatches it to every sender. Errors from
// individual senders are collected; one failing channel does not block the
// others.
func (n *Notifier) Notify(ctx context.Context, pair string, alert domain.SentinelAlert) error {
	if len(n.types) > 0 && !n.types[alert.Type] {
		n.logger.DebugContext(ctx, "alert type filtered out",
			slog.String("type", string(alert.Type)),
		)
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	title := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(alert.Severity)), pair, alert.Title)

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, alert.Message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert delivered",
			slog.String("sender", s.Name()),
			slog.String("type", string(alert.Type)),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// Compile-time interface check.
var _ domain.Notifier = (*Notifier)(nil)

// Package notify contains the notification channel implementations routed
// by the alert dispatcher: log, dashboard push, desktop toast and email.
package notify

import (
	"context"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// LogNotifier writes every alert to the structured log. It accepts all
// severities and is the channel of last resort.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Name implements dispatch.Notifier.
func (n *LogNotifier) Name() string { return "log" }

// Notify implements dispatch.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	n.logger.WithFields(map[string]interface{}{
		"alert_id": a.ID,
		"severity": a.Severity,
		"source":   a.Source,
	}).Warn("ALERT: " + a.Message)
	return nil
}

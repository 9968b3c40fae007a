package notify

import (
	"context"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
)

// Broadcaster pushes messages to connected dashboard clients. Implemented
// by the websocket hub; delivery is at-least-once with no cross-client
// ordering guarantee.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// DashboardNotifier pushes alerts over the real-time dashboard stream.
type DashboardNotifier struct {
	hub Broadcaster
}

// NewDashboardNotifier creates a dashboard notifier.
func NewDashboardNotifier(hub Broadcaster) *DashboardNotifier {
	return &DashboardNotifier{hub: hub}
}

// Name implements dispatch.Notifier.
func (n *DashboardNotifier) Name() string { return "dashboard" }

// Notify implements dispatch.Notifier. The hub's per-client queues make
// this non-blocking even when a client stalls.
func (n *DashboardNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	n.hub.Broadcast("alert", a)
	return nil
}

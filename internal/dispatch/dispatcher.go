// Package dispatch routes fired alerts to notification channels based on
// per-channel severity thresholds. Channels fail independently: one
// notifier's error or panic never prevents the others from running and
// never propagates back to the rule engine.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// Notifier is a notification sink. Notify must not block on another
// channel's I/O; slow transports queue internally.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, a *alert.Alert) error
}

type route struct {
	minSeverity alert.Severity
	notifier    Notifier
}

// Dispatcher fans alerts out to every notifier whose threshold the alert
// meets or exceeds.
type Dispatcher struct {
	mu     sync.RWMutex
	routes []route
	logger *logger.Logger
}

// New creates an empty dispatcher.
func New(log *logger.Logger) *Dispatcher {
	return &Dispatcher{logger: log}
}

// AddRoute registers a notifier with its minimum severity.
func (d *Dispatcher) AddRoute(minSeverity alert.Severity, n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = append(d.routes, route{minSeverity: minSeverity, notifier: n})
}

// SetThreshold updates a registered notifier's minimum severity. Used for
// hot config reload; unknown names are ignored.
func (d *Dispatcher) SetThreshold(name string, minSeverity alert.Severity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.routes {
		if d.routes[i].notifier.Name() == name {
			d.routes[i].minSeverity = minSeverity
		}
	}
}

// Run consumes the alert bus subscription until its channel closes or ctx
// is canceled, draining queued alerts on cancellation.
func (d *Dispatcher) Run(ctx context.Context, sub *bus.Subscription[*alert.Alert]) {
	d.logger.Info("Alert dispatcher started")
	for {
		select {
		case a, ok := <-sub.C():
			if !ok {
				d.logger.Info("Alert dispatcher stopped")
				return
			}
			d.Dispatch(ctx, a)
		case <-ctx.Done():
			for {
				select {
				case a, ok := <-sub.C():
					if !ok {
						d.logger.Info("Alert dispatcher stopped")
						return
					}
					d.Dispatch(context.Background(), a)
				default:
					d.logger.Info("Alert dispatcher stopped")
					return
				}
			}
		}
	}
}

// Dispatch invokes every notifier whose threshold the alert meets.
func (d *Dispatcher) Dispatch(ctx context.Context, a *alert.Alert) {
	d.mu.RLock()
	routes := make([]route, len(d.routes))
	copy(routes, d.routes)
	d.mu.RUnlock()

	for _, r := range routes {
		if !a.Severity.AtLeast(r.minSeverity) {
			continue
		}
		if err := d.safeNotify(ctx, r.notifier, a); err != nil {
			metrics.RecordNotification(r.notifier.Name(), "error")
			d.logger.WithFields(map[string]interface{}{
				"notifier": r.notifier.Name(),
				"alert_id": a.ID,
			}).ErrorWithErr(err, "Notifier failed")
			continue
		}
		metrics.RecordNotification(r.notifier.Name(), "ok")
	}
}

// safeNotify isolates notifier panics into errors.
func (d *Dispatcher) safeNotify(ctx context.Context, n Notifier, a *alert.Alert) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notifier panic: %v", rec)
		}
	}()
	return n.Notify(ctx, a)
}

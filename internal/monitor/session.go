package monitor

import (
	"context"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// SessionEvent is one observation from the OS session/security log.
type SessionEvent struct {
	Action  string
	Subject string
	Detail  map[string]interface{}
}

// SessionSource yields session observations. The concrete reader (for
// example the Windows security event log) is injected at wiring time.
type SessionSource interface {
	Events() <-chan SessionEvent
}

// SessionMonitor translates session observations into timeline events:
// logon/logoff, lock/unlock, RDP session starts and failed logins.
type SessionMonitor struct {
	bus    *bus.Bus[*event.Event]
	source SessionSource
	logger *logger.Logger
}

// NewSessionMonitor creates a session monitor over the given source.
func NewSessionMonitor(b *bus.Bus[*event.Event], source SessionSource, log *logger.Logger) *SessionMonitor {
	return &SessionMonitor{bus: b, source: source, logger: log}
}

// Start consumes the source until ctx is canceled or the source closes.
// Run it in its own goroutine.
func (m *SessionMonitor) Start(ctx context.Context) {
	if m.source == nil {
		m.logger.Info("Session monitor disabled (no source)")
		return
	}
	m.logger.Info("Session monitor started")

	for {
		select {
		case se, ok := <-m.source.Events():
			if !ok {
				m.logger.Info("Session monitor stopped (source closed)")
				return
			}
			m.publish(se)
		case <-ctx.Done():
			m.logger.Info("Session monitor stopped")
			return
		}
	}
}

func (m *SessionMonitor) publish(se SessionEvent) {
	ev := event.New(event.SourceSessionMonitor, event.CategorySession, se.Action)
	ev.Subject = se.Subject
	for k, v := range se.Detail {
		ev.Detail[k] = v
	}
	switch se.Action {
	case event.ActionFailedLogin, event.ActionRDPSessionStart:
		ev.Severity = "WARNING"
	}
	m.bus.Publish(ev)
	metrics.RecordEventPublished(ev.Source, ev.Action)
}

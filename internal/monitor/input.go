package monitor

import (
	"context"
	"time"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// IdleFunc returns seconds since the last keyboard or mouse input. The
// OS-specific implementation is injected at wiring time; hosts without
// one report permanently idle.
type IdleFunc func() float64

// InputMonitor polls for keyboard/mouse activity and publishes
// input_detected ticks while the operator is active and idle_started on
// the transition back to idle. Sustained-activity detection happens in
// the rule engine, not here.
type InputMonitor struct {
	bus      *bus.Bus[*event.Event]
	interval time.Duration
	idle     IdleFunc
	logger   *logger.Logger

	wasActive bool
}

// NewInputMonitor creates an input monitor. A nil idle function reports
// always idle.
func NewInputMonitor(b *bus.Bus[*event.Event], interval time.Duration, idle IdleFunc, log *logger.Logger) *InputMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if idle == nil {
		idle = func() float64 { return 1 << 20 }
	}
	return &InputMonitor{bus: b, interval: interval, idle: idle, logger: log}
}

// Start polls until ctx is canceled. Run it in its own goroutine.
func (m *InputMonitor) Start(ctx context.Context) {
	m.logger.Infof("Input monitor started (poll=%s)", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll()
		case <-ctx.Done():
			m.logger.Info("Input monitor stopped")
			return
		}
	}
}

func (m *InputMonitor) poll() {
	idle := m.idle()
	active := idle < m.interval.Seconds()

	switch {
	case active:
		ev := event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionInputDetected)
		ev.Detail["idle_seconds"] = idle
		m.bus.Publish(ev)
		metrics.RecordEventPublished(ev.Source, ev.Action)
	case m.wasActive:
		ev := event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionIdleStarted)
		ev.Detail["idle_seconds"] = idle
		m.bus.Publish(ev)
		metrics.RecordEventPublished(ev.Source, ev.Action)
	}
	m.wasActive = active
}

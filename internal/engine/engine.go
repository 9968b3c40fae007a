// Package engine implements the timeline rule engine: it consumes the
// event bus, persists every event, and evaluates alerting rules against
// event and away-window state.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// Rule names reported in logs and metrics
const (
	RuleFileMutation   = "file_mutation"
	RuleSustainedInput = "sustained_input"
	RuleFailedLogin    = "failed_login"
	RuleRDPSession     = "rdp_session"
)

// ConfigSource yields the current configuration snapshot. Implemented by
// settings.Store; a torn read is impossible since snapshots swap atomically.
type ConfigSource interface {
	Snapshot() settings.Snapshot
}

// Options tune the engine's rule thresholds.
type Options struct {
	// SustainThreshold is how long continuous input activity must persist
	// inside an away window before the sustained-input rule fires
	SustainThreshold time.Duration

	// QuietGap is the inactivity gap that ends an activity episode
	QuietGap time.Duration

	// Location is the timezone used for away-window membership. Defaults
	// to time.Local: day-of-week filtering follows the machine's clock.
	Location *time.Location
}

func (o *Options) defaults() {
	if o.SustainThreshold <= 0 {
		o.SustainThreshold = 10 * time.Second
	}
	if o.QuietGap <= 0 {
		o.QuietGap = 30 * time.Second
	}
	if o.Location == nil {
		o.Location = time.Local
	}
}

// Engine persists events and evaluates rules to generate alerts.
type Engine struct {
	events   event.Repository
	alerts   alert.Repository
	config   ConfigSource
	alertBus *bus.Bus[*alert.Alert]
	episodes *EpisodeTracker
	loc      *time.Location
	logger   *logger.Logger

	processed atomic.Uint64
	fired     atomic.Uint64
}

// New creates an engine. Fired alerts are persisted via the alert
// repository and published to alertBus.
func New(
	events event.Repository,
	alerts alert.Repository,
	config ConfigSource,
	alertBus *bus.Bus[*alert.Alert],
	opts Options,
	log *logger.Logger,
) *Engine {
	opts.defaults()
	return &Engine{
		events:   events,
		alerts:   alerts,
		config:   config,
		alertBus: alertBus,
		episodes: NewEpisodeTracker(opts.SustainThreshold, opts.QuietGap),
		loc:      opts.Location,
		logger:   log,
	}
}

// Run consumes the subscription until its channel closes or ctx is
// canceled. Intended to run as its own goroutine.
func (e *Engine) Run(ctx context.Context, sub *bus.Subscription[*event.Event]) {
	e.logger.Info("Rule engine started")
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				e.logger.Info("Rule engine stopped")
				return
			}
			e.HandleEvent(ctx, ev)
		case <-ctx.Done():
			// Drain what is already queued before stopping
			for {
				select {
				case ev, ok := <-sub.C():
					if !ok {
						e.logger.Info("Rule engine stopped")
						return
					}
					e.HandleEvent(context.Background(), ev)
				default:
					e.logger.Info("Rule engine stopped")
					return
				}
			}
		}
	}
}

// HandleEvent persists one event and evaluates every rule against it.
// A store failure is logged and evaluation continues: one bad write must
// not stall ingestion of subsequent events.
func (e *Engine) HandleEvent(ctx context.Context, ev *event.Event) {
	e.processed.Add(1)

	if err := e.events.Insert(ctx, ev); err != nil {
		metrics.RecordPersistFailure()
		e.logger.WithFields(map[string]interface{}{
			"event_id": ev.ID,
			"action":   ev.Action,
		}).ErrorWithErr(err, "Failed to persist event")
	} else {
		metrics.RecordEventPersisted()
	}

	snap := e.config.Snapshot()
	away := settings.InAnyWindow(ev.Timestamp.In(e.loc), snap.AwayWindows)

	for _, fired := range e.evaluate(ctx, ev, snap, away) {
		e.emit(ctx, fired)
	}
}

// firedAlert pairs an alert with the rule that produced it.
type firedAlert struct {
	rule  string
	alert *alert.Alert
}

func (e *Engine) evaluate(ctx context.Context, ev *event.Event, snap settings.Snapshot, away bool) []firedAlert {
	var out []firedAlert

	// File change in a monitored folder during an away window
	if event.IsFileMutation(ev.Action) && away && folderInScope(ev.Target, snap.Folders) {
		a := alert.New(alert.SeverityHigh,
			fmt.Sprintf("File %s during away window: %s", ev.Action, ev.Target),
			ev.Source)
		a.Detail["event_id"] = ev.ID
		a.Detail["target"] = ev.Target
		out = append(out, firedAlert{RuleFileMutation, a})
	}

	// Sustained input activity during an away window, once per episode
	if ev.Action == event.ActionInputDetected {
		if e.episodes.Observe(ev.Source, ev.Timestamp, away) {
			active := e.episodes.ActiveFor(ev.Source, ev.Timestamp)
			derived := e.deriveActivityEvent(ctx, ev, active)
			a := alert.New(alert.SeverityMedium,
				"Keyboard/mouse activity detected during away window",
				ev.Source)
			a.Detail["event_id"] = derived.ID
			a.Detail["active_seconds"] = active.Seconds()
			out = append(out, firedAlert{RuleSustainedInput, a})
		}
	}

	// Producers that track episodes themselves publish this directly
	if ev.Action == event.ActionActiveDuringAway {
		a := alert.New(alert.SeverityMedium,
			"Keyboard/mouse activity detected during away window",
			ev.Source)
		a.Detail["event_id"] = ev.ID
		for k, v := range ev.Detail {
			a.Detail[k] = v
		}
		out = append(out, firedAlert{RuleSustainedInput, a})
	}

	// Failed login, regardless of away state
	if ev.Action == event.ActionFailedLogin {
		a := alert.New(alert.SeverityHigh, "Failed login attempt detected", ev.Source)
		a.Detail["event_id"] = ev.ID
		for k, v := range ev.Detail {
			a.Detail[k] = v
		}
		out = append(out, firedAlert{RuleFailedLogin, a})
	}

	// Remote desktop session during an away window
	if ev.Action == event.ActionRDPSessionStart && away {
		a := alert.New(alert.SeverityCritical,
			"Remote Desktop session during away window", ev.Source)
		a.Detail["event_id"] = ev.ID
		for k, v := range ev.Detail {
			a.Detail[k] = v
		}
		out = append(out, firedAlert{RuleRDPSession, a})
	}

	return out
}

// deriveActivityEvent records the sustained-activity observation itself as
// a timeline event so the dashboard timeline shows what triggered the alert.
func (e *Engine) deriveActivityEvent(ctx context.Context, src *event.Event, active time.Duration) *event.Event {
	derived := event.New(event.SourceSystem, event.CategoryUserInput, event.ActionActiveDuringAway)
	derived.Timestamp = src.Timestamp
	derived.Severity = string(alert.SeverityMedium)
	derived.Detail["source_event_id"] = src.ID
	derived.Detail["active_seconds"] = active.Seconds()
	if err := e.events.Insert(ctx, derived); err != nil {
		e.logger.ErrorWithErr(err, "Failed to persist derived activity event")
	}
	return derived
}

func (e *Engine) emit(ctx context.Context, f firedAlert) {
	e.fired.Add(1)
	metrics.RecordAlertFired(string(f.alert.Severity), f.rule)

	if err := e.alerts.Insert(ctx, f.alert); err != nil {
		e.logger.WithFields(map[string]interface{}{
			"alert_id": f.alert.ID,
			"rule":     f.rule,
		}).ErrorWithErr(err, "Failed to persist alert")
	}
	e.alertBus.Publish(f.alert)

	e.logger.WithFields(map[string]interface{}{
		"alert_id": f.alert.ID,
		"severity": f.alert.Severity,
		"rule":     f.rule,
	}).Info("Alert fired")
}

// Stats reports engine counters for the status endpoint.
func (e *Engine) Stats() (processed, fired uint64) {
	return e.processed.Load(), e.fired.Load()
}

// folderInScope reports whether path belongs to an enabled monitored
// folder, honoring the recursive flag.
func folderInScope(path string, folders []settings.MonitoredFolder) bool {
	if path == "" {
		return false
	}
	clean := filepath.Clean(path)
	for _, f := range folders {
		if !f.Enabled {
			continue
		}
		root := filepath.Clean(f.Path)
		if clean == root {
			return true
		}
		if f.Recursive {
			if strings.HasPrefix(clean, root+string(filepath.Separator)) {
				return true
			}
		} else if filepath.Dir(clean) == root {
			return true
		}
	}
	return false
}

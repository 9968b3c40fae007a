package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/testutil"
)

// awayAllDay is a snapshot whose single window covers every day around
// the clock, so any timestamp counts as away.
func awayAllDay(folders ...settings.MonitoredFolder) settings.Snapshot {
	return settings.Snapshot{
		Folders: folders,
		AwayWindows: []settings.AwayWindow{{
			StartHour: 0,
			EndHour:   23, EndMinute: 59,
			Days:    []int{0, 1, 2, 3, 4, 5, 6},
			Enabled: true,
		}},
		Alerts: settings.DefaultAlertConfig(),
	}
}

// neverAway has no windows at all.
func neverAway(folders ...settings.MonitoredFolder) settings.Snapshot {
	return settings.Snapshot{Folders: folders, Alerts: settings.DefaultAlertConfig()}
}

func newTestEngine(t *testing.T, snap settings.Snapshot) (*Engine, *testutil.MockEventRepository, *testutil.MockAlertRepository, *bus.Bus[*alert.Alert]) {
	t.Helper()
	events := testutil.NewMockEventRepository()
	alerts := testutil.NewMockAlertRepository()
	alertBus := bus.New[*alert.Alert]()
	t.Cleanup(alertBus.Close)

	eng := New(events, alerts, testutil.NewStaticConfig(snap), alertBus, Options{
		SustainThreshold: 10 * time.Second,
		QuietGap:         30 * time.Second,
		Location:         time.UTC,
	}, testutil.NewTestLogger())
	return eng, events, alerts, alertBus
}

func fileEvent(action, target string) *event.Event {
	ev := event.New(event.SourceFolderMonitor, event.CategoryFileSystem, action)
	ev.Target = target
	return ev
}

func TestEngine_PersistsEveryEvent(t *testing.T) {
	eng, events, alerts, _ := newTestEngine(t, neverAway())
	ctx := context.Background()

	eng.HandleEvent(ctx, event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionInputDetected))
	eng.HandleEvent(ctx, fileEvent(event.ActionFileModified, "/tmp/x"))

	if events.Len() != 2 {
		t.Fatalf("persisted %d events, want 2", events.Len())
	}
	if alerts.Len() != 0 {
		t.Fatalf("fired %d alerts, want 0", alerts.Len())
	}

	processed, fired := eng.Stats()
	if processed != 2 || fired != 0 {
		t.Fatalf("Stats() = (%d, %d), want (2, 0)", processed, fired)
	}
}

func TestEngine_FileMutationRule(t *testing.T) {
	docs := settings.NewMonitoredFolder("/home/user/docs", true)

	tests := []struct {
		name       string
		snap       settings.Snapshot
		ev         *event.Event
		wantAlerts int
	}{
		{
			name:       "mutation in scope during away window",
			snap:       awayAllDay(docs),
			ev:         fileEvent(event.ActionFileModified, "/home/user/docs/report.txt"),
			wantAlerts: 1,
		},
		{
			name:       "mutation in nested path with recursive folder",
			snap:       awayAllDay(docs),
			ev:         fileEvent(event.ActionFileDeleted, "/home/user/docs/a/b/c.txt"),
			wantAlerts: 1,
		},
		{
			name:       "mutation outside monitored folders",
			snap:       awayAllDay(docs),
			ev:         fileEvent(event.ActionFileModified, "/etc/passwd"),
			wantAlerts: 0,
		},
		{
			name:       "mutation while not away",
			snap:       neverAway(docs),
			ev:         fileEvent(event.ActionFileModified, "/home/user/docs/report.txt"),
			wantAlerts: 0,
		},
		{
			name: "mutation in disabled folder",
			snap: awayAllDay(settings.MonitoredFolder{
				Path: "/home/user/docs", Recursive: true, Enabled: false,
			}),
			ev:         fileEvent(event.ActionFileModified, "/home/user/docs/report.txt"),
			wantAlerts: 0,
		},
		{
			name: "nested mutation with non-recursive folder",
			snap: awayAllDay(settings.MonitoredFolder{
				Path: "/home/user/docs", Recursive: false, Enabled: true,
			}),
			ev:         fileEvent(event.ActionFileModified, "/home/user/docs/a/b.txt"),
			wantAlerts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, alerts, _ := newTestEngine(t, tt.snap)
			eng.HandleEvent(context.Background(), tt.ev)

			if alerts.Len() != tt.wantAlerts {
				t.Fatalf("fired %d alerts, want %d", alerts.Len(), tt.wantAlerts)
			}
			if tt.wantAlerts == 1 {
				a := alerts.Alerts[0]
				if a.Severity != alert.SeverityHigh {
					t.Errorf("severity = %s, want HIGH", a.Severity)
				}
			}
		})
	}
}

func TestEngine_FailedLoginAlwaysFires(t *testing.T) {
	for _, away := range []bool{true, false} {
		snap := neverAway()
		if away {
			snap = awayAllDay()
		}
		eng, _, alerts, _ := newTestEngine(t, snap)

		ev := event.New(event.SourceSessionMonitor, event.CategorySession, event.ActionFailedLogin)
		ev.Detail["user"] = "root"
		eng.HandleEvent(context.Background(), ev)

		if alerts.Len() != 1 {
			t.Fatalf("away=%v: fired %d alerts, want 1", away, alerts.Len())
		}
		a := alerts.Alerts[0]
		if a.Severity != alert.SeverityHigh {
			t.Errorf("severity = %s, want HIGH", a.Severity)
		}
		if a.Detail["user"] != "root" {
			t.Errorf("alert did not carry event detail: %v", a.Detail)
		}
	}
}

func TestEngine_RDPSessionRule(t *testing.T) {
	ev := event.New(event.SourceSessionMonitor, event.CategorySession, event.ActionRDPSessionStart)

	eng, _, alerts, _ := newTestEngine(t, awayAllDay())
	eng.HandleEvent(context.Background(), ev)
	if alerts.Len() != 1 {
		t.Fatalf("fired %d alerts during away window, want 1", alerts.Len())
	}
	if alerts.Alerts[0].Severity != alert.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", alerts.Alerts[0].Severity)
	}

	eng, _, alerts, _ = newTestEngine(t, neverAway())
	eng.HandleEvent(context.Background(), event.New(event.SourceSessionMonitor, event.CategorySession, event.ActionRDPSessionStart))
	if alerts.Len() != 0 {
		t.Fatalf("fired %d alerts outside away window, want 0", alerts.Len())
	}
}

func TestEngine_SustainedInputFiresOncePerEpisode(t *testing.T) {
	eng, events, alerts, _ := newTestEngine(t, awayAllDay())
	ctx := context.Background()

	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)
	tick := func(at time.Time) {
		ev := event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionInputDetected)
		ev.Timestamp = at
		eng.HandleEvent(ctx, ev)
	}

	// 5s ticks: threshold reached at +10s, then nothing more this episode
	for i := 0; i <= 6; i++ {
		tick(base.Add(time.Duration(i) * 5 * time.Second))
	}

	if alerts.Len() != 1 {
		t.Fatalf("fired %d alerts, want 1 per episode", alerts.Len())
	}
	if alerts.Alerts[0].Severity != alert.SeverityMedium {
		t.Errorf("severity = %s, want MEDIUM", alerts.Alerts[0].Severity)
	}

	// The derived activity event landed on the timeline
	derived := 0
	for _, ev := range events.Events {
		if ev.Action == event.ActionActiveDuringAway {
			derived++
		}
	}
	if derived != 1 {
		t.Fatalf("found %d derived activity events, want 1", derived)
	}

	// New episode after the quiet gap fires again
	next := base.Add(5 * time.Minute)
	for i := 0; i <= 2; i++ {
		tick(next.Add(time.Duration(i) * 5 * time.Second))
	}
	if alerts.Len() != 2 {
		t.Fatalf("fired %d alerts after second episode, want 2", alerts.Len())
	}
}

func TestEngine_SustainedInputRequiresAway(t *testing.T) {
	eng, _, alerts, _ := newTestEngine(t, neverAway())
	ctx := context.Background()

	base := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	for i := 0; i <= 6; i++ {
		ev := event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionInputDetected)
		ev.Timestamp = base.Add(time.Duration(i) * 5 * time.Second)
		eng.HandleEvent(ctx, ev)
	}

	if alerts.Len() != 0 {
		t.Fatalf("fired %d alerts outside away window, want 0", alerts.Len())
	}
}

func TestEngine_SustainedInputFiresWhenWindowOpensMidEpisode(t *testing.T) {
	snap := settings.Snapshot{
		AwayWindows: []settings.AwayWindow{{
			StartHour: 3,
			EndHour:   23,
			Days:      []int{0, 1, 2, 3, 4, 5, 6},
			Enabled:   true,
		}},
		Alerts: settings.DefaultAlertConfig(),
	}
	eng, _, alerts, _ := newTestEngine(t, snap)
	ctx := context.Background()

	// Activity starts 15s before the 03:00 window opens and continues
	// across the boundary; the episode is over threshold before the
	// window but must still fire once inside it.
	base := time.Date(2026, 1, 5, 2, 59, 45, 0, time.UTC)
	for i := 0; i <= 8; i++ {
		ev := event.New(event.SourceInputMonitor, event.CategoryUserInput, event.ActionInputDetected)
		ev.Timestamp = base.Add(time.Duration(i) * 5 * time.Second)
		eng.HandleEvent(ctx, ev)
	}

	if alerts.Len() != 1 {
		t.Fatalf("fired %d alerts, want 1 after the window opened", alerts.Len())
	}
	if alerts.Alerts[0].Severity != alert.SeverityMedium {
		t.Errorf("severity = %s, want MEDIUM", alerts.Alerts[0].Severity)
	}
}

func TestEngine_PersistFailureDoesNotStopEvaluation(t *testing.T) {
	eng, events, alerts, _ := newTestEngine(t, awayAllDay())
	events.InsertError = errors.New("disk full")

	eng.HandleEvent(context.Background(), event.New(event.SourceSessionMonitor, event.CategorySession, event.ActionFailedLogin))

	if alerts.Len() != 1 {
		t.Fatalf("fired %d alerts despite persist failure, want 1", alerts.Len())
	}
}

func TestEngine_PublishesFiredAlerts(t *testing.T) {
	eng, _, _, alertBus := newTestEngine(t, awayAllDay())
	sub := alertBus.Subscribe()

	eng.HandleEvent(context.Background(), event.New(event.SourceSessionMonitor, event.CategorySession, event.ActionFailedLogin))

	select {
	case a := <-sub.C():
		if a.Severity != alert.SeverityHigh {
			t.Errorf("published severity = %s, want HIGH", a.Severity)
		}
	case <-time.After(time.Second):
		t.Fatal("no alert published to the bus")
	}
}

func TestEngine_RunDrainsOnBusClose(t *testing.T) {
	eventBus := bus.New[*event.Event]()
	eng, events, _, _ := newTestEngine(t, neverAway())

	sub := eventBus.Subscribe()
	done := make(chan struct{})
	go func() {
		eng.Run(context.Background(), sub)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		eventBus.Publish(event.New(event.SourceSystem, event.CategorySystem, event.ActionSystemWake))
	}
	eventBus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after bus close")
	}
	if events.Len() != 5 {
		t.Fatalf("persisted %d events after drain, want 5", events.Len())
	}
}

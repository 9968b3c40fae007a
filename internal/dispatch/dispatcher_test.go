package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/testutil"
)

func TestDispatcher_ThresholdRouting(t *testing.T) {
	tests := []struct {
		name     string
		severity alert.Severity
		wantLog  bool
		wantDash bool
		wantMail bool
	}{
		{"info reaches only log", alert.SeverityInfo, true, false, false},
		{"low reaches dashboard", alert.SeverityLow, true, true, false},
		{"medium reaches dashboard", alert.SeverityMedium, true, true, false},
		{"high reaches everything", alert.SeverityHigh, true, true, true},
		{"critical reaches everything", alert.SeverityCritical, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logN := testutil.NewMockNotifier("log")
			dashN := testutil.NewMockNotifier("dashboard")
			mailN := testutil.NewMockNotifier("email")

			d := New(testutil.NewTestLogger())
			d.AddRoute(alert.SeverityInfo, logN)
			d.AddRoute(alert.SeverityLow, dashN)
			d.AddRoute(alert.SeverityHigh, mailN)

			d.Dispatch(context.Background(), alert.New(tt.severity, "test", "test"))

			if got := logN.Count() == 1; got != tt.wantLog {
				t.Errorf("log notified = %v, want %v", got, tt.wantLog)
			}
			if got := dashN.Count() == 1; got != tt.wantDash {
				t.Errorf("dashboard notified = %v, want %v", got, tt.wantDash)
			}
			if got := mailN.Count() == 1; got != tt.wantMail {
				t.Errorf("email notified = %v, want %v", got, tt.wantMail)
			}
		})
	}
}

func TestDispatcher_SetThreshold(t *testing.T) {
	n := testutil.NewMockNotifier("email")
	d := New(testutil.NewTestLogger())
	d.AddRoute(alert.SeverityHigh, n)

	d.Dispatch(context.Background(), alert.New(alert.SeverityMedium, "m1", "test"))
	if n.Count() != 0 {
		t.Fatalf("notified below threshold")
	}

	d.SetThreshold("email", alert.SeverityMedium)
	d.Dispatch(context.Background(), alert.New(alert.SeverityMedium, "m2", "test"))
	if n.Count() != 1 {
		t.Fatalf("notified %d times after threshold lowered, want 1", n.Count())
	}

	// Unknown names are ignored
	d.SetThreshold("nope", alert.SeverityInfo)
}

func TestDispatcher_FailureIsolation(t *testing.T) {
	failing := testutil.NewMockNotifier("failing")
	failing.Err = errors.New("smtp down")
	healthy := testutil.NewMockNotifier("healthy")

	d := New(testutil.NewTestLogger())
	d.AddRoute(alert.SeverityInfo, failing)
	d.AddRoute(alert.SeverityInfo, healthy)

	d.Dispatch(context.Background(), alert.New(alert.SeverityHigh, "test", "test"))

	if healthy.Count() != 1 {
		t.Fatalf("healthy notifier got %d alerts, want 1", healthy.Count())
	}
}

type panicNotifier struct{}

func (panicNotifier) Name() string                                { return "panicky" }
func (panicNotifier) Notify(ctx context.Context, a *alert.Alert) error { panic("boom") }

func TestDispatcher_PanicIsolation(t *testing.T) {
	healthy := testutil.NewMockNotifier("healthy")

	d := New(testutil.NewTestLogger())
	d.AddRoute(alert.SeverityInfo, panicNotifier{})
	d.AddRoute(alert.SeverityInfo, healthy)

	d.Dispatch(context.Background(), alert.New(alert.SeverityHigh, "test", "test"))

	if healthy.Count() != 1 {
		t.Fatalf("healthy notifier got %d alerts after peer panic, want 1", healthy.Count())
	}
}

func TestDispatcher_RunDrainsOnBusClose(t *testing.T) {
	n := testutil.NewMockNotifier("sink")
	d := New(testutil.NewTestLogger())
	d.AddRoute(alert.SeverityInfo, n)

	alertBus := bus.New[*alert.Alert]()
	sub := alertBus.Subscribe()

	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), sub)
		close(done)
	}()

	for i := 0; i < 4; i++ {
		alertBus.Publish(alert.New(alert.SeverityLow, "queued", "test"))
	}
	alertBus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after bus close")
	}
	if n.Count() != 4 {
		t.Fatalf("delivered %d alerts after drain, want 4", n.Count())
	}
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// capturingSender records emails without depending on testutil, which
// would import this package back.
type capturingSender struct {
	sent []string // subjects
	body []string
	err  error
}

func (s *capturingSender) Send(cfg settings.EmailConfig, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, subject)
	s.body = append(s.body, body)
	return nil
}

func emailCfg(batchSeconds, throttleMinutes int) settings.EmailConfig {
	return settings.EmailConfig{
		Enabled:            true,
		RecipientAddress:   "owner@example.com",
		BatchWindowSeconds: batchSeconds,
		ThrottleMinutes:    throttleMinutes,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestEmailNotifier_BatchesWithinWindow(t *testing.T) {
	sender := &capturingSender{}
	n := NewEmailNotifier(emailCfg(1, 0), sender, logger.Nop())

	for i := 0; i < 3; i++ {
		if err := n.Notify(context.Background(), alert.New(alert.SeverityHigh, "alert", "test")); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}
	if n.Pending() != 3 {
		t.Fatalf("Pending() = %d before window expiry, want 3", n.Pending())
	}

	waitFor(t, 3*time.Second, func() bool { return len(sender.sent) == 1 })

	if !strings.Contains(sender.sent[0], "3 alert(s)") {
		t.Errorf("subject = %q, want 3 alert(s)", sender.sent[0])
	}
	if !strings.Contains(sender.sent[0], "HIGH") {
		t.Errorf("subject = %q, want highest severity HIGH", sender.sent[0])
	}
	if n.Pending() != 0 {
		t.Errorf("Pending() = %d after send, want 0", n.Pending())
	}
}

func TestEmailNotifier_DisabledDropsSilently(t *testing.T) {
	sender := &capturingSender{}
	cfg := emailCfg(1, 0)
	cfg.Enabled = false
	n := NewEmailNotifier(cfg, sender, logger.Nop())

	if err := n.Notify(context.Background(), alert.New(alert.SeverityHigh, "alert", "test")); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if n.Pending() != 0 {
		t.Fatalf("disabled notifier queued %d alerts", n.Pending())
	}
	n.Flush()
	if len(sender.sent) != 0 {
		t.Fatalf("disabled notifier sent %d emails", len(sender.sent))
	}
}

func TestEmailNotifier_FlushSendsImmediately(t *testing.T) {
	sender := &capturingSender{}
	// Long window: only Flush can trigger the send
	n := NewEmailNotifier(emailCfg(3600, 0), sender, logger.Nop())

	n.Notify(context.Background(), alert.New(alert.SeverityCritical, "rdp session", "test"))
	n.Notify(context.Background(), alert.New(alert.SeverityLow, "noise", "test"))

	n.Flush()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails after Flush, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "CRITICAL") {
		t.Errorf("subject = %q, want highest severity CRITICAL", sender.sent[0])
	}
	if !strings.Contains(sender.body[0], "rdp session") {
		t.Errorf("body missing alert message: %q", sender.body[0])
	}
}

func TestEmailNotifier_FailureRequeuesBatch(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	n := NewEmailNotifier(emailCfg(3600, 0), sender, logger.Nop())

	n.Notify(context.Background(), alert.New(alert.SeverityHigh, "first", "test"))
	n.Flush()

	if n.Pending() != 1 {
		t.Fatalf("Pending() = %d after failed send, want 1", n.Pending())
	}

	// Transport recovers; the re-queued alert goes out with the next batch
	sender.err = nil
	n.Notify(context.Background(), alert.New(alert.SeverityHigh, "second", "test"))
	n.Flush()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails after recovery, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "2 alert(s)") {
		t.Errorf("subject = %q, want both alerts in one batch", sender.sent[0])
	}
	if !strings.Contains(sender.body[0], "first") || !strings.Contains(sender.body[0], "second") {
		t.Errorf("body missing re-queued alert: %q", sender.body[0])
	}
}

func TestEmailNotifier_ThrottleDelaysSecondBatch(t *testing.T) {
	sender := &capturingSender{}
	n := NewEmailNotifier(emailCfg(1, 0), sender, logger.Nop())

	// Throttle measured in whole minutes is too coarse for a unit test;
	// drive the clock instead
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	clock := base
	n.now = func() time.Time { return clock }
	n.SetConfig(emailCfg(1, 5))

	n.Notify(context.Background(), alert.New(alert.SeverityHigh, "first", "test"))
	n.Flush()
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}

	// Within the throttle interval the timer must fire no earlier than
	// lastSent + throttle
	clock = base.Add(time.Minute)
	n.mu.Lock()
	n.pending = append(n.pending, alert.New(alert.SeverityHigh, "second", "test"))
	n.scheduleLocked()
	timerArmed := n.timer != nil
	n.mu.Unlock()

	if !timerArmed {
		t.Fatal("no batch timer armed")
	}

	// The armed timer waits ~4 minutes; nothing goes out now
	time.Sleep(50 * time.Millisecond)
	if len(sender.sent) != 1 {
		t.Fatalf("second batch sent before throttle elapsed")
	}

	// Flush overrides the throttle
	n.Flush()
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails after Flush, want 2", len(sender.sent))
	}
}

func TestFormatBatch(t *testing.T) {
	a1 := alert.New(alert.SeverityMedium, "activity during away window", "input-monitor")
	a2 := alert.New(alert.SeverityCritical, "remote session", "session-monitor")

	subject, body := formatBatch([]*alert.Alert{a1, a2})

	if subject != "Vigil: 2 alert(s), highest: CRITICAL" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"MEDIUM", "CRITICAL", "activity during away window", "remote session", "input-monitor"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// Sender delivers one outbound email. The SMTP mechanics live behind this
// interface so tests and alternative transports can replace them.
type Sender interface {
	Send(cfg settings.EmailConfig, subject, body string) error
}

// EmailNotifier batches and throttles alert emails. Queued alerts
// accumulated within the batch window coalesce into a single message,
// sent at the later of window expiry and the earliest time the throttle
// interval allows. Every queued alert appears in exactly one batch.
type EmailNotifier struct {
	mu       sync.Mutex
	cfg      settings.EmailConfig
	pending  []*alert.Alert
	lastSent time.Time
	timer    *time.Timer

	sender Sender
	now    func() time.Time
	logger *logger.Logger
}

// NewEmailNotifier creates an email notifier. A nil sender uses SMTP.
func NewEmailNotifier(cfg settings.EmailConfig, sender Sender, log *logger.Logger) *EmailNotifier {
	if sender == nil {
		sender = &SMTPSender{}
	}
	return &EmailNotifier{
		cfg:    cfg,
		sender: sender,
		now:    time.Now,
		logger: log,
	}
}

// Name implements dispatch.Notifier.
func (n *EmailNotifier) Name() string { return "email" }

// SetConfig swaps in new email routing config without restart.
func (n *EmailNotifier) SetConfig(cfg settings.EmailConfig) {
	n.mu.Lock()
	n.cfg = cfg
	n.mu.Unlock()
}

// Notify implements dispatch.Notifier. The alert is queued and a batch
// send is scheduled; the call itself never blocks on network I/O.
func (n *EmailNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.cfg.Enabled {
		return nil
	}
	n.pending = append(n.pending, a)
	n.scheduleLocked()
	return nil
}

// scheduleLocked arms the batch timer if it is not already running. The
// batch fires at the later of the batch-window expiry and the earliest
// instant the throttle interval permits.
func (n *EmailNotifier) scheduleLocked() {
	if n.timer != nil {
		return
	}
	now := n.now()
	fireAt := now.Add(n.batchWindow())
	if earliest := n.lastSent.Add(n.throttle()); earliest.After(fireAt) {
		fireAt = earliest
	}
	n.timer = time.AfterFunc(fireAt.Sub(now), n.flushTimer)
}

func (n *EmailNotifier) flushTimer() {
	n.mu.Lock()
	n.timer = nil
	n.sendLocked()
}

// Flush sends any pending alerts immediately, ignoring the throttle.
// Called on shutdown so queued alerts are not lost.
func (n *EmailNotifier) Flush() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.sendLocked()
}

// sendLocked takes the pending batch and delivers it, releasing the lock
// around the network send. Must be called with the lock held; it unlocks.
func (n *EmailNotifier) sendLocked() {
	batch := n.pending
	n.pending = nil
	cfg := n.cfg
	n.mu.Unlock()

	if len(batch) == 0 || !cfg.Enabled {
		return
	}

	subject, body := formatBatch(batch)
	if err := n.sender.Send(cfg, subject, body); err != nil {
		n.logger.ErrorWithErr(err, "Failed to send alert email")
		// Re-queue this batch only; alerts arriving later schedule the
		// retry, so the queue cannot grow without bound
		n.mu.Lock()
		n.pending = append(batch, n.pending...)
		n.mu.Unlock()
		return
	}

	metrics.RecordEmailSent()
	n.mu.Lock()
	n.lastSent = n.now()
	n.mu.Unlock()
	n.logger.Infof("Sent email with %d alert(s)", len(batch))
}

// Pending returns the number of queued alerts. Used by the status endpoint.
func (n *EmailNotifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

func (n *EmailNotifier) batchWindow() time.Duration {
	if n.cfg.BatchWindowSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n.cfg.BatchWindowSeconds) * time.Second
}

func (n *EmailNotifier) throttle() time.Duration {
	return time.Duration(n.cfg.ThrottleMinutes) * time.Minute
}

func formatBatch(batch []*alert.Alert) (subject, body string) {
	highest := batch[0].Severity
	for _, a := range batch[1:] {
		if a.Severity.AtLeast(highest) {
			highest = a.Severity
		}
	}
	subject = fmt.Sprintf("Vigil: %d alert(s), highest: %s", len(batch), highest)

	var b strings.Builder
	for _, a := range batch {
		fmt.Fprintf(&b, "[%s] %s\n  Source: %s\n  Time: %s\n\n",
			a.Severity, a.Message, a.Source, a.CreatedAt.Format(time.RFC3339))
	}
	return subject, b.String()
}

// SMTPSender delivers mail over SMTP with STARTTLS and optional auth.
type SMTPSender struct{}

// Send implements Sender.
func (s *SMTPSender) Send(cfg settings.EmailConfig, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.SenderAddress, cfg.RecipientAddress, subject, body)

	var auth smtp.Auth
	if cfg.SenderAddress != "" && cfg.SenderPassword != "" {
		auth = smtp.PlainAuth("", cfg.SenderAddress, cfg.SenderPassword, cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, cfg.SenderAddress,
		[]string{cfg.RecipientAddress}, []byte(msg))
}

package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/notify"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// DailySummary emits a once-a-day digest of the alerts fired over the
// previous 24 hours. The digest goes by email when the email channel is
// configured; otherwise it is logged.
type DailySummary struct {
	alerts   alert.Repository
	store    *settings.Store
	sender   notify.Sender
	schedule string
	location *time.Location
	logger   *logger.Logger

	cron *cron.Cron
}

// NewDailySummary creates a daily summary worker. sender may be nil to
// log the digest instead of mailing it.
func NewDailySummary(
	alerts alert.Repository,
	store *settings.Store,
	sender notify.Sender,
	schedule string,
	loc *time.Location,
	log *logger.Logger,
) *DailySummary {
	if loc == nil {
		loc = time.Local
	}
	return &DailySummary{
		alerts:   alerts,
		store:    store,
		sender:   sender,
		schedule: schedule,
		location: loc,
		logger:   log,
	}
}

// Start schedules the digest. Returns an error when the cron spec is
// invalid.
func (s *DailySummary) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(s.location))
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid summary schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Daily summary worker started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running digest to finish.
func (s *DailySummary) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Daily summary worker stopped")
}

func (s *DailySummary) run(ctx context.Context) {
	since := time.Now().Add(-24 * time.Hour)
	counts, err := s.alerts.CountSince(ctx, since)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to collect alerts for daily summary")
		return
	}

	subject, body := formatSummary(counts, since)

	cfg := s.store.Snapshot().Alerts.Email
	if s.sender != nil && cfg.Enabled && cfg.RecipientAddress != "" {
		if err := s.sender.Send(cfg, subject, body); err != nil {
			s.logger.ErrorWithErr(err, "Failed to send daily summary email")
			return
		}
		s.logger.Info("Daily summary email sent")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"summary": body,
	}).Info(subject)
}

// formatSummary renders the digest. Severities appear highest first;
// a quiet day still produces a digest saying so.
func formatSummary(counts map[alert.Severity]int, since time.Time) (subject, body string) {
	total := 0
	severities := make([]alert.Severity, 0, len(counts))
	for sev, n := range counts {
		total += n
		severities = append(severities, sev)
	}
	sort.Slice(severities, func(i, j int) bool {
		return severities[i].Rank() > severities[j].Rank()
	})

	subject = fmt.Sprintf("Vigil daily summary: %d alert(s)", total)

	var b strings.Builder
	fmt.Fprintf(&b, "Alerts since %s:\n", since.Format("2006-01-02 15:04"))
	if total == 0 {
		b.WriteString("No alerts fired in the last 24 hours.\n")
		return subject, b.String()
	}
	for _, sev := range severities {
		fmt.Fprintf(&b, "  %s: %d\n", sev, counts[sev])
	}
	return subject, b.String()
}

package alert

import (
	"context"
	"time"
)

// Repository defines the timeline store contract for alerts
type Repository interface {
	// Insert creates an alert record
	Insert(ctx context.Context, a *Alert) error

	// GetByID retrieves an alert by ID, returning a NOT_FOUND AppError
	// when absent
	GetByID(ctx context.Context, id string) (*Alert, error)

	// List retrieves alerts matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]*Alert, error)

	// Count returns the number of alerts matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Acknowledge marks an alert acknowledged. Idempotent; returns a
	// NOT_FOUND AppError when the id is absent.
	Acknowledge(ctx context.Context, id string) error

	// Snooze sets the alert's snoozed_until. A later snooze overwrites an
	// earlier one. Returns a NOT_FOUND AppError when the id is absent.
	Snooze(ctx context.Context, id string, until time.Time) error

	// CountSince counts alerts created at or after the given instant,
	// grouped by severity
	CountSince(ctx context.Context, since time.Time) (map[Severity]int, error)
}

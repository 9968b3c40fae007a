package event

import "context"

// Repository defines the timeline store contract for events. Writes are
// atomic per record; events are append-only.
type Repository interface {
	// Insert appends an event to the timeline
	Insert(ctx context.Context, e *Event) error

	// GetByID retrieves an event by ID, returning a NOT_FOUND AppError
	// when absent
	GetByID(ctx context.Context, id string) (*Event, error)

	// List retrieves events matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]*Event, error)

	// Count returns the number of events matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}

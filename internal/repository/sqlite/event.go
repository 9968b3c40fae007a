package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
)

// EventRepository implements event.Repository over the timeline_events table
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new sqlite event repository
func NewEventRepository(d *db.DB) *EventRepository {
	return &EventRepository{db: d.SQL()}
}

// Insert appends an event to the timeline
func (r *EventRepository) Insert(ctx context.Context, e *event.Event) error {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		return errors.Internal("failed to encode event detail", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO timeline_events (id, source, category, action, subject, target, detail, severity, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Category, e.Action, e.Subject, e.Target,
		string(detail), e.Severity, encodeTime(e.Timestamp),
	)
	if err != nil {
		return errors.StoreUnavailable("failed to insert event", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, source, category, action, subject, target, detail, severity, timestamp
FROM timeline_events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("event")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("failed to get event", err)
	}
	return e, nil
}

// List retrieves events matching the filter, newest first
func (r *EventRepository) List(ctx context.Context, filter event.Filter) ([]*event.Event, error) {
	where, args := eventWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query := fmt.Sprintf(`
SELECT id, source, category, action, subject, target, detail, severity, timestamp
FROM timeline_events %s ORDER BY timestamp DESC LIMIT ? OFFSET ?`, where)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreUnavailable("failed to list events", err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, errors.StoreUnavailable("failed to scan event", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable("failed to list events", err)
	}
	return out, nil
}

// Count returns the number of events matching the filter
func (r *EventRepository) Count(ctx context.Context, filter event.Filter) (int64, error) {
	where, args := eventWhere(filter)
	var count int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM timeline_events %s`, where), args...,
	).Scan(&count)
	if err != nil {
		return 0, errors.StoreUnavailable("failed to count events", err)
	}
	return count, nil
}

func eventWhere(filter event.Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, encodeTime(*filter.Since))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// timeLayout is fixed width, unlike RFC3339Nano which trims trailing
// zeros. Timestamps are compared as strings in SQL, so every stored
// value must sort chronologically under lexicographic comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var e event.Event
	var detail, ts string
	if err := row.Scan(&e.ID, &e.Source, &e.Category, &e.Action,
		&e.Subject, &e.Target, &detail, &e.Severity, &ts); err != nil {
		return nil, err
	}
	if detail != "" {
		_ = json.Unmarshal([]byte(detail), &e.Detail)
	}
	t, err := decodeTime(ts)
	if err != nil {
		return nil, err
	}
	e.Timestamp = t
	return &e, nil
}

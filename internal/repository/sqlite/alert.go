package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
)

// AlertRepository implements alert.Repository over the alerts table
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new sqlite alert repository
func NewAlertRepository(d *db.DB) *AlertRepository {
	return &AlertRepository{db: d.SQL()}
}

// Insert creates an alert record
func (r *AlertRepository) Insert(ctx context.Context, a *alert.Alert) error {
	detail, err := json.Marshal(a.Detail)
	if err != nil {
		return errors.Internal("failed to encode alert detail", err)
	}
	var snoozed interface{}
	if a.SnoozedUntil != nil {
		snoozed = encodeTime(*a.SnoozedUntil)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO alerts (id, severity, message, source, detail, acknowledged, snoozed_until, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Severity), a.Message, a.Source, string(detail),
		boolToInt(a.Acknowledged), snoozed, encodeTime(a.CreatedAt),
	)
	if err != nil {
		return errors.StoreUnavailable("failed to insert alert", err)
	}
	return nil
}

// GetByID retrieves an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alert.Alert, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, severity, message, source, detail, acknowledged, snoozed_until, created_at
FROM alerts WHERE id = ?`, id)

	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("alert")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("failed to get alert", err)
	}
	return a, nil
}

// List retrieves alerts matching the filter, newest first. Insertion order
// breaks created_at ties so racing alerts list deterministically.
func (r *AlertRepository) List(ctx context.Context, filter alert.Filter) ([]*alert.Alert, error) {
	where, args := alertWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
SELECT id, severity, message, source, detail, acknowledged, snoozed_until, created_at
FROM alerts %s ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, where)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreUnavailable("failed to list alerts", err)
	}
	defer rows.Close()

	var out []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, errors.StoreUnavailable("failed to scan alert", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable("failed to list alerts", err)
	}
	return out, nil
}

// Count returns the number of alerts matching the filter
func (r *AlertRepository) Count(ctx context.Context, filter alert.Filter) (int64, error) {
	where, args := alertWhere(filter)
	var count int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM alerts %s`, where), args...,
	).Scan(&count)
	if err != nil {
		return 0, errors.StoreUnavailable("failed to count alerts", err)
	}
	return count, nil
}

// Acknowledge marks an alert acknowledged. The flag is monotonic: a second
// acknowledge leaves it set.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.StoreUnavailable("failed to acknowledge alert", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.StoreUnavailable("failed to acknowledge alert", err)
	}
	if n == 0 {
		return errors.NotFound("alert")
	}
	return nil
}

// Snooze sets the alert's snoozed_until, overwriting any earlier snooze.
func (r *AlertRepository) Snooze(ctx context.Context, id string, until time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET snoozed_until = ? WHERE id = ?`,
		encodeTime(until), id)
	if err != nil {
		return errors.StoreUnavailable("failed to snooze alert", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.StoreUnavailable("failed to snooze alert", err)
	}
	if n == 0 {
		return errors.NotFound("alert")
	}
	return nil
}

// CountSince counts alerts created at or after the given instant, by severity
func (r *AlertRepository) CountSince(ctx context.Context, since time.Time) (map[alert.Severity]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT severity, COUNT(1) FROM alerts WHERE created_at >= ? GROUP BY severity`,
		encodeTime(since))
	if err != nil {
		return nil, errors.StoreUnavailable("failed to count alerts", err)
	}
	defer rows.Close()

	out := make(map[alert.Severity]int)
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, errors.StoreUnavailable("failed to count alerts", err)
		}
		out[alert.Severity(sev)] = n
	}
	return out, rows.Err()
}

func alertWhere(filter alert.Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Acknowledged != nil {
		clauses = append(clauses, "acknowledged = ?")
		args = append(args, boolToInt(*filter.Acknowledged))
	}
	if filter.ActiveAt != nil {
		clauses = append(clauses, "acknowledged = 0 AND (snoozed_until IS NULL OR snoozed_until <= ?)")
		args = append(args, encodeTime(*filter.ActiveAt))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanAlert(row rowScanner) (*alert.Alert, error) {
	var a alert.Alert
	var sev, detail, created string
	var snoozed sql.NullString
	var acked int
	if err := row.Scan(&a.ID, &sev, &a.Message, &a.Source, &detail,
		&acked, &snoozed, &created); err != nil {
		return nil, err
	}
	a.Severity = alert.Severity(sev)
	a.Acknowledged = acked != 0
	if detail != "" {
		_ = json.Unmarshal([]byte(detail), &a.Detail)
	}
	if snoozed.Valid {
		t, err := decodeTime(snoozed.String)
		if err != nil {
			return nil, err
		}
		a.SnoozedUntil = &t
	}
	t, err := decodeTime(created)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = t
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

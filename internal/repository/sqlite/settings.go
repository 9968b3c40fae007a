package sqlite

import (
	"context"
	"database/sql"

	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
)

// SettingsRepository implements settings.Repository over the settings table
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new sqlite settings repository
func NewSettingsRepository(d *db.DB) *SettingsRepository {
	return &SettingsRepository{db: d.SQL()}
}

// Get retrieves a raw setting value
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.StoreUnavailable("failed to get setting", err)
	}
	return value, true, nil
}

// Set stores a raw setting value, replacing any previous one
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return errors.StoreUnavailable("failed to set setting", err)
	}
	return nil
}

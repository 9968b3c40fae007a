package testutil

import (
	"testing"

	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// NewTestDB creates an in-memory timeline store with the full schema
// applied. The store is closed when the test ends.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *logger.Logger {
	return logger.Nop()
}

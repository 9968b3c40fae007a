package settings

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// Snapshot is an immutable view of the full agent configuration. Consumers
// read it by value; an in-flight evaluation may use the pre-swap snapshot
// but never a torn one.
type Snapshot struct {
	Folders     []MonitoredFolder
	AwayWindows []AwayWindow
	Alerts      AlertConfig
}

// Store loads typed configuration from a settings repository, keeps an
// atomically swapped snapshot, and notifies listeners on change.
type Store struct {
	repo     Repository
	logger   *logger.Logger
	snapshot atomic.Pointer[Snapshot]

	mu        sync.Mutex
	listeners []func(Snapshot)
}

// NewStore creates a Store and loads the initial snapshot. Missing keys
// fall back to defaults; a malformed stored value is an error since it
// indicates corruption rather than absence.
func NewStore(ctx context.Context, repo Repository, log *logger.Logger) (*Store, error) {
	s := &Store{repo: repo, logger: log}

	snap := Snapshot{Alerts: DefaultAlertConfig()}
	if err := s.loadJSON(ctx, KeyMonitoredFolders, &snap.Folders); err != nil {
		return nil, err
	}
	if err := s.loadJSON(ctx, KeyAwayWindows, &snap.AwayWindows); err != nil {
		return nil, err
	}
	if err := s.loadJSON(ctx, KeyAlertConfig, &snap.Alerts); err != nil {
		return nil, err
	}
	s.snapshot.Store(&snap)
	return s, nil
}

// Snapshot returns the current configuration snapshot.
func (s *Store) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// OnChange registers a listener invoked with the new snapshot after every
// successful update.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetFolders persists and swaps in a new monitored folder set.
func (s *Store) SetFolders(ctx context.Context, folders []MonitoredFolder) error {
	return s.update(ctx, KeyMonitoredFolders, folders, func(snap *Snapshot) {
		snap.Folders = folders
	})
}

// SetAwayWindows persists and swaps in a new away window set.
func (s *Store) SetAwayWindows(ctx context.Context, windows []AwayWindow) error {
	return s.update(ctx, KeyAwayWindows, windows, func(snap *Snapshot) {
		snap.AwayWindows = windows
	})
}

// SetAlertConfig persists and swaps in new alert routing config.
func (s *Store) SetAlertConfig(ctx context.Context, cfg AlertConfig) error {
	return s.update(ctx, KeyAlertConfig, cfg, func(snap *Snapshot) {
		snap.Alerts = cfg
	})
}

func (s *Store) update(ctx context.Context, key string, value interface{}, apply func(*Snapshot)) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Internal("failed to encode setting", err)
	}
	if err := s.repo.Set(ctx, key, string(raw)); err != nil {
		return errors.StoreUnavailable("failed to persist setting", err)
	}

	// Serialize swaps so concurrent updates cannot interleave stale copies
	s.mu.Lock()
	snap := *s.snapshot.Load()
	apply(&snap)
	s.snapshot.Store(&snap)
	listeners := make([]func(Snapshot), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	s.logger.With("key", key).Info("Configuration updated")
	return nil
}

func (s *Store) loadJSON(ctx context.Context, key string, out interface{}) error {
	raw, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return errors.StoreUnavailable("failed to load setting", err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Internal("corrupt setting value: "+key, err)
	}
	return nil
}

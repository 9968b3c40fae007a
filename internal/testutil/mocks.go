package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
)

// MockEventRepository is an in-memory implementation of event.Repository
type MockEventRepository struct {
	mu          sync.Mutex
	Events      []*event.Event
	InsertError error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Insert(ctx context.Context, e *event.Event) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.NotFound("Event")
}

func (m *MockEventRepository) List(ctx context.Context, filter event.Filter) ([]*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*event.Event
	for i := len(m.Events) - 1; i >= 0; i-- {
		e := m.Events[i]
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MockEventRepository) Count(ctx context.Context, filter event.Filter) (int64, error) {
	list, err := m.List(ctx, filter)
	return int64(len(list)), err
}

// Len returns the number of stored events.
func (m *MockEventRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// MockAlertRepository is an in-memory implementation of alert.Repository
type MockAlertRepository struct {
	mu          sync.Mutex
	Alerts      []*alert.Alert
	InsertError error
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{}
}

func (m *MockAlertRepository) Insert(ctx context.Context, a *alert.Alert) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, a)
	return nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id string) (*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.NotFound("Alert")
}

func (m *MockAlertRepository) List(ctx context.Context, filter alert.Filter) ([]*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*alert.Alert
	for i := len(m.Alerts) - 1; i >= 0; i-- {
		a := m.Alerts[i]
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.Acknowledged != nil && a.Acknowledged != *filter.Acknowledged {
			continue
		}
		if filter.ActiveAt != nil && !a.Active(*filter.ActiveAt) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MockAlertRepository) Count(ctx context.Context, filter alert.Filter) (int64, error) {
	list, err := m.List(ctx, filter)
	return int64(len(list)), err
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.ID == id {
			a.Acknowledged = true
			return nil
		}
	}
	return errors.NotFound("Alert")
}

func (m *MockAlertRepository) Snooze(ctx context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.ID == id {
			a.SnoozedUntil = &until
			return nil
		}
	}
	return errors.NotFound("Alert")
}

func (m *MockAlertRepository) CountSince(ctx context.Context, since time.Time) (map[alert.Severity]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[alert.Severity]int)
	for _, a := range m.Alerts {
		if !a.CreatedAt.Before(since) {
			counts[a.Severity]++
		}
	}
	return counts, nil
}

// Len returns the number of stored alerts.
func (m *MockAlertRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Alerts)
}

// MockSettingsRepository is an in-memory implementation of
// settings.Repository
type MockSettingsRepository struct {
	mu       sync.Mutex
	Values   map[string]string
	GetError error
	SetError error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Values: make(map[string]string)}
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetError != nil {
		return "", false, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Values[key]
	return v, ok, nil
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Values[key] = value
	return nil
}

// StaticConfig is a fixed configuration source for engine tests
type StaticConfig struct {
	mu   sync.Mutex
	snap settings.Snapshot
}

func NewStaticConfig(snap settings.Snapshot) *StaticConfig {
	return &StaticConfig{snap: snap}
}

func (c *StaticConfig) Snapshot() settings.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Update replaces the snapshot returned by Snapshot.
func (c *StaticConfig) Update(snap settings.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// MockNotifier records every alert it receives
type MockNotifier struct {
	mu       sync.Mutex
	name     string
	Received []*alert.Alert
	Err      error
}

func NewMockNotifier(name string) *MockNotifier {
	return &MockNotifier{name: name}
}

func (n *MockNotifier) Name() string { return n.name }

func (n *MockNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Received = append(n.Received, a)
	return nil
}

// Count returns how many alerts the notifier has received.
func (n *MockNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Received)
}

// SentEmail is one email captured by MockSender
type SentEmail struct {
	Config  settings.EmailConfig
	Subject string
	Body    string
}

// MockSender captures emails instead of delivering them
type MockSender struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (s *MockSender) Send(cfg settings.EmailConfig, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SentEmail{Config: cfg, Subject: subject, Body: body})
	return nil
}

// Count returns how many emails have been sent.
func (s *MockSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// SetError makes subsequent sends fail with err; pass nil to recover.
func (s *MockSender) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

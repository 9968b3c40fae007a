package alert

import (
	"time"

	"github.com/google/uuid"
)

// Severity is an ordered alert level used both descriptively and for
// notifier routing thresholds.
type Severity string

// Severity levels, ordered INFO < LOW < MEDIUM < HIGH < CRITICAL
const (
	SeverityInfo     Severity = "INFO"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityOrder = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric position of a severity. Unknown severities
// rank lowest.
func (s Severity) Rank() int {
	return severityOrder[s]
}

// AtLeast reports whether s meets or exceeds the threshold min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Valid reports whether s is a known severity level.
func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

// Alert is the mutable decision record produced when a rule fires.
// Acknowledged is monotonic false→true; SnoozedUntil is re-armable and
// cleared implicitly once its time passes. Acknowledgement dominates
// snooze state for display filtering.
type Alert struct {
	ID           string                 `json:"id"`
	Severity     Severity               `json:"severity"`
	Message      string                 `json:"message"`
	Source       string                 `json:"source,omitempty"`
	Detail       map[string]interface{} `json:"detail,omitempty"`
	Acknowledged bool                   `json:"acknowledged"`
	SnoozedUntil *time.Time             `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// New creates an Alert with a fresh ID and the current time.
func New(severity Severity, message, source string) *Alert {
	return &Alert{
		ID:        NewID(),
		Severity:  severity,
		Message:   message,
		Source:    source,
		Detail:    map[string]interface{}{},
		CreatedAt: time.Now().UTC(),
	}
}

// NewID returns a short unique alert identifier.
func NewID() string {
	u := uuid.New()
	return u.String()[:8] + u.String()[9:13]
}

// Active reports whether the alert should surface in "active" listings
// at the given instant: unacknowledged and not currently snoozed.
func (a *Alert) Active(now time.Time) bool {
	if a.Acknowledged {
		return false
	}
	if a.SnoozedUntil != nil && now.Before(*a.SnoozedUntil) {
		return false
	}
	return true
}

// Filter contains alert listing filters. Nil pointers mean "no filter".
type Filter struct {
	Severity     Severity
	Acknowledged *bool
	// ActiveAt restricts results to alerts active at the given instant
	// (unacknowledged, snooze expired or unset)
	ActiveAt *time.Time
	Limit    int
	Offset   int
}

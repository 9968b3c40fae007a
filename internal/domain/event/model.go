package event

import (
	"time"

	"github.com/google/uuid"
)

// Event categories
const (
	CategoryFileSystem = "file_system"
	CategoryUserInput  = "user_input"
	CategorySession    = "session"
	CategorySystem     = "system"
)

// Event actions
const (
	// File system
	ActionFileCreated  = "file_created"
	ActionFileModified = "file_modified"
	ActionFileDeleted  = "file_deleted"
	ActionFileRenamed  = "file_renamed"
	ActionFileMoved    = "file_moved"
	// User input
	ActionInputDetected    = "input_detected"
	ActionIdleStarted      = "idle_started"
	ActionActiveDuringAway = "active_during_away"
	// Session
	ActionSessionLogon    = "session_logon"
	ActionSessionLogoff   = "session_logoff"
	ActionSessionLock     = "session_lock"
	ActionSessionUnlock   = "session_unlock"
	ActionRDPSessionStart = "rdp_session_start"
	ActionFailedLogin     = "failed_login"
	// Power
	ActionSystemWake  = "system_wake"
	ActionSystemSleep = "system_sleep"
)

// Event sources
const (
	SourceFolderMonitor  = "folder-monitor"
	SourceInputMonitor   = "input-monitor"
	SourceSessionMonitor = "session-monitor"
	SourceSystem         = "system"
)

// Event is an immutable timeline fact produced by a monitor or the rule
// engine itself. It is created exactly once and never mutated.
type Event struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Category  string                 `json:"category"`
	Action    string                 `json:"action"`
	Subject   string                 `json:"subject,omitempty"`
	Target    string                 `json:"target,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Severity  string                 `json:"severity"`
	Timestamp time.Time              `json:"timestamp"`
}

// New creates an Event with a fresh ID and the current time. Severity
// defaults to INFO; callers override it for noteworthy events.
func New(source, category, action string) *Event {
	return &Event{
		ID:        NewID(),
		Source:    source,
		Category:  category,
		Action:    action,
		Detail:    map[string]interface{}{},
		Severity:  "INFO",
		Timestamp: time.Now().UTC(),
	}
}

// NewID returns a short unique event identifier.
func NewID() string {
	u := uuid.New()
	return u.String()[:8] + u.String()[9:13]
}

// IsFileMutation reports whether the action is a file change observed by
// the folder monitor.
func IsFileMutation(action string) bool {
	switch action {
	case ActionFileCreated, ActionFileModified, ActionFileDeleted,
		ActionFileRenamed, ActionFileMoved:
		return true
	}
	return false
}

// Filter contains event listing filters. Zero values mean "no filter".
type Filter struct {
	Category string
	Action   string
	Since    *time.Time
	Limit    int
	Offset   int
}

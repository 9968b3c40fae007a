package client

import "time"

// Event is one timeline entry recorded by the agent
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

// Alert is a rule engine decision recorded by the agent
type Alert struct {
	ID           string                 `json:"id"`
	Severity     string                 `json:"severity"`
	Message      string                 `json:"message"`
	Source       string                 `json:"source,omitempty"`
	Detail       map[string]interface{} `json:"detail,omitempty"`
	Acknowledged bool                   `json:"acknowledged"`
	SnoozedUntil *time.Time             `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// MonitoredFolder is a watched filesystem location
type MonitoredFolder struct {
	ID            string `json:"id,omitempty"`
	Path          string `json:"path"`
	Recursive     bool   `json:"recursive"`
	Enabled       bool   `json:"enabled"`
	WatchCreates  bool   `json:"watch_creates"`
	WatchModifies bool   `json:"watch_modifies"`
	WatchDeletes  bool   `json:"watch_deletes"`
	WatchRenames  bool   `json:"watch_renames"`
}

// AwayWindow is a recurring weekly absence span. Days use Monday=0.
type AwayWindow struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label,omitempty"`
	StartHour   int    `json:"start_hour"`
	StartMinute int    `json:"start_minute"`
	EndHour     int    `json:"end_hour"`
	EndMinute   int    `json:"end_minute"`
	Days        []int  `json:"days"`
	Enabled     bool   `json:"enabled"`
}

// EmailConfig configures the agent's email channel
type EmailConfig struct {
	Enabled            bool   `json:"enabled"`
	SMTPHost           string `json:"smtp_host"`
	SMTPPort           int    `json:"smtp_port"`
	SenderAddress      string `json:"sender_address"`
	SenderPassword     string `json:"sender_password"`
	RecipientAddress   string `json:"recipient_address"`
	MinSeverity        string `json:"min_severity"`
	ThrottleMinutes    int    `json:"throttle_minutes"`
	BatchWindowSeconds int    `json:"batch_window_seconds"`
}

// AlertConfig holds the agent's alert routing thresholds
type AlertConfig struct {
	DashboardMinSeverity string      `json:"dashboard_min_severity"`
	ToastMinSeverity     string      `json:"toast_min_severity"`
	Email                EmailConfig `json:"email"`
}

// Status describes a running agent
type Status struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebsocketClients int     `json:"websocket_clients"`
	EventsProcessed  uint64  `json:"events_processed"`
	AlertsFired      uint64  `json:"alerts_fired"`
	PendingEmails    int     `json:"pending_emails"`
	AwayNow          bool    `json:"away_now"`
}

// ListOptions contains paging options shared by list endpoints
type ListOptions struct {
	Limit  int
	Offset int
}

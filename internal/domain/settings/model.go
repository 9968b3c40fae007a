package settings

import (
	"github.com/google/uuid"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
)

// Settings keys in the settings table
const (
	KeyMonitoredFolders = "monitored_folders"
	KeyAwayWindows      = "away_windows"
	KeyAlertConfig      = "alert_config"
)

// MonitoredFolder is a watched filesystem location. The canonical set is
// read-mostly and replaced wholesale on update.
type MonitoredFolder struct {
	ID           string `json:"id"`
	Path         string `json:"path" validate:"required"`
	Recursive    bool   `json:"recursive"`
	Enabled      bool   `json:"enabled"`
	WatchCreates bool   `json:"watch_creates"`
	WatchModifies bool  `json:"watch_modifies"`
	WatchDeletes bool   `json:"watch_deletes"`
	WatchRenames bool   `json:"watch_renames"`
}

// NewMonitoredFolder creates a folder entry with all watch flags on.
func NewMonitoredFolder(path string, recursive bool) MonitoredFolder {
	return MonitoredFolder{
		ID:            newID(),
		Path:          path,
		Recursive:     recursive,
		Enabled:       true,
		WatchCreates:  true,
		WatchModifies: true,
		WatchDeletes:  true,
		WatchRenames:  true,
	}
}

// EmailConfig configures the email notification channel
type EmailConfig struct {
	Enabled            bool   `json:"enabled"`
	SMTPHost           string `json:"smtp_host"`
	SMTPPort           int    `json:"smtp_port" validate:"gte=0,lte=65535"`
	SenderAddress      string `json:"sender_address"`
	SenderPassword     string `json:"sender_password"`
	RecipientAddress   string `json:"recipient_address"`
	MinSeverity        string `json:"min_severity" validate:"omitempty,oneof=INFO LOW MEDIUM HIGH CRITICAL"`
	ThrottleMinutes    int    `json:"throttle_minutes" validate:"gte=0"`
	BatchWindowSeconds int    `json:"batch_window_seconds" validate:"gte=0"`
}

// AlertConfig holds alert routing thresholds for every channel. It is
// read-mostly and hot-swapped wholesale; consumers read a snapshot.
type AlertConfig struct {
	DashboardMinSeverity string      `json:"dashboard_min_severity" validate:"omitempty,oneof=INFO LOW MEDIUM HIGH CRITICAL"`
	ToastMinSeverity     string      `json:"toast_min_severity" validate:"omitempty,oneof=INFO LOW MEDIUM HIGH CRITICAL"`
	Email                EmailConfig `json:"email"`
}

// DefaultAlertConfig returns the default routing thresholds: Dashboard
// LOW, Toast MEDIUM, Email HIGH.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		DashboardMinSeverity: string(alert.SeverityLow),
		ToastMinSeverity:     string(alert.SeverityMedium),
		Email: EmailConfig{
			SMTPHost:           "smtp.gmail.com",
			SMTPPort:           587,
			MinSeverity:        string(alert.SeverityHigh),
			ThrottleMinutes:    5,
			BatchWindowSeconds: 30,
		},
	}
}

func newID() string {
	return uuid.New().String()[:8]
}

// EnsureFolderIDs assigns fresh IDs to folders submitted without one.
func EnsureFolderIDs(folders []MonitoredFolder) {
	for i := range folders {
		if folders[i].ID == "" {
			folders[i].ID = newID()
		}
	}
}

// EnsureWindowIDs assigns fresh IDs to windows submitted without one.
func EnsureWindowIDs(windows []AwayWindow) {
	for i := range windows {
		if windows[i].ID == "" {
			windows[i].ID = newID()
		}
	}
}

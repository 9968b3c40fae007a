package dto

import (
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
)

// EventListResponse wraps an event listing
type EventListResponse struct {
	Events []*event.Event `json:"events"`
	Count  int            `json:"count"`
	Total  int64          `json:"total"`
}

// AlertListResponse wraps an alert listing
type AlertListResponse struct {
	Alerts []*alert.Alert `json:"alerts"`
	Count  int            `json:"count"`
	Total  int64          `json:"total"`
}

// SnoozeRequest is the body of POST /alerts/{id}/snooze
type SnoozeRequest struct {
	Hours float64 `json:"hours" validate:"gt=0,lte=168"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebsocketClients int     `json:"websocket_clients"`
	EventsProcessed  uint64  `json:"events_processed"`
	AlertsFired      uint64  `json:"alerts_fired"`
	PendingEmails    int     `json:"pending_emails"`
	AwayNow          bool    `json:"away_now"`
}

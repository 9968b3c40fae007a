package handlers

import (
	"net/http"
	"time"

	"github.com/pratik-mahalle/vigil/internal/api/dto"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/utils"
)

// EngineStats exposes the rule engine counters
type EngineStats interface {
	Stats() (processed, fired uint64)
}

// ClientCounter exposes the number of connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// PendingCounter exposes the number of alerts queued for the next email
type PendingCounter interface {
	Pending() int
}

// StatusHandler serves agent liveness and runtime counters
type StatusHandler struct {
	startedAt time.Time
	engine    EngineStats
	hub       ClientCounter
	email     PendingCounter
	store     *settings.Store
	location  *time.Location
}

// NewStatusHandler creates a status handler. email may be nil when the
// email channel is disabled.
func NewStatusHandler(startedAt time.Time, engine EngineStats, hub ClientCounter, email PendingCounter, store *settings.Store, loc *time.Location) *StatusHandler {
	if loc == nil {
		loc = time.Local
	}
	return &StatusHandler{
		startedAt: startedAt,
		engine:    engine,
		hub:       hub,
		email:     email,
		store:     store,
		location:  loc,
	}
}

// Status returns runtime counters and whether an away window is active
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	processed, fired := h.engine.Stats()

	pending := 0
	if h.email != nil {
		pending = h.email.Pending()
	}

	snap := h.store.Snapshot()
	now := time.Now().In(h.location)

	utils.WriteSuccess(w, http.StatusOK, dto.StatusResponse{
		Status:           "running",
		UptimeSeconds:    time.Since(h.startedAt).Seconds(),
		WebsocketClients: h.hub.ClientCount(),
		EventsProcessed:  processed,
		AlertsFired:      fired,
		PendingEmails:    pending,
		AwayNow:          settings.InAnyWindow(now, snap.AwayWindows),
	})
}

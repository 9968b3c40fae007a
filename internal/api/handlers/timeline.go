package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/vigil/internal/api/dto"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/utils"
)

// TimelineHandler serves event listing and lookup
type TimelineHandler struct {
	events event.Repository
	logger *logger.Logger
}

// NewTimelineHandler creates a timeline handler
func NewTimelineHandler(events event.Repository, log *logger.Logger) *TimelineHandler {
	return &TimelineHandler{events: events, logger: log}
}

// List returns events newest first, filterable by category, action and since
func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParseListParams(r)
	filter := event.Filter{
		Category: r.URL.Query().Get("category"),
		Action:   r.URL.Query().Get("action"),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}

	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("invalid since timestamp, want RFC3339"))
			return
		}
		filter.Since = &t
	}

	events, err := h.events.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, errors.StoreUnavailable("Failed to list events", err))
		return
	}
	total, err := h.events.Count(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, errors.StoreUnavailable("Failed to count events", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.EventListResponse{
		Events: events,
		Count:  len(events),
		Total:  total,
	})
}

// Get returns a single event by id
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ev, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Failed to get event")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, ev)
}

// writeRepoError maps repository errors onto HTTP responses, preserving
// AppError status codes.
func writeRepoError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}

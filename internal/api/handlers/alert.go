package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/vigil/internal/api/dto"
	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/utils"
	"github.com/pratik-mahalle/vigil/internal/pkg/validator"
)

// AlertHandler serves alert listing and state changes
type AlertHandler struct {
	alerts    alert.Repository
	validator *validator.Validator
	logger    *logger.Logger
}

// NewAlertHandler creates an alert handler
func NewAlertHandler(alerts alert.Repository, v *validator.Validator, log *logger.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, validator: v, logger: log}
}

// List returns alerts newest first. Supported filters: severity,
// acknowledged, active=true.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParseListParams(r)
	filter := alert.Filter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	if sev := r.URL.Query().Get("severity"); sev != "" {
		s := alert.Severity(sev)
		if !s.Valid() {
			utils.WriteError(w, errors.BadRequest("unknown severity: "+sev))
			return
		}
		filter.Severity = s
	}
	if ack := r.URL.Query().Get("acknowledged"); ack != "" {
		v := ack == "true" || ack == "1"
		filter.Acknowledged = &v
	}
	if r.URL.Query().Get("active") == "true" {
		now := time.Now().UTC()
		filter.ActiveAt = &now
	}

	alerts, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, errors.StoreUnavailable("Failed to list alerts", err))
		return
	}
	total, err := h.alerts.Count(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, errors.StoreUnavailable("Failed to count alerts", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AlertListResponse{
		Alerts: alerts,
		Count:  len(alerts),
		Total:  total,
	})
}

// Get returns a single alert by id
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Failed to get alert")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, a)
}

// Acknowledge marks an alert acknowledged. Acknowledging twice is not an
// error.
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.alerts.Acknowledge(r.Context(), id); err != nil {
		writeRepoError(w, err, "Failed to acknowledge alert")
		return
	}

	h.logger.WithFields(map[string]interface{}{"alert_id": id}).Info("Alert acknowledged")
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Alert acknowledged", nil)
}

// Snooze hides an alert from active listings until now plus the requested
// number of hours. A later snooze replaces an earlier one.
func (h *AlertHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SnoozeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Invalid snooze request", verrs))
		return
	}

	until := time.Now().UTC().Add(time.Duration(req.Hours * float64(time.Hour)))
	if err := h.alerts.Snooze(r.Context(), id, until); err != nil {
		writeRepoError(w, err, "Failed to snooze alert")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"until":    until.Format(time.RFC3339),
	}).Info("Alert snoozed")
	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"snoozed_until": until.Format(time.RFC3339Nano),
	})
}

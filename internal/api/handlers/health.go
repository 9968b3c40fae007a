package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/vigil/internal/db"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
	"github.com/pratik-mahalle/vigil/internal/pkg/utils"
)

// HealthHandler serves the liveness probe
type HealthHandler struct {
	db *db.DB
}

// NewHealthHandler creates a health handler
func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Health reports whether the agent and its store are reachable
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.SQL().PingContext(r.Context()); err != nil {
		utils.WriteError(w, errors.StoreUnavailable("Database unreachable", err))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/vigil/internal/api/dto"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/errors"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/utils"
	"github.com/pratik-mahalle/vigil/internal/pkg/validator"
)

// SettingsHandler serves configuration reads and updates. A rejected
// update never touches the stored configuration.
type SettingsHandler struct {
	store     *settings.Store
	validator *validator.Validator
	logger    *logger.Logger
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(store *settings.Store, v *validator.Validator, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, validator: v, logger: log}
}

// GetFolders returns the monitored folder set
func (h *SettingsHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	folders := snap.Folders
	if folders == nil {
		folders = []settings.MonitoredFolder{}
	}
	utils.WriteSuccess(w, http.StatusOK, dto.FoldersPayload{Folders: folders})
}

// PutFolders replaces the monitored folder set wholesale
func (h *SettingsHandler) PutFolders(w http.ResponseWriter, r *http.Request) {
	var payload dto.FoldersPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if verrs := h.validator.Validate(payload); len(verrs) > 0 {
		utils.WriteError(w, errors.InvalidConfig("Invalid folder configuration", verrs))
		return
	}

	settings.EnsureFolderIDs(payload.Folders)
	if err := h.store.SetFolders(r.Context(), payload.Folders); err != nil {
		writeRepoError(w, err, "Failed to save folders")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.FoldersPayload{Folders: payload.Folders})
}

// GetAwayWindows returns the away window set
func (h *SettingsHandler) GetAwayWindows(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	windows := snap.AwayWindows
	if windows == nil {
		windows = []settings.AwayWindow{}
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AwayWindowsPayload{Windows: windows})
}

// PutAwayWindows replaces the away window set wholesale
func (h *SettingsHandler) PutAwayWindows(w http.ResponseWriter, r *http.Request) {
	var payload dto.AwayWindowsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if verrs := h.validator.Validate(payload); len(verrs) > 0 {
		utils.WriteError(w, errors.InvalidConfig("Invalid away window configuration", verrs))
		return
	}

	settings.EnsureWindowIDs(payload.Windows)
	if err := h.store.SetAwayWindows(r.Context(), payload.Windows); err != nil {
		writeRepoError(w, err, "Failed to save away windows")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.AwayWindowsPayload{Windows: payload.Windows})
}

// GetAlertConfig returns the alert routing configuration
func (h *SettingsHandler) GetAlertConfig(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	utils.WriteSuccess(w, http.StatusOK, snap.Alerts)
}

// PutAlertConfig replaces the alert routing configuration
func (h *SettingsHandler) PutAlertConfig(w http.ResponseWriter, r *http.Request) {
	var cfg settings.AlertConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if verrs := h.validator.Validate(cfg); len(verrs) > 0 {
		utils.WriteError(w, errors.InvalidConfig("Invalid alert configuration", verrs))
		return
	}

	if err := h.store.SetAlertConfig(r.Context(), cfg); err != nil {
		writeRepoError(w, err, "Failed to save alert configuration")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, cfg)
}

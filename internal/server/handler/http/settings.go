package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
)

// SettingsService defines the interface for settings operations required
// by the HTTP handlers.
type SettingsService interface {
	// Get returns the user's settings, creating defaults on first access.
	Get(ctx context.Context, userID string) (models.Settings, error)
	// UpdateSetting applies one field change with rollback on a failed
	// write.
	UpdateSetting(ctx context.Context, userID, field string, value any) (models.Settings, error)
}

// SettingsHandler handles HTTP requests for user presentation settings.
type SettingsHandler struct {
	SettingsService SettingsService
}

// UpdateSettingRequest represents the JSON payload for a single setting
// change.
type UpdateSettingRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	settings, err := h.SettingsService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PATCH /api/settings with one {field, value} change.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())
	settings, err := h.SettingsService.UpdateSetting(r.Context(), userID, req.Field, req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

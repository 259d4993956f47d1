package handler

import (
	"log/slog"
	"net/http"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingStore
	logger   *slog.Logger
}

func NewSettingsHandler(settings *store.SettingStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger.With("component", "settings")}
}

// List returns all settings. For children, parent-only keys are filtered out
// so API keys never reach a child's client.
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	settings, err := h.settings.List()
	if err != nil {
		h.logger.Error("list settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}

	visible := make([]model.Setting, 0, len(settings))
	for _, s := range settings {
		if !p.IsParent() && model.ParentOnlySetting(s.Key) {
			continue
		}
		visible = append(visible, s)
	}
	writeJSON(w, http.StatusOK, visible)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	key := r.PathValue("key")
	if !p.IsParent() && model.ParentOnlySetting(key) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	setting, err := h.settings.Get(key)
	if err != nil {
		h.logger.Error("get setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load setting")
		return
	}
	if setting == nil {
		writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

type settingRequest struct {
	Value *string `json:"value"`
}

// Set writes a setting. Parent-only keys reject non-parent callers; other
// keys are open to any authenticated user.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "setting key is required")
		return
	}
	if !p.IsParent() && model.ParentOnlySetting(key) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req settingRequest
	if !decodeValid(w, r, &req) {
		return
	}

	setting, err := h.settings.Set(key, req.Value, &p.UserID)
	if err != nil {
		h.logger.Error("set setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// Delete removes a setting. Parent only (enforced by routing).
func (h *SettingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := h.settings.Delete(key); err != nil {
		h.logger.Error("delete setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

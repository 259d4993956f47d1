package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

// NotificationHandler serves a user's own notifications and preferences.
// Every route is self-scoped; there is no cross-user access, not even for
// parents.
type NotificationHandler struct {
	notifications *store.NotificationStore
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger.With("component", "notifications")}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	notifications, err := h.notifications.ListByUser(p.UserID, unreadOnly, limit)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	count, err := h.notifications.UnreadCount(p.UserID)
	if err != nil {
		h.logger.Error("unread count", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ok, err := h.notifications.MarkRead(id, p.UserID)
	if err != nil {
		h.logger.Error("mark read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	if err := h.notifications.MarkAllRead(p.UserID); err != nil {
		h.logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ok, err := h.notifications.Delete(id, p.UserID)
	if err != nil {
		h.logger.Error("delete notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	prefs, err := h.notifications.ListPreferences(p.UserID)
	if err != nil {
		h.logger.Error("list preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list preferences")
		return
	}
	if prefs == nil {
		prefs = []model.NotificationPreference{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

type preferenceRequest struct {
	NotificationType string `json:"notification_type" validate:"required,oneof=event_reminder homework_overdue"`
	Enabled          bool   `json:"enabled"`
	ReminderMinutes  int64  `json:"reminder_minutes" validate:"omitempty,min=5,max=1440"`
}

func (h *NotificationHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req preferenceRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.ReminderMinutes == 0 {
		req.ReminderMinutes = 60
	}

	pref, err := h.notifications.SetPreference(p.UserID, req.NotificationType, req.Enabled, req.ReminderMinutes)
	if err != nil {
		h.logger.Error("set preference", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

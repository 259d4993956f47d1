package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/calebwray/theotime/internal/store"
)

// AnalyticsHandler serves the parent dashboard summary. Parent only,
// enforced by routing.
type AnalyticsHandler struct {
	analytics *store.AnalyticsStore
	logger    *slog.Logger
}

func NewAnalyticsHandler(analytics *store.AnalyticsStore, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger.With("component", "analytics")}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	summary, err := h.analytics.Summary(since)
	if err != nil {
		h.logger.Error("analytics summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebwray/theotime/internal/ai"
	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/store"
)

type AIHandler struct {
	planner  *ai.Planner
	profiles *store.ChildProfileStore
	logger   *slog.Logger
}

func NewAIHandler(planner *ai.Planner, profiles *store.ChildProfileStore, logger *slog.Logger) *AIHandler {
	return &AIHandler{planner: planner, profiles: profiles, logger: logger.With("component", "ai")}
}

type suggestRequest struct {
	Topic string `json:"topic" validate:"required,max=300"`
}

// Suggest asks the configured model for a worship session outline, seasoned
// with the family's child profiles. Children get the restricted prompt and
// only if the child gate is open.
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req suggestRequest
	if !decodeValid(w, r, &req) {
		return
	}

	profiles, err := h.profiles.List()
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build suggestion")
		return
	}

	suggestion, err := h.planner.Suggest(r.Context(), ai.Request{
		Topic:    strings.TrimSpace(req.Topic),
		Profiles: profiles,
		ForChild: !p.IsParent(),
	})
	switch {
	case errors.Is(err, ai.ErrDisabled):
		writeError(w, http.StatusForbidden, "AI suggestions are disabled")
		return
	case errors.Is(err, ai.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, "no OpenAI API key configured")
		return
	case err != nil:
		h.logger.Error("ai suggestion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build suggestion")
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}

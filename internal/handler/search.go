package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/store"
)

type SearchHandler struct {
	search *store.SearchStore
	logger *slog.Logger
}

func NewSearchHandler(search *store.SearchStore, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger.With("component", "search")}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "q must be at least 2 characters")
		return
	}

	viewer := &p.UserID
	if p.IsParent() {
		viewer = nil
	}
	results, err := h.search.Search(query, viewer)
	if err != nil {
		h.logger.Error("search", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

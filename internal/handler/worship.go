package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
	"github.com/calebwray/theotime/internal/websocket"
)

// WorshipHandler serves worship plans, templates, and session logs. Worship
// content is family-wide: every authenticated user can read it, and plans are
// writable by anyone since planning is a shared activity.
type WorshipHandler struct {
	worship *store.WorshipStore
	events  *store.EventStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewWorshipHandler(worship *store.WorshipStore, events *store.EventStore, hub *websocket.Hub, logger *slog.Logger) *WorshipHandler {
	return &WorshipHandler{worship: worship, events: events, hub: hub, logger: logger.With("component", "worship")}
}

type planRequest struct {
	EventID      *int64  `json:"event_id"`
	Title        string  `json:"title" validate:"required,max=200"`
	BibleReading *string `json:"bible_reading"`
	VideoLinks   *string `json:"video_links"`
	SongLinks    *string `json:"song_links"`
	Activities   *string `json:"activities"`
	Notes        *string `json:"notes"`
}

func (h *WorshipHandler) planParams(w http.ResponseWriter, r *http.Request) (*store.PlanParams, bool) {
	var req planRequest
	if !decodeValid(w, r, &req) {
		return nil, false
	}
	req.Title = strings.TrimSpace(req.Title)

	if req.EventID != nil {
		event, err := h.events.GetByID(*req.EventID)
		if err != nil {
			h.logger.Error("check event", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check event")
			return nil, false
		}
		if event == nil {
			writeError(w, http.StatusBadRequest, "event not found")
			return nil, false
		}
	}

	return &store.PlanParams{
		EventID:      req.EventID,
		Title:        req.Title,
		BibleReading: req.BibleReading,
		VideoLinks:   req.VideoLinks,
		SongLinks:    req.SongLinks,
		Activities:   req.Activities,
		Notes:        req.Notes,
	}, true
}

func (h *WorshipHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	params, ok := h.planParams(w, r)
	if !ok {
		return
	}

	plan, err := h.worship.CreatePlan(*params)
	if err != nil {
		h.logger.Error("create plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create worship plan")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("worship_plan", "created", plan.ID))
	writeJSON(w, http.StatusCreated, plan)
}

func (h *WorshipHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.worship.ListPlans()
	if err != nil {
		h.logger.Error("list plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list worship plans")
		return
	}
	if plans == nil {
		plans = []model.WorshipPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *WorshipHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	plan, err := h.worship.GetPlan(id)
	if err != nil {
		h.logger.Error("get plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load worship plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "worship plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *WorshipHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	existing, err := h.worship.GetPlan(id)
	if err != nil {
		h.logger.Error("get plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load worship plan")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "worship plan not found")
		return
	}

	params, ok := h.planParams(w, r)
	if !ok {
		return
	}
	plan, err := h.worship.UpdatePlan(id, *params)
	if err != nil {
		h.logger.Error("update plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update worship plan")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("worship_plan", "updated", plan.ID))
	writeJSON(w, http.StatusOK, plan)
}

func (h *WorshipHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	if err := h.worship.DeletePlan(id); err != nil {
		h.logger.Error("delete plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete worship plan")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("worship_plan", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

type templateRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	BibleReading *string `json:"bible_reading"`
	VideoLinks   *string `json:"video_links"`
	SongLinks    *string `json:"song_links"`
	Activities   *string `json:"activities"`
}

func (h *WorshipHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req templateRequest
	if !decodeValid(w, r, &req) {
		return
	}

	tmpl, err := h.worship.CreateTemplate(store.TemplateParams{
		UserID:       &p.UserID,
		Name:         strings.TrimSpace(req.Name),
		BibleReading: req.BibleReading,
		VideoLinks:   req.VideoLinks,
		SongLinks:    req.SongLinks,
		Activities:   req.Activities,
	})
	if err != nil {
		h.logger.Error("create template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *WorshipHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.worship.ListTemplates()
	if err != nil {
		h.logger.Error("list templates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.WorshipTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *WorshipHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	if err := h.worship.DeleteTemplate(id); err != nil {
		h.logger.Error("delete template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type logRequest struct {
	WorshipPlanID  *int64  `json:"worship_plan_id"`
	EventID        *int64  `json:"event_id"`
	Participants   *string `json:"participants"`
	WhatWasCovered string  `json:"what_was_covered" validate:"required"`
	Reflections    *string `json:"reflections"`
	Notes          *string `json:"notes"`
	FutureThoughts *string `json:"future_thoughts"`
}

// CreateLog records a session directly, without going through event
// completion. Useful for ad-hoc sessions that never had a calendar entry.
func (h *WorshipHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if req.EventID != nil {
		event, err := h.events.GetByID(*req.EventID)
		if err != nil {
			h.logger.Error("check event", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check event")
			return
		}
		if event == nil {
			writeError(w, http.StatusBadRequest, "event not found")
			return
		}
	}

	log, err := h.worship.CreateLog(store.LogParams{
		WorshipPlanID:  req.WorshipPlanID,
		EventID:        req.EventID,
		Participants:   req.Participants,
		WhatWasCovered: req.WhatWasCovered,
		Reflections:    req.Reflections,
		Notes:          req.Notes,
		FutureThoughts: req.FutureThoughts,
	})
	if err != nil {
		h.logger.Error("create log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create worship log")
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (h *WorshipHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.worship.ListLogs()
	if err != nil {
		h.logger.Error("list logs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list worship logs")
		return
	}
	if logs == nil {
		logs = []model.WorshipLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *WorshipHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	if err := h.worship.DeleteLog(id); err != nil {
		h.logger.Error("delete log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete worship log")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorshipHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	log, err := h.worship.GetLog(id)
	if err != nil {
		h.logger.Error("get log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load worship log")
		return
	}
	if log == nil {
		writeError(w, http.StatusNotFound, "worship log not found")
		return
	}
	writeJSON(w, http.StatusOK, log)
}

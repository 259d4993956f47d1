package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebwray/theotime/internal/access"
	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/recurrence"
	"github.com/calebwray/theotime/internal/store"
	"github.com/calebwray/theotime/internal/websocket"
)

type EventHandler struct {
	events  *store.EventStore
	worship *store.WorshipStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewEventHandler(events *store.EventStore, worship *store.WorshipStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, worship: worship, hub: hub, logger: logger.With("component", "events")}
}

type eventRequest struct {
	UserID            *int64  `json:"user_id"`
	Title             string  `json:"title" validate:"required,max=200"`
	Description       *string `json:"description"`
	EventType         string  `json:"event_type" validate:"required"`
	StartDate         string  `json:"start_date" validate:"required"`
	EndDate           *string `json:"end_date"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrencePattern *string `json:"recurrence_pattern"`
	RecurrenceCount   int     `json:"recurrence_count"`
	Color             *string `json:"color"`
	ReminderMinutes   *int64  `json:"reminder_minutes"`
}

func (h *EventHandler) parseParams(w http.ResponseWriter, r *http.Request, p auth.Principal) (*eventRequest, *store.EventParams, bool) {
	var req eventRequest
	if !decodeValid(w, r, &req) {
		return nil, nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if !model.ValidEventType(req.EventType) {
		writeError(w, http.StatusBadRequest, "event_type must be one of: worship, personal_study, meeting, ministry, other")
		return nil, nil, false
	}

	start, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be RFC3339 or YYYY-MM-DD format")
		return nil, nil, false
	}
	end, err := parseOptionalTime(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be RFC3339 or YYYY-MM-DD format")
		return nil, nil, false
	}
	if end != nil && !start.Before(*end) {
		writeError(w, http.StatusBadRequest, "start_date must be before end_date")
		return nil, nil, false
	}

	owner := req.UserID
	if !p.IsParent() {
		// Children only write events for themselves.
		owner = &p.UserID
	}

	return &req, &store.EventParams{
		UserID:            owner,
		Title:             req.Title,
		Description:       req.Description,
		EventType:         req.EventType,
		StartDate:         start,
		EndDate:           end,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
		Color:             req.Color,
		ReminderMinutes:   req.ReminderMinutes,
	}, true
}

// Create inserts an event. A recurring definition is expanded up front into
// independent rows, one per occurrence; the response returns them all.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	req, params, ok := h.parseParams(w, r, p)
	if !ok {
		return
	}

	if !req.IsRecurring {
		event, err := h.events.Create(*params)
		if err != nil {
			h.logger.Error("create event", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create event")
			return
		}
		h.hub.Broadcast(websocket.NewSyncMessage("event", "created", event.ID))
		writeJSON(w, http.StatusCreated, event)
		return
	}

	if req.RecurrencePattern == nil {
		writeError(w, http.StatusBadRequest, "recurrence_pattern is required for recurring events")
		return
	}
	cadence := recurrence.Cadence(*req.RecurrencePattern)
	occurrences := recurrence.Expand(params.StartDate, params.EndDate, cadence, req.RecurrenceCount)
	if len(occurrences) == 0 {
		writeError(w, http.StatusBadRequest, "recurrence_pattern must be one of: weekly, biweekly, monthly")
		return
	}

	events := make([]model.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		occParams := *params
		occParams.StartDate = occ.Start
		occParams.EndDate = occ.End

		event, err := h.events.Create(occParams)
		if err != nil {
			h.logger.Error("create recurring event", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create event")
			return
		}
		events = append(events, *event)
	}

	h.hub.Broadcast(websocket.NewSyncMessage("event", "created", events[0].ID))
	h.logger.Info("recurring event expanded", "count", len(events), "pattern", *req.RecurrencePattern)
	writeJSON(w, http.StatusCreated, events)
}

// List returns events in a date range. Children see their own plus shared
// events; other users' rows are filtered out rather than rejected.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	viewer := &p.UserID
	if p.IsParent() {
		viewer = nil
	}

	// A type filter lists all events of that kind, no date range needed.
	if eventType := r.URL.Query().Get("event_type"); eventType != "" {
		if !model.ValidEventType(eventType) {
			writeError(w, http.StatusBadRequest, "event_type must be one of: worship, personal_study, meeting, ministry, other")
			return
		}
		events, err := h.events.ListByType(eventType, viewer)
		if err != nil {
			h.logger.Error("list events by type", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list events")
			return
		}
		if events == nil {
			events = []model.Event{}
		}
		writeJSON(w, http.StatusOK, events)
		return
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}
	start, err := parseFlexibleTime(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD format")
		return
	}
	end, err := parseFlexibleTime(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD format")
		return
	}

	events, err := h.events.ListBetween(start, end, viewer)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, event.UserID).Read {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	existing, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, existing.UserID).Write {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	_, params, ok := h.parseParams(w, r, p)
	if !ok {
		return
	}
	event, err := h.events.Update(id, *params)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("event", "updated", event.ID))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	existing, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, existing.UserID).Write {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	if err := h.events.Delete(id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("event", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

type completeEventRequest struct {
	WorshipPlanID  *int64  `json:"worship_plan_id"`
	Participants   *string `json:"participants"`
	WhatWasCovered string  `json:"what_was_covered" validate:"required"`
	Reflections    *string `json:"reflections"`
	Notes          *string `json:"notes"`
	FutureThoughts *string `json:"future_thoughts"`
}

// Complete records a worship log against the event and flags it completed in
// one transaction. Completing the same event again updates the existing log.
func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, event.UserID).Write {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req completeEventRequest
	if !decodeValid(w, r, &req) {
		return
	}

	log, err := h.worship.CompleteEvent(id, store.LogParams{
		WorshipPlanID:  req.WorshipPlanID,
		Participants:   req.Participants,
		WhatWasCovered: req.WhatWasCovered,
		Reflections:    req.Reflections,
		Notes:          req.Notes,
		FutureThoughts: req.FutureThoughts,
	})
	if err != nil {
		h.logger.Error("complete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete event")
		return
	}

	h.hub.Broadcast(websocket.NewSyncMessage("event", "completed", id))
	writeJSON(w, http.StatusOK, log)
}

// Log returns the worship log recorded for an event, if any.
func (h *EventHandler) Log(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, event.UserID).Read {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	log, err := h.worship.GetLogByEventID(id)
	if err != nil {
		h.logger.Error("get event log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load worship log")
		return
	}
	if log == nil {
		writeError(w, http.StatusNotFound, "no log recorded for this event")
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// Reopen clears an event's completion flag. The worship log, if any, stays;
// completing again will update it in place.
func (h *EventHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if !access.CanAccess(p, event.UserID).Write {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	if err := h.events.SetCompleted(id, false); err != nil {
		h.logger.Error("reopen event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reopen event")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("event", "reopened", id))
	w.WriteHeader(http.StatusNoContent)
}

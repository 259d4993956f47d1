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

type HomeworkHandler struct {
	homework *store.HomeworkStore
	settings *store.SettingStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewHomeworkHandler(homework *store.HomeworkStore, settings *store.SettingStore, hub *websocket.Hub, logger *slog.Logger) *HomeworkHandler {
	return &HomeworkHandler{homework: homework, settings: settings, hub: hub, logger: logger.With("component", "homework")}
}

// featureEnabled checks the family-wide homework toggle. When off, the whole
// surface answers 404 as if it did not exist.
func (h *HomeworkHandler) featureEnabled(w http.ResponseWriter) bool {
	enabled, err := h.settings.GetBool(model.SettingHomeworkEnabled, true)
	if err != nil {
		h.logger.Error("read homework setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check homework availability")
		return false
	}
	if !enabled {
		writeError(w, http.StatusNotFound, "homework is disabled")
		return false
	}
	return true
}

type homeworkRequest struct {
	AssignedTo  int64   `json:"assigned_to" validate:"required"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	TaskType    string  `json:"task_type" validate:"required"`
	DueDate     *string `json:"due_date"`
}

// Create assigns homework. Parent only: children receive assignments, they
// do not hand them out.
func (h *HomeworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	var req homeworkRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if !model.ValidTaskType(req.TaskType) {
		writeError(w, http.StatusBadRequest, "task_type must be one of: reading, watching, writing, memory_verse, activity")
		return
	}
	due, err := parseOptionalTime(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "due_date must be RFC3339 or YYYY-MM-DD format")
		return
	}

	hw, err := h.homework.Create(store.HomeworkParams{
		AssignedTo:  req.AssignedTo,
		AssignedBy:  &p.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TaskType:    req.TaskType,
		DueDate:     due,
	})
	if err != nil {
		h.logger.Error("create homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create homework")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("homework", "created", hw.ID))
	writeJSON(w, http.StatusCreated, hw)
}

func (h *HomeworkHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	viewer := &p.UserID
	if p.IsParent() {
		viewer = nil
	}
	items, err := h.homework.List(viewer)
	if err != nil {
		h.logger.Error("list homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list homework")
		return
	}
	if items == nil {
		items = []model.Homework{}
	}
	writeJSON(w, http.StatusOK, items)
}

// load fetches an assignment and enforces visibility: parents see all,
// children only their own.
func (h *HomeworkHandler) load(w http.ResponseWriter, r *http.Request, p auth.Principal) *model.Homework {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid homework id")
		return nil
	}
	hw, err := h.homework.GetByID(id)
	if err != nil {
		h.logger.Error("get homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load homework")
		return nil
	}
	if hw == nil {
		writeError(w, http.StatusNotFound, "homework not found")
		return nil
	}
	if !p.IsParent() && hw.AssignedTo != p.UserID {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return nil
	}
	return hw
}

func (h *HomeworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	hw := h.load(w, r, p)
	if hw == nil {
		return
	}
	writeJSON(w, http.StatusOK, hw)
}

// Update edits an assignment. Parent only.
func (h *HomeworkHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	existing := h.load(w, r, p)
	if existing == nil {
		return
	}

	var req homeworkRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if !model.ValidTaskType(req.TaskType) {
		writeError(w, http.StatusBadRequest, "task_type must be one of: reading, watching, writing, memory_verse, activity")
		return
	}
	due, err := parseOptionalTime(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "due_date must be RFC3339 or YYYY-MM-DD format")
		return
	}

	hw, err := h.homework.Update(existing.ID, store.HomeworkParams{
		AssignedTo:  req.AssignedTo,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TaskType:    req.TaskType,
		DueDate:     due,
	})
	if err != nil {
		h.logger.Error("update homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update homework")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("homework", "updated", hw.ID))
	writeJSON(w, http.StatusOK, hw)
}

type completeHomeworkRequest struct {
	Completed bool `json:"completed"`
}

// Complete toggles an assignment's completion. The assigned child or a
// parent may do this.
func (h *HomeworkHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	existing := h.load(w, r, p)
	if existing == nil {
		return
	}

	var req completeHomeworkRequest
	if !decodeValid(w, r, &req) {
		return
	}

	hw, err := h.homework.SetCompleted(existing.ID, req.Completed)
	if err != nil {
		h.logger.Error("complete homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update homework")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("homework", "completed", hw.ID))
	writeJSON(w, http.StatusOK, hw)
}

type reviewRequest struct {
	ReviewNotes *string `json:"review_notes"`
}

// Review records parent feedback on a completed assignment. Parent only.
func (h *HomeworkHandler) Review(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	existing := h.load(w, r, p)
	if existing == nil {
		return
	}

	var req reviewRequest
	if !decodeValid(w, r, &req) {
		return
	}

	hw, err := h.homework.SetReviewNotes(existing.ID, req.ReviewNotes)
	if err != nil {
		h.logger.Error("review homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to review homework")
		return
	}
	writeJSON(w, http.StatusOK, hw)
}

// Delete removes an assignment. Parent only.
func (h *HomeworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.featureEnabled(w) {
		return
	}
	p := auth.MustFromContext(r.Context())

	existing := h.load(w, r, p)
	if existing == nil {
		return
	}

	if err := h.homework.Delete(existing.ID); err != nil {
		h.logger.Error("delete homework", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete homework")
		return
	}
	h.hub.Broadcast(websocket.NewSyncMessage("homework", "deleted", existing.ID))
	w.WriteHeader(http.StatusNoContent)
}

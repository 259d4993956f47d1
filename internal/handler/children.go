package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

// ChildrenHandler serves child profiles and per-user spiritual goals.
type ChildrenHandler struct {
	profiles *store.ChildProfileStore
	goals    *store.GoalStore
	users    *store.UserStore
	logger   *slog.Logger
}

func NewChildrenHandler(profiles *store.ChildProfileStore, goals *store.GoalStore, users *store.UserStore, logger *slog.Logger) *ChildrenHandler {
	return &ChildrenHandler{profiles: profiles, goals: goals, users: users, logger: logger.With("component", "children")}
}

// ListProfiles returns every child's profile. Parent only.
func (h *ChildrenHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List()
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if profiles == nil {
		profiles = []model.ChildProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GetProfile returns one user's profile. A child may read their own; parents
// may read anyone's.
func (h *ChildrenHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !p.IsParent() && userID != p.UserID {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	profile, err := h.profiles.GetByUserID(userID)
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type profileRequest struct {
	Age                *int64  `json:"age" validate:"omitempty,min=0,max=25"`
	Interests          *string `json:"interests"`
	FavoriteCharacters *string `json:"favorite_characters"`
	FavoriteStories    *string `json:"favorite_stories"`
}

// UpsertProfile saves a child's personalization. Parent only: profiles feed
// AI prompts, so children do not edit their own.
func (h *ChildrenHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("check user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req profileRequest
	if !decodeValid(w, r, &req) {
		return
	}

	profile, err := h.profiles.Upsert(userID, req.Age, req.Interests, req.FavoriteCharacters, req.FavoriteStories)
	if err != nil {
		h.logger.Error("upsert profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteProfile removes a child's personalization. Parent only.
func (h *ChildrenHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.profiles.Delete(userID); err != nil {
		h.logger.Error("delete profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   *string `json:"description"`
	TargetDate    *string `json:"target_date"`
	ProgressNotes *string `json:"progress_notes"`
}

// goalOwner resolves the {id} path parameter and checks the caller may touch
// that user's goals.
func (h *ChildrenHandler) goalOwner(w http.ResponseWriter, r *http.Request, p auth.Principal) (int64, bool) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	if !p.IsParent() && userID != p.UserID {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return 0, false
	}
	return userID, true
}

func (h *ChildrenHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	userID, ok := h.goalOwner(w, r, p)
	if !ok {
		return
	}
	goals, err := h.goals.ListByUser(userID)
	if err != nil {
		h.logger.Error("list goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	if goals == nil {
		goals = []model.SpiritualGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *ChildrenHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	userID, ok := h.goalOwner(w, r, p)
	if !ok {
		return
	}

	var req goalRequest
	if !decodeValid(w, r, &req) {
		return
	}
	target, err := parseOptionalTime(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "target_date must be RFC3339 or YYYY-MM-DD format")
		return
	}

	goal, err := h.goals.Create(userID, strings.TrimSpace(req.Title), req.Description, target)
	if err != nil {
		h.logger.Error("create goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// loadGoal fetches a goal by the {goalID} path parameter and enforces
// ownership.
func (h *ChildrenHandler) loadGoal(w http.ResponseWriter, r *http.Request, p auth.Principal) *model.SpiritualGoal {
	id, err := parseInt64Param(r, "goalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return nil
	}
	goal, err := h.goals.GetByID(id)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return nil
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return nil
	}
	if !p.IsParent() && goal.UserID != p.UserID {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return nil
	}
	return goal
}

func (h *ChildrenHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	existing := h.loadGoal(w, r, p)
	if existing == nil {
		return
	}

	var req goalRequest
	if !decodeValid(w, r, &req) {
		return
	}
	target, err := parseOptionalTime(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "target_date must be RFC3339 or YYYY-MM-DD format")
		return
	}

	goal, err := h.goals.Update(existing.ID, strings.TrimSpace(req.Title), req.Description, target, req.ProgressNotes)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

type completeGoalRequest struct {
	Completed bool `json:"completed"`
}

func (h *ChildrenHandler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	existing := h.loadGoal(w, r, p)
	if existing == nil {
		return
	}

	var req completeGoalRequest
	if !decodeValid(w, r, &req) {
		return
	}

	goal, err := h.goals.SetCompleted(existing.ID, req.Completed)
	if err != nil {
		h.logger.Error("complete goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *ChildrenHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	existing := h.loadGoal(w, r, p)
	if existing == nil {
		return
	}

	if err := h.goals.Delete(existing.ID); err != nil {
		h.logger.Error("delete goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

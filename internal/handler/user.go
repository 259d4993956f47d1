package handler

import (
	"log/slog"
	"net/http"

	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

// UserHandler serves family account management. Mutations are parent only,
// enforced by routing.
type UserHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "users")}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []model.User
	var err error
	if role := r.URL.Query().Get("role"); role != "" {
		if !model.ValidRole(role) {
			writeError(w, http.StatusBadRequest, "role must be parent or child")
			return
		}
		users, err = h.users.ListByRole(role)
	} else {
		users, err = h.users.List()
	}
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type updateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// UpdateProfile edits contact fields. Users edit themselves; parents may
// edit anyone.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !p.IsParent() && id != p.UserID {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req updateProfileRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(id, req.Email, req.FullName)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateRole promotes or demotes a user. Parent only; a parent cannot demote
// themselves, which keeps at least one parent in the family.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "role must be parent or child")
		return
	}
	if id == p.UserID && req.Role != model.RoleParent {
		writeError(w, http.StatusBadRequest, "cannot demote your own account")
		return
	}

	user, err := h.users.UpdateRole(id, req.Role)
	if err != nil {
		h.logger.Error("update role", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete removes a user and, through foreign keys, their owned records.
// Parent only; self-deletion is rejected.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == p.UserID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.users.Delete(id); err != nil {
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/models"
)

// userView is the user document without the password hash.
type userView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// ListUsers returns all dashboard accounts. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	views := make([]userView, len(users))
	for i := range users {
		views[i] = viewUser(&users[i])
	}
	rw.Success(views)
}

// CreateUser provisions a dashboard account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		rw.BadRequest("username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleAgent
	}
	if !models.IsValidRole(req.Role) {
		rw.BadRequest("role must be one of: agent, manager, admin")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("username already exists")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Created(viewUser(user))
}

// GetUser returns one account by id. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	user, err := h.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(viewUser(user))
}

// UpdateUser applies a partial update to an account. Admin only.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	user, err := h.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			rw.BadRequest("role must be one of: agent, manager, admin")
			return
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		user.PasswordHash = hash
	}

	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(viewUser(user))
}

// DeactivateUser soft-deletes an account so its audit trail survives.
// Admin only.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	id := chi.URLParam(r, "id")

	// An admin cannot deactivate their own account.
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == id {
		rw.BadRequest("cannot deactivate your own account")
		return
	}

	if err := h.db.DeactivateUser(r.Context(), id); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}

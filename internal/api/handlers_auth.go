// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/logging"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

// Login exchanges a username/password pair for a session token. The token
// is returned in the body and also set as an HttpOnly cookie so browser
// dashboards need no token plumbing.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		rw.BadRequest("username and password are required")
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			rw.Error(http.StatusTooManyRequests, codeRateLimit, err.Error())
			return
		}
		// Invalid credentials and disabled accounts share one response so
		// usernames cannot be enumerated.
		rw.Unauthorized("invalid username or password")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to sign session token")
		rw.Error(http.StatusInternalServerError, codeInternal, "failed to create session")
		return
	}

	expires := time.Now().Add(h.jwt.SessionTimeout())
	http.SetCookie(w, h.sessionCookie(token, expires))

	logging.Ctx(r.Context()).Info().
		Str("username", logging.SanitizeUsername(user.Username)).
		Str("role", user.Role).
		Msg("User logged in")

	rw.Success(loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      viewUser(user),
	})
}

// Logout clears the session cookie. Stateless tokens cannot be revoked
// server-side; the short session timeout bounds the exposure.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	respond(w, r).Success(map[string]string{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		rw.Unauthorized("authentication required")
		return
	}

	user, err := h.db.GetUser(r.Context(), claims.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(viewUser(user))
}

func (h *Handler) sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Server.Environment == "production",
	}
}

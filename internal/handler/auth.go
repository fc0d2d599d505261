// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nankybeauty/salon-go/internal/auth"
	"github.com/nankybeauty/salon-go/internal/middleware"
)

// AuthHandler handles login, logout, and account maintenance.
type AuthHandler struct {
	svc           *auth.Service
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be false
// only in development, where the site runs without TLS.
func NewAuthHandler(svc *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

// loginRequest is the POST /api/auth/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. Success sets the session cookie.
// Bad credentials yield 401 without hinting which field was wrong; a
// rate-limited client gets 429 with Retry-After.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	ip := middleware.ClientIP(r)
	token, err := h.svc.Login(req.Username, req.Password, ip)
	if err != nil {
		var limited *auth.RateLimitedError
		switch {
		case errors.As(err, &limited):
			w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds()))
			writeJSONError(w, http.StatusTooManyRequests,
				"Too many failed attempts. Try again later.")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSONError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			slog.Error("login failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, h.secureCookies))
	writeJSONSuccess(w, nil)
}

// Logout handles POST /api/auth/logout - deletes the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie(h.secureCookies))
	writeJSONSuccess(w, nil)
}

// updateAccountRequest is the POST /api/admin/update-account body.
type updateAccountRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// UpdateAccount handles POST /api/admin/update-account. The current password
// must check out against the stored hash before anything is rewritten.
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing currentPassword")
		return
	}
	if req.NewUsername == "" && req.NewPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.svc.UpdateAccount(req.CurrentPassword, req.NewUsername, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		slog.Error("account update failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update account")
		return
	}

	slog.Info("admin account updated",
		"username_changed", req.NewUsername != "",
		"password_changed", req.NewPassword != "",
	)
	writeJSONSuccess(w, nil)
}

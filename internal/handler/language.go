// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nankybeauty/salon-go/internal/content"
	"github.com/nankybeauty/salon-go/internal/i18n"
)

// LanguageHandler resolves and persists a visitor's language choice.
type LanguageHandler struct{}

// NewLanguageHandler creates a new LanguageHandler.
func NewLanguageHandler() *LanguageHandler {
	return &LanguageHandler{}
}

// Get handles GET /api/language - resolves the visitor's language: the
// stored preference cookie first, then the Accept-Language header, then the
// site default.
func (h *LanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(i18n.LangCookie); err == nil && i18n.IsSupported(cookie.Value) {
		writeJSONSuccess(w, map[string]any{"lang": cookie.Value})
		return
	}
	if lang := i18n.MatchLanguage(r.Header.Get("Accept-Language")); lang != "" {
		writeJSONSuccess(w, map[string]any{"lang": lang})
		return
	}
	writeJSONSuccess(w, map[string]any{"lang": content.DefaultLanguage})
}

// setLanguageRequest is the POST /api/language body.
type setLanguageRequest struct {
	Lang string `json:"lang"`
}

// Set handles POST /api/language - stores the choice in a long-lived cookie.
func (h *LanguageHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !i18n.IsSupported(req.Lang) {
		writeJSONError(w, http.StatusBadRequest, "Unsupported language: "+req.Lang)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookie,
		Value:    req.Lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	writeJSONSuccess(w, map[string]any{"lang": req.Lang})
}

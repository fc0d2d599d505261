// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nankybeauty/salon-go/internal/content"
	"github.com/nankybeauty/salon-go/internal/editor"
)

// ContentHandler serves and persists the per-language content documents.
type ContentHandler struct {
	store *content.Store
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(store *content.Store) *ContentHandler {
	return &ContentHandler{store: store}
}

// Get handles GET /api/content?lang=xx - returns the full document for a
// language from the fixed allow-list.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing language code")
		return
	}

	doc, err := h.store.Load(lang)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrUnsupportedLanguage):
			writeJSONError(w, http.StatusBadRequest, "Unsupported language: "+lang)
		case errors.Is(err, content.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "No content for language: "+lang)
		default:
			slog.Error("failed to load content", "lang", lang, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to load content")
		}
		return
	}

	writeJSON(w, doc)
}

// saveContentRequest is the POST /api/save-content body.
type saveContentRequest struct {
	Lang    string           `json:"lang"`
	Content content.Document `json:"content"`
}

// Save handles POST /api/save-content - overwrites one language's document.
func (h *ContentHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Lang == "" || req.Content == nil {
		writeJSONError(w, http.StatusBadRequest, "Missing lang or content")
		return
	}

	if err := h.store.Save(req.Lang, req.Content); err != nil {
		if errors.Is(err, content.ErrUnsupportedLanguage) {
			writeJSONError(w, http.StatusBadRequest, "Unsupported language: "+req.Lang)
			return
		}
		slog.Error("failed to save content", "lang", req.Lang, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save content")
		return
	}

	slog.Info("content saved", "lang", req.Lang)
	writeJSONSuccess(w, nil)
}

// syncImageRequest is the POST /api/sync-image body.
type syncImageRequest struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// SyncImage handles POST /api/sync-image - writes one image URL at the same
// path into every language document, so a picture swapped in one language
// shows up in all of them.
func (h *ContentHandler) SyncImage(w http.ResponseWriter, r *http.Request) {
	var req syncImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Path == "" || req.URL == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing path or url")
		return
	}

	path, err := content.ParsePath(req.Path)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid path: "+req.Path)
		return
	}

	if err := editor.SyncImage(h.store, path, req.URL); err != nil {
		slog.Error("failed to sync image", "path", req.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to sync image")
		return
	}

	writeJSONSuccess(w, nil)
}

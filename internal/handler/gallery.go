// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nankybeauty/salon-go/internal/content"
)

// GalleryHandler serves and persists the gallery collection and its
// category list.
type GalleryHandler struct {
	store *content.Store
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(store *content.Store) *GalleryHandler {
	return &GalleryHandler{store: store}
}

// GetProjects handles GET /api/gallery - returns all gallery projects.
func (h *GalleryHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.LoadGallery()
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		slog.Error("failed to load gallery", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load gallery")
		return
	}
	if projects == nil {
		projects = []content.Project{}
	}
	writeJSON(w, projects)
}

// saveGalleryRequest is the POST /api/gallery body.
type saveGalleryRequest struct {
	GalleryData []content.Project `json:"galleryData"`
}

// SaveProjects handles POST /api/gallery - replaces the whole collection.
// Blank additional-image URLs are stripped before persisting.
func (h *GalleryHandler) SaveProjects(w http.ResponseWriter, r *http.Request) {
	var req saveGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GalleryData == nil {
		writeJSONError(w, http.StatusBadRequest, "Missing galleryData")
		return
	}

	projects := content.NormalizeProjects(req.GalleryData)
	if err := h.store.SaveGallery(projects); err != nil {
		slog.Error("failed to save gallery", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save gallery")
		return
	}

	slog.Info("gallery saved", "projects", len(projects))
	writeJSONSuccess(w, nil)
}

// GetCategories handles GET /api/gallery-categories.
func (h *GalleryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.LoadCategories()
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		slog.Error("failed to load gallery categories", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, categories)
}

// saveCategoriesRequest is the POST /api/gallery-categories body.
type saveCategoriesRequest struct {
	Categories []string `json:"categories"`
}

// SaveCategories handles POST /api/gallery-categories - replaces the list.
func (h *GalleryHandler) SaveCategories(w http.ResponseWriter, r *http.Request) {
	var req saveCategoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Categories == nil {
		writeJSONError(w, http.StatusBadRequest, "Missing categories")
		return
	}

	// Drop blank names the same way blank image URLs are dropped.
	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		if strings.TrimSpace(c) != "" {
			categories = append(categories, c)
		}
	}

	if err := h.store.SaveCategories(categories); err != nil {
		slog.Error("failed to save gallery categories", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save categories")
		return
	}

	writeJSONSuccess(w, nil)
}

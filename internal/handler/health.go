// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/nankybeauty/salon-go/internal/content"
)

// HealthHandler handles liveness checks.
type HealthHandler struct {
	store     *content.Store
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store *content.Store, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		version:   version,
		startTime: time.Now(),
	}
}

// Health handles GET /healthz. The content directory must be readable for
// the site to serve anything, so its state decides healthy vs degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if _, err := os.Stat(h.store.Dir()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		"version": h.version,
	})
}

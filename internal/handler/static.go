// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/nankybeauty/salon-go/internal/util"
)

// StaticHandler serves the exported public site and uploaded images from
// disk with path containment checks.
type StaticHandler struct {
	root      string // public site root
	urlPrefix string // URL prefix stripped before the filesystem lookup
}

// NewStaticHandler creates a handler serving files under root, mounted at
// urlPrefix ("/" for the site root, "/images/uploads" for uploads).
func NewStaticHandler(root, urlPrefix string) *StaticHandler {
	return &StaticHandler{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimPrefix(r.URL.Path, h.urlPrefix)
	requested = strings.TrimPrefix(requested, "/")
	if requested == "" {
		requested = "index.html"
	}

	// URL paths use forward slashes regardless of OS.
	cleanPath := path.Clean(requested)
	if strings.HasPrefix(cleanPath, "..") || path.IsAbs(cleanPath) {
		http.NotFound(w, r)
		return
	}

	filePath, err := util.SafeJoinPath(h.root, cleanPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		index, err := util.SafeJoinPath(filePath, "index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		filePath = index
	}

	http.ServeFile(w, r, filePath)
}

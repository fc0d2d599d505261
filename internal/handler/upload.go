// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nankybeauty/salon-go/internal/imaging"
	"github.com/nankybeauty/salon-go/internal/util"
)

// MaxUploadSize is the upload limit for a single image.
const MaxUploadSize = 5 << 20 // 5MB

// UploadHandler stores uploaded images and hands back their public URLs.
type UploadHandler struct {
	uploadsDir string // filesystem root for stored images
	publicPath string // URL prefix the stored images are served under
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadsDir, publicPath string) *UploadHandler {
	return &UploadHandler{
		uploadsDir: uploadsDir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
	}
}

// Upload handles POST /api/upload-image. The multipart form carries the
// image under "file" and an optional "destination" subdirectory. Oversized
// bodies get 413, non-image payloads 400. The response carries the public
// URL operators paste into content fields.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > MaxUploadSize {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "File exceeds the 5MB limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File exceeds the 5MB limit")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	if ct := header.Header.Get("Content-Type"); ct != "" && !imaging.IsImageMime(ct) {
		writeJSONError(w, http.StatusBadRequest, "Unsupported file type: "+ct)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File exceeds the 5MB limit")
			return
		}
		slog.Error("failed to read upload", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	// Decode check doubles as content validation; the declared MIME type is
	// not trusted.
	processed, err := imaging.Process(data)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "File is not a valid image")
		return
	}

	targetDir := h.uploadsDir
	destination := r.FormValue("destination")
	if destination != "" {
		destination, err = util.SanitizeFilename(destination)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid destination")
			return
		}
		targetDir, err = util.SafeJoinPath(h.uploadsDir, destination)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid destination")
			return
		}
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		slog.Error("failed to create upload directory", "dir", targetDir, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	name := uuid.NewString() + extensionFor(processed.Format)
	target := filepath.Join(targetDir, name)
	if err := os.WriteFile(target, processed.Data, 0o644); err != nil {
		slog.Error("failed to write upload", "path", target, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	urlBase := h.publicPath
	if destination != "" {
		urlBase = urlBase + "/" + destination
	}
	url := urlBase + "/" + name

	response := map[string]any{"url": url}

	// Thumbnail for the admin gallery pickers; the full-size URL is what gets
	// written into content, so a thumbnail failure is not fatal.
	if thumb, err := imaging.Thumbnail(processed.Data); err == nil {
		thumbDir := filepath.Join(targetDir, "thumbs")
		if err := os.MkdirAll(thumbDir, 0o755); err == nil {
			if err := os.WriteFile(filepath.Join(thumbDir, name), thumb, 0o644); err == nil {
				response["thumbnailUrl"] = urlBase + "/thumbs/" + name
			}
		}
	}

	slog.Info("image uploaded",
		"name", header.Filename,
		"stored", name,
		"size", len(processed.Data),
		"dimensions", fmt.Sprintf("%dx%d", processed.Width, processed.Height),
	)
	writeJSONSuccess(w, response)
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "gif":
		return ".gif"
	default:
		return ".png"
	}
}

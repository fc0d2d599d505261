// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that keeps a persistent
// audit trail. It forwards logs at WARN level and above to an append-only
// JSON Lines file, so failed logins and rejected sessions survive restarts.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level records to an audit file.
type AuditHandler struct {
	inner slog.Handler
	sink  *auditSink
	level slog.Level // Minimum level to forward to the audit file
}

// auditSink serializes writes to the audit file across handler clones.
type auditSink struct {
	mu   sync.Mutex
	file *os.File
}

// auditEntry is one line of the audit file.
type auditEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// NewAuditHandler creates an AuditHandler that wraps inner and appends WARN
// and above to the audit file at path, creating parent directories as needed.
func NewAuditHandler(inner slog.Handler, path string) (*AuditHandler, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &AuditHandler{
		inner: inner,
		sink:  &auditSink{file: file},
		level: slog.LevelWarn,
	}, nil
}

// Close releases the audit file.
func (h *AuditHandler) Close() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.file.Close()
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.sink.write(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{
		inner: h.inner.WithAttrs(attrs),
		sink:  h.sink,
		level: h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner: h.inner.WithGroup(name),
		sink:  h.sink,
		level: h.level,
	}
}

func (s *auditSink) write(r slog.Record) {
	entry := auditEntry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		if entry.Attrs == nil {
			entry.Attrs = make(map[string]any)
		}
		entry.Attrs[a.Key] = a.Value.Any()
		return true
	})

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	// A failed audit write must not take the application logger down
	_, _ = s.file.Write(line)
}

// ParseLevel maps a configuration string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

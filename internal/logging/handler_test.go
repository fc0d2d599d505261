// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func newTestHandler(t *testing.T) (*AuditHandler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	h, err := NewAuditHandler(discardHandler{}, path)
	if err != nil {
		t.Fatalf("NewAuditHandler: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h, path
}

func readEntries(t *testing.T, path string) []auditEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var entries []auditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e auditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("audit line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAuditHandlerRecordsWarnAndAbove(t *testing.T) {
	h, path := newTestHandler(t)
	logger := slog.New(h)

	logger.Warn("login rate limit exceeded", "ip", "203.0.113.1")
	logger.Error("content save failed", "lang", "en")

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Message != "login rate limit exceeded" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Attrs["ip"] != "203.0.113.1" {
		t.Errorf("attrs = %v", entries[0].Attrs)
	}
	if entries[1].Level != "ERROR" {
		t.Errorf("second entry level = %s", entries[1].Level)
	}
}

func TestAuditHandlerSkipsInfoAndDebug(t *testing.T) {
	h, path := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("server started", "addr", ":3000")
	logger.Debug("noise")

	if entries := readEntries(t, path); len(entries) != 0 {
		t.Fatalf("info/debug leaked into audit file: %+v", entries)
	}
}

func TestAuditHandlerClonesShareSink(t *testing.T) {
	h, path := newTestHandler(t)
	logger := slog.New(h).With("component", "auth").WithGroup("request")

	logger.Warn("suspicious request")

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

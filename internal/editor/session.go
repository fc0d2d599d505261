// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor models an admin editing session over a single content
// document: structured field edits through path mutation, a raw JSON text
// mode, and an explicit save back to the store.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nankybeauty/salon-go/internal/content"
)

// Mode is the active editing sub-state of a ready session.
type Mode int

const (
	// ModeStructured edits the document through per-field path mutations.
	ModeStructured Mode = iota
	// ModeRaw edits the document's full JSON text directly.
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "structured"
}

// ParseError reports raw JSON text that failed to parse on save or on a
// mode switch back to structured editing.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing raw JSON: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ErrSaveInFlight is returned when Save is invoked while a previous save for
// the same session has not finished.
var ErrSaveInFlight = errors.New("save already in progress")

// Session is the in-memory editing state for one language document. It is
// safe for concurrent use; the save-in-flight guard serializes persistence.
type Session struct {
	store *content.Store

	mu     sync.Mutex
	lang   string
	doc    content.Document
	raw    string
	mode   Mode
	saving bool
}

// NewSession loads the document for lang and returns a ready session in
// structured mode. A load failure leaves no session behind.
func NewSession(store *content.Store, lang string) (*Session, error) {
	doc, err := store.Load(lang)
	if err != nil {
		return nil, err
	}
	raw, err := content.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return &Session{
		store: store,
		lang:  lang,
		doc:   doc,
		raw:   string(raw),
	}, nil
}

// Lang returns the language the session edits.
func (s *Session) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Mode returns the active editing mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Document returns a deep copy of the in-memory document so callers cannot
// bypass the mutation path.
func (s *Session) Document() (content.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return content.Clone(s.doc)
}

// Raw returns the raw JSON text mirror.
func (s *Session) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// SetField applies one structured field edit and refreshes the raw mirror.
// A nil value deletes the addressed location.
func (s *Session) SetField(path content.Path, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeStructured {
		return fmt.Errorf("field edits require structured mode, session is in %s mode", s.mode)
	}
	if err := content.Update(s.doc, path, value); err != nil {
		return err
	}
	raw, err := content.Marshal(s.doc)
	if err != nil {
		return err
	}
	s.raw = string(raw)
	return nil
}

// SetRaw replaces the raw JSON text. The text is not parsed here; invalid
// intermediate states are allowed while the operator types.
func (s *Session) SetRaw(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeRaw {
		return fmt.Errorf("raw edits require raw mode, session is in %s mode", s.mode)
	}
	s.raw = text
	return nil
}

// SwitchMode toggles between structured and raw editing. Entering structured
// mode re-parses the raw text; on a parse failure the switch is rejected and
// the session stays in raw mode with the text intact.
func (s *Session) SwitchMode(mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return nil
	}
	if mode == ModeStructured {
		doc, err := content.Unmarshal([]byte(s.raw))
		if err != nil {
			return &ParseError{Err: err}
		}
		s.doc = doc
	}
	s.mode = mode
	return nil
}

// Save persists the session's document. In raw mode the text is parsed
// first; a parse failure aborts the save without touching the stored file.
// Only one save may be in flight per session.
func (s *Session) Save() error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if s.mode == ModeRaw {
		parsed, err := content.Unmarshal([]byte(s.raw))
		if err != nil {
			s.mu.Unlock()
			return &ParseError{Err: err}
		}
		s.doc = parsed
	}
	// Snapshot before unlocking: the disk write marshals outside the lock
	// while field edits keep mutating s.doc.
	snapshot, err := content.Clone(s.doc)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.saving = true
	lang := s.lang
	s.mu.Unlock()

	saveErr := s.store.Save(lang, snapshot)

	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
	return saveErr
}

// Saving reports whether a save is currently in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

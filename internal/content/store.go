// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SupportedLanguages is the fixed set of site languages, each persisted as its
// own JSON document. Requests for any other code are rejected.
var SupportedLanguages = []string{"vi", "en", "ru", "kr", "zh"}

// DefaultLanguage is the language the public site falls back to.
const DefaultLanguage = "vi"

// Fixed non-language document names sharing the content directory.
const (
	GalleryDoc    = "gallery"
	CategoriesDoc = "gallery-categories"
)

// Store errors. CorruptDataError and PersistenceError wrap the underlying
// cause; callers match with errors.As.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language code")
	ErrNotFound            = errors.New("content document not found")
)

// CorruptDataError reports a stored document that is no longer valid JSON.
type CorruptDataError struct {
	Name string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("content document %q is corrupt: %v", e.Name, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// PersistenceError reports a filesystem failure while reading or writing a
// document. It is surfaced to the caller, never swallowed.
type PersistenceError struct {
	Name string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("content %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store persists content documents as JSON files under a single directory,
// one file per language plus the fixed gallery documents. There is no cache:
// every Load re-reads from disk. Two concurrent saves of the same document
// race last-write-wins; acceptable for a single-admin tool.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if missing.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Name: dir, Op: "init", Err: err}
	}
	return &Store{dir: dir}, nil
}

// Dir returns the content directory.
func (s *Store) Dir() string { return s.dir }

// IsSupported reports whether lang is in the allowed language set.
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Load reads the content document for lang. Returns ErrUnsupportedLanguage
// for codes outside the allowed set, ErrNotFound when the file does not
// exist, and CorruptDataError when the stored bytes fail to parse.
func (s *Store) Load(lang string) (Document, error) {
	if !IsSupported(lang) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return s.loadFile(lang)
}

// Save serializes doc to indented JSON and replaces the file for lang. The
// write goes to a temp file first and is renamed into place, so concurrent
// readers never observe a partial write.
func (s *Store) Save(lang string, doc Document) error {
	if !IsSupported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return s.saveFile(lang, doc)
}

// LoadGallery reads the gallery project collection.
func (s *Store) LoadGallery() ([]Project, error) {
	data, err := s.readBytes(GalleryDoc)
	if err != nil {
		return nil, err
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, &CorruptDataError{Name: GalleryDoc, Err: err}
	}
	return projects, nil
}

// SaveGallery replaces the whole gallery collection on disk.
func (s *Store) SaveGallery(projects []Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return &PersistenceError{Name: GalleryDoc, Op: "encode", Err: err}
	}
	return s.writeBytes(GalleryDoc, data)
}

// LoadCategories reads the gallery category name list.
func (s *Store) LoadCategories() ([]string, error) {
	data, err := s.readBytes(CategoriesDoc)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, &CorruptDataError{Name: CategoriesDoc, Err: err}
	}
	return categories, nil
}

// SaveCategories replaces the category list on disk.
func (s *Store) SaveCategories(categories []string) error {
	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return &PersistenceError{Name: CategoriesDoc, Op: "encode", Err: err}
	}
	return s.writeBytes(CategoriesDoc, data)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) loadFile(name string) (Document, error) {
	data, err := s.readBytes(name)
	if err != nil {
		return nil, err
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, &CorruptDataError{Name: name, Err: err}
	}
	return doc, nil
}

func (s *Store) saveFile(name string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return &PersistenceError{Name: name, Op: "encode", Err: err}
	}
	return s.writeBytes(name, data)
}

func (s *Store) readBytes(name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, &PersistenceError{Name: name, Op: "read", Err: err}
	}
	return data, nil
}

// writeBytes performs the write-then-rename dance so a document file is
// always either the old or the new content, never a truncated mix.
func (s *Store) writeBytes(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return &PersistenceError{Name: name, Op: "write", Err: err}
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpName)
		if werr == nil {
			werr = cerr
		}
		return &PersistenceError{Name: name, Op: "write", Err: werr}
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Name: name, Op: "rename", Err: err}
	}
	return nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/nankybeauty/salon-go/internal/content"
)

func testStore(t *testing.T) *content.Store {
	t.Helper()
	store, err := content.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func seedLang(t *testing.T, store *content.Store, lang string, doc content.Document) {
	t.Helper()
	if err := store.Save(lang, doc); err != nil {
		t.Fatalf("seed %s: %v", lang, err)
	}
}

func TestNewSessionLoadsDocument(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "en", content.Document{"hero": map[string]any{"title": "Welcome"}})

	sess, err := NewSession(store, "en")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if sess.Lang() != "en" {
		t.Errorf("Lang() = %q", sess.Lang())
	}
	if sess.Mode() != ModeStructured {
		t.Errorf("new session mode = %v, want structured", sess.Mode())
	}
	if !strings.Contains(sess.Raw(), "\"Welcome\"") {
		t.Errorf("raw mirror missing seeded value: %s", sess.Raw())
	}
}

func TestNewSessionMissingLanguage(t *testing.T) {
	store := testStore(t)
	if _, err := NewSession(store, "en"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := NewSession(store, "xx"); !errors.Is(err, content.ErrUnsupportedLanguage) {
		t.Fatalf("err = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestSetFieldUpdatesRawMirror(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{})
	sess, err := NewSession(store, "vi")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	path := content.Path{content.Key("services"), content.Index(0), content.Key("name")}
	if err := sess.SetField(path, "Facial"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	doc, err := sess.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	got, ok := content.Get(doc, path)
	if !ok || got != "Facial" {
		t.Errorf("Get after SetField = %v, %v", got, ok)
	}
	var mirror map[string]any
	if err := json.Unmarshal([]byte(sess.Raw()), &mirror); err != nil {
		t.Fatalf("raw mirror is not valid JSON: %v", err)
	}
	if !strings.Contains(sess.Raw(), "\"Facial\"") {
		t.Errorf("raw mirror not refreshed: %s", sess.Raw())
	}
}

func TestSetFieldRejectedInRawMode(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{})
	sess, _ := NewSession(store, "vi")
	if err := sess.SwitchMode(ModeRaw); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := sess.SetField(content.Path{content.Key("a")}, "b"); err == nil {
		t.Fatal("SetField in raw mode should fail")
	}
	if err := sess.SetRaw("{"); err != nil {
		t.Fatalf("SetRaw: %v", err)
	}
}

func TestSwitchToStructuredRejectsInvalidJSON(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{"k": "v"})
	sess, _ := NewSession(store, "vi")
	if err := sess.SwitchMode(ModeRaw); err != nil {
		t.Fatalf("SwitchMode raw: %v", err)
	}
	broken := `{"k": "edited`
	if err := sess.SetRaw(broken); err != nil {
		t.Fatalf("SetRaw: %v", err)
	}

	err := sess.SwitchMode(ModeStructured)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if sess.Mode() != ModeRaw {
		t.Error("failed switch changed the mode")
	}
	if sess.Raw() != broken {
		t.Error("failed switch discarded raw edits")
	}
}

func TestSwitchToStructuredAdoptsRawEdits(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{"k": "v"})
	sess, _ := NewSession(store, "vi")
	sess.SwitchMode(ModeRaw)
	sess.SetRaw(`{"k": "edited", "extra": [1, 2]}`)

	if err := sess.SwitchMode(ModeStructured); err != nil {
		t.Fatalf("SwitchMode structured: %v", err)
	}
	doc, err := sess.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	got, _ := content.Get(doc, content.Path{content.Key("k")})
	if got != "edited" {
		t.Errorf("document not rebuilt from raw text, k = %v", got)
	}
}

func TestSaveStructuredPersists(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "en", content.Document{})
	sess, _ := NewSession(store, "en")
	sess.SetField(content.Path{content.Key("title")}, "Nanky Beauty")

	if err := sess.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := store.Load("en")
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if reloaded["title"] != "Nanky Beauty" {
		t.Errorf("persisted doc = %v", reloaded)
	}
}

func TestSaveRawParsesFirst(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "en", content.Document{"keep": "me"})
	sess, _ := NewSession(store, "en")
	sess.SwitchMode(ModeRaw)
	sess.SetRaw(`{"replaced": true`)

	err := sess.Save()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	reloaded, _ := store.Load("en")
	if reloaded["keep"] != "me" {
		t.Error("failed raw save mutated the stored document")
	}

	sess.SetRaw(`{"replaced": true}`)
	if err := sess.Save(); err != nil {
		t.Fatalf("Save valid raw: %v", err)
	}
	reloaded, _ = store.Load("en")
	if reloaded["replaced"] != true {
		t.Errorf("raw save did not persist, got %v", reloaded)
	}
}

func TestSaveGuardRejectsConcurrentSave(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "en", content.Document{})
	sess, _ := NewSession(store, "en")

	// Simulate an in-flight save by toggling the guard directly.
	sess.mu.Lock()
	sess.saving = true
	sess.mu.Unlock()

	if err := sess.Save(); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("err = %v, want ErrSaveInFlight", err)
	}

	sess.mu.Lock()
	sess.saving = false
	sess.mu.Unlock()
	if err := sess.Save(); err != nil {
		t.Fatalf("Save after guard cleared: %v", err)
	}
}

// Field edits may land while a save is marshaling to disk; the save must
// work from its own copy of the document. Run with the race detector.
func TestSaveConcurrentWithFieldEdits(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "en", content.Document{"hero": map[string]any{"title": "Hi"}})
	sess, err := NewSession(store, "en")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	path := content.Path{content.Key("hero"), content.Key("title")}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := sess.SetField(path, "title "+strconv.Itoa(i)); err != nil {
				t.Errorf("SetField %d: %v", i, err)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		if err := sess.Save(); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	<-done

	if _, err := store.Load("en"); err != nil {
		t.Fatalf("Load after concurrent saves: %v", err)
	}
}

func TestSyncImageUpdatesAllLanguages(t *testing.T) {
	store := testStore(t)
	for _, lang := range content.SupportedLanguages {
		seedLang(t, store, lang, content.Document{"hero": map[string]any{"image": "/old.jpg"}})
	}

	path := content.Path{content.Key("hero"), content.Key("image")}
	if err := SyncImage(store, path, "/images/uploads/new.jpg"); err != nil {
		t.Fatalf("SyncImage: %v", err)
	}
	for _, lang := range content.SupportedLanguages {
		doc, err := store.Load(lang)
		if err != nil {
			t.Fatalf("Load %s: %v", lang, err)
		}
		got, _ := content.Get(doc, path)
		if got != "/images/uploads/new.jpg" {
			t.Errorf("%s: image = %v", lang, got)
		}
	}
}

func TestSyncImageSkipsMissingLanguages(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{})
	seedLang(t, store, "en", content.Document{})

	path := content.Path{content.Key("logo")}
	if err := SyncImage(store, path, "/images/uploads/logo.png"); err != nil {
		t.Fatalf("SyncImage with missing languages: %v", err)
	}
	for _, lang := range []string{"vi", "en"} {
		doc, _ := store.Load(lang)
		if got, _ := content.Get(doc, path); got != "/images/uploads/logo.png" {
			t.Errorf("%s not synced", lang)
		}
	}
}

func TestSyncImageSurfacesPersistenceFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := content.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	seedLang(t, store, "vi", content.Document{})
	// Corrupt one language so the sweep hits a load error.
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	err = SyncImage(store, content.Path{content.Key("logo")}, "/x.png")
	var corrupt *content.CorruptDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want CorruptDataError", err)
	}
}

func TestDocumentReturnsCopy(t *testing.T) {
	store := testStore(t)
	seedLang(t, store, "vi", content.Document{"list": []any{"a"}})
	sess, _ := NewSession(store, "vi")

	snapshot, err := sess.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	snapshot["list"].([]any)[0] = "tampered"

	fresh, err := sess.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !reflect.DeepEqual(fresh["list"], []any{"a"}) {
		t.Errorf("session document mutated through snapshot: %v", fresh["list"])
	}
}

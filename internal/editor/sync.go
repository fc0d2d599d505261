// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nankybeauty/salon-go/internal/content"
)

// SyncImage writes the same image URL at the same path into every supported
// language document, so a picture swapped in one language shows up in all of
// them. Languages whose file is missing are skipped; any other failure stops
// the sweep so the operator sees a partial-sync error instead of silence.
func SyncImage(store *content.Store, path content.Path, url string) error {
	for _, lang := range content.SupportedLanguages {
		doc, err := store.Load(lang)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				slog.Warn("image sync skipping language without content file", "lang", lang)
				continue
			}
			return fmt.Errorf("syncing image to %s: %w", lang, err)
		}
		if err := content.Update(doc, path, url); err != nil {
			return fmt.Errorf("syncing image to %s: %w", lang, err)
		}
		if err := store.Save(lang, doc); err != nil {
			return fmt.Errorf("syncing image to %s: %w", lang, err)
		}
	}
	return nil
}

package i18n

import (
	"testing"

	"github.com/nankybeauty/salon-go/internal/content"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"vi", "vi"},
		{"vi-VN,vi;q=0.9", "vi"},
		{"en-US,en;q=0.9", "en"},
		{"ru-RU", "ru"},
		{"ko-KR,ko;q=0.8", "kr"},
		{"zh-CN", "zh"},
		{"", ""},
		{";;;", ""},
	}

	for _, tt := range tests {
		if got := MatchLanguage(tt.header); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("vi") || !IsSupported("kr") {
		t.Error("site languages reported unsupported")
	}
	if IsSupported("fr") {
		t.Error("fr reported supported")
	}
}

func TestLookup(t *testing.T) {
	en := content.Document{
		"hero": map[string]any{"title": "Welcome"},
	}
	vi := content.Document{
		"hero":   map[string]any{"title": "Chào mừng", "subtitle": "Vẻ đẹp"},
		"footer": map[string]any{"note": "fallback only"},
	}

	if got := Lookup(en, vi, "hero.title"); got != "Welcome" {
		t.Errorf("hero.title = %q", got)
	}
	// Missing in en, present in the fallback document.
	if got := Lookup(en, vi, "hero.subtitle"); got != "Vẻ đẹp" {
		t.Errorf("hero.subtitle = %q", got)
	}
	if got := Lookup(en, vi, "footer.note"); got != "fallback only" {
		t.Errorf("footer.note = %q", got)
	}
	if got := Lookup(en, vi, "missing.everywhere"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
	// Non-string leaves do not resolve.
	if got := Lookup(content.Document{"n": 1.0}, nil, "n"); got != "" {
		t.Errorf("numeric leaf = %q, want empty", got)
	}
}

// Package i18n provides language selection and dotted-key lookups over the
// per-language content documents for the public site.
package i18n

import (
	"golang.org/x/text/language"

	"github.com/nankybeauty/salon-go/internal/content"
)

// LangCookie stores the visitor's language choice between visits.
const LangCookie = "nanky_lang"

var (
	supportedTags []language.Tag
	matcher       language.Matcher
)

func init() {
	for _, code := range content.SupportedLanguages {
		supportedTags = append(supportedTags, language.MustParse(normalizeTag(code)))
	}
	matcher = language.NewMatcher(supportedTags)
}

// normalizeTag maps the site's historical language codes onto BCP 47 tags.
// "kr" predates the content files and is kept on disk and over the wire.
func normalizeTag(code string) string {
	if code == "kr" {
		return "ko"
	}
	return code
}

// IsSupported reports whether code names one of the site languages.
func IsSupported(code string) bool {
	return content.IsSupported(code)
}

// MatchLanguage picks the best supported site language for an
// Accept-Language header value, or "" when nothing matches.
func MatchLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, conf := matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return content.SupportedLanguages[index]
}

// Lookup resolves a dotted key ("hero.title") in doc, falling back to
// fallback (normally the default-language document) when the key is absent.
// Returns "" when neither document carries the key as a string.
func Lookup(doc, fallback content.Document, key string) string {
	if v, ok := lookupOne(doc, key); ok {
		return v
	}
	if v, ok := lookupOne(fallback, key); ok {
		return v
	}
	return ""
}

func lookupOne(doc content.Document, key string) (string, bool) {
	if doc == nil || key == "" {
		return "", false
	}
	path, err := content.ParsePath(key)
	if err != nil {
		return "", false
	}
	v, ok := content.Get(doc, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

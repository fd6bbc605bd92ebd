// Package i18n renders message keys in Portuguese (default) or Spanish.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported languages, default first.
var supported = []language.Tag{language.Portuguese, language.Spanish}

var (
	matcher = language.NewMatcher(supported)
	catalg  = mustBuildCatalog()
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Portuguese))
	for tag, msgs := range map[language.Tag]map[string]string{
		language.Portuguese: portuguese,
		language.Spanish:    spanish,
	} {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator renders keys for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for lang; unsupported or empty values resolve to Portuguese.
func New(lang string) *Translator {
	tag := match(lang)
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(catalg))}
}

// T renders key with optional format arguments. Unknown keys are returned as-is.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Fields renders every message key of a per-field error map.
func (t *Translator) Fields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for field, key := range fields {
		out[field] = t.T(key)
	}
	return out
}

// Lang returns the short language code ("pt" or "es").
func (t *Translator) Lang() string {
	base, _ := t.tag.Base()
	return base.String()
}

// Resolve picks the language from the stored preference, then APP_LANG, then LANG.
func Resolve(preferred string) string {
	for _, candidate := range []string{preferred, os.Getenv("APP_LANG"), os.Getenv("LANG")} {
		if candidate == "" {
			continue
		}
		if tag, ok := parse(candidate); ok {
			base, _ := tag.Base()
			return base.String()
		}
	}
	base, _ := supported[0].Base()
	return base.String()
}

// IsSupported reports whether lang is one of the shipped languages.
func IsSupported(lang string) bool {
	_, ok := parse(lang)
	return ok
}

// Supported lists the shipped language codes.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		out = append(out, base.String())
	}
	return out
}

func match(lang string) language.Tag {
	if tag, ok := parse(lang); ok {
		return tag
	}
	return supported[0]
}

// parse accepts forms like "es", "pt-BR" or "es_ES.UTF-8".
func parse(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" {
		return language.Und, false
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

// Package i18n serves the app's two locale trees (Korean and English) from
// embedded YAML resources. Lookup is by dotted key with fallback to the
// other locale, then to the key itself; interpolation is plain {{name}}
// replacement with no pluralization engine.
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Supported locales; Korean is the app's default.
const (
	LangKorean  = "ko"
	LangEnglish = "en"
)

// Vars holds interpolation values for T.
type Vars map[string]string

// Bundle holds both locale trees flattened to dotted keys.
type Bundle struct {
	mu       sync.RWMutex
	lang     string
	messages map[string]map[string]string
}

// Load parses the embedded resources for both locales.
func Load() (*Bundle, error) {
	b := &Bundle{
		lang:     LangKorean,
		messages: make(map[string]map[string]string, 2),
	}
	for _, lang := range []string{LangKorean, LangEnglish} {
		raw, err := localeFS.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		b.messages[lang] = flat
	}
	return b, nil
}

// SetLanguage switches the active locale.
func (b *Bundle) SetLanguage(lang string) error {
	if lang != LangKorean && lang != LangEnglish {
		return fmt.Errorf("unsupported language %q", lang)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lang = lang
	return nil
}

// Language returns the active locale.
func (b *Bundle) Language() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lang
}

// T resolves a dotted key in the active locale, falling back to the other
// locale and finally to the key itself, then applies interpolation.
func (b *Bundle) T(key string, vars ...Vars) string {
	b.mu.RLock()
	lang := b.lang
	b.mu.RUnlock()

	msg, ok := b.messages[lang][key]
	if !ok {
		other := LangEnglish
		if lang == LangEnglish {
			other = LangKorean
		}
		if msg, ok = b.messages[other][key]; !ok {
			msg = key
		}
	}

	for _, set := range vars {
		for name, value := range set {
			msg = strings.ReplaceAll(msg, "{{"+name+"}}", value)
		}
	}
	return msg
}

// flatten turns a nested YAML tree into dotted-key leaves.
func flatten(prefix string, tree map[string]any, out map[string]string) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case string:
			out[full] = v
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
}

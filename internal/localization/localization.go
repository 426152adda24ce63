// Package localization loads translation strings from per-language JSON
// files and renders localized messages. Chat system messages (deal status
// changes, welcome text) are the main consumer.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fallbackLang = "en"

// Localizer holds one translation table per language code.
type Localizer struct {
	defaultLang  string
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// New loads every <lang>.json file in dir. defaultLang is used when a caller
// passes an empty language.
func New(dir, defaultLang string) (*Localizer, error) {
	l := NewStatic(defaultLang, nil)

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}
		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}
		l.translations[lang] = table
	}

	return l, nil
}

// NewStatic builds a Localizer from in-memory tables. Used by tests and as
// the base for New.
func NewStatic(defaultLang string, tables map[string]map[string]string) *Localizer {
	if defaultLang == "" {
		defaultLang = fallbackLang
	}
	l := &Localizer{
		defaultLang:  defaultLang,
		translations: make(map[string]map[string]string),
	}
	for lang, table := range tables {
		l.translations[lang] = table
	}
	return l
}

// Get returns the raw translation for key, falling back to English and then
// to the key itself so a missing entry never breaks a message.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if lang == "" {
		lang = l.defaultLang
	}
	if table, ok := l.translations[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if lang != fallbackLang {
		if table, ok := l.translations[fallbackLang]; ok {
			if value, ok := table[key]; ok {
				return value
			}
		}
	}
	return key
}

// Message renders the translation for key with fmt verbs applied.
func (l *Localizer) Message(lang, key string, args ...any) string {
	format := l.Get(lang, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

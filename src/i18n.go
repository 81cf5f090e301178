package main

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localeFS embed.FS

const defaultLocale = "en"

// messageCatalog maps UI string keys to translated text.
type messageCatalog map[string]string

var (
	localeCacheMu sync.Mutex
	localeCache   = make(map[string]messageCatalog)
)

// normalizeLocale reduces a locale tag to its bare language ("pt-BR" -> "pt").
func normalizeLocale(locale string) string {
	if locale == "" {
		return defaultLocale
	}
	normalized := strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
	lang, _, _ := strings.Cut(normalized, "-")
	if lang == "" {
		return defaultLocale
	}
	return lang
}

func loadLocale(locale string) (messageCatalog, error) {
	raw, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.yml", locale))
	if err != nil {
		return nil, err
	}
	catalog := messageCatalog{}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("locale %s: %w", locale, err)
	}
	return catalog, nil
}

// getMessages returns the catalog for a locale, falling back to English when
// the locale has no translation file. Catalogs are parsed once and cached.
func getMessages(locale string) messageCatalog {
	normalized := normalizeLocale(locale)

	localeCacheMu.Lock()
	defer localeCacheMu.Unlock()

	if catalog, ok := localeCache[normalized]; ok {
		return catalog
	}

	catalog, err := loadLocale(normalized)
	if err != nil {
		if normalized == defaultLocale {
			// The embedded English catalog must always parse
			panic(fmt.Sprintf("default locale unavailable: %v", err))
		}
		catalog = getMessagesLocked(defaultLocale)
	}
	localeCache[normalized] = catalog
	return catalog
}

func getMessagesLocked(locale string) messageCatalog {
	if catalog, ok := localeCache[locale]; ok {
		return catalog
	}
	catalog, err := loadLocale(locale)
	if err != nil {
		panic(fmt.Sprintf("default locale unavailable: %v", err))
	}
	localeCache[locale] = catalog
	return catalog
}

// Get looks up a key with a readable fallback so a missing translation shows
// up in the UI instead of rendering blank. Exported so templates can call it.
func (c messageCatalog) Get(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return key
}

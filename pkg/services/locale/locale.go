package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Translator resolves user-visible strings by key, returning the supplied
// fallback when the key (or the whole language) is unknown.
type Translator interface {
	Translate(key, fallback string) string
}

// Loader reads locale files (<dir>/<lang>.yaml, a flat key-to-string map)
// and caches them explicitly: a cached language stays loaded until
// Invalidate is called, so there is no hidden memoization to reason about.
type Loader struct {
	dir         string
	defaultLang string

	mu    sync.RWMutex
	cache map[string]map[string]string
}

func NewLoader(dir, defaultLang string) *Loader {
	return &Loader{
		dir:         dir,
		defaultLang: defaultLang,
		cache:       make(map[string]map[string]string),
	}
}

// Language returns a Translator for lang, falling back to the default
// language when the requested one cannot be loaded, and to an empty backing
// map (every lookup yields the fallback string) when neither loads.
func (l *Loader) Language(lang string) Translator {
	strings, err := l.load(lang)
	if err != nil && lang != l.defaultLang {
		strings, err = l.load(l.defaultLang)
	}
	if err != nil {
		strings = map[string]string{}
	}
	return &translator{strings: strings}
}

// Invalidate drops a cached language so the next Language call re-reads it.
func (l *Loader) Invalidate(lang string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, lang)
}

func (l *Loader) load(lang string) (map[string]string, error) {
	l.mu.RLock()
	cached, exists := l.cache[lang]
	l.mu.RUnlock()
	if exists {
		return cached, nil
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, lang+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read locale %q: %w", lang, err)
	}

	strings := make(map[string]string)
	if err := yaml.Unmarshal(raw, &strings); err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", lang, err)
	}

	l.mu.Lock()
	l.cache[lang] = strings
	l.mu.Unlock()
	return strings, nil
}

type translator struct {
	strings map[string]string
}

func (t *translator) Translate(key, fallback string) string {
	if s, exists := t.strings[key]; exists {
		return s
	}
	return fallback
}

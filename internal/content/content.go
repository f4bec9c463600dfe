// Package content serves the storefront's static info pages (delivery terms,
// about, payment info) from local markdown files with YAML front matter. The
// rendered HTML is sanitized and cached in memory.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no page exists for the slug/lang pair.
var ErrNotFound = errors.New("content: not found")

// Page is a rendered info page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Body      string // sanitized HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Lang      string `yaml:"lang"`
	UpdatedAt string `yaml:"updated_at"`
}

const defaultDir = "content"

// Store loads and caches pages from a directory laid out as
// <dir>/<slug>.<lang>.md with an untagged <dir>/<slug>.md fallback.
type Store struct {
	dir string
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewStore creates a page store rooted at dir.
func NewStore(dir string) *Store {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultDir
	}
	return &Store{
		dir:   dir,
		ttl:   5 * time.Minute,
		cache: map[string]cacheEntry{},
	}
}

// SetCacheDuration overrides the cache TTL (primarily for tests).
func (s *Store) SetCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	s.ttl = d
}

// Get returns the page for slug in lang, preferring the localized file.
func (s *Store) Get(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	key := slug + "|" + lang
	if p, ok := s.cached(key); ok {
		return p, nil
	}
	page, err := s.load(slug, lang)
	if err != nil {
		return Page{}, err
	}
	s.store(key, page)
	return page, nil
}

func (s *Store) cached(key string) (Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[key]
	if !ok || time.Now().After(e.expires) {
		return Page{}, false
	}
	return e.page, true
}

func (s *Store) store(key string, p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{page: p, expires: time.Now().Add(s.ttl)}
}

func (s *Store) load(slug, lang string) (Page, error) {
	candidates := []string{
		filepath.Join(s.dir, fmt.Sprintf("%s.%s.md", slug, lang)),
		filepath.Join(s.dir, slug+".md"),
	}
	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return renderPage(slug, lang, raw)
	}
	return Page{}, ErrNotFound
}

var (
	policy = bluemonday.UGCPolicy()
	md     = goldmark.New()
)

func renderPage(slug, lang string, raw []byte) (Page, error) {
	fm, body := splitFrontMatter(raw)
	var meta frontMatter
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return Page{}, fmt.Errorf("content %s: front matter: %w", slug, err)
		}
	}
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return Page{}, fmt.Errorf("content %s: render: %w", slug, err)
	}
	page := Page{
		Slug:    slug,
		Lang:    lang,
		Title:   meta.Title,
		Summary: meta.Summary,
		Body:    policy.Sanitize(buf.String()),
	}
	if meta.UpdatedAt != "" {
		if ts, err := time.Parse("2006-01-02", meta.UpdatedAt); err == nil {
			page.UpdatedAt = ts
		}
	}
	return page, nil
}

func splitFrontMatter(raw []byte) (fm, body []byte) {
	const sep = "---"
	text := string(raw)
	if !strings.HasPrefix(text, sep) {
		return nil, raw
	}
	rest := text[len(sep):]
	idx := strings.Index(rest, "\n"+sep)
	if idx < 0 {
		return nil, raw
	}
	fm = []byte(rest[:idx])
	after := rest[idx+1+len(sep):]
	return fm, []byte(strings.TrimPrefix(after, "\n"))
}

func sanitizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/basket"
	"github.com/toyshop/web/internal/format"
	handlersPkg "github.com/toyshop/web/internal/handlers"
	"github.com/toyshop/web/internal/i18n"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/nav"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode is set in main() based on env: TOYSHOP_WEB_DEV (preferred) or DEV (fallback)
	devMode    bool
	tmplCache  *template.Template
	i18nBundle *i18n.Bundle
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.T(lang, key)
		},
		"fmtsum":  format.FmtSum,
		"fmtdate": format.FmtDate,
		"safe":    func(s string) template.HTML { return template.HTML(s) },
		"jsonld":  func(s string) template.JS { return template.JS(s) },
		"add":     func(a, b int) int { return a + b },
		"withlang": func(lang string, v any) map[string]any {
			return map[string]any{"Lang": lang, "Item": v}
		},
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func lookupTemplates(w http.ResponseWriter) *template.Template {
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return nil
		}
		return tc
	}
	if tmplCache == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return nil
	}
	return tmplCache
}

// renderPage executes a full page template inside the shared layout.
func renderPage(w http.ResponseWriter, r *http.Request, name string, vm handlersPkg.PageData) {
	t := lookupTemplates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "page_"+name, vm); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

// renderTemplate executes a named fragment template, used for htmx swaps.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := lookupTemplates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

// i18nOrDefault translates key for lang, falling back to def when the bundle
// has no entry.
func i18nOrDefault(lang, key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v := i18nBundle.T(lang, key); v != key {
		return v
	}
	return def
}

// siteBaseURL reconstructs the external origin for the request.
func siteBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	if xf := r.Header.Get("X-Forwarded-Host"); xf != "" {
		host = xf
	}
	return scheme + "://" + host
}

// absoluteURL is the canonical URL of the current request without the hl
// override parameter.
func absoluteURL(r *http.Request) string {
	u := *r.URL
	q := cloneQuery(u.Query())
	q.Del("hl")
	u.RawQuery = q.Encode()
	return siteBaseURL(r) + u.Path + queryString(u.RawQuery)
}

func queryString(raw string) string {
	if raw == "" {
		return ""
	}
	return "?" + raw
}

// buildAlternates lists hreflang alternates for the current page, one per
// supported locale, using the hl query override.
func buildAlternates(r *http.Request) []struct{ Href, Hreflang string } {
	if i18nBundle == nil {
		return nil
	}
	base := siteBaseURL(r)
	var out []struct{ Href, Hreflang string }
	for _, lang := range i18nBundle.Supported() {
		q := cloneQuery(r.URL.Query())
		q.Set("hl", lang)
		out = append(out, struct{ Href, Hreflang string }{
			Href:     base + r.URL.Path + "?" + q.Encode(),
			Hreflang: lang,
		})
	}
	return out
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// basePage fills the layout fields shared by every page.
func basePage(r *http.Request, lang, title, desc string) handlersPkg.PageData {
	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.LoadAnalyticsFromEnv(),
	}
	if sess := mw.GetSession(r); sess != nil {
		vm.LoggedIn = auth.LoggedIn(sess)
		vm.BasketCount = basket.New(sess).ItemCount()
		vm.CSRFToken = sess.CSRFToken
	}
	brand := i18nOrDefault(lang, "brand.name", "Bolajon Toys")
	vm.SEO.Title = title + " | " + brand
	vm.SEO.Description = desc
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Type = "website"
	vm.SEO.Twitter.Card = "summary_large_image"
	vm.SEO.Alternates = buildAlternates(r)
	return vm
}

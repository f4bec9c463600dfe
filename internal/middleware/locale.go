package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/toyshop/web/internal/i18n"
	"github.com/toyshop/web/internal/kvstore"
)

// Locale resolves the preferred language and keeps it in the session store
// under the "hl" key, with a plain cookie mirror for first-request resolution.
// Priority: ?hl= query override, stored value, hl cookie, Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKeyLocaleFB, bundle.Fallback())
			r = r.WithContext(ctx)
			s := GetSession(r)
			if q := r.URL.Query().Get("hl"); q != "" {
				q = strings.ToLower(q)
				s.Set(kvstore.KeyLocale, q)
				http.SetCookie(w, &http.Cookie{Name: kvstore.KeyLocale, Value: q, Path: "/"})
			} else if _, ok := s.Get(kvstore.KeyLocale); !ok {
				if c, err := r.Cookie(kvstore.KeyLocale); err == nil && c.Value != "" {
					s.Set(kvstore.KeyLocale, strings.ToLower(c.Value))
				} else {
					s.Set(kvstore.KeyLocale, bundle.Resolve(r.Header.Get("Accept-Language")))
				}
			}
			if lang, ok := s.Get(kvstore.KeyLocale); ok && lang != "" {
				w.Header().Set("Content-Language", lang)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Lang returns the active language from the session, or the bundle fallback.
func Lang(r *http.Request) string {
	if s := GetSession(r); s != nil {
		if lang, ok := s.Get(kvstore.KeyLocale); ok && lang != "" {
			return lang
		}
	}
	if v := r.Context().Value(ctxKeyLocaleFB); v != nil {
		if fb, ok := v.(string); ok && fb != "" {
			return fb
		}
	}
	return "uz"
}

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

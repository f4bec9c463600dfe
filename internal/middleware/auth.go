package middleware

import (
	"net/http"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/kvstore"
)

// Auth hydrates user context from the tokens held in the session store. An
// expired access token reads as logged out; there is no refresh flow, the
// buyer just logs in again.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if auth.LoggedIn(s) {
			phone, _ := s.Get(kvstore.KeyPhone)
			r = r.WithContext(WithUser(r.Context(), &User{Phone: phone}))
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import "net/http"

// HTMX flags requests issued by the page's htmx layer so handlers answer with
// fragments. A history restore sends HX-Request too but wants the whole page
// back, so it counts as a regular navigation.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		frag := r.Header.Get("HX-Request") == "true" &&
			r.Header.Get("HX-History-Restore-Request") != "true"
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), frag)))
	})
}

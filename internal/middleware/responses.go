package middleware

import (
	"html"
	"net/http"
)

// writeError reports a middleware-level rejection. htmx requests get a toast
// fragment the page shows in place; anything else gets plain text.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`<p class="toast toast-error" data-tone="error">` + html.EscapeString(msg) + `</p>`))
		return
	}
	http.Error(w, msg, code)
}

package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter, captures the status code, and lets a
// callback run just before the first byte is written (headers and cookies can
// only be set until then).
type ResponseRecorder struct {
	http.ResponseWriter
	status      int
	wrote       bool
	beforeWrite func(http.ResponseWriter)
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run once, right before headers are flushed.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) {
	rw.beforeWrite = fn
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.flushBefore()
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.flushBefore()
	return rw.ResponseWriter.Write(b)
}

func (rw *ResponseRecorder) flushBefore() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	if rw.beforeWrite != nil {
		rw.beforeWrite(rw.ResponseWriter)
	}
}

func (rw *ResponseRecorder) Status() int { return rw.status }

// Wrote reports whether any response byte or header has been flushed.
func (rw *ResponseRecorder) Wrote() bool { return rw.wrote }

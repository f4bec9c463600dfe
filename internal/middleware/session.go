package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "TOYSHOP_SESSION"

// SessionData is the device-local state carried in the signed session cookie.
// Values is the storefront's key-value store (basket, tokens, pending order,
// contact fields, locale, last page); it satisfies kvstore.Store so the
// basket and auth packages can work on it directly.
type SessionData struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"v,omitempty"`
	CSRFToken string            `json:"csrf,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// Get returns the stored value for key.
func (s *SessionData) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores value under key and flags the session for re-writing.
func (s *SessionData) Set(key, value string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	if cur, ok := s.Values[key]; ok && cur == value {
		return
	}
	s.Values[key] = value
	s.MarkDirty()
}

// Remove deletes key; removing an absent key is a no-op.
func (s *SessionData) Remove(key string) {
	if _, ok := s.Values[key]; !ok {
		return
	}
	delete(s.Values, key)
	s.MarkDirty()
}

var sessionSignKey []byte
var sessionSecure bool

func init() {
	// signing key: prefer env var; if absent, generate a process-ephemeral one (dev only)
	key := os.Getenv("TOYSHOP_WEB_SESSION_SIGNING_KEY")
	if key == "" {
		sessionSignKey = make([]byte, 32)
		if _, err := rand.Read(sessionSignKey); err != nil {
			log.Printf("session: failed to generate signing key: %v", err)
			sessionSignKey = []byte("insecure-dev-key-please-set-TOYSHOP_WEB_SESSION_SIGNING_KEY")
		}
		log.Printf("session: using ephemeral signing key (dev). Set TOYSHOP_WEB_SESSION_SIGNING_KEY for production.")
	} else {
		sessionSignKey = []byte(key)
	}
	// mark cookies secure in prod (when TOYSHOP_WEB_ENV=prod)
	sessionSecure = strings.ToLower(os.Getenv("TOYSHOP_WEB_ENV")) == "prod"
}

// Session loads or initializes a session and stores it in request context.
// An unsigned, tampered, or unparsable cookie reads as a fresh empty session;
// corrupted device state is never a fatal condition.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = uuid.NewString()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := contextWithSession(r, sd)
		rw := NewResponseRecorder(w)
		// the cookie must be written before the first body byte
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

func contextWithSession(r *http.Request, s *SessionData) context.Context {
	return context.WithValue(r.Context(), ctxKeySession, s)
}

// GetSession returns session data from context.
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request.
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// RegenerateID assigns a new session ID and CSRF token to prevent fixation after login.
func (s *SessionData) RegenerateID() {
	s.ID = uuid.NewString()
	s.CSRFToken = newCSRFToken()
	s.MarkDirty()
}

func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &SessionData{}, false
	}
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	val := payload + "." + sig
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

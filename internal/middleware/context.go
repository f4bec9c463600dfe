package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX   ctxKey = "is_htmx"
	ctxKeySession  ctxKey = "session"
	ctxKeyUser     ctxKey = "user"
	ctxKeyLocaleFB ctxKey = "locale_fallback"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// User is the logged-in buyer, identified by the phone the OTP went to.
type User struct {
	Phone string `json:"phone"`
}

// WithUser stores user in context
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns user if present
func UserFromContext(ctx context.Context) *User {
	if v := ctx.Value(ctxKeyUser); v != nil {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

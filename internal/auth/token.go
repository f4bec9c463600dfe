package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toyshop/web/internal/kvstore"
)

// SaveTokens persists the credential pair and the phone it was issued for.
func SaveTokens(kv kvstore.Store, t Tokens, phone string) {
	kv.Set(kvstore.KeyAccessToken, t.AccessToken)
	kv.Set(kvstore.KeyRefreshToken, t.RefreshToken)
	if phone != "" {
		kv.Set(kvstore.KeyPhone, phone)
	}
}

// ClearTokens logs the device out.
func ClearTokens(kv kvstore.Store) {
	kv.Remove(kvstore.KeyAccessToken)
	kv.Remove(kvstore.KeyRefreshToken)
	kv.Remove(kvstore.KeyUserData)
}

// AccessToken returns the stored bearer token, or "" when the device is not
// logged in or the token has expired. The signature is not verified here; the
// API is the authority, this check only avoids sending requests that are
// certain to bounce.
func AccessToken(kv kvstore.Store) string {
	tok, ok := kv.Get(kvstore.KeyAccessToken)
	if !ok || tok == "" {
		return ""
	}
	if expired(tok, time.Now()) {
		return ""
	}
	return tok
}

// LoggedIn reports whether a usable access token is stored.
func LoggedIn(kv kvstore.Store) bool {
	return AccessToken(kv) != ""
}

func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		// opaque (non-JWT) tokens pass through; the API decides
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyshop/web/internal/kvstore"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+998 (90) 123-45-67": "998901234567",
		"901234567":           "998901234567",
		"998901234567":        "998901234567",
	}
	for in, want := range cases {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "12345", "99890123456", "9989012345678"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, in)
	}
}

func TestRegisterPhoneRejectsBadNumberBeforeRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.RegisterPhone(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.False(t, called)
}

func TestLoginStoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "998901234567", body["phone_number"])
		assert.Equal(t, "12345", body["otp"])
		_ = json.NewEncoder(w).Encode(Tokens{AccessToken: "acc", RefreshToken: "ref"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tokens, err := c.Login(context.Background(), "998901234567", "12345")
	require.NoError(t, err)

	kv := kvstore.NewMemory()
	SaveTokens(kv, tokens, "998901234567")

	acc, _ := kv.Get(kvstore.KeyAccessToken)
	assert.Equal(t, "acc", acc)
	ref, _ := kv.Get(kvstore.KeyRefreshToken)
	assert.Equal(t, "ref", ref)
	phone, _ := kv.Get(kvstore.KeyPhone)
	assert.Equal(t, "998901234567", phone)
}

func TestLoginFailedOnEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Tokens{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "998901234567", "00000")
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestAccessTokenExpiry(t *testing.T) {
	kv := kvstore.NewMemory()

	kv.Set(kvstore.KeyAccessToken, signedToken(t, time.Now().Add(time.Hour)))
	assert.NotEmpty(t, AccessToken(kv))
	assert.True(t, LoggedIn(kv))

	kv.Set(kvstore.KeyAccessToken, signedToken(t, time.Now().Add(-time.Hour)))
	assert.Empty(t, AccessToken(kv))
	assert.False(t, LoggedIn(kv))

	// opaque tokens are passed through untouched
	kv.Set(kvstore.KeyAccessToken, "opaque-token")
	assert.Equal(t, "opaque-token", AccessToken(kv))
}

func TestClearTokens(t *testing.T) {
	kv := kvstore.NewMemory()
	SaveTokens(kv, Tokens{AccessToken: "a", RefreshToken: "r"}, "998901234567")
	kv.Set(kvstore.KeyUserData, `{"first_name":"Ali"}`)

	ClearTokens(kv)

	assert.False(t, LoggedIn(kv))
	_, ok := kv.Get(kvstore.KeyUserData)
	assert.False(t, ok)
	// phone stays so the login form can prefill it
	phone, _ := kv.Get(kvstore.KeyPhone)
	assert.Equal(t, "998901234567", phone)
}

func TestUpdateProfile(t *testing.T) {
	var got Profile
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/update/", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).UpdateProfile(context.Background(), "tok", Profile{
		FirstName: "Ali", LastName: "Valiyev", Phone: "998901234567", Address: "Tashkent",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "Ali", got.FirstName)
	assert.Equal(t, "Tashkent", got.Address)
}

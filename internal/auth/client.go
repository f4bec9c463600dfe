// Package auth covers the phone-OTP login flow and the buyer profile. Tokens
// come back from the API as opaque bearer strings; there is no refresh flow,
// an expired token simply means logged out.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const defaultTimeout = 8 * time.Second

// ErrInvalidPhone is returned before any request is sent when the phone is
// not a full Uzbek number (998 plus nine digits).
var ErrInvalidPhone = errors.New("auth: invalid phone number")

// ErrLoginFailed is returned when the OTP check is rejected.
var ErrLoginFailed = errors.New("auth: login failed")

var phonePattern = regexp.MustCompile(`^998\d{9}$`)

// NormalizePhone strips formatting and ensures the 998 country prefix.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()
	if !strings.HasPrefix(phone, "998") {
		phone = "998" + phone
	}
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// Tokens is the credential pair issued on login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Profile is the buyer profile held by the API.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// Client issues requests against the users endpoints of the shop API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an auth client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// RegisterPhone asks the API to send an OTP to the phone. The phone must
// already be normalized (998XXXXXXXXX).
func (c *Client) RegisterPhone(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return c.post(ctx, "/users/register/", "", map[string]string{"phone_number": phone}, nil)
}

// Login exchanges phone plus OTP for a token pair.
func (c *Client) Login(ctx context.Context, phone, otp string) (Tokens, error) {
	if !phonePattern.MatchString(phone) {
		return Tokens{}, ErrInvalidPhone
	}
	var out Tokens
	body := map[string]string{"phone_number": phone, "otp": otp}
	if err := c.post(ctx, "/users/login/", "", body, &out); err != nil {
		return Tokens{}, err
	}
	if out.AccessToken == "" {
		return Tokens{}, ErrLoginFailed
	}
	return out, nil
}

// UpdateProfile pushes the checkout contact details onto the buyer profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, p Profile) error {
	endpoint, err := url.JoinPath(c.baseURL, "/users/update/")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("auth: %s %s status %d: %s", req.Method, req.URL.Path, resp.StatusCode, drainError(resp.Body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

// Package shop talks to the remote shop API: catalog, comments, orders. Every
// call is a single attempt with the client timeout; there is no retry or
// backoff anywhere in the storefront, failures surface to the caller.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 8 * time.Second

	// the API treats Uzbek as the default and expects no lang parameter for it
	defaultLang = "uz"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("shop: not found")

// ErrUnauthorized is returned for 401/403 responses, typically an expired or
// missing bearer token.
var ErrUnauthorized = errors.New("shop: unauthorized")

// Client issues requests against the shop API base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// HTTPClient exposes the underlying client for packages sharing the transport.
func (c *Client) HTTPClient() *http.Client {
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c.http
}

// Categories lists product categories, optionally filtered by gender
// ("all", "male", "female").
func (c *Client) Categories(ctx context.Context, gender, lang string) ([]Category, error) {
	q := url.Values{}
	if gender != "" {
		q.Set("gender", gender)
	}
	addLang(q, lang)
	var out []Category
	if err := c.getJSON(ctx, "/shop/categories/", q, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductQuery narrows the paginated product listing.
type ProductQuery struct {
	Page       int
	PageSize   int
	CategoryID int64
	Lang       string
}

// Products fetches one listing page. Page numbering starts at 1.
func (c *Client) Products(ctx context.Context, pq ProductQuery) (ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(pq.Page, 1)))
	q.Set("page_size", strconv.Itoa(max(pq.PageSize, 1)))
	if pq.Lang != "" {
		q.Set("lang", pq.Lang)
	}
	if pq.CategoryID != 0 {
		q.Set("category_id", strconv.FormatInt(pq.CategoryID, 10))
	}
	var out ProductPage
	if err := c.getJSON(ctx, "/shop/products/", q, "", &out); err != nil {
		return ProductPage{}, err
	}
	return out, nil
}

// ProductDetail fetches one product by id.
func (c *Client) ProductDetail(ctx context.Context, id int64, lang string) (Product, error) {
	q := url.Values{}
	q.Set("product_id", strconv.FormatInt(id, 10))
	addLang(q, lang)
	var out Product
	if err := c.getJSON(ctx, "/shop/product-details/", q, "", &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

// Comments lists reviews for a product.
func (c *Client) Comments(ctx context.Context, productID int64) ([]Comment, error) {
	var out []Comment
	path := fmt.Sprintf("/shop/product-comments/%d/", productID)
	if err := c.getJSON(ctx, path, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment posts a review. Requires a bearer token.
func (c *Client) CreateComment(ctx context.Context, token string, productID int64, text string, rating int) error {
	body := map[string]any{
		"product_id": productID,
		"comment":    text,
		"rating":     rating,
	}
	path := fmt.Sprintf("/shop/product-comments/%d/", productID)
	return c.postJSON(ctx, path, token, body, nil)
}

// NewProducts lists the new-arrivals strip for the home page.
func (c *Client) NewProducts(ctx context.Context, lang string) ([]Product, error) {
	q := url.Values{}
	addLang(q, lang)
	var out []Product
	if err := c.getJSON(ctx, "/shop/new-products/", q, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderHistory lists the authenticated buyer's past orders.
func (c *Client) OrderHistory(ctx context.Context, token, lang string) ([]HistoryOrder, error) {
	q := url.Values{}
	addLang(q, lang)
	var out []HistoryOrder
	if err := c.getJSON(ctx, "/shop/order-history/", q, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder submits the order snapshot. This is a single best-effort
// attempt; if the response is lost after the server accepted the order a user
// retry can duplicate it (known, accepted gap).
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (OrderResponse, error) {
	var out OrderResponse
	if err := c.postJSON(ctx, "/shop/order-product/", token, req, &out); err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, token string, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
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
	resp, err := c.HTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("shop: %s %s status %d: %s", req.Method, req.URL.Path, resp.StatusCode, drainError(resp.Body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func addLang(q url.Values, lang string) {
	if lang != "" && lang != defaultLang {
		q.Set("lang", lang)
	}
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

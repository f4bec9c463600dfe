package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/content"
	"github.com/toyshop/web/internal/i18n"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
)

// newTestRouter builds a router like main() against a stub shop API.
func newTestRouter(t *testing.T, apiBase string) http.Handler {
	t.Helper()
	// ensure templates reparse each request and set correct paths
	devMode = true
	templatesDir = "../../templates"
	publicDir = "../../public"
	if _, err := parseTemplates(); err != nil {
		t.Fatalf("parseTemplates failed: %v", err)
	}
	var err error
	i18nBundle, err = i18n.Load("../../locales", "uz", []string{"uz", "ru", "en"})
	if err != nil {
		t.Fatalf("load i18n: %v", err)
	}
	shopClient = shop.NewClient(apiBase)
	authClient = auth.NewClient(apiBase)
	contentStore = content.NewStore("../../content")
	catalogSessions.mu.Lock()
	catalogSessions.m = map[string]*catalogState{}
	catalogSessions.mu.Unlock()
	return newRouter(zap.NewNop())
}

// stubProduct is the fixture the stub API serves for every product id.
func stubProduct(id int64) map[string]any {
	return map[string]any{
		"id":    id,
		"name":  fmt.Sprintf("Teddy %d", id),
		"price": "45000",
		"images": []map[string]any{
			{"id": 1, "image": "https://cdn.example/teddy-red.jpg", "color": "red"},
			{"id": 2, "image": "https://cdn.example/teddy-blue.jpg", "color": "blue"},
		},
	}
}

// newStubAPI serves the shop endpoints the storefront talks to. total
// controls how many products the paginated listing holds.
func newStubAPI(t *testing.T, total int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/shop/categories/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Plush"}})
	})
	mux.HandleFunc("/shop/new-products/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{stubProduct(1)})
	})
	mux.HandleFunc("/shop/products/", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		start := (page - 1) * size
		var results []map[string]any
		for i := start; i < start+size && i < total; i++ {
			results = append(results, stubProduct(int64(i + 1)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": total, "results": results})
	})
	mux.HandleFunc("/shop/product-details/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
		_ = json.NewEncoder(w).Encode(stubProduct(id))
	})
	mux.HandleFunc("/shop/product-comments/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/shop/order-history/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/shop/order-product/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "ord-1", "status": "pending", "is_paid": false,
			"payment_link": "https://pay.example/ord-1",
		})
	})
	mux.HandleFunc("/users/register/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-abc", "refresh_token": "tok-ref",
		})
	})
	mux.HandleFunc("/users/update/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// jar carries the session and CSRF cookies across requests.
type jar struct {
	cookies map[string]string
}

func newJar() *jar { return &jar{cookies: map[string]string{}} }

func (j *jar) update(res *http.Response) {
	for _, c := range res.Cookies() {
		j.cookies[c.Name] = c.Value
	}
}

func (j *jar) apply(req *http.Request) {
	var parts []string
	for k, v := range j.cookies {
		parts = append(parts, k+"="+v)
	}
	if len(parts) > 0 {
		req.Header.Set("Cookie", strings.Join(parts, "; "))
	}
	if tok, ok := j.cookies["TOYSHOP_CSRF"]; ok {
		req.Header.Set("X-CSRF-Token", tok)
	}
}

func (j *jar) do(t *testing.T, srv http.Handler, method, target string, form string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}
	req := httptest.NewRequest(method, target, body)
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	j.apply(req)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	j.update(rec.Result())
	return rec
}

func TestHealthzOK(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestHomeLocalizedNav_EN(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, ">My orders<") {
		t.Fatalf("expected localized nav label 'My orders' in body; body=%s", body)
	}
	if !strings.Contains(body, "Teddy 1") {
		t.Fatalf("expected new-arrivals product in body; body=%s", body)
	}
}

func TestHomeRendersWithoutAPI(t *testing.T) {
	srv := newTestRouter(t, "http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even with unreachable API, got %d", rec.Code)
	}
}

func TestCatalogInfiniteScroll(t *testing.T) {
	api := newStubAPI(t, 10)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	rec := j.do(t, srv, http.MethodGet, "/allproducts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if got := strings.Count(body, "data-product-card"); got != 8 {
		t.Fatalf("expected 8 product cards on first page, got %d", got)
	}
	if !strings.Contains(body, "catalog-sentinel") {
		t.Fatalf("expected scroll sentinel while more pages remain")
	}

	rec = j.do(t, srv, http.MethodGet, "/allproducts/page", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for page fragment, got %d; body=%s", rec.Code, rec.Body.String())
	}
	frag := rec.Body.String()
	if got := strings.Count(frag, "data-product-card"); got != 2 {
		t.Fatalf("expected 2 cards on last page, got %d; body=%s", got, frag)
	}
	if strings.Contains(frag, "catalog-sentinel") {
		t.Fatalf("expected no sentinel after the last page")
	}
	if got := rec.Header().Get("HX-Push-Url"); got != "/allproducts" {
		t.Fatalf("expected HX-Push-Url /allproducts, got %q", got)
	}
}

func TestCatalogCategorySwitchResets(t *testing.T) {
	api := newStubAPI(t, 10)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	rec := j.do(t, srv, http.MethodGet, "/allproducts", "")
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 8 {
		t.Fatalf("expected 8 cards, got %d", got)
	}

	// switching category starts over from page one
	rec = j.do(t, srv, http.MethodGet, "/allproducts?category_id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 8 {
		t.Fatalf("expected 8 cards after category switch, got %d", got)
	}
	if !strings.Contains(rec.Body.String(), "/allproducts/page?category_id=1") {
		t.Fatalf("expected sentinel to keep the category filter; body=%s", rec.Body.String())
	}
}

func TestCatalogRecoversAfterApiBlip(t *testing.T) {
	failNext := true
	mux := http.NewServeMux()
	mux.HandleFunc("/shop/categories/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/shop/products/", func(w http.ResponseWriter, r *http.Request) {
		if failNext {
			failNext = false
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		results := []map[string]any{}
		for i := int64(1); i <= 8; i++ {
			results = append(results, stubProduct(i))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 10, "results": results})
	})
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	srv := newTestRouter(t, api.URL)
	j := newJar()

	// the first page fetch fails; the catalog still renders with its sentinel
	rec := j.do(t, srv, http.MethodGet, "/allproducts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite failed fetch, got %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 0 {
		t.Fatalf("expected no cards after failed fetch, got %d", got)
	}
	if !strings.Contains(rec.Body.String(), "catalog-sentinel") {
		t.Fatalf("expected sentinel kept so the page retries; body=%s", rec.Body.String())
	}

	// the sentinel's next request retries the same page against the healthy API
	rec = j.do(t, srv, http.MethodGet, "/allproducts/page", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on retry, got %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 8 {
		t.Fatalf("expected 8 cards on retry, got %d; body=%s", got, rec.Body.String())
	}
}

func TestCatalogStateSurvivesLogin(t *testing.T) {
	api := newStubAPI(t, 10)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/allproducts", "")
	rec := j.do(t, srv, http.MethodGet, "/allproducts/page", "")
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 2 {
		t.Fatalf("expected 2 cards on second page, got %d", got)
	}

	_ = j.do(t, srv, http.MethodPost, "/login/phone", "phone=998901234567")
	_ = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")

	// the rotated session id keeps the accumulated pages
	rec = j.do(t, srv, http.MethodGet, "/allproducts", "")
	if got := strings.Count(rec.Body.String(), "data-product-card"); got != 10 {
		t.Fatalf("expected all 10 accumulated cards after login, got %d", got)
	}
}

func TestProductDetailColorGallery(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)

	req := httptest.NewRequest(http.MethodGet, "/product-details/7?color=blue", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "teddy-blue.jpg") {
		t.Fatalf("expected blue gallery image; body=%s", body)
	}
	if strings.Contains(body, `<img src="https://cdn.example/teddy-red.jpg"`) {
		t.Fatalf("expected red image excluded from blue gallery; body=%s", body)
	}
}

func TestBasketAddUpdateRemove(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	// prime session + CSRF
	if rec := j.do(t, srv, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET / expected 200, got %d", rec.Code)
	}

	rec := j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=2&color=red")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect after add, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "basket:changed") {
		t.Fatalf("expected basket:changed trigger, got %q", trigger)
	}

	rec = j.do(t, srv, http.MethodGet, "/basket", "")
	body := rec.Body.String()
	if !strings.Contains(body, "Teddy 7") {
		t.Fatalf("expected basket line for Teddy 7; body=%s", body)
	}
	if !strings.Contains(body, `data-item-count="2"`) {
		t.Fatalf("expected item count 2; body=%s", body)
	}
	if !strings.Contains(body, `data-total="90000"`) {
		t.Fatalf("expected total 90000; body=%s", body)
	}

	// adding the same variant again merges quantities
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=1&color=red")
	rec = j.do(t, srv, http.MethodGet, "/basket", "")
	if !strings.Contains(rec.Body.String(), `data-item-count="3"`) {
		t.Fatalf("expected merged quantity 3; body=%s", rec.Body.String())
	}

	rec = j.do(t, srv, http.MethodPost, "/basket/remove", "product_id=7")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 after remove, got %d", rec.Code)
	}
	rec = j.do(t, srv, http.MethodGet, "/basket", "")
	if !strings.Contains(rec.Body.String(), `data-item-count="0"`) {
		t.Fatalf("expected empty basket; body=%s", rec.Body.String())
	}
}

func TestCSRFCookieIssued(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var seen bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "TOYSHOP_CSRF" && c.Value != "" {
			seen = true
			break
		}
	}
	if !seen {
		t.Fatalf("expected TOYSHOP_CSRF cookie, got %v", rec.Result().Header["Set-Cookie"])
	}
}

func TestBasketPostRequiresCSRF(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)

	req := httptest.NewRequest(http.MethodPost, "/basket/add", strings.NewReader("product_id=7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	if rec := j.do(t, srv, http.MethodGet, "/login", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /login expected 200, got %d", rec.Code)
	}

	rec := j.do(t, srv, http.MethodPost, "/login/phone", "phone=12345")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad phone, got %d; body=%s", rec.Code, rec.Body.String())
	}

	rec = j.do(t, srv, http.MethodPost, "/login/phone", "phone=%2B998+90+123-45-67")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid phone, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `data-step="otp"`) {
		t.Fatalf("expected otp step; body=%s", rec.Body.String())
	}

	rec = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 after verify, got %d; body=%s", rec.Code, rec.Body.String())
	}

	// logged-in sessions skip the login form
	rec = j.do(t, srv, http.MethodGet, "/login", "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/orders" {
		t.Fatalf("expected redirect to /orders, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSaleInfoCashOrderClearsBasket(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/login/phone", "phone=998901234567")
	_ = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")
	// the fresh session after login carries a new CSRF token
	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=2&color=red")

	rec := j.do(t, srv, http.MethodPost, "/basket/order", "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sale-info" {
		t.Fatalf("expected redirect to /sale-info, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = j.do(t, srv, http.MethodGet, "/sale-info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for sale-info, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="998901234567"`) {
		t.Fatalf("expected phone prefilled; body=%s", rec.Body.String())
	}

	form := "first_name=Ali&last_name=Valiyev&phone=998901234567&address=Tashkent&payment_method=naxt"
	rec = j.do(t, srv, http.MethodPost, "/sale-info/submit", form)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?ordered=1" {
		t.Fatalf("expected redirect home after cash order, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = j.do(t, srv, http.MethodGet, "/basket", "")
	if !strings.Contains(rec.Body.String(), `data-item-count="0"`) {
		t.Fatalf("expected basket cleared after accepted order; body=%s", rec.Body.String())
	}
}

func TestSaleInfoContactClearedAfterOrder(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/login/phone", "phone=998901234567")
	_ = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")
	// the fresh session after login carries a new CSRF token
	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=2&color=red")
	_ = j.do(t, srv, http.MethodPost, "/basket/order", "")

	form := "first_name=Ali&last_name=Valiyev&phone=998901234567&address=Tashkent&payment_method=naxt"
	rec := j.do(t, srv, http.MethodPost, "/sale-info/submit", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 after cash order, got %d; body=%s", rec.Code, rec.Body.String())
	}

	// a second checkout starts from a blank contact form
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=1&color=blue")
	_ = j.do(t, srv, http.MethodPost, "/basket/order", "")
	rec = j.do(t, srv, http.MethodGet, "/sale-info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for second sale-info, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, `value="Ali"`) || strings.Contains(body, `value="Tashkent"`) {
		t.Fatalf("expected contact fields cleared after completed order; body=%s", body)
	}
}

func TestSaleInfoCardOrderRedirectsToPayment(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/login/phone", "phone=998901234567")
	_ = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")
	// the fresh session after login carries a new CSRF token
	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=1&color=red")
	_ = j.do(t, srv, http.MethodPost, "/basket/order", "")

	form := "first_name=Ali&last_name=Valiyev&phone=998901234567&address=Tashkent&payment_method=karta"
	rec := j.do(t, srv, http.MethodPost, "/sale-info/submit", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 to payment link, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "https://pay.example/ord-1" {
		t.Fatalf("expected payment link redirect, got %q", got)
	}
}

func TestSaleInfoRejectsBadPhone(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/login/phone", "phone=998901234567")
	_ = j.do(t, srv, http.MethodPost, "/login/verify", "phone=998901234567&otp=1234")
	// the fresh session after login carries a new CSRF token
	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=1&color=red")

	form := "first_name=Ali&last_name=Valiyev&phone=12345&address=Tashkent&payment_method=naxt"
	rec := j.do(t, srv, http.MethodPost, "/sale-info/submit", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid phone, got %d; body=%s", rec.Code, rec.Body.String())
	}

	// the basket survives a rejected submission
	rec = j.do(t, srv, http.MethodGet, "/basket", "")
	if !strings.Contains(rec.Body.String(), `data-item-count="1"`) {
		t.Fatalf("expected basket kept after rejection; body=%s", rec.Body.String())
	}
}

func TestSaleInfoRequiresLogin(t *testing.T) {
	api := newStubAPI(t, 1)
	srv := newTestRouter(t, api.URL)
	j := newJar()

	_ = j.do(t, srv, http.MethodGet, "/", "")
	_ = j.do(t, srv, http.MethodPost, "/basket/add", "product_id=7&quantity=1&color=red")

	form := "first_name=Ali&last_name=Valiyev&phone=998901234567&address=Tashkent&payment_method=naxt"
	rec := j.do(t, srv, http.MethodPost, "/sale-info/submit", form)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestOrdersPageLoggedOut(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sign in to see your orders") {
		t.Fatalf("expected login prompt; body=%s", rec.Body.String())
	}
}

func TestInfoPageRenders(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/info/delivery", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Delivery") {
		t.Fatalf("expected localized page title; body=%s", body)
	}
	if !strings.Contains(body, "content-prose") {
		t.Fatalf("expected prose wrapper; body=%s", body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=600" {
		t.Fatalf("expected Cache-Control=public, max-age=600, got %q", got)
	}
}

func TestSessionMiddlewareSetsCookie(t *testing.T) {
	h := mw.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var seen bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "TOYSHOP_SESSION" {
			seen = true
			break
		}
	}
	if !seen {
		t.Fatalf("expected TOYSHOP_SESSION cookie to be set, got %v", rec.Result().Header["Set-Cookie"])
	}
}

func TestInfoPageUnknownSlug(t *testing.T) {
	api := newStubAPI(t, 0)
	srv := newTestRouter(t, api.URL)
	req := httptest.NewRequest(http.MethodGet, "/info/no-such-page", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

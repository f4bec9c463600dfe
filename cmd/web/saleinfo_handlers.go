package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/basket"
	"github.com/toyshop/web/internal/kvstore"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
)

// SaleInfoView is the buyer-details step payload. The contact fields come
// prefilled from whatever the session already knows about the buyer.
type SaleInfoView struct {
	Lang      string
	HasOrder  bool
	Order     basket.Order
	Total     int64
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

func buildSaleInfoView(sess *mw.SessionData, lang string) SaleInfoView {
	b := basket.New(sess)
	view := SaleInfoView{Lang: lang}
	if order, ok := b.LatestPendingOrder(); ok {
		view.HasOrder = true
		view.Order = order
		view.Total = order.TotalPrice
	}
	view.FirstName, _ = sess.Get(kvstore.KeyFirstName)
	view.LastName, _ = sess.Get(kvstore.KeyLastName)
	view.Phone, _ = sess.Get(kvstore.KeyPhone)
	view.Address, _ = sess.Get(kvstore.KeyAddress)
	return view
}

// SaleInfoHandler renders the buyer details and payment step.
func SaleInfoHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	view := buildSaleInfoView(sess, lang)
	if !view.HasOrder {
		http.Redirect(w, r, "/basket", http.StatusSeeOther)
		return
	}

	title := i18nOrDefault(lang, "saleInfo.title", "Delivery details")
	desc := i18nOrDefault(lang, "saleInfo.description", "Tell us where to deliver and how you want to pay.")

	vm := basePage(r, lang, title, desc)
	vm.SaleInfo = view
	vm.SEO.Robots = "noindex, nofollow"
	renderPage(w, r, "sale_info", vm)
}

// SaleInfoSubmitHandler updates the buyer profile and submits the pending
// order. Card payments hand the browser to the payment provider; cash orders
// finish on the spot. A failed submission keeps the basket untouched so the
// buyer can retry.
func SaleInfoSubmitHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := mw.GetSession(r)

	token := auth.AccessToken(sess)
	if token == "" {
		redirectToLogin(w, r)
		return
	}

	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	address := strings.TrimSpace(r.FormValue("address"))
	method := strings.TrimSpace(r.FormValue("payment_method"))
	if method != "karta" && method != "naxt" {
		renderSaleInfoStatus(w, r, lang, "error",
			i18nOrDefault(lang, "saleInfo.badMethod", "Choose a payment method"), http.StatusUnprocessableEntity)
		return
	}

	phone, err := auth.NormalizePhone(r.FormValue("phone"))
	if err != nil {
		renderSaleInfoStatus(w, r, lang, "error",
			i18nOrDefault(lang, "saleInfo.badPhone", "Enter a valid phone number, e.g. 998901234567"), http.StatusUnprocessableEntity)
		return
	}

	b := basket.New(sess)
	order, ok := b.LatestPendingOrder()
	if !ok {
		// direct POST without the place-order step; freeze the basket now
		var placeErr error
		order, placeErr = b.PlaceOrder(time.Now())
		if placeErr != nil {
			renderSaleInfoStatus(w, r, lang, "error",
				i18nOrDefault(lang, "basket.empty", "Your basket is empty"), http.StatusUnprocessableEntity)
			return
		}
	}

	profile := auth.Profile{FirstName: firstName, LastName: lastName, Phone: phone, Address: address}
	saveContact(sess, profile)

	if err := authClient.UpdateProfile(r.Context(), token, profile); err != nil {
		renderSaleInfoStatus(w, r, lang, "error",
			i18nOrDefault(lang, "saleInfo.profileFailed", "Could not save your details, try again"), http.StatusBadGateway)
		return
	}

	resp, err := shopClient.CreateOrder(r.Context(), token, shop.OrderRequest{
		PaymentMethod: method,
		ProductItems:  order.ProductItems(),
	})
	if err != nil {
		if errors.Is(err, shop.ErrUnauthorized) {
			redirectToLogin(w, r)
			return
		}
		renderSaleInfoStatus(w, r, lang, "error",
			i18nOrDefault(lang, "saleInfo.orderFailed", "Could not submit the order, try again"), http.StatusBadGateway)
		return
	}

	// the remote side accepted the order; only now do the basket, the
	// snapshots and the cached contact details go away
	b.Clear()
	b.ClearPendingOrders()
	clearContact(sess)

	if method == "karta" && resp.PaymentLink != "" {
		redirectTo(w, r, resp.PaymentLink)
		return
	}
	redirectTo(w, r, "/?ordered=1")
}

func saveContact(sess *mw.SessionData, p auth.Profile) {
	sess.Set(kvstore.KeyFirstName, p.FirstName)
	sess.Set(kvstore.KeyLastName, p.LastName)
	sess.Set(kvstore.KeyPhone, p.Phone)
	sess.Set(kvstore.KeyAddress, p.Address)
	if raw, err := json.Marshal(p); err == nil {
		sess.Set(kvstore.KeyUserData, string(raw))
	}
}

func clearContact(sess *mw.SessionData) {
	sess.Remove(kvstore.KeyFirstName)
	sess.Remove(kvstore.KeyLastName)
	sess.Remove(kvstore.KeyPhone)
	sess.Remove(kvstore.KeyAddress)
	sess.Remove(kvstore.KeyUserData)
}

func redirectTo(w http.ResponseWriter, r *http.Request, url string) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func renderSaleInfoStatus(w http.ResponseWriter, r *http.Request, lang, tone, text string, code int) {
	if !mw.IsHTMX(r.Context()) {
		http.Error(w, text, code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	renderTemplate(w, r, "frag_saleinfo_status", map[string]any{
		"Lang": lang,
		"Tone": tone,
		"Text": text,
	})
}

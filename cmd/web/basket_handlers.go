package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/toyshop/web/internal/basket"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
)

// BasketHandler renders the basket page.
func BasketHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view := buildBasketView(mw.GetSession(r), lang)

	title := i18nOrDefault(lang, "basket.title", "Basket")
	desc := i18nOrDefault(lang, "basket.description", "Review your selected toys before ordering.")

	vm := basePage(r, lang, title, desc)
	vm.Basket = view
	vm.SEO.Robots = "noindex, nofollow"
	renderPage(w, r, "basket", vm)
}

// BasketAddHandler adds a product variant to the basket. The product snapshot
// is fetched fresh so the captured price is the one shown on the page.
func BasketAddHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if productID <= 0 {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	color := strings.TrimSpace(r.FormValue("color"))

	p, err := shopClient.ProductDetail(r.Context(), productID, lang)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "shop api unavailable", http.StatusBadGateway)
		return
	}

	sess := mw.GetSession(r)
	b := basket.New(sess)
	b.Add(p, quantity, color)

	notifyBasketChanged(w, b)
	if mw.IsHTMX(r.Context()) {
		renderTemplate(w, r, "frag_basket_badge", buildBasketView(sess, lang))
		return
	}
	http.Redirect(w, r, "/basket", http.StatusSeeOther)
}

// BasketQuantityHandler sets the quantity of one line.
func BasketQuantityHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	color := strings.TrimSpace(r.FormValue("color"))

	sess := mw.GetSession(r)
	b := basket.New(sess)
	if color != "" {
		b.SetQuantity(productID, quantity, color)
	} else {
		b.SetQuantity(productID, quantity)
	}

	notifyBasketChanged(w, b)
	respondBasketTable(w, r, sess, lang)
}

// BasketRemoveHandler removes a line. Without a color the product is dropped
// in every color it was added in.
func BasketRemoveHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	color := strings.TrimSpace(r.FormValue("color"))

	sess := mw.GetSession(r)
	b := basket.New(sess)
	if color != "" {
		b.Remove(productID, color)
	} else {
		b.Remove(productID)
	}

	notifyBasketChanged(w, b)
	respondBasketTable(w, r, sess, lang)
}

// BasketClearHandler empties the basket.
func BasketClearHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	b := basket.New(sess)
	b.Clear()

	notifyBasketChanged(w, b)
	respondBasketTable(w, r, sess, lang)
}

// BasketPlaceOrderHandler freezes the basket into a pending order and moves
// on to the buyer details step. The basket itself stays intact until the
// order is accepted remotely.
func BasketPlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	b := basket.New(sess)
	if _, err := b.PlaceOrder(time.Now()); err != nil {
		if errors.Is(err, basket.ErrEmptyBasket) {
			http.Error(w, i18nOrDefault(lang, "basket.empty", "Your basket is empty"), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "could not place order", http.StatusInternalServerError)
		return
	}
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", "/sale-info")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/sale-info", http.StatusSeeOther)
}

func respondBasketTable(w http.ResponseWriter, r *http.Request, sess *mw.SessionData, lang string) {
	if mw.IsHTMX(r.Context()) {
		renderTemplate(w, r, "frag_basket_table", buildBasketView(sess, lang))
		return
	}
	http.Redirect(w, r, "/basket", http.StatusSeeOther)
}

// notifyBasketChanged lets the header badge refresh itself after any
// mutation, wherever on the site it happened.
func notifyBasketChanged(w http.ResponseWriter, b *basket.Store) {
	payload := map[string]any{
		"basket:changed": map[string]any{
			"count": b.ItemCount(),
			"total": b.TotalPrice(),
		},
	}
	if raw, err := json.Marshal(payload); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
}

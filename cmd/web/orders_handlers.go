package main

import (
	"errors"
	"net/http"

	"github.com/toyshop/web/internal/auth"
	"github.com/toyshop/web/internal/basket"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
	"github.com/toyshop/web/internal/status"
)

// OrderRow is one order-history entry decorated for display.
type OrderRow struct {
	Order  shop.HistoryOrder
	Status status.Info
	Total  int64
}

// OrdersView is the order-history page payload. Pending holds orders frozen
// locally but not yet submitted; Remote is what the shop API knows about.
type OrdersView struct {
	Lang         string
	LoggedIn     bool
	Remote       []OrderRow
	RemoteFailed bool
	Pending      []basket.Order
	PendingTotal int64
}

func buildOrderRows(orders []shop.HistoryOrder) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		var total int64
		for _, it := range o.Items {
			total += it.Price.Int64() * int64(it.Quantity)
		}
		rows = append(rows, OrderRow{Order: o, Status: status.Of(o.Status), Total: total})
	}
	return rows
}

// OrdersHandler renders the order history: remote orders for logged-in
// buyers plus any locally pending order awaiting checkout.
func OrdersHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)

	b := basket.New(sess)
	view := OrdersView{
		Lang:         lang,
		Pending:      b.PendingOrders(),
		PendingTotal: b.PendingTotal(),
	}

	if token := auth.AccessToken(sess); token != "" {
		view.LoggedIn = true
		remote, err := shopClient.OrderHistory(r.Context(), token, lang)
		switch {
		case err == nil:
			view.Remote = buildOrderRows(remote)
		case errors.Is(err, shop.ErrUnauthorized):
			// stale token; show the page logged out rather than erroring
			auth.ClearTokens(sess)
			view.LoggedIn = false
		default:
			view.RemoteFailed = true
		}
	}

	title := i18nOrDefault(lang, "orders.title", "My orders")
	desc := i18nOrDefault(lang, "orders.description", "Track your orders and deliveries.")

	vm := basePage(r, lang, title, desc)
	vm.Orders = view
	vm.LoggedIn = view.LoggedIn
	vm.SEO.Robots = "noindex, nofollow"
	renderPage(w, r, "orders", vm)
}

package main

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/toyshop/web/internal/kvstore"
	mw "github.com/toyshop/web/internal/middleware"
)

// ProductsHandler renders the catalog with the session's accumulated pages.
func ProductsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)

	pager := catalogPager(sess, lang, categoryID)
	if len(pager.Items()) == 0 && pager.HasMore() {
		if _, err := pager.LoadMore(r.Context()); err != nil {
			webLog.Warn("catalog page fetch", zap.Error(err))
		}
	}
	sess.Set(kvstore.KeyLastPage, strconv.Itoa(pager.Page()))

	view := CatalogView{
		Lang:       lang,
		CategoryID: categoryID,
		Items:      pager.Items(),
		HasMore:    pager.HasMore(),
		Total:      pager.Total(),
	}
	if cats, err := shopClient.Categories(r.Context(), "all", lang); err == nil {
		view.Categories = cats
	}

	title := i18nOrDefault(lang, "catalog.title", "All products")
	desc := i18nOrDefault(lang, "catalog.description", "Browse the full toy catalog by category.")

	vm := basePage(r, lang, title, desc)
	vm.Shop = view
	renderPage(w, r, "products", vm)
}

// ProductsPageFrag appends the next listing page. The sentinel at the bottom
// of the grid requests it when scrolled into view.
func ProductsPageFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)

	pager := catalogPager(sess, lang, categoryID)
	added, err := pager.LoadMore(r.Context())
	if err != nil {
		webLog.Warn("catalog page fetch", zap.Error(err))
	}
	sess.Set(kvstore.KeyLastPage, strconv.Itoa(pager.Page()))

	items := pager.Items()
	if added > len(items) {
		added = len(items)
	}
	view := CatalogPageView{
		Lang:       lang,
		Items:      items[len(items)-added:],
		HasMore:    pager.HasMore(),
		CategoryID: categoryID,
	}
	if err != nil {
		// the sentinel stays in place, so scrolling it into view again
		// retries the same page
		view.Error = i18nOrDefault(lang, "catalog.loadFailed", "Could not load more products, scroll to retry")
	}

	push := "/allproducts"
	if categoryID != 0 {
		push += "?category_id=" + strconv.FormatInt(categoryID, 10)
	}
	w.Header().Set("HX-Push-Url", push)
	renderTemplate(w, r, "frag_products_page", view)
}

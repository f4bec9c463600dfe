package main

import (
	"net/http"

	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/seo"
	"github.com/toyshop/web/internal/shop"
)

// HomeView is the landing page payload: the new-arrivals strip plus the
// category chips that deep-link into the catalog.
type HomeView struct {
	Lang        string
	NewProducts []shop.Product
	Categories  []shop.Category
}

// HomeHandler renders the landing page. Catalog calls are best effort; an
// unreachable API still renders the shell so navigation keeps working.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view := HomeView{Lang: lang}
	if items, err := shopClient.NewProducts(r.Context(), lang); err == nil {
		view.NewProducts = items
	}
	if cats, err := shopClient.Categories(r.Context(), "all", lang); err == nil {
		view.Categories = cats
	}

	title := i18nOrDefault(lang, "home.title", "Toys and games for children")
	desc := i18nOrDefault(lang, "home.description", "New arrivals, bestsellers, and gifts for every age.")

	vm := basePage(r, lang, title, desc)
	vm.Shop = view
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Organization(i18nOrDefault(lang, "brand.name", "Bolajon Toys"), siteBaseURL(r), "")),
		seo.JSON(seo.WebSite(i18nOrDefault(lang, "brand.name", "Bolajon Toys"), siteBaseURL(r), "")),
	}

	renderPage(w, r, "home", vm)
}

package handlers

import (
	"github.com/toyshop/web/internal/nav"
)

// PageData is a generic view model for simple pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	LoggedIn    bool
	BasketCount int
	CSRFToken   string

	// Optional per-page view model payloads
	Shop     any
	Product  any
	Basket   any
	Orders   any
	SaleInfo any
	Login    any
	Content  any
}

package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/toyshop/web/internal/auth"
	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/seo"
	"github.com/toyshop/web/internal/shop"
)

// ProductDetailView is the product page payload. Gallery holds only the
// images of the active color; switching colors re-renders the gallery.
type ProductDetailView struct {
	Lang        string
	Product     shop.Product
	Colors      []string
	ActiveColor string
	Gallery     []shop.Image
	Comments    []shop.Comment
	CanComment  bool
}

func buildProductDetailView(r *http.Request, p shop.Product, lang string) ProductDetailView {
	view := ProductDetailView{Lang: lang, Product: p, Colors: p.Colors()}
	view.ActiveColor = strings.TrimSpace(r.URL.Query().Get("color"))
	if view.ActiveColor == "" && len(view.Colors) > 0 {
		view.ActiveColor = view.Colors[0]
	}
	view.Gallery = p.ImagesForColor(view.ActiveColor)
	if len(view.Gallery) == 0 {
		view.Gallery = p.Images
	}
	if sess := mw.GetSession(r); sess != nil {
		view.CanComment = auth.LoggedIn(sess)
	}
	return view
}

// ProductDetailHandler renders one product with its color galleries and
// reviews.
func ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	p, err := shopClient.ProductDetail(r.Context(), id, lang)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "shop api unavailable", http.StatusBadGateway)
		return
	}

	view := buildProductDetailView(r, p, lang)
	if comments, err := shopClient.Comments(r.Context(), id); err == nil {
		view.Comments = comments
	}

	desc := p.Description
	if desc == "" {
		desc = i18nOrDefault(lang, "product.description", "Toy details, photos, and reviews.")
	}
	vm := basePage(r, lang, p.Name, desc)
	vm.Product = view
	vm.SEO.OG.Image = p.FirstImage()
	base := siteBaseURL(r)
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Product(p.Name, desc, absoluteURL(r), p.FirstImage(), p.Price.Int64())),
		seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: i18nOrDefault(lang, "nav.allproducts", "All products"), Item: base + "/allproducts"},
			{Name: p.Name, Item: absoluteURL(r)},
		})),
	}
	renderPage(w, r, "product_detail", vm)
}

// ProductCommentsFrag re-renders the review list.
func ProductCommentsFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	view := ProductDetailView{Lang: lang}
	view.Product.ID = id
	if sess := mw.GetSession(r); sess != nil {
		view.CanComment = auth.LoggedIn(sess)
	}
	if comments, err := shopClient.Comments(r.Context(), id); err == nil {
		view.Comments = comments
	}
	renderTemplate(w, r, "frag_comments", view)
}

// ProductCommentCreateHandler posts a review and returns the refreshed list.
// Requires a logged-in session.
func ProductCommentCreateHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
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
	text := strings.TrimSpace(r.FormValue("text"))
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	if text == "" {
		http.Error(w, i18nOrDefault(lang, "product.comment.empty", "Write a few words first"), http.StatusUnprocessableEntity)
		return
	}
	if err := shopClient.CreateComment(r.Context(), token, id, text, rating); err != nil {
		if errors.Is(err, shop.ErrUnauthorized) {
			redirectToLogin(w, r)
			return
		}
		http.Error(w, "shop api unavailable", http.StatusBadGateway)
		return
	}
	ProductCommentsFrag(w, r)
}

// redirectToLogin sends the browser to the login page, via HX-Redirect for
// htmx requests so the swap target does not capture the login page.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

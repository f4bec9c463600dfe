package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toyshop/web/internal/content"
	mw "github.com/toyshop/web/internal/middleware"
)

// InfoPageHandler renders a markdown info page (delivery, payment, about).
func InfoPageHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	slug := chi.URLParam(r, "slug")

	page, err := contentStore.Get(slug, lang)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "content unavailable", http.StatusInternalServerError)
		return
	}

	desc := page.Summary
	if desc == "" {
		desc = i18nOrDefault(lang, "info.description", "Store information")
	}

	vm := basePage(r, lang, page.Title, desc)
	vm.Content = page
	w.Header().Set("Cache-Control", "public, max-age=600")
	if !page.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", page.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	renderPage(w, r, "info", vm)
}

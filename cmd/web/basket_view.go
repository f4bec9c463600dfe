package main

import (
	"github.com/toyshop/web/internal/basket"
	mw "github.com/toyshop/web/internal/middleware"
)

// BasketView is the basket page and table fragment payload.
type BasketView struct {
	Lang      string
	Lines     []basket.Line
	ItemCount int
	Total     int64
}

func buildBasketView(sess *mw.SessionData, lang string) BasketView {
	b := basket.New(sess)
	return BasketView{
		Lang:      lang,
		Lines:     b.Lines(),
		ItemCount: b.ItemCount(),
		Total:     b.TotalPrice(),
	}
}

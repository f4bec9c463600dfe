package shop

import (
	"bytes"
	"strconv"
)

// Price is an amount in whole so'm. The shop API serializes prices as strings
// ("12000"), so unmarshalling accepts both strings and bare numbers and treats
// anything unparsable as zero rather than failing the whole payload.
type Price int64

func (p Price) Int64() int64 { return int64(p) }

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(p), 10))), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		// keep the digits prefix, mirroring how the views parse prices leniently
		i := 0
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
		}
		v, _ = strconv.ParseInt(string(b[:i]), 10, 64)
	}
	*p = Price(v)
	return nil
}

// Image is one product photo tagged with the color variant it shows.
type Image struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
	Color string `json:"color"`
}

// Product mirrors the shop API product payload. Basket lines embed a Product
// as a point-in-time snapshot; it is never re-synced with the catalog.
type Product struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           Price   `json:"price"`
	DiscountedPrice Price   `json:"discounted_price"`
	Quantity        int     `json:"quantity"`
	Discount        int     `json:"discount"`
	Category        string  `json:"category"`
	AverageRating   float64 `json:"average_rating"`
	Images          []Image `json:"images"`
	SoldCount       int     `json:"sold_count"`
	Description     string  `json:"description"`
}

// Colors returns the distinct image colors in first-seen order.
func (p Product) Colors() []string {
	seen := map[string]bool{}
	var out []string
	for _, img := range p.Images {
		if img.Color == "" || seen[img.Color] {
			continue
		}
		seen[img.Color] = true
		out = append(out, img.Color)
	}
	return out
}

// ImagesForColor returns the gallery for one color variant.
func (p Product) ImagesForColor(color string) []Image {
	var out []Image
	for _, img := range p.Images {
		if img.Color == color {
			out = append(out, img)
		}
	}
	return out
}

// FirstImage returns the lead photo URL, or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].Image
}

// Category is a product category row.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Comment is a product review entry.
type Comment struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Rating    int    `json:"rating"`
}

// ProductPage is one page of the paginated listing.
type ProductPage struct {
	Count    int       `json:"count"`
	Results  []Product `json:"results"`
	Next     string    `json:"next"`
	Previous string    `json:"previous"`
}

// OrderItem is one line of a submitted or historical order.
type OrderItem struct {
	ItemID      int64    `json:"item_id,omitempty"`
	ProductID   int64    `json:"product_id"`
	ProductName string   `json:"product_name,omitempty"`
	Price       Price    `json:"price,omitempty"`
	Quantity    int      `json:"quantity"`
	Image       []string `json:"image,omitempty"`
	Color       string   `json:"color"`
}

// HistoryOrder is a row from the order-history endpoint.
type HistoryOrder struct {
	OrderID       int64       `json:"order_id"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	IsPaid        bool        `json:"is_paid"`
	Items         []OrderItem `json:"items"`
}

// OrderRequest is the order-creation payload. PaymentMethod is "karta" or
// "naxt"; no idempotency key is sent, so a retried submission after a lost
// response can create a duplicate order.
type OrderRequest struct {
	PaymentMethod string      `json:"payment_method"`
	ProductItems  []OrderItem `json:"product_items"`
}

// OrderResponse carries the created order and, for card payments, the link
// the browser must be sent to.
type OrderResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	IsPaid      bool   `json:"is_paid"`
	PaymentLink string `json:"payment_link"`
}

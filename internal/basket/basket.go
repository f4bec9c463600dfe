// Package basket owns the buyer's pending selections. A line is identified by
// (product id, color): the same toy in two colors is two independent lines.
// The store keeps lines in memory and writes the full basket back to the
// key-value store after every mutation, so memory and storage never diverge
// across an operation.
package basket

import (
	"encoding/json"

	"github.com/toyshop/web/internal/kvstore"
	"github.com/toyshop/web/internal/shop"
)

// Item is the trimmed product snapshot a line carries: just what the basket
// and checkout views render. The whole basket travels in the session cookie,
// so storing the full catalog payload per line would blow past the browsers'
// cookie size limit after a few lines.
type Item struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Price           shop.Price `json:"price"`
	DiscountedPrice shop.Price `json:"discounted_price,omitempty"`
	Image           string     `json:"image,omitempty"`
}

// Line is one basket row: a product snapshot captured at add time, the chosen
// color, and a quantity that is always at least 1.
type Line struct {
	Product  Item   `json:"product"`
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
}

// UnitPrice is the price captured when the line was added.
func (l Line) UnitPrice() int64 { return l.Product.Price.Int64() }

// LineTotal is unit price times quantity.
func (l Line) LineTotal() int64 { return l.UnitPrice() * int64(l.Quantity) }

// Store is the single writer for the basket. Construct one per request over
// the session-backed key-value store; it rehydrates on New and persists on
// every mutation.
type Store struct {
	kv    kvstore.Store
	lines []Line
}

// New loads the basket from kv. A missing or unparsable value yields an empty
// basket: a corrupted basket is not a fatal condition for a storefront.
func New(kv kvstore.Store) *Store {
	s := &Store{kv: kv}
	raw, ok := kv.Get(kvstore.KeyBasket)
	if !ok || raw == "" {
		return s
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return s
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		s.lines = append(s.lines, l)
	}
	return s
}

// Add puts quantity units of the product in the given color into the basket.
// Callers must pass quantity >= 1, a non-empty color, and a product with a
// valid id. If a line with the same (product id, color) already exists its
// quantity is increased by quantity; a different color makes a new line.
func (s *Store) Add(p shop.Product, quantity int, color string) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == p.ID && s.lines[i].Color == color {
			s.lines[i].Quantity += quantity
			s.persist()
			return
		}
	}
	s.lines = append(s.lines, Line{Product: snapshot(p, color), Quantity: quantity, Color: color})
	s.persist()
}

// snapshot trims a catalog product down to the line Item, keeping the photo
// of the chosen color.
func snapshot(p shop.Product, color string) Item {
	img := p.FirstImage()
	if pics := p.ImagesForColor(color); len(pics) > 0 {
		img = pics[0].Image
	}
	return Item{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Image:           img,
	}
}

// Remove deletes the lines matching productID. With no colors it removes every
// color variant of the product; with colors it removes only those variants.
// Removing an absent line is a no-op.
func (s *Store) Remove(productID int64, colors ...string) {
	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.Product.ID == productID && matchesColor(l.Color, colors) {
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == len(s.lines) {
		return
	}
	s.lines = kept
	s.persist()
}

// SetQuantity sets (not adds) the quantity of the matching lines. Values
// below 1 are clamped to 1: a quantity stepper must never delete a line, that
// is what Remove is for. Absent lines are left untouched.
func (s *Store) SetQuantity(productID int64, quantity int, colors ...string) {
	if quantity < 1 {
		quantity = 1
	}
	changed := false
	for i := range s.lines {
		if s.lines[i].Product.ID == productID && matchesColor(s.lines[i].Color, colors) {
			if s.lines[i].Quantity != quantity {
				s.lines[i].Quantity = quantity
				changed = true
			}
		}
	}
	if changed {
		s.persist()
	}
}

// Clear empties the basket and persists the empty state. Called once, after
// the remote system accepts the order.
func (s *Store) Clear() {
	s.lines = nil
	s.persist()
}

// Lines returns a copy of the basket rows in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// LineCount is the number of distinct (product, color) rows.
func (s *Store) LineCount() int { return len(s.lines) }

// ItemCount is the sum of quantities across all rows.
func (s *Store) ItemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice recomputes the basket total from the captured unit prices on
// every call; nothing is cached.
func (s *Store) TotalPrice() int64 {
	var total int64
	for _, l := range s.lines {
		total += l.LineTotal()
	}
	return total
}

func (s *Store) persist() {
	b, err := json.Marshal(s.lines)
	if err != nil || s.lines == nil {
		b = []byte("[]")
	}
	s.kv.Set(kvstore.KeyBasket, string(b))
}

func matchesColor(color string, colors []string) bool {
	if len(colors) == 0 {
		return true
	}
	for _, c := range colors {
		if c == color {
			return true
		}
	}
	return false
}

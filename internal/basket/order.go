package basket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/toyshop/web/internal/kvstore"
	"github.com/toyshop/web/internal/shop"
)

// ErrEmptyBasket is returned when an order snapshot is requested for a basket
// with no lines.
var ErrEmptyBasket = errors.New("basket: empty")

// Order is the frozen copy of basket contents captured at "place order" time.
// It lives under its own storage key until checkout completes, then it is
// discarded. The basket itself is not cleared here; that happens only after
// the remote system accepts the order.
type Order struct {
	ID         int64     `json:"id"`
	Items      []Line    `json:"items"`
	TotalPrice int64     `json:"totalPrice"`
	Date       time.Time `json:"date"`
}

// ProductItems flattens the snapshot into the shape the order endpoint wants.
func (o Order) ProductItems() []shop.OrderItem {
	items := make([]shop.OrderItem, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, shop.OrderItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Color:     l.Color,
		})
	}
	return items
}

// PlaceOrder snapshots the current basket under the pending-order key. The
// identifier is derived from now (unix milliseconds).
func (s *Store) PlaceOrder(now time.Time) (Order, error) {
	if len(s.lines) == 0 {
		return Order{}, ErrEmptyBasket
	}
	o := Order{
		ID:         now.UnixMilli(),
		Items:      s.Lines(),
		TotalPrice: s.TotalPrice(),
		Date:       now.UTC(),
	}
	pending := append(s.PendingOrders(), o)
	b, err := json.Marshal(pending)
	if err != nil {
		return Order{}, err
	}
	s.kv.Set(kvstore.KeyOrders, string(b))
	return o, nil
}

// PendingOrders returns the stored, not yet submitted snapshots. Absent or
// corrupt storage reads as none.
func (s *Store) PendingOrders() []Order {
	raw, ok := s.kv.Get(kvstore.KeyOrders)
	if !ok || raw == "" {
		return nil
	}
	var orders []Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil
	}
	return orders
}

// LatestPendingOrder returns the most recent snapshot, if any.
func (s *Store) LatestPendingOrder() (Order, bool) {
	orders := s.PendingOrders()
	if len(orders) == 0 {
		return Order{}, false
	}
	return orders[len(orders)-1], true
}

// PendingTotal sums the totals of all pending snapshots.
func (s *Store) PendingTotal() int64 {
	var total int64
	for _, o := range s.PendingOrders() {
		total += o.TotalPrice
	}
	return total
}

// ClearPendingOrders drops all snapshots, e.g. when the buyer returns to the
// basket page or after a completed checkout.
func (s *Store) ClearPendingOrders() {
	s.kv.Remove(kvstore.KeyOrders)
}

package shop

import (
	"context"
	"sync"
)

// Paginator walks the product listing as a lazy, restartable, forward-only
// sequence of pages, accumulating results as it goes. A page returning fewer
// rows than the page size ends the sequence. Reset restarts it for a new
// category and bumps a generation counter so a fetch still in flight for the
// old category is discarded instead of polluting the new list.
type Paginator struct {
	client   *Client
	pageSize int
	lang     string

	mu         sync.Mutex
	categoryID int64
	page       int
	hasMore    bool
	loading    bool
	gen        uint64
	items      []Product
	total      int
}

// NewPaginator returns a paginator positioned before the first page.
func NewPaginator(client *Client, pageSize int, lang string) *Paginator {
	if pageSize < 1 {
		pageSize = 8
	}
	return &Paginator{
		client:   client,
		pageSize: pageSize,
		lang:     lang,
		page:     1,
		hasMore:  true,
	}
}

// Reset switches to a new category: the accumulated list is cleared, the page
// counter returns to 1, and the sequence restarts.
func (p *Paginator) Reset(categoryID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.categoryID = categoryID
	p.page = 1
	p.hasMore = true
	p.loading = false
	p.items = nil
	p.total = 0
	p.gen++
}

// LoadMore fetches the next page and appends it to the accumulated list,
// returning how many rows were added. It is a no-op while a fetch is already
// in flight or once the sequence is exhausted; the loading guard, not request
// cancellation, is what prevents overlapping page fetches.
func (p *Paginator) LoadMore(ctx context.Context) (int, error) {
	p.mu.Lock()
	if !p.hasMore || p.loading {
		p.mu.Unlock()
		return 0, nil
	}
	p.loading = true
	gen := p.gen
	q := ProductQuery{
		Page:       p.page,
		PageSize:   p.pageSize,
		CategoryID: p.categoryID,
		Lang:       p.lang,
	}
	p.mu.Unlock()

	page, err := p.client.Products(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		// Reset happened while the request was in flight; this response no
		// longer applies.
		return 0, nil
	}
	p.loading = false
	if err != nil {
		// hasMore stays untouched: a failed fetch must not end the
		// sequence, the next scroll into the sentinel retries the page
		return 0, err
	}
	p.items = append(p.items, page.Results...)
	p.total = page.Count
	p.page++
	if len(page.Results) < p.pageSize {
		p.hasMore = false
	}
	return len(page.Results), nil
}

// Items returns a copy of everything accumulated so far.
func (p *Paginator) Items() []Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Product, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore reports whether another page may exist.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a fetch is in flight.
func (p *Paginator) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Page is the next page number to be fetched.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Total is the row count last reported by the API.
func (p *Paginator) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

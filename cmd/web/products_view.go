package main

import (
	"sync"

	mw "github.com/toyshop/web/internal/middleware"
	"github.com/toyshop/web/internal/shop"
)

// catalogPageSize matches the listing API page size.
const catalogPageSize = 8

// CatalogView is the /allproducts page payload. Items holds every product
// loaded so far for the session, so returning to the page restores the
// scroll position's worth of products.
type CatalogView struct {
	Lang       string
	Categories []shop.Category
	CategoryID int64
	Items      []shop.Product
	HasMore    bool
	Total      int
}

// CatalogPageView is the payload for one appended page fragment. Error holds
// a buyer-facing notice when the page fetch failed.
type CatalogPageView struct {
	Lang       string
	Items      []shop.Product
	HasMore    bool
	CategoryID int64
	Error      string
}

type catalogState struct {
	pager    *shop.Paginator
	category int64
	lang     string
}

// catalogSessions keeps one paginator per session so infinite scroll survives
// navigation. Past the cap, arbitrary entries are evicted down to half rather
// than tracking per-entry age.
var catalogSessions = struct {
	mu sync.Mutex
	m  map[string]*catalogState
}{m: map[string]*catalogState{}}

const catalogSessionCap = 10000

func catalogPager(sess *mw.SessionData, lang string, categoryID int64) *shop.Paginator {
	catalogSessions.mu.Lock()
	defer catalogSessions.mu.Unlock()
	if len(catalogSessions.m) > catalogSessionCap {
		for id := range catalogSessions.m {
			delete(catalogSessions.m, id)
			if len(catalogSessions.m) <= catalogSessionCap/2 {
				break
			}
		}
	}
	st, ok := catalogSessions.m[sess.ID]
	if !ok || st.lang != lang {
		st = &catalogState{
			pager:    shop.NewPaginator(shopClient, catalogPageSize, lang),
			lang:     lang,
			category: categoryID,
		}
		st.pager.Reset(categoryID)
		catalogSessions.m[sess.ID] = st
		return st.pager
	}
	if st.category != categoryID {
		st.category = categoryID
		st.pager.Reset(categoryID)
	}
	return st.pager
}

// migrateCatalogSession re-keys a session's catalog state after the session
// id is rotated at login, so the accumulated scroll position follows the
// buyer instead of being discarded.
func migrateCatalogSession(oldID, newID string) {
	catalogSessions.mu.Lock()
	defer catalogSessions.mu.Unlock()
	if st, ok := catalogSessions.m[oldID]; ok {
		delete(catalogSessions.m, oldID)
		catalogSessions.m[newID] = st
	}
}

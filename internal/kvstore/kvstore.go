// Package kvstore defines the device-local key-value contract the storefront
// persists its state to. Values are plain strings; writes are last-write-wins
// with no expiry. The web layer binds a Store to the signed session cookie so
// each browser carries its own copy, and tests use the in-memory form.
package kvstore

// Well-known storage keys. Every piece of device-local state the storefront
// keeps lives under one of these.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyBasket       = "basket"
	KeyOrders       = "orders"
	KeyLastPage     = "last_page"
	KeyUserData     = "userData"
	KeyFirstName    = "firstName"
	KeyLastName     = "lastName"
	KeyPhone        = "phone"
	KeyAddress      = "address"
	KeyLocale       = "hl"
)

// Store is a synchronous string key-value store. Get reports whether the key
// was present; Set and Remove never fail. Implementations are not required to
// be safe for concurrent use: callers scope a Store to a single request.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Memory is a map-backed Store.
type Memory struct {
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
}

func (m *Memory) Remove(key string) {
	delete(m.values, key)
}

// Len reports the number of stored keys.
func (m *Memory) Len() int { return len(m.values) }

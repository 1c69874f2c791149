package ledger

import (
	"sort"
	"sync"

	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/storage"
)

// PartitionKey maps a caller-supplied user id to the ledger partition key
func PartitionKey(userID string) string {
	if userID == "" {
		return models.DefaultUserID
	}
	return userID
}

// Router hands out exactly one Ledger per partition key for its lifetime
type Router struct {
	mu      sync.Mutex
	store   storage.Store
	opts    []Option
	ledgers map[string]*Ledger
}

// NewRouter creates a router whose ledgers persist to store and are built with opts
func NewRouter(store storage.Store, opts ...Option) *Router {
	return &Router{
		store:   store,
		opts:    opts,
		ledgers: make(map[string]*Ledger),
	}
}

// Resolve returns the ledger for userID, creating it on first use.
// Creation does no I/O; the ledger hydrates on its first operation.
func (r *Router) Resolve(userID string) *Ledger {
	key := PartitionKey(userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.ledgers[key]; ok {
		return l
	}
	l := New(key, r.store, r.opts...)
	r.ledgers[key] = l
	return l
}

// Keys returns the partition keys resolved so far, sorted
func (r *Router) Keys() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.ledgers))
	for k := range r.ledgers {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	sort.Strings(keys)
	return keys
}

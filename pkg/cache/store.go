package cache

import (
	"slices"
	"sync"

	"github.com/Sternrassler/color-cache/pkg/colors"
)

// Store holds resolved collections by query key. Implementations must be
// safe for concurrent use and must never replace a stored collection.
type Store interface {
	// Get returns the collection stored under key.
	Get(key QueryKey) (*colors.Collection, bool)

	// PutIfAbsent stores coll under key unless an entry already exists.
	// It returns the collection that is stored after the call and whether
	// coll was the one stored.
	PutIfAbsent(key QueryKey, coll *colors.Collection) (*colors.Collection, bool)

	// Len returns the number of stored entries.
	Len() int

	// Keys returns the stored keys in lexical order.
	Keys() []QueryKey
}

// MemoryStore is the in-process Store. The zero value is not usable; use
// NewMemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[QueryKey]*colors.Collection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[QueryKey]*colors.Collection),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(key QueryKey) (*colors.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.entries[key]
	return coll, ok
}

// PutIfAbsent implements Store.
func (s *MemoryStore) PutIfAbsent(key QueryKey, coll *colors.Collection) (*colors.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing, false
	}
	s.entries[key] = coll
	return coll, true
}

// Len implements Store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys implements Store.
func (s *MemoryStore) Keys() []QueryKey {
	s.mu.RLock()
	keys := make([]QueryKey, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

package handlers

import (
	"sync"

	"github.com/google/uuid"
)

// CartEntry is one product placed in a visitor's cart
type CartEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// CartStore keeps carts in memory, keyed by visitor session
type CartStore struct {
	mu    sync.Mutex
	carts map[string][]CartEntry
}

// NewCartStore creates an empty cart store
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]CartEntry)}
}

// Add appends a product to the session's cart
func (s *CartStore) Add(session string, p Product) CartEntry {
	entry := CartEntry{ID: uuid.New().String(), Title: p.Name, Price: p.Price}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[session] = append(s.carts[session], entry)
	return entry
}

// List returns a copy of the session's cart in insertion order
func (s *CartStore) List(session string) []CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[session]
	out := make([]CartEntry, len(entries))
	copy(out, entries)
	return out
}

// Remove deletes one entry from the session's cart and reports whether it existed
func (s *CartStore) Remove(session, entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[session]
	for i, e := range entries {
		if e.ID == entryID {
			s.carts[session] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/leofalp/jsonmend/providers/cache"
)

// Store is a simple in-memory cache. It uses an RWMutex to guard access and
// is efficient for read-heavy workloads.
type Store struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]cache.Entry),
		now:     time.Now,
	}
}

var (
	_ cache.Store  = (*Store)(nil)
	_ cache.Purger = (*Store)(nil)
)

// Get returns a copy of the value under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if entry.Expired(s.now()) {
		s.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if current, still := s.entries[key]; still && current.Expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return append([]byte(nil), entry.Value...), true, nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := cache.NewEntry(value, s.now(), ttl)

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Purge drops every entry and returns how many were removed.
func (s *Store) Purge(_ context.Context) (int, error) {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]cache.Entry)
	s.mu.Unlock()
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

package credentials

import (
	"slices"
	"sync"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a thread-safe in-memory implementation of the Store
// interface, used in tests and single-process deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	bundles map[string]Bundle
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bundles: make(map[string]Bundle),
	}
}

func (s *InMemoryStore) Load(profileID string) (Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bundles[profileID]), nil
}

func (s *InMemoryStore) Save(profileID string, bundle Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[profileID] = slices.Clone(bundle)
	return nil
}

func (s *InMemoryStore) Delete(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bundles, profileID)
	return nil
}

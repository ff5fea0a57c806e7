package memory

import (
	"bytes"
	"context"
	"sync"

	"pizzaworkflow/internal/core/ports"
)

var _ ports.StateStore = (*StateStore)(nil)

type StateStore struct {
	mu     sync.RWMutex
	stores map[string]map[string][]byte
}

func NewStateStore() *StateStore {
	return &StateStore{stores: make(map[string]map[string][]byte)}
}

func (s *StateStore) Get(_ context.Context, storeName, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.stores[storeName][key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

func (s *StateStore) Set(_ context.Context, storeName, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[storeName]
	if !ok {
		store = make(map[string][]byte)
		s.stores[storeName] = store
	}
	store[key] = bytes.Clone(value)
	return nil
}

func (s *StateStore) Delete(_ context.Context, storeName, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.stores[storeName], key)
	return nil
}

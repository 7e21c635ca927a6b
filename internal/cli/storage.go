package cli

import (
	"context"
	"sync"
)

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: make(map[string]string)}
}

func (s *memoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

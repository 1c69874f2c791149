package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps partitions in process memory. Data does not survive a restart;
// it backs tests and local runs without external services.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: make(map[string]map[string][]byte)}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, partition string, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(keys))
	entries := s.partitions[partition]
	for _, key := range keys {
		if value, ok := entries[key]; ok {
			out[key] = copyBytes(value)
		}
	}
	return out, nil
}

// PutAll implements Store
func (s *MemoryStore) PutAll(ctx context.Context, partition string, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = make(map[string][]byte, len(entries))
		s.partitions[partition] = p
	}
	for key, value := range entries {
		p[key] = copyBytes(value)
	}
	return nil
}

// DeleteAll implements Store
func (s *MemoryStore) DeleteAll(ctx context.Context, partition string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(p, key)
	}
	if len(p) == 0 {
		delete(s.partitions, partition)
	}
	return nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

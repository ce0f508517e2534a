package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store holds one cart per opaque session token: a product to requested
// quantity mapping. Carts are ephemeral; no durability is guaranteed and no
// two sessions share state.
type Store interface {
	Load(ctx context.Context, sessionID string) (map[uuid.UUID]int, error)
	Save(ctx context.Context, sessionID string, entries map[uuid.UUID]int) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store used by tests and single-node dev runs.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[uuid.UUID]int
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]map[uuid.UUID]int)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make(map[uuid.UUID]int, len(s.carts[sessionID]))
	for id, qty := range s.carts[sessionID] {
		entries[id] = qty
	}
	return entries, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, entries map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(entries) == 0 {
		delete(s.carts, sessionID)
		return nil
	}
	copied := make(map[uuid.UUID]int, len(entries))
	for id, qty := range entries {
		copied[id] = qty
	}
	s.carts[sessionID] = copied
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

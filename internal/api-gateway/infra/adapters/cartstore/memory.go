package cartstore

import (
	"context"
	"sync"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
)

var _ ports.CartStore = (*MemoryStore)(nil)

// MemoryStore keeps carts in a process-local map. Everything is lost on
// restart and nothing is ever evicted.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*entity.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*entity.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*entity.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cart.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cart.ID]; !ok {
		return entity.ErrNotFound
	}
	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.carts, id)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

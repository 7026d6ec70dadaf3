package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pizzeria-system/internal/models"
)

// MemoryStore keeps orders in a map. It is the default store when no
// database is configured. A single mutex serializes access; the order
// aggregate itself stays lock-free.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[int]*models.Order
	nextID int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[int]*models.Order),
		nextID: 1,
	}
}

// NextID returns the next monotonic order id
func (s *MemoryStore) NextID(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

// Save stores the order under its id
func (s *MemoryStore) Save(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID()] = order
	return nil
}

// Get returns the order with the given id
func (s *MemoryStore) Get(ctx context.Context, id int) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	return order, nil
}

// List returns all orders in ascending id order
func (s *MemoryStore) List(ctx context.Context) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	orders := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, s.orders[id])
	}
	return orders, nil
}

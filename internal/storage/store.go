package storage

import (
	"context"
	"errors"

	"pizzeria-system/internal/models"
)

// ErrOrderNotFound is returned when an order id does not exist
var ErrOrderNotFound = errors.New("order not found")

// OrderStore keeps orders by integer id. The core aggregate defines no
// locking; serializing concurrent access per order is the store's job.
type OrderStore interface {
	// NextID returns the next monotonic order id
	NextID(ctx context.Context) (int, error)
	// Save persists the order's current state
	Save(ctx context.Context, order *models.Order) error
	// Get returns the order with the given id or ErrOrderNotFound
	Get(ctx context.Context, id int) (*models.Order, error)
	// List returns all orders in ascending id order
	List(ctx context.Context) ([]*models.Order, error)
}

package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Orders are always written as complete snapshots.
type OrderRepository interface {
	// Save inserts the order or overwrites every field of the stored one.
	Save(ctx context.Context, aggregate *order.Order) error

	// Delete removes the order. Deleting a missing order returns an ObjectNotFoundError.
	Delete(ctx context.Context, id kernel.UUID) error

	// GetAll returns every stored order. It is used once, to rebuild the
	// in-memory state at startup.
	GetAll(ctx context.Context) ([]*order.Order, error)
}

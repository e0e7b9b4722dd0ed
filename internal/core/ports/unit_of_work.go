package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// VehicleRepository returns a repository bound to the current transaction,
	// or to the plain connection when none is active.
	VehicleRepository() VehicleRepository

	// DriverRepository returns a repository bound to the current transaction.
	DriverRepository() DriverRepository

	// OrderRepository returns a repository bound to the current transaction.
	OrderRepository() OrderRepository
}

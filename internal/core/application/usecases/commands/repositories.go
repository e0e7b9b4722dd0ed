// Package commands contains the operations that modify dispatch state.
// Every command is built through its constructor and executed by a handler
// that runs inside the Coordinator's critical section: exclusions, in-memory
// mutation, persistence, rollback on failure and event publication.
package commands

import (
	"context"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/ports"
)

// Unit of Work interfaces used by the coordinator. Every write goes through a
// single transaction covering all entities an operation touched.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// VehicleRepoFactory provides access to the vehicle repository within a transaction.
	VehicleRepoFactory interface {
		VehicleRepository() ports.VehicleRepository
	}

	// DriverRepoFactory provides access to the driver repository within a transaction.
	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// UoW spans orders, vehicles and drivers.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   err = uow.OrderRepository().Save(ctx, o)
	//   err = uow.VehicleRepository().Save(ctx, v)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		VehicleRepoFactory
		DriverRepoFactory
		OrderRepoFactory
	}

	// UoWFactory creates a fresh unit of work per operation.
	UoWFactory interface {
		Create() UoW
	}
)

// Publisher receives change events. Publish must not block.
type Publisher interface {
	Publish(e notifier.Event)
}

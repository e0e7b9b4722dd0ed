package ports

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/vehicle"
)

// VehicleRepository defines the persistence contract for vehicles.
type VehicleRepository interface {
	// Save inserts the vehicle or overwrites every field of the stored one.
	Save(ctx context.Context, aggregate *vehicle.Vehicle) error

	// GetAll returns every stored vehicle.
	GetAll(ctx context.Context) ([]*vehicle.Vehicle, error)
}

// DriverRepository defines the persistence contract for drivers.
type DriverRepository interface {
	// Save inserts the driver or overwrites every field of the stored one.
	Save(ctx context.Context, aggregate *driver.Driver) error

	// GetAll returns every stored driver.
	GetAll(ctx context.Context) ([]*driver.Driver, error)
}

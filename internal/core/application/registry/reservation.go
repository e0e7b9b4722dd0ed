package registry

import (
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
)

// Reservation is the token of a provisional hold on a vehicle and a driver.
// It is a value; all bookkeeping stays inside the Registry.
type Reservation struct {
	id        kernel.UUID
	vehicleID kernel.UUID
	driverID  kernel.UUID
}

func (r Reservation) ID() kernel.UUID {
	return r.id
}

func (r Reservation) VehicleID() kernel.UUID {
	return r.vehicleID
}

func (r Reservation) DriverID() kernel.UUID {
	return r.driverID
}

// reservationState remembers what a reservation changed so Abort can undo it.
type reservationState struct {
	token     Reservation
	vehicle   *vehicle.Vehicle
	driver    *driver.Driver
	committed bool
	orderID   kernel.UUID
}

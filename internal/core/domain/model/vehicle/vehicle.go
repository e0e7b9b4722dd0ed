package vehicle

import (
	"encoding/json"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrVehicleIsNotConstructed is returned when a Vehicle was not created via NewVehicle or RestoreVehicle.
var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Vehicle is a dispatchable vehicle. Its status and back-references change only
// through Occupy, Free and ChangeStatus, which the registry calls on behalf of
// the coordinator.
//
// Invariant: the driver and order references are set iff the status is InUse.
type Vehicle struct {
	id       kernel.UUID
	specs    Specs
	status   Status
	driverID kernel.UUID
	orderID  kernel.UUID
	version  int64
	guard    guard.ConstructorGuard
}

// NewVehicle registers an Available vehicle at version 1.
func NewVehicle(id kernel.UUID, specs Specs) (*Vehicle, error) {
	v := &Vehicle{
		status:  Available,
		version: 1,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setSpecs(specs),
	); err != nil {
		return nil, err
	}

	return v, nil
}

// RestoreVehicle reconstructs a Vehicle from persistent storage.
func RestoreVehicle(
	id kernel.UUID,
	specs Specs,
	status Status,
	driverID kernel.UUID,
	orderID kernel.UUID,
	version int64,
) (*Vehicle, error) {
	v := &Vehicle{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setSpecs(specs),
		v.setStatus(status, driverID, orderID),
		v.setVersion(version),
	); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrVehicleIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

func (v *Vehicle) ID() kernel.UUID {
	return v.id
}

func (v *Vehicle) Specs() Specs {
	return v.specs
}

func (v *Vehicle) Status() Status {
	return v.status
}

// AssignedDriver returns the driver using the vehicle, or the zero UUID.
func (v *Vehicle) AssignedDriver() kernel.UUID {
	return v.driverID
}

// ActiveOrder returns the order the vehicle serves, or the zero UUID.
func (v *Vehicle) ActiveOrder() kernel.UUID {
	return v.orderID
}

func (v *Vehicle) Version() int64 {
	return v.version
}

func (v *Vehicle) IsAvailable() bool {
	return v.status == Available
}

// Occupy marks an Available vehicle InUse by driverID for orderID.
func (v *Vehicle) Occupy(driverID, orderID kernel.UUID) error {
	if err := errors.Join(driverID.Validate(), orderID.Validate()); err != nil {
		return err
	}
	if !v.IsAvailable() {
		return errs.NewResourceUnavailableError("vehicle", v.id, v.status.String())
	}

	v.status = InUse
	v.driverID = driverID
	v.orderID = orderID
	v.version++
	return nil
}

// Free returns an InUse vehicle to Available. It reports false and changes
// nothing when the vehicle is not InUse.
func (v *Vehicle) Free() bool {
	if v.status != InUse {
		return false
	}

	v.status = Available
	v.driverID = kernel.UUID{}
	v.orderID = kernel.UUID{}
	v.version++
	return true
}

// ChangeStatus applies an administrative status. A vehicle serving an order
// must be freed through its order first.
func (v *Vehicle) ChangeStatus(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !target.IsAdministrative() {
		return errs.NewConflictError("vehicle becomes in-use only through an assignment")
	}
	if v.status == InUse {
		return errs.NewConflictError("vehicle " + v.id.String() + " is serving order " + v.orderID.String())
	}
	if v.status == target {
		return nil
	}

	v.status = target
	v.version++
	return nil
}

// Clone returns an independent copy.
func (v *Vehicle) Clone() *Vehicle {
	c := *v
	return &c
}

type vehicleJSON struct {
	ID             kernel.UUID `json:"id"`
	Status         Status      `json:"status"`
	AssignedDriver kernel.UUID `json:"assignedDriver"`
	ActiveOrder    kernel.UUID `json:"activeOrder"`
	Version        int64       `json:"version"`
	Specs
}

func (v *Vehicle) MarshalJSON() ([]byte, error) {
	return json.Marshal(vehicleJSON{
		ID:             v.id,
		Status:         v.status,
		AssignedDriver: v.driverID,
		ActiveOrder:    v.orderID,
		Version:        v.version,
		Specs:          v.specs,
	})
}

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setSpecs(specs Specs) error {
	specs = specs.Normalize()
	if err := specs.Validate(); err != nil {
		return err
	}
	v.specs = specs
	return nil
}

func (v *Vehicle) setStatus(status Status, driverID, orderID kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	inUse := status == InUse
	if driverID.IsZero() == inUse || orderID.IsZero() == inUse {
		return errs.NewValueIsInvalidError("assigned driver and active order must be set iff the vehicle is in-use")
	}
	v.status = status
	v.driverID = driverID
	v.orderID = orderID
	return nil
}

func (v *Vehicle) setVersion(version int64) error {
	if version < 1 {
		return errs.NewVersionIsInvalidError("version must be positive")
	}
	v.version = version
	return nil
}

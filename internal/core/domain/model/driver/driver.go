package driver

import (
	"encoding/json"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrDriverIsNotConstructed is returned when a Driver was not created via NewDriver or RestoreDriver.
var ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")

// Driver is a person who can be dispatched with a vehicle. The driver id is
// also the actor id the driver presents when advancing their orders.
//
// Invariant: the vehicle and order references are set iff the status is OnDuty.
type Driver struct {
	id        kernel.UUID
	profile   Profile
	status    Status
	vehicleID kernel.UUID
	orderID   kernel.UUID
	version   int64
	guard     guard.ConstructorGuard
}

// NewDriver registers an Available driver at version 1.
func NewDriver(id kernel.UUID, profile Profile) (*Driver, error) {
	d := &Driver{
		status:  Available,
		version: 1,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setProfile(profile),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver reconstructs a Driver from persistent storage.
func RestoreDriver(
	id kernel.UUID,
	profile Profile,
	status Status,
	vehicleID kernel.UUID,
	orderID kernel.UUID,
	version int64,
) (*Driver, error) {
	d := &Driver{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setProfile(profile),
		d.setStatus(status, vehicleID, orderID),
		d.setVersion(version),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Profile() Profile {
	return d.profile
}

func (d *Driver) Status() Status {
	return d.status
}

// CurrentVehicle returns the vehicle the driver is on, or the zero UUID.
func (d *Driver) CurrentVehicle() kernel.UUID {
	return d.vehicleID
}

// ActiveOrder returns the order the driver serves, or the zero UUID.
func (d *Driver) ActiveOrder() kernel.UUID {
	return d.orderID
}

func (d *Driver) Version() int64 {
	return d.version
}

func (d *Driver) IsAvailable() bool {
	return d.status == Available
}

// Occupy puts an Available driver OnDuty with vehicleID for orderID.
func (d *Driver) Occupy(vehicleID, orderID kernel.UUID) error {
	if err := errors.Join(vehicleID.Validate(), orderID.Validate()); err != nil {
		return err
	}
	if !d.IsAvailable() {
		return errs.NewResourceUnavailableError("driver", d.id, d.status.String())
	}

	d.status = OnDuty
	d.vehicleID = vehicleID
	d.orderID = orderID
	d.version++
	return nil
}

// Free returns an OnDuty driver to Available. It reports false and changes
// nothing when the driver is not OnDuty.
func (d *Driver) Free() bool {
	if d.status != OnDuty {
		return false
	}

	d.status = Available
	d.vehicleID = kernel.UUID{}
	d.orderID = kernel.UUID{}
	d.version++
	return true
}

// ChangeStatus applies an administrative status to a driver who is not on duty.
func (d *Driver) ChangeStatus(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !target.IsAdministrative() {
		return errs.NewConflictError("driver goes on-duty only through an assignment")
	}
	if d.status == OnDuty {
		return errs.NewConflictError("driver " + d.id.String() + " is serving order " + d.orderID.String())
	}
	if d.status == target {
		return nil
	}

	d.status = target
	d.version++
	return nil
}

func (d *Driver) Clone() *Driver {
	c := *d
	return &c
}

type driverJSON struct {
	ID             kernel.UUID `json:"id"`
	Status         Status      `json:"status"`
	CurrentVehicle kernel.UUID `json:"currentVehicle"`
	ActiveOrder    kernel.UUID `json:"activeOrder"`
	Version        int64       `json:"version"`
	Profile
}

func (d *Driver) MarshalJSON() ([]byte, error) {
	return json.Marshal(driverJSON{
		ID:             d.id,
		Status:         d.status,
		CurrentVehicle: d.vehicleID,
		ActiveOrder:    d.orderID,
		Version:        d.version,
		Profile:        d.profile,
	})
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setProfile(profile Profile) error {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return err
	}
	d.profile = profile
	return nil
}

func (d *Driver) setStatus(status Status, vehicleID, orderID kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	onDuty := status == OnDuty
	if vehicleID.IsZero() == onDuty || orderID.IsZero() == onDuty {
		return errs.NewValueIsInvalidError("current vehicle and active order must be set iff the driver is on-duty")
	}
	d.status = status
	d.vehicleID = vehicleID
	d.orderID = orderID
	return nil
}

func (d *Driver) setVersion(version int64) error {
	if version < 1 {
		return errs.NewVersionIsInvalidError("version must be positive")
	}
	d.version = version
	return nil
}

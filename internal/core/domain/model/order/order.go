package order

import (
	"encoding/json"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of a delivery request. It owns its lifecycle
// status and the weak references to the vehicle and driver serving it.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and valid details
//   - Vehicle and driver references are both set iff the status is Assigned or InProgress
//   - Status changes follow the edges defined by Status
//   - Version grows by one with every state change
//
// References are plain identifiers resolved through the registry. Terminal
// orders are history and reject every mutation.
type Order struct {
	id        kernel.UUID
	details   Details
	status    Status
	vehicleID kernel.UUID
	driverID  kernel.UUID
	version   int64
	guard     guard.ConstructorGuard
}

// NewOrder creates a Pending order with no assignment and version 1.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
//	    Customer:        order.Customer{Name: "ACME"},
//	    PickupAddress:   "Depot 4",
//	    DeliveryAddress: "12 Harbour St",
//	    Cargo:           order.Cargo{Weight: 120, Quantity: 3},
//	})
func NewOrder(id kernel.UUID, details Details) (*Order, error) {
	o := &Order{
		status:  Pending,
		version: 1,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDetails(details),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistent storage. Zero vehicleID and
// driverID mean the order is unassigned.
func RestoreOrder(
	id kernel.UUID,
	details Details,
	status Status,
	vehicleID kernel.UUID,
	driverID kernel.UUID,
	version int64,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDetails(details),
		o.setStatus(status, vehicleID, driverID),
		o.setVersion(version),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Details() Details {
	return o.details
}

func (o *Order) Status() Status {
	return o.status
}

// AssignedVehicle returns the vehicle id, or the zero UUID when unassigned.
func (o *Order) AssignedVehicle() kernel.UUID {
	return o.vehicleID
}

// AssignedDriver returns the driver id, or the zero UUID when unassigned.
func (o *Order) AssignedDriver() kernel.UUID {
	return o.driverID
}

// HasAssignment reports whether the order references a vehicle and a driver.
func (o *Order) HasAssignment() bool {
	return !o.vehicleID.IsZero() && !o.driverID.IsZero()
}

// Version is the number of state changes the order has gone through, starting at 1.
// It doubles as the sequence number of the order's change events.
func (o *Order) Version() int64 {
	return o.version
}

// Assign moves a Pending order to Assigned and records both references.
func (o *Order) Assign(vehicleID, driverID kernel.UUID) error {
	if err := errors.Join(vehicleID.Validate(), driverID.Validate()); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(Assigned); err != nil {
		return err
	}

	o.status = Assigned
	o.vehicleID = vehicleID
	o.driverID = driverID
	o.version++
	return nil
}

// Advance moves the order along a non-assignment edge. Entering a terminal
// status clears the references; releasing the resources is up to the caller,
// which must read them before calling Advance.
//
// Assigned is never reachable through Advance because it needs resources;
// asking for it is a Conflict, not an InvalidTransition.
func (o *Order) Advance(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(target); err != nil {
		return err
	}
	if target == Assigned {
		return errs.NewConflictError("an order is assigned together with a vehicle and a driver")
	}

	o.status = target
	if target.IsTerminal() {
		o.vehicleID = kernel.UUID{}
		o.driverID = kernel.UUID{}
	}
	o.version++
	return nil
}

// Unassign returns an active order to Pending and clears both references.
func (o *Order) Unassign() error {
	if !o.status.IsActive() {
		return errs.NewConflictError("order " + o.id.String() + " is " + o.status.String() + ", not assigned")
	}

	o.status = Pending
	o.vehicleID = kernel.UUID{}
	o.driverID = kernel.UUID{}
	o.version++
	return nil
}

// Clone returns an independent copy. The registry hands out clones so callers
// never share mutable state with it.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

type orderJSON struct {
	ID              kernel.UUID `json:"id"`
	Status          Status      `json:"status"`
	AssignedVehicle kernel.UUID `json:"assignedVehicle"`
	AssignedDriver  kernel.UUID `json:"assignedDriver"`
	Version         int64       `json:"version"`
	Details
}

// MarshalJSON renders the full order snapshot.
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:              o.id,
		Status:          o.status,
		AssignedVehicle: o.vehicleID,
		AssignedDriver:  o.driverID,
		Version:         o.version,
		Details:         o.details,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDetails(details Details) error {
	details = details.Normalize()
	if err := details.Validate(); err != nil {
		return err
	}
	o.details = details
	return nil
}

func (o *Order) setStatus(status Status, vehicleID, driverID kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if vehicleID.IsZero() != driverID.IsZero() {
		return errs.NewValueIsInvalidError("assignment must reference both a vehicle and a driver")
	}
	if err := status.ValidateCanHaveAssignment(!vehicleID.IsZero()); err != nil {
		return err
	}
	o.status = status
	o.vehicleID = vehicleID
	o.driverID = driverID
	return nil
}

func (o *Order) setVersion(version int64) error {
	if version < 1 {
		return errs.NewVersionIsInvalidError("version must be positive")
	}
	o.version = version
	return nil
}

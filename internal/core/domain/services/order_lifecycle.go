package services

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrReservationRequired is returned when an order is assigned without a reservation in hand.
var ErrReservationRequired = errs.NewConflictError("assignment requires a vehicle and driver reservation")

// Hold is a reservation of a vehicle and a driver that has not yet been
// attached to an order. The registry's reservation token satisfies it.
type Hold interface {
	VehicleID() kernel.UUID
	DriverID() kernel.UUID
}

// OrderLifecycle decides who may move an order along which edge and applies
// the move. It never touches vehicles or drivers; releasing them after a
// terminal transition is the coordinator's job.
//
// Checks run in a fixed order so that the same request always fails the same way:
//   - the order and actor are constructed
//   - the edge exists (InvalidTransition) or the state permits the operation (Conflict)
//   - the actor's role permits it (Forbidden)
//
// Authorization rules:
//   - assign, unassign, cancel, delete: dispatcher or admin
//   - start (in-progress), complete: the assigned driver or an admin
type OrderLifecycle struct{}

func NewOrderLifecycle() OrderLifecycle {
	return OrderLifecycle{}
}

// Authorize validates the edge from the order's current status to target and
// the actor's right to take it, without changing the order.
func (l OrderLifecycle) Authorize(o *order.Order, target order.Status, actor kernel.Actor) error {
	if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if err := o.Status().ValidateTransition(target); err != nil {
		return err
	}

	switch target {
	case order.Assigned:
		if !actor.Role().CanDispatch() {
			return errs.NewForbiddenError(actor.Role().String(), "assign orders")
		}
	case order.InProgress, order.Completed:
		if !actor.IsAdmin() && !actor.IsDriver(o.AssignedDriver()) {
			return errs.NewForbiddenError(actor.Role().String(), "move order to "+target.String()+" unless assigned to it")
		}
	case order.Cancelled:
		if !actor.Role().CanDispatch() {
			return errs.NewForbiddenError(actor.Role().String(), "cancel orders")
		}
	}
	return nil
}

// Assign attaches a held vehicle and driver to a pending order.
func (l OrderLifecycle) Assign(o *order.Order, hold Hold, actor kernel.Actor) error {
	if hold == nil {
		return ErrReservationRequired
	}
	if err := l.Authorize(o, order.Assigned, actor); err != nil {
		return err
	}
	return o.Assign(hold.VehicleID(), hold.DriverID())
}

// Advance moves the order to target. Assigned cannot be reached this way; a
// legal request for it is a Conflict.
func (l OrderLifecycle) Advance(o *order.Order, target order.Status, actor kernel.Actor) error {
	if target == order.Assigned {
		if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
			return err
		}
		if err := o.Status().ValidateTransition(target); err != nil {
			return err
		}
		return errs.NewConflictError("use assign to attach a vehicle and a driver")
	}
	if err := l.Authorize(o, target, actor); err != nil {
		return err
	}
	return o.Advance(target)
}

// Unassign returns an active order to pending.
func (l OrderLifecycle) Unassign(o *order.Order, actor kernel.Actor) error {
	if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
		return err
	}
	if !o.Status().IsActive() {
		return errs.NewConflictError("only assigned or in-progress orders can be unassigned, order is " + o.Status().String())
	}
	if !actor.Role().CanDispatch() {
		return errs.NewForbiddenError(actor.Role().String(), "unassign orders")
	}
	return o.Unassign()
}

// AuthorizeDelete permits dispatchers and admins to delete orders that hold no
// resources: terminal ones and pending ones that were never or are no longer assigned.
func (l OrderLifecycle) AuthorizeDelete(o *order.Order, actor kernel.Actor) error {
	if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
		return err
	}
	if o.Status().IsActive() {
		return errs.NewConflictError("order is " + o.Status().String() + ", unassign or cancel it before deleting")
	}
	if !actor.Role().CanDispatch() {
		return errs.NewForbiddenError(actor.Role().String(), "delete orders")
	}
	return nil
}

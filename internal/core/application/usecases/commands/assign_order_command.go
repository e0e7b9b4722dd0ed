package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignOrderCommandIsNotConstructed = errors.New(
	"AssignOrderCommand must be created via NewAssignOrderCommand constructor",
)

// AssignOrderCommand requests that a pending order be served by a vehicle and
// a driver.
//
// Example:
//
//	cmd, err := NewAssignOrderCommand(orderID, vehicleID, driverID, dispatcher)
//	if err != nil {
//	    return fmt.Errorf("invalid assignment: %w", err)
//	}
//
//	assigned, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrResourceUnavailable) {
//	    // pick another vehicle or driver
//	}
type AssignOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	vehicleID kernel.UUID
	driverID  kernel.UUID
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewAssignOrderCommand(orderID, vehicleID, driverID kernel.UUID, actor kernel.Actor) (AssignOrderCommand, error) {
	cmd := AssignOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setID(&cmd.vehicleID, vehicleID),
		setID(&cmd.driverID, driverID),
		setActor(&cmd.actor, actor),
	); err != nil {
		return AssignOrderCommand{}, err
	}

	return cmd, nil
}

func (c AssignOrderCommand) Validate() error {
	return c.guard.Validate(ErrAssignOrderCommandIsNotConstructed)
}

func (c AssignOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignOrderCommand) VehicleID() kernel.UUID {
	return c.vehicleID
}

func (c AssignOrderCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c AssignOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func setID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func setActor(dst *kernel.Actor, actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	*dst = actor
	return nil
}

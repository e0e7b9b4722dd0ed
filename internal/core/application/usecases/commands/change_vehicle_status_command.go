package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/guard"
)

var ErrChangeVehicleStatusCommandIsNotConstructed = errors.New(
	"ChangeVehicleStatusCommand must be created via NewChangeVehicleStatusCommand constructor",
)

// ChangeVehicleStatusCommand sets an administrative status (available,
// maintenance, out-of-service) on a vehicle that is not serving an order.
type ChangeVehicleStatusCommand struct { //nolint:recvcheck //using for validation
	vehicleID kernel.UUID
	status    vehicle.Status
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewChangeVehicleStatusCommand(
	vehicleID kernel.UUID,
	status vehicle.Status,
	actor kernel.Actor,
) (ChangeVehicleStatusCommand, error) {
	cmd := ChangeVehicleStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.vehicleID, vehicleID),
		cmd.setStatus(status),
		setActor(&cmd.actor, actor),
	); err != nil {
		return ChangeVehicleStatusCommand{}, err
	}

	return cmd, nil
}

func (c ChangeVehicleStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeVehicleStatusCommandIsNotConstructed)
}

func (c ChangeVehicleStatusCommand) VehicleID() kernel.UUID {
	return c.vehicleID
}

func (c ChangeVehicleStatusCommand) Status() vehicle.Status {
	return c.status
}

func (c ChangeVehicleStatusCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *ChangeVehicleStatusCommand) setStatus(status vehicle.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}

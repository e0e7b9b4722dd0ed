package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterVehicleCommandIsNotConstructed = errors.New(
	"RegisterVehicleCommand must be created via NewRegisterVehicleCommand constructor",
)

// RegisterVehicleCommand adds a vehicle to the fleet. New vehicles are available.
type RegisterVehicleCommand struct { //nolint:recvcheck //using for validation
	vehicleID kernel.UUID
	specs     vehicle.Specs
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewRegisterVehicleCommand(vehicleID kernel.UUID, specs vehicle.Specs, actor kernel.Actor) (RegisterVehicleCommand, error) {
	cmd := RegisterVehicleCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.vehicleID, vehicleID),
		cmd.setSpecs(specs),
		setActor(&cmd.actor, actor),
	); err != nil {
		return RegisterVehicleCommand{}, err
	}

	return cmd, nil
}

func (c RegisterVehicleCommand) Validate() error {
	return c.guard.Validate(ErrRegisterVehicleCommandIsNotConstructed)
}

func (c RegisterVehicleCommand) VehicleID() kernel.UUID {
	return c.vehicleID
}

func (c RegisterVehicleCommand) Specs() vehicle.Specs {
	return c.specs
}

func (c RegisterVehicleCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *RegisterVehicleCommand) setSpecs(specs vehicle.Specs) error {
	specs = specs.Normalize()
	if err := specs.Validate(); err != nil {
		return err
	}

	c.specs = specs
	return nil
}

package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

const opRegisterVehicle = "register_vehicle"

// RegisterVehicleCommandHandler adds a vehicle to the Registry and the store.
// Plate numbers are unique across the fleet.
type RegisterVehicleCommandHandler struct {
	coordinator *Coordinator
}

func NewRegisterVehicleCommandHandler(coordinator *Coordinator) RegisterVehicleCommandHandler {
	return RegisterVehicleCommandHandler{
		coordinator: coordinator,
	}
}

func (h RegisterVehicleCommandHandler) Handle(
	ctx context.Context,
	cmd RegisterVehicleCommand,
) (_ *vehicle.Vehicle, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opRegisterVehicle, time.Now(), &err)

	if !cmd.Actor().Role().CanDispatch() {
		return nil, errs.NewForbiddenError(cmd.Actor().Role().String(), "register vehicles")
	}

	created, err := vehicle.NewVehicle(cmd.VehicleID(), cmd.Specs())
	if err != nil {
		return nil, err
	}

	lease, err := c.locks.Acquire(ctx, exclusion.Key("vehicle", created.ID()))
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	if err = c.registry.AddVehicle(created); err != nil {
		return nil, err
	}

	if err = c.persist(ctx, opRegisterVehicle, snapshots{vehicles: []*vehicle.Vehicle{created}}); err != nil {
		c.registry.RemoveVehicle(created.ID())
		c.rolledBack(ctx, opRegisterVehicle, created.ID(), err)
		return nil, err
	}

	c.publishVehicle(created, nil)

	return created, nil
}

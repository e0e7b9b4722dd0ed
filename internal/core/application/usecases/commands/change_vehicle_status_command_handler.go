package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

const opChangeVehicleStatus = "change_vehicle_status"

// ChangeVehicleStatusCommandHandler applies administrative vehicle statuses.
// A vehicle serving an order, or being reserved for one, is a Conflict.
type ChangeVehicleStatusCommandHandler struct {
	coordinator *Coordinator
}

func NewChangeVehicleStatusCommandHandler(coordinator *Coordinator) ChangeVehicleStatusCommandHandler {
	return ChangeVehicleStatusCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the vehicle. Setting the status it already has changes
// nothing and publishes nothing.
func (h ChangeVehicleStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeVehicleStatusCommand,
) (_ *vehicle.Vehicle, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opChangeVehicleStatus, time.Now(), &err)

	if !cmd.Actor().Role().CanDispatch() {
		return nil, errs.NewForbiddenError(cmd.Actor().Role().String(), "change vehicle status")
	}

	lease, err := c.locks.Acquire(ctx, exclusion.Key("vehicle", cmd.VehicleID()))
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	before, err := c.registry.Vehicle(cmd.VehicleID())
	if err != nil {
		return nil, err
	}
	updated, err := c.registry.SetVehicleStatus(cmd.VehicleID(), cmd.Status())
	if err != nil {
		return nil, err
	}
	if updated.Version() == before.Version() {
		return updated, nil
	}

	if err = c.persist(ctx, opChangeVehicleStatus, snapshots{vehicles: []*vehicle.Vehicle{updated}}); err != nil {
		c.registry.RestoreVehicle(before)
		c.rolledBack(ctx, opChangeVehicleStatus, updated.ID(), err)
		return nil, err
	}

	c.publishVehicle(updated, nil)

	return updated, nil
}

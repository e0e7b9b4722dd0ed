package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

const opChangeDriverStatus = "change_driver_status"

// ChangeDriverStatusCommandHandler applies administrative driver statuses.
// Dispatchers and admins may change any driver; a driver only themself.
type ChangeDriverStatusCommandHandler struct {
	coordinator *Coordinator
}

func NewChangeDriverStatusCommandHandler(coordinator *Coordinator) ChangeDriverStatusCommandHandler {
	return ChangeDriverStatusCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the driver. Setting the status it already has changes
// nothing and publishes nothing.
func (h ChangeDriverStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeDriverStatusCommand,
) (_ *driver.Driver, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opChangeDriverStatus, time.Now(), &err)

	actor := cmd.Actor()
	if !actor.Role().CanDispatch() && !actor.IsDriver(cmd.DriverID()) {
		return nil, errs.NewForbiddenError(actor.Role().String(), "change another driver's status")
	}

	lease, err := c.locks.Acquire(ctx, exclusion.Key("driver", cmd.DriverID()))
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	before, err := c.registry.Driver(cmd.DriverID())
	if err != nil {
		return nil, err
	}
	updated, err := c.registry.SetDriverStatus(cmd.DriverID(), cmd.Status())
	if err != nil {
		return nil, err
	}
	if updated.Version() == before.Version() {
		return updated, nil
	}

	if err = c.persist(ctx, opChangeDriverStatus, snapshots{drivers: []*driver.Driver{updated}}); err != nil {
		c.registry.RestoreDriver(before)
		c.rolledBack(ctx, opChangeDriverStatus, updated.ID(), err)
		return nil, err
	}

	c.publishDriver(updated)

	return updated, nil
}

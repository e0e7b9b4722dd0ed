package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

const opRegisterDriver = "register_driver"

// RegisterDriverCommandHandler adds a driver to the Registry and the store.
// Licence numbers are unique across the roster.
type RegisterDriverCommandHandler struct {
	coordinator *Coordinator
}

func NewRegisterDriverCommandHandler(coordinator *Coordinator) RegisterDriverCommandHandler {
	return RegisterDriverCommandHandler{
		coordinator: coordinator,
	}
}

func (h RegisterDriverCommandHandler) Handle(
	ctx context.Context,
	cmd RegisterDriverCommand,
) (_ *driver.Driver, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opRegisterDriver, time.Now(), &err)

	if !cmd.Actor().Role().CanDispatch() {
		return nil, errs.NewForbiddenError(cmd.Actor().Role().String(), "register drivers")
	}

	created, err := driver.NewDriver(cmd.DriverID(), cmd.Profile())
	if err != nil {
		return nil, err
	}

	lease, err := c.locks.Acquire(ctx, exclusion.Key("driver", created.ID()))
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	if err = c.registry.AddDriver(created); err != nil {
		return nil, err
	}

	if err = c.persist(ctx, opRegisterDriver, snapshots{drivers: []*driver.Driver{created}}); err != nil {
		c.registry.RemoveDriver(created.ID())
		c.rolledBack(ctx, opRegisterDriver, created.ID(), err)
		return nil, err
	}

	c.publishDriver(created)

	return created, nil
}

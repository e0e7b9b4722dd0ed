package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/exclusion"
)

const opAssign = "assign"

// AssignOrderCommandHandler attaches a vehicle and a driver to a pending order
// as one transaction.
//
// Steps, under the exclusions of the order, the vehicle and the driver:
//   - the order may move to assigned and the actor may dispatch it
//   - both resources are reserved (all or nothing)
//   - the order transitions to assigned and the reservation is committed
//   - order, vehicle and driver are written in one unit of work
//
// A failed write undoes the order transition first and then aborts the
// reservation, so the post-state equals the pre-state exactly.
type AssignOrderCommandHandler struct {
	coordinator *Coordinator
}

func NewAssignOrderCommandHandler(coordinator *Coordinator) AssignOrderCommandHandler {
	return AssignOrderCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the assigned order.
func (h AssignOrderCommandHandler) Handle(ctx context.Context, cmd AssignOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opAssign, time.Now(), &err)

	lease, current, err := c.lockOrder(ctx, cmd.OrderID(),
		exclusion.Key("vehicle", cmd.VehicleID()),
		exclusion.Key("driver", cmd.DriverID()),
	)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	if err = c.lifecycle.Authorize(current, order.Assigned, cmd.Actor()); err != nil {
		return nil, err
	}

	token, err := c.registry.Reserve(cmd.VehicleID(), cmd.DriverID())
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err = c.lifecycle.Assign(next, token, cmd.Actor()); err != nil {
		c.registry.Abort(token)
		return nil, err
	}
	if err = c.registry.Commit(token, next.ID()); err != nil {
		c.registry.Abort(token)
		return nil, err
	}
	c.orders.Put(next)

	v, err := c.registry.Vehicle(cmd.VehicleID())
	if err != nil {
		c.orders.Put(current)
		c.registry.Abort(token)
		return nil, err
	}
	d, err := c.registry.Driver(cmd.DriverID())
	if err != nil {
		c.orders.Put(current)
		c.registry.Abort(token)
		return nil, err
	}

	if err = c.persist(ctx, opAssign, snapshots{
		orders:   []*order.Order{next},
		vehicles: []*vehicle.Vehicle{v},
		drivers:  []*driver.Driver{d},
	}); err != nil {
		c.orders.Put(current)
		c.registry.Abort(token)
		c.rolledBack(ctx, opAssign, next.ID(), err)
		return nil, err
	}

	c.registry.Settle(token)
	c.publishOrder(next, current)
	c.publishVehicle(v, nil)
	c.publishDriver(d)

	return next, nil
}

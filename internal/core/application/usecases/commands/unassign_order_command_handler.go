package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
)

const opUnassign = "unassign"

// UnassignOrderCommandHandler releases the vehicle and driver of an active
// order and resets it to pending, as one transaction with the same rollback
// discipline as assignment.
type UnassignOrderCommandHandler struct {
	coordinator *Coordinator
}

func NewUnassignOrderCommandHandler(coordinator *Coordinator) UnassignOrderCommandHandler {
	return UnassignOrderCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the order, now pending.
func (h UnassignOrderCommandHandler) Handle(ctx context.Context, cmd UnassignOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opUnassign, time.Now(), &err)

	lease, current, err := c.lockOrder(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	next := current.Clone()
	if err = c.lifecycle.Unassign(next, cmd.Actor()); err != nil {
		return nil, err
	}

	freed, err := c.releaseResources(current)
	if err != nil {
		return nil, err
	}
	c.orders.Put(next)

	if err = c.persist(ctx, opUnassign, snapshots{
		orders:   []*order.Order{next},
		vehicles: []*vehicle.Vehicle{freed.vehicle},
		drivers:  []*driver.Driver{freed.driver},
	}); err != nil {
		c.orders.Put(current)
		freed.undo()
		c.rolledBack(ctx, opUnassign, next.ID(), err)
		return nil, err
	}

	c.publishOrder(next, current)
	freed.publish()

	return next, nil
}

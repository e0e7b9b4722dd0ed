package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
)

const opAdvance = "advance"

// AdvanceOrderCommandHandler moves an order along its lifecycle. Reaching a
// terminal status from an active one releases the vehicle and the driver in
// the same transaction.
type AdvanceOrderCommandHandler struct {
	coordinator *Coordinator
}

func NewAdvanceOrderCommandHandler(coordinator *Coordinator) AdvanceOrderCommandHandler {
	return AdvanceOrderCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the order in its new status.
func (h AdvanceOrderCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opAdvance, time.Now(), &err)

	lease, current, err := c.lockOrder(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	next := current.Clone()
	if err = c.lifecycle.Advance(next, cmd.Status(), cmd.Actor()); err != nil {
		return nil, err
	}

	write := snapshots{orders: []*order.Order{next}}

	var freed *release
	if current.HasAssignment() && next.Status().IsTerminal() {
		if freed, err = c.releaseResources(current); err != nil {
			return nil, err
		}
		write.vehicles = []*vehicle.Vehicle{freed.vehicle}
		write.drivers = []*driver.Driver{freed.driver}
	}
	c.orders.Put(next)

	if err = c.persist(ctx, opAdvance, write); err != nil {
		c.orders.Put(current)
		if freed != nil {
			freed.undo()
		}
		c.rolledBack(ctx, opAdvance, next.ID(), err)
		return nil, err
	}

	c.publishOrder(next, current)
	if freed != nil {
		freed.publish()
	}

	return next, nil
}

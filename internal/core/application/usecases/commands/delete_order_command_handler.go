package commands

import (
	"context"
	"time"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/domain/model/kernel"
)

const opDelete = "delete"

// DeleteOrderCommandHandler removes an order. Active orders are refused with
// a Conflict: they must be unassigned or finished first so that no vehicle or
// driver is left pointing at a missing order.
type DeleteOrderCommandHandler struct {
	coordinator *Coordinator
}

func NewDeleteOrderCommandHandler(coordinator *Coordinator) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{
		coordinator: coordinator,
	}
}

func (h DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	c := h.coordinator
	defer c.observe(opDelete, time.Now(), &err)

	lease, current, err := c.lockOrder(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	defer lease.Release()

	if err = c.lifecycle.AuthorizeDelete(current, cmd.Actor()); err != nil {
		return err
	}

	c.orders.Remove(current.ID())
	if err = c.persist(ctx, opDelete, snapshots{deleted: []kernel.UUID{current.ID()}}); err != nil {
		c.orders.Put(current)
		c.rolledBack(ctx, opDelete, current.ID(), err)
		return err
	}

	c.publisher.Publish(notifier.NewDeletedEvent(notifier.KindOrder, current.ID().String(), current.Version()+1))

	return nil
}

package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

const opCreateOrder = "create_order"

// CreateOrderCommandHandler books a new pending order.
type CreateOrderCommandHandler struct {
	coordinator *Coordinator
}

func NewCreateOrderCommandHandler(coordinator *Coordinator) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		coordinator: coordinator,
	}
}

// Handle returns the created order. Only dispatchers and admins book orders.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	c := h.coordinator
	defer c.observe(opCreateOrder, time.Now(), &err)

	if !cmd.Actor().Role().CanDispatch() {
		return nil, errs.NewForbiddenError(cmd.Actor().Role().String(), "create orders")
	}

	created, err := order.NewOrder(cmd.OrderID(), cmd.Details())
	if err != nil {
		return nil, err
	}

	lease, err := c.locks.Acquire(ctx, exclusion.Key("order", created.ID()))
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	if err = c.orders.Add(created); err != nil {
		return nil, err
	}

	if err = c.persist(ctx, opCreateOrder, snapshots{orders: []*order.Order{created}}); err != nil {
		c.orders.Remove(created.ID())
		c.rolledBack(ctx, opCreateOrder, created.ID(), err)
		return nil, err
	}

	c.publishOrder(created, nil)

	return created, nil
}

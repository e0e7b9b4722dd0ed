package queries

import (
	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

type GetOrderQueryHandler struct {
	orders *registry.OrderBook
}

func NewGetOrderQueryHandler(orders *registry.OrderBook) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

// Handle returns the order. A driver may only read an order assigned to them.
func (h GetOrderQueryHandler) Handle(query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.orders.Get(query.OrderID())
	if err != nil {
		return nil, err
	}

	actor := query.Actor()
	if actor.Role() == kernel.RoleDriver && !actor.IsDriver(o.AssignedDriver()) {
		return nil, errs.NewForbiddenError(actor.Role().String(), "read another driver's order")
	}

	return o, nil
}

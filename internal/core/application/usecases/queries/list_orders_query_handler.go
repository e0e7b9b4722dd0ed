package queries

import (
	"cmp"
	"slices"

	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/domain/model/order"
)

// ListOrdersQueryHandler reads the order book without taking exclusions.
// A listing may therefore include an order whose operation is still in
// flight; each returned snapshot is internally consistent.
type ListOrdersQueryHandler struct {
	orders *registry.OrderBook
}

func NewListOrdersQueryHandler(orders *registry.OrderBook) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{orders: orders}
}

// Handle returns the matching orders sorted by ID.
func (h ListOrdersQueryHandler) Handle(query ListOrdersQuery) ([]*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if query.DriverID().IsZero() {
		return h.orders.List(query.Status()), nil
	}

	result := make([]*order.Order, 0)
	for _, o := range h.orders.ForDriver(query.DriverID()) {
		if query.Status() == order.Unknown || o.Status() == query.Status() {
			result = append(result, o)
		}
	}
	slices.SortFunc(result, func(a, b *order.Order) int {
		return cmp.Compare(a.ID().String(), b.ID().String())
	})

	return result, nil
}

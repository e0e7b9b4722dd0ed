package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderSummaryQueryIsNotConstructed = errors.New(
	"GetOrderSummaryQuery must be created via NewGetOrderSummaryQuery constructor",
)

// GetOrderSummaryQuery reports how many orders sit in each status and what
// they are worth, straight from the store.
//
// Example:
//
//	summary, err := handler.Handle(ctx, queries.NewGetOrderSummaryQuery())
//	if err != nil {
//	    return err
//	}
//	for _, line := range summary {
//	    fmt.Printf("%s: %d orders, %.2f\n", line.Status, line.Orders, line.Cost)
//	}
type GetOrderSummaryQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOrderSummaryQuery() GetOrderSummaryQuery {
	return GetOrderSummaryQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOrderSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderSummaryQueryIsNotConstructed)
}

// GetOrderSummaryQueryResponse is one status line of the summary.
type GetOrderSummaryQueryResponse struct {
	Status order.Status `json:"status"`
	Orders int64        `json:"orders"`
	Cost   float64      `json:"cost"`
}

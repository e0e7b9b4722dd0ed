package queries

import (
	"context"

	"dispatch/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetOrderSummaryQueryHandler aggregates the orders table. Completed and
// cancelled orders stay in the store, so the summary covers the full history.
type GetOrderSummaryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderSummaryQueryHandler(db *gorm.DB) GetOrderSummaryQueryHandler {
	return GetOrderSummaryQueryHandler{db: db}
}

// Handle returns one line per status present in the store, in lifecycle order.
func (h GetOrderSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderSummaryQuery,
) ([]GetOrderSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	summary := make([]GetOrderSummaryQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*),
			COALESCE(SUM(cost), 0)
		FROM orders
		GROUP BY status
		ORDER BY status
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line GetOrderSummaryQueryResponse
		var status int

		if err = rows.Scan(&status, &line.Orders, &line.Cost); err != nil {
			return nil, err
		}

		line.Status = order.Status(status)
		if err = line.Status.Validate(); err != nil {
			return nil, err
		}
		summary = append(summary, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}

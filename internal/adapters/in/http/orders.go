package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// AssignOrderRequest is the body of POST /orders/:id/assign.
type AssignOrderRequest struct {
	VehicleID string `json:"vehicleId"`
	DriverID  string `json:"driverId"`
}

// StatusRequest is the body of every status change.
type StatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var details order.Details
	if err := ctx.Bind(&details); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), details, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// ListOrders handles GET /api/v1/orders?status=&driverId=.
func (s *Server) ListOrders(ctx echo.Context) error {
	var status order.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		parsed, err := order.ParseStatus(raw)
		if err != nil {
			return s.fail(ctx, err)
		}
		status = parsed
	}

	var driverID kernel.UUID
	if raw := ctx.QueryParam("driverId"); raw != "" {
		parsed, err := parseID("driverId", raw)
		if err != nil {
			return s.fail(ctx, err)
		}
		driverID = parsed
	}

	query, err := queries.NewListOrdersQuery(status, driverID, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	orders, err := s.handlers.ListOrders.Handle(query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orders)
}

// GetOrderSummary handles GET /api/v1/orders/summary.
func (s *Server) GetOrderSummary(ctx echo.Context) error {
	if !actorOf(ctx).Role().CanDispatch() {
		return s.fail(ctx, errs.NewForbiddenError(actorOf(ctx).Role().String(), "read the order summary"))
	}

	summary, err := s.handlers.OrderSummary.Handle(ctx.Request().Context(), queries.NewGetOrderSummaryQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, summary)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	found, err := s.handlers.GetOrder.Handle(query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, found)
}

// AssignOrder handles POST /api/v1/orders/:id/assign.
func (s *Server) AssignOrder(ctx echo.Context) error {
	orderID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var req AssignOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	vehicleID, err := parseID("vehicleId", req.VehicleID)
	if err != nil {
		return s.fail(ctx, err)
	}
	driverID, err := parseID("driverId", req.DriverID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAssignOrderCommand(orderID, vehicleID, driverID, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	assigned, err := s.handlers.AssignOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, assigned)
}

// UnassignOrder handles POST /api/v1/orders/:id/unassign.
func (s *Server) UnassignOrder(ctx echo.Context) error {
	orderID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUnassignOrderCommand(orderID, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	released, err := s.handlers.UnassignOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, released)
}

// AdvanceOrder handles POST /api/v1/orders/:id/status.
func (s *Server) AdvanceOrder(ctx echo.Context) error {
	orderID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var req StatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAdvanceOrderCommand(orderID, status, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	advanced, err := s.handlers.AdvanceOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, advanced)
}

// DeleteOrder handles DELETE /api/v1/orders/:id.
func (s *Server) DeleteOrder(ctx echo.Context) error {
	orderID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewDeleteOrderCommand(orderID, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.DeleteOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func pathID(ctx echo.Context) (kernel.UUID, error) {
	return parseID("id", ctx.Param("id"))
}

func parseID(name, raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(name)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

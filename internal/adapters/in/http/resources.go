package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"

	"github.com/labstack/echo/v4"
)

// RegisterVehicle handles POST /api/v1/vehicles.
func (s *Server) RegisterVehicle(ctx echo.Context) error {
	var specs vehicle.Specs
	if err := ctx.Bind(&specs); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRegisterVehicleCommand(kernel.NewUUID(), specs, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.handlers.RegisterVehicle.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// ListVehicles handles GET /api/v1/vehicles?status=.
func (s *Server) ListVehicles(ctx echo.Context) error {
	var status vehicle.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		parsed, err := vehicle.ParseStatus(raw)
		if err != nil {
			return s.fail(ctx, err)
		}
		status = parsed
	}

	query, err := queries.NewListVehiclesQuery(status)
	if err != nil {
		return s.fail(ctx, err)
	}

	vehicles, err := s.handlers.ListVehicles.Handle(query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, vehicles)
}

// ChangeVehicleStatus handles PUT /api/v1/vehicles/:id/status.
func (s *Server) ChangeVehicleStatus(ctx echo.Context) error {
	vehicleID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var req StatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	status, err := vehicle.ParseStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewChangeVehicleStatusCommand(vehicleID, status, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.ChangeVehicleStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated)
}

// RegisterDriver handles POST /api/v1/drivers.
func (s *Server) RegisterDriver(ctx echo.Context) error {
	var profile driver.Profile
	if err := ctx.Bind(&profile); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRegisterDriverCommand(kernel.NewUUID(), profile, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.handlers.RegisterDriver.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// ListDrivers handles GET /api/v1/drivers?status=.
func (s *Server) ListDrivers(ctx echo.Context) error {
	var status driver.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		parsed, err := driver.ParseStatus(raw)
		if err != nil {
			return s.fail(ctx, err)
		}
		status = parsed
	}

	query, err := queries.NewListDriversQuery(status)
	if err != nil {
		return s.fail(ctx, err)
	}

	drivers, err := s.handlers.ListDrivers.Handle(query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, drivers)
}

// ChangeDriverStatus handles PUT /api/v1/drivers/:id/status.
func (s *Server) ChangeDriverStatus(ctx echo.Context) error {
	driverID, err := pathID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var req StatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	status, err := driver.ParseStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewChangeDriverStatusCommand(driverID, status, actorOf(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.ChangeDriverStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated)
}

package http

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// OrderSummaryHandler answers GET /orders/summary.
type OrderSummaryHandler interface {
	Handle(ctx context.Context, query queries.GetOrderSummaryQuery) ([]queries.GetOrderSummaryQueryResponse, error)
}

// Handlers groups the use cases the server exposes.
type Handlers struct {
	CreateOrder         commands.CreateOrderCommandHandler
	AssignOrder         commands.AssignOrderCommandHandler
	UnassignOrder       commands.UnassignOrderCommandHandler
	AdvanceOrder        commands.AdvanceOrderCommandHandler
	DeleteOrder         commands.DeleteOrderCommandHandler
	RegisterVehicle     commands.RegisterVehicleCommandHandler
	ChangeVehicleStatus commands.ChangeVehicleStatusCommandHandler
	RegisterDriver      commands.RegisterDriverCommandHandler
	ChangeDriverStatus  commands.ChangeDriverStatusCommandHandler

	ListOrders   queries.ListOrdersQueryHandler
	GetOrder     queries.GetOrderQueryHandler
	OrderSummary OrderSummaryHandler
	ListVehicles queries.ListVehiclesQueryHandler
	ListDrivers  queries.ListDriversQueryHandler
}

// Server maps HTTP requests onto the dispatch use cases and streams
// notifier events over websockets.
type Server struct {
	handlers Handlers
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, n *notifier.Notifier, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		notifier: n,
		logger:   logger.With("component", "http"),
	}
}

// Register mounts the API on g. Every route requires an actor.
func (s *Server) Register(g *echo.Group) {
	g.Use(ActorMiddleware)

	g.POST("/orders", s.CreateOrder)
	g.GET("/orders", s.ListOrders)
	g.GET("/orders/summary", s.GetOrderSummary)
	g.GET("/orders/:id", s.GetOrder)
	g.POST("/orders/:id/assign", s.AssignOrder)
	g.POST("/orders/:id/unassign", s.UnassignOrder)
	g.POST("/orders/:id/status", s.AdvanceOrder)
	g.DELETE("/orders/:id", s.DeleteOrder)

	g.POST("/vehicles", s.RegisterVehicle)
	g.GET("/vehicles", s.ListVehicles)
	g.PUT("/vehicles/:id/status", s.ChangeVehicleStatus)

	g.POST("/drivers", s.RegisterDriver)
	g.GET("/drivers", s.ListDrivers)
	g.PUT("/drivers/:id/status", s.ChangeDriverStatus)

	g.POST("/messages", s.SendMessage)
	g.GET("/ws", s.Subscribe)
}

package queries

import (
	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/vehicle"
)

type ListVehiclesQueryHandler struct {
	registry *registry.Registry
}

func NewListVehiclesQueryHandler(reg *registry.Registry) ListVehiclesQueryHandler {
	return ListVehiclesQueryHandler{registry: reg}
}

// Handle returns vehicles ordered by plate number.
func (h ListVehiclesQueryHandler) Handle(query ListVehiclesQuery) ([]*vehicle.Vehicle, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Vehicles(query.Status()), nil
}

type ListDriversQueryHandler struct {
	registry *registry.Registry
}

func NewListDriversQueryHandler(reg *registry.Registry) ListDriversQueryHandler {
	return ListDriversQueryHandler{registry: reg}
}

// Handle returns drivers ordered by name.
func (h ListDriversQueryHandler) Handle(query ListDriversQuery) ([]*driver.Driver, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.registry.Drivers(query.Status()), nil
}

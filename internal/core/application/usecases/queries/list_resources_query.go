package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListVehiclesQueryIsNotConstructed = errors.New(
		"ListVehiclesQuery must be created via NewListVehiclesQuery constructor",
	)
	ErrListDriversQueryIsNotConstructed = errors.New(
		"ListDriversQuery must be created via NewListDriversQuery constructor",
	)
)

// ListVehiclesQuery lists vehicles in one status, or all of them for vehicle.Unknown.
type ListVehiclesQuery struct {
	status vehicle.Status
	guard  guard.ConstructorGuard
}

func NewListVehiclesQuery(status vehicle.Status) (ListVehiclesQuery, error) {
	if status != vehicle.Unknown {
		if err := status.Validate(); err != nil {
			return ListVehiclesQuery{}, err
		}
	}
	return ListVehiclesQuery{status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListVehiclesQuery) Validate() error {
	return q.guard.Validate(ErrListVehiclesQueryIsNotConstructed)
}

func (q ListVehiclesQuery) Status() vehicle.Status {
	return q.status
}

// ListDriversQuery lists drivers in one status, or all of them for driver.Unknown.
type ListDriversQuery struct {
	status driver.Status
	guard  guard.ConstructorGuard
}

func NewListDriversQuery(status driver.Status) (ListDriversQuery, error) {
	if status != driver.Unknown {
		if err := status.Validate(); err != nil {
			return ListDriversQuery{}, err
		}
	}
	return ListDriversQuery{status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDriversQuery) Validate() error {
	return q.guard.Validate(ErrListDriversQueryIsNotConstructed)
}

func (q ListDriversQuery) Status() driver.Status {
	return q.status
}

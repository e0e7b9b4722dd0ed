// Package queries contains the read operations of the dispatch service.
// Order, vehicle and driver listings are served from the in-memory state the
// coordinator maintains; reports that aggregate history read the database.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery lists orders, optionally narrowed to one status and one
// driver. order.Unknown means every status; a zero driver ID means every driver.
//
// Drivers always get their own orders only, whatever driver they ask for.
type ListOrdersQuery struct {
	status   order.Status
	driverID kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(status order.Status, driverID kernel.UUID, actor kernel.Actor) (ListOrdersQuery, error) {
	if status != order.Unknown {
		if err := status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}
	if err := actor.Validate(); err != nil {
		return ListOrdersQuery{}, err
	}

	if actor.Role() == kernel.RoleDriver {
		driverID = actor.ID()
	}

	return ListOrdersQuery{
		status:   status,
		driverID: driverID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Status() order.Status {
	return q.status
}

func (q ListOrdersQuery) DriverID() kernel.UUID {
	return q.driverID
}

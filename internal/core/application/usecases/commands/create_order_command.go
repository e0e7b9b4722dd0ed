package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to book a new delivery order.
// Orders always start pending and unassigned.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, details, dispatcher)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	details order.Details
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the id, the order details and the actor.
// Details are normalized first, so an empty priority becomes medium.
func NewCreateOrderCommand(orderID kernel.UUID, details order.Details, actor kernel.Actor) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		cmd.setDetails(details),
		setActor(&cmd.actor, actor),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Details() order.Details {
	return c.details
}

func (c CreateOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *CreateOrderCommand) setDetails(details order.Details) error {
	details = details.Normalize()
	if err := details.Validate(); err != nil {
		return err
	}

	c.details = details
	return nil
}

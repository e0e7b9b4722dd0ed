package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrAdvanceOrderCommandIsNotConstructed = errors.New(
	"AdvanceOrderCommand must be created via NewAdvanceOrderCommand constructor",
)

// AdvanceOrderCommand requests that an order move to a new status:
// in-progress and completed for the assigned driver, cancelled for dispatch.
type AdvanceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	status  order.Status
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewAdvanceOrderCommand(orderID kernel.UUID, status order.Status, actor kernel.Actor) (AdvanceOrderCommand, error) {
	cmd := AdvanceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		cmd.setStatus(status),
		setActor(&cmd.actor, actor),
	); err != nil {
		return AdvanceOrderCommand{}, err
	}

	return cmd, nil
}

func (c AdvanceOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderCommandIsNotConstructed)
}

func (c AdvanceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AdvanceOrderCommand) Status() order.Status {
	return c.status
}

func (c AdvanceOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *AdvanceOrderCommand) setStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}

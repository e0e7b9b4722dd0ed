package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUnassignOrderCommandIsNotConstructed = errors.New(
	"UnassignOrderCommand must be created via NewUnassignOrderCommand constructor",
)

// UnassignOrderCommand requests that an assigned or in-progress order give
// its vehicle and driver back and return to pending.
type UnassignOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewUnassignOrderCommand(orderID kernel.UUID, actor kernel.Actor) (UnassignOrderCommand, error) {
	cmd := UnassignOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.orderID, orderID),
		setActor(&cmd.actor, actor),
	); err != nil {
		return UnassignOrderCommand{}, err
	}

	return cmd, nil
}

func (c UnassignOrderCommand) Validate() error {
	return c.guard.Validate(ErrUnassignOrderCommandIsNotConstructed)
}

func (c UnassignOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UnassignOrderCommand) Actor() kernel.Actor {
	return c.actor
}

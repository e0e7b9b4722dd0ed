package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrChangeDriverStatusCommandIsNotConstructed = errors.New(
	"ChangeDriverStatusCommand must be created via NewChangeDriverStatusCommand constructor",
)

// ChangeDriverStatusCommand sets an administrative status (available,
// off-duty, on-leave) on a driver who is not serving an order.
type ChangeDriverStatusCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	status   driver.Status
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewChangeDriverStatusCommand(
	driverID kernel.UUID,
	status driver.Status,
	actor kernel.Actor,
) (ChangeDriverStatusCommand, error) {
	cmd := ChangeDriverStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.driverID, driverID),
		cmd.setStatus(status),
		setActor(&cmd.actor, actor),
	); err != nil {
		return ChangeDriverStatusCommand{}, err
	}

	return cmd, nil
}

func (c ChangeDriverStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeDriverStatusCommandIsNotConstructed)
}

func (c ChangeDriverStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c ChangeDriverStatusCommand) Status() driver.Status {
	return c.status
}

func (c ChangeDriverStatusCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *ChangeDriverStatusCommand) setStatus(status driver.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}

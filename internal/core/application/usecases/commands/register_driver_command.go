package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand adds a driver to the roster. New drivers are available.
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	profile  driver.Profile
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewRegisterDriverCommand(driverID kernel.UUID, profile driver.Profile, actor kernel.Actor) (RegisterDriverCommand, error) {
	cmd := RegisterDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&cmd.driverID, driverID),
		cmd.setProfile(profile),
		setActor(&cmd.actor, actor),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return cmd, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RegisterDriverCommand) Profile() driver.Profile {
	return c.profile
}

func (c RegisterDriverCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *RegisterDriverCommand) setProfile(profile driver.Profile) error {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return err
	}

	c.profile = profile
	return nil
}

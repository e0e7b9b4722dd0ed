package kernel

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor was not built via NewActor.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Role is the authorization role an actor presents with a request.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
)

// ParseRole converts a role name (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate rejects unknown role names.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleDispatcher, RoleDriver:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// CanDispatch reports whether the role may assign, unassign, cancel and delete orders.
func (r Role) CanDispatch() bool {
	return r == RoleAdmin || r == RoleDispatcher
}

// Actor is the identity on whose behalf a coordinator operation runs.
// For drivers the actor id is the driver's id.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

// NewActor validates and builds an Actor.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

// ID returns the actor's identifier.
func (a Actor) ID() UUID {
	return a.id
}

// Role returns the actor's role.
func (a Actor) Role() Role {
	return a.role
}

// Validate ensures the actor was created through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.role == RoleAdmin
}

// IsDriver reports whether the actor is the driver with the given id.
func (a Actor) IsDriver(driverID UUID) bool {
	return a.role == RoleDriver && a.id.IsEqual(driverID)
}

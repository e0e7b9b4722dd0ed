package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrAuditAssignmentsCommandIsNotConstructed = errors.New(
	"AuditAssignmentsCommand must be created via NewAuditAssignmentsCommand constructor",
)

// AuditAssignmentsCommand triggers a consistency check of every assignment.
// It changes nothing; it exists so the audit runs under the same exclusions
// as the operations it checks.
type AuditAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

func NewAuditAssignmentsCommand() AuditAssignmentsCommand {
	return AuditAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *AuditAssignmentsCommand) Validate() error {
	return c.guard.Validate(
		ErrAuditAssignmentsCommandIsNotConstructed,
	)
}

package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Assigned ──> InProgress ──> Completed
//	   │           │
//	   └───────────┴──> Cancelled
//
// Completed and Cancelled are terminal. There are no self loops.
// Returning an active order to Pending is an unassignment, not a transition,
// and is handled by Order.Unassign.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status. The order has no vehicle or driver.
	Pending

	// Assigned indicates a vehicle and driver are committed to the order.
	Assigned

	// InProgress indicates the assigned driver has started the delivery.
	InProgress

	// Completed indicates the order was delivered. Terminal.
	Completed

	// Cancelled indicates the order was withdrawn before delivery started. Terminal.
	Cancelled
)

var statusNames = map[Status]string{
	Pending:    "pending",
	Assigned:   "assigned",
	InProgress: "in-progress",
	Completed:  "completed",
	Cancelled:  "cancelled",
}

// transitions lists the legal edges of the order lifecycle.
var transitions = map[Status][]Status{
	Pending:    {Assigned, Cancelled},
	Assigned:   {InProgress, Cancelled},
	InProgress: {Completed},
}

// ParseStatus converts the wire name of a status ("in-progress") into a Status.
func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String returns the wire name of the status, or "unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError when s -> target is not an edge.
func (s Status) ValidateTransition(target Status) error {
	if !s.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return nil
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// IsActive reports whether the order holds a vehicle and a driver.
func (s Status) IsActive() bool {
	return s == Assigned || s == InProgress
}

// ValidateCanHaveAssignment checks that the presence of assignment references
// matches the status: set iff the order is active.
func (s Status) ValidateCanHaveAssignment(assigned bool) error {
	if assigned && !s.IsActive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have an assignment", s),
		)
	}
	if !assigned && s.IsActive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no assignment", s),
		)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

package errs

import (
	"errors"
	"fmt"
)

// Coordination failures. Only ErrBusy is safe to retry unchanged; the others
// require the caller to change the request.
var (
	ErrResourceUnavailable = errors.New("resource is unavailable")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrBusy                = errors.New("resource is busy")
	ErrPersistenceFailed   = errors.New("persistence failed")
)

// ResourceUnavailableError reports a vehicle or driver that cannot be reserved.
type ResourceUnavailableError struct {
	Kind   string
	ID     any
	Status string
}

func NewResourceUnavailableError(kind string, id any, status string) *ResourceUnavailableError {
	return &ResourceUnavailableError{
		Kind:   kind,
		ID:     id,
		Status: status,
	}
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s %s is %s", ErrResourceUnavailable, e.Kind, e.ID, e.Status)
}

func (e *ResourceUnavailableError) Unwrap() error {
	return ErrResourceUnavailable
}

// InvalidTransitionError reports an edge the order lifecycle does not allow.
type InvalidTransitionError struct {
	From string
	To   string
}

func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError reports an actor whose role does not permit the action.
type ForbiddenError struct {
	Role   string
	Action string
}

func NewForbiddenError(role, action string) *ForbiddenError {
	return &ForbiddenError{Role: role, Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not %s", ErrForbidden, e.Role, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ConflictError reports an operation that is not permitted in the current state.
type ConflictError struct {
	Reason string
	Cause  error
}

func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

func NewConflictErrorWithCause(reason string, cause error) *ConflictError {
	return &ConflictError{Reason: reason, Cause: cause}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrConflict, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrConflict, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// BusyError reports an exclusion that could not be acquired before the deadline.
type BusyError struct {
	Key   string
	Cause error
}

func NewBusyError(key string, cause error) *BusyError {
	return &BusyError{Key: key, Cause: cause}
}

func (e *BusyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrBusy, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrBusy, e.Key)
}

func (e *BusyError) Unwrap() error {
	return ErrBusy
}

// PersistenceFailedError reports a durable write that failed after the in-memory
// change was applied. By the time a caller sees it the in-memory change is undone.
type PersistenceFailedError struct {
	Operation string
	Cause     error
}

func NewPersistenceFailedError(operation string, cause error) *PersistenceFailedError {
	return &PersistenceFailedError{Operation: operation, Cause: cause}
}

func (e *PersistenceFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrPersistenceFailed, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrPersistenceFailed, e.Operation)
}

func (e *PersistenceFailedError) Unwrap() error {
	return ErrPersistenceFailed
}

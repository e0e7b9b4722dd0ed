// Package errs provides standardized error types for the dispatch coordinator.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes two families of error types:
//   - Validation errors: ValueIsRequiredError, ValueIsInvalidError,
//     ValueIsOutOfRangeError, VersionIsInvalidError
//   - Coordination errors: ObjectNotFoundError, ResourceUnavailableError,
//     InvalidTransitionError, ForbiddenError, ConflictError, BusyError,
//     PersistenceFailedError
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrResourceUnavailable)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies it
package errs

// Package errs provides standardized error types for the hand-off service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes the error families the lifecycle engine reports:
//   - ObjectNotFoundError: a parcel, mission or carrier cannot be found
//   - InvalidStateTransitionError: an operation's state precondition failed
//   - AlreadyResolvedError: a delivery was already confirmed, contested or auto-confirmed
//   - UnauthorizedError: the actor is not the assigned carrier or owning vendor
//   - ConflictError: a conditional write lost a race
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: validation
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies it
package errs

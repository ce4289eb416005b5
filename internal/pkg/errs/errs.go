package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound         = errors.New("object not found")
	ErrValueIsInvalid         = errors.New("value is invalid")
	ErrValueIsOutOfRange      = errors.New("value is out of range")
	ErrValueIsRequired        = errors.New("value is required")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadyResolved        = errors.New("already resolved")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrConflict               = errors.New("conflict")
)

// ObjectNotFoundError is returned when a record is absent from the store.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a malformed input value.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidStateTransitionError is returned when an operation's precondition on
// the current lifecycle state does not hold. Reason names the failed precondition.
type InvalidStateTransitionError struct {
	Entity string
	State  string
	Reason string
}

func NewInvalidStateTransitionError(entity, state, reason string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Entity: entity, State: state, Reason: reason}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: %s is %s: %s", ErrInvalidStateTransition, e.Entity, e.State, e.Reason)
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// AlreadyResolvedError is returned when a delivery has already been confirmed,
// contested or auto-confirmed.
type AlreadyResolvedError struct {
	ID         any
	Resolution string
}

func NewAlreadyResolvedError(id any, resolution string) *AlreadyResolvedError {
	return &AlreadyResolvedError{ID: id, Resolution: resolution}
}

func (e *AlreadyResolvedError) Error() string {
	if e.Resolution == "" {
		return fmt.Sprintf("%s: delivery %s", ErrAlreadyResolved, e.ID)
	}
	return fmt.Sprintf("%s: delivery %s is %s", ErrAlreadyResolved, e.ID, e.Resolution)
}

func (e *AlreadyResolvedError) Unwrap() error {
	return ErrAlreadyResolved
}

// UnauthorizedError is returned when the actor does not hold the role the
// operation requires on the addressed record.
type UnauthorizedError struct {
	ActorID any
	Reason  string
}

func NewUnauthorizedError(actorID any, reason string) *UnauthorizedError {
	return &UnauthorizedError{ActorID: actorID, Reason: reason}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %s: %s", ErrUnauthorized, e.ActorID, e.Reason)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// ConflictError is returned when a conditional write lost a race.
type ConflictError struct {
	Entity string
	ID     any
	Cause  error
}

func NewConflictError(entity string, id any) *ConflictError {
	return &ConflictError{Entity: entity, ID: id}
}

func NewConflictErrorWithCause(entity string, id any, cause error) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, Cause: cause}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s was modified concurrently (cause: %v)", ErrConflict, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s was modified concurrently", ErrConflict, e.Entity, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsOutOfRange) ||
		errors.Is(err, ErrValueIsRequired)
}

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

// Package guard provides ConstructorGuard, a marker embedded in value objects,
// aggregates, commands and queries so that zero values created without their
// constructor fail validation.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether its owner was built through a constructor.
//
// Example usage:
//
//	var ErrRatingIsNotConstructed = errors.New("Rating must be created via NewRating")
//
//	type Rating struct {
//	    value int
//	    guard guard.ConstructorGuard
//	}
//
//	func (r Rating) Validate() error {
//	    return r.guard.Validate(ErrRatingIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}

package kernel

import (
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrRatingIsNotConstructed = errs.NewValueIsRequiredError("rating must be created via NewRating")

// Rating is the vendor's 1 to 5 score of a completed delivery.
type Rating struct {
	value int
	guard guard.ConstructorGuard
}

func NewRating(value int) (Rating, error) {
	if value < MinRating || value > MaxRating {
		return Rating{}, errs.NewValueIsOutOfRangeError("rating", value, MinRating, MaxRating)
	}
	return Rating{value: value, guard: guard.NewConstructorGuard()}, nil
}

func (r Rating) Validate() error {
	return r.guard.Validate(ErrRatingIsNotConstructed)
}

func (r Rating) Int() int {
	return r.value
}

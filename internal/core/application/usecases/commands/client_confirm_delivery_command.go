package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrClientConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ClientConfirmDeliveryCommand must be created via NewClientConfirmDeliveryCommand constructor",
)

// ClientConfirmDeliveryCommand represents the vendor accepting the drop-off,
// optionally rating the carrier from 1 to 5.
type ClientConfirmDeliveryCommand struct { //nolint:recvcheck //using for validation
	parcelOwner
	rating  *kernel.Rating
	comment string

	guard guard.ConstructorGuard
}

func NewClientConfirmDeliveryCommand(
	parcelID, vendorID kernel.UUID,
	rating *int,
	comment string,
) (ClientConfirmDeliveryCommand, error) {
	owner, ownerErr := newParcelOwner(parcelID, vendorID)

	var (
		score     *kernel.Rating
		ratingErr error
	)
	if rating != nil {
		r, err := kernel.NewRating(*rating)
		if err != nil {
			ratingErr = err
		} else {
			score = &r
		}
	}

	if err := errors.Join(ownerErr, ratingErr); err != nil {
		return ClientConfirmDeliveryCommand{}, err
	}

	return ClientConfirmDeliveryCommand{
		parcelOwner: owner,
		rating:      score,
		comment:     comment,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ClientConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrClientConfirmDeliveryCommandIsNotConstructed)
}

// Rating returns nil when the vendor did not rate the carrier.
func (c ClientConfirmDeliveryCommand) Rating() *kernel.Rating { return c.rating }
func (c ClientConfirmDeliveryCommand) Comment() string        { return c.comment }

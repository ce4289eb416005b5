package commands

import (
	"errors"
	"strings"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var ErrConfirmPickupByCodeCommandIsNotConstructed = errors.New(
	"ConfirmPickupByCodeCommand must be created via NewConfirmPickupByCodeCommand constructor",
)

// ConfirmPickupByCodeCommand represents the vendor confirming the hand-off
// with the code the carrier read out.
type ConfirmPickupByCodeCommand struct { //nolint:recvcheck //using for validation
	parcelOwner
	code string

	guard guard.ConstructorGuard
}

func NewConfirmPickupByCodeCommand(parcelID, vendorID kernel.UUID, code string) (ConfirmPickupByCodeCommand, error) {
	owner, ownerErr := newParcelOwner(parcelID, vendorID)

	code = strings.TrimSpace(code)
	var codeErr error
	if code == "" {
		codeErr = errs.NewValueIsRequiredError("pickupCode")
	}

	if err := errors.Join(ownerErr, codeErr); err != nil {
		return ConfirmPickupByCodeCommand{}, err
	}

	return ConfirmPickupByCodeCommand{
		parcelOwner: owner,
		code:        code,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPickupByCodeCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPickupByCodeCommandIsNotConstructed)
}

func (c ConfirmPickupByCodeCommand) Code() string { return c.code }

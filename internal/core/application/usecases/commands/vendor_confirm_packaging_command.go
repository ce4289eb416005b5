package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrVendorConfirmPackagingCommandIsNotConstructed = errors.New(
	"VendorConfirmPackagingCommand must be created via NewVendorConfirmPackagingCommand constructor",
)

// VendorConfirmPackagingCommand represents the vendor approving the carrier's
// packaging photo.
type VendorConfirmPackagingCommand struct { //nolint:recvcheck //using for validation
	parcelOwner

	guard guard.ConstructorGuard
}

func NewVendorConfirmPackagingCommand(parcelID, vendorID kernel.UUID) (VendorConfirmPackagingCommand, error) {
	owner, err := newParcelOwner(parcelID, vendorID)
	if err != nil {
		return VendorConfirmPackagingCommand{}, err
	}
	return VendorConfirmPackagingCommand{parcelOwner: owner, guard: guard.NewConstructorGuard()}, nil
}

func (c VendorConfirmPackagingCommand) Validate() error {
	return c.guard.Validate(ErrVendorConfirmPackagingCommandIsNotConstructed)
}

package commands

import (
	"errors"
	"strings"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var ErrClientContestDeliveryCommandIsNotConstructed = errors.New(
	"ClientContestDeliveryCommand must be created via NewClientContestDeliveryCommand constructor",
)

// ClientContestDeliveryCommand represents the vendor disputing the drop-off.
type ClientContestDeliveryCommand struct { //nolint:recvcheck //using for validation
	parcelOwner
	reason string

	guard guard.ConstructorGuard
}

func NewClientContestDeliveryCommand(parcelID, vendorID kernel.UUID, reason string) (ClientContestDeliveryCommand, error) {
	owner, ownerErr := newParcelOwner(parcelID, vendorID)

	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}

	if err := errors.Join(ownerErr, reasonErr); err != nil {
		return ClientContestDeliveryCommand{}, err
	}

	return ClientContestDeliveryCommand{
		parcelOwner: owner,
		reason:      reason,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ClientContestDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrClientContestDeliveryCommandIsNotConstructed)
}

func (c ClientContestDeliveryCommand) Reason() string { return c.reason }

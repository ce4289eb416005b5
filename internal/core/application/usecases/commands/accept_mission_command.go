package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrAcceptMissionCommandIsNotConstructed = errors.New(
	"AcceptMissionCommand must be created via NewAcceptMissionCommand constructor",
)

// AcceptMissionCommand represents a carrier taking a Pending parcel.
type AcceptMissionCommand struct { //nolint:recvcheck //using for validation
	parcelID  kernel.UUID
	carrierID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptMissionCommand(parcelID, carrierID kernel.UUID) (AcceptMissionCommand, error) {
	if err := errors.Join(
		validateID("parcelId", parcelID),
		validateID("carrierId", carrierID),
	); err != nil {
		return AcceptMissionCommand{}, err
	}

	return AcceptMissionCommand{
		parcelID:  parcelID,
		carrierID: carrierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptMissionCommand) Validate() error {
	return c.guard.Validate(ErrAcceptMissionCommandIsNotConstructed)
}

func (c AcceptMissionCommand) ParcelID() kernel.UUID  { return c.parcelID }
func (c AcceptMissionCommand) CarrierID() kernel.UUID { return c.carrierID }

package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrPickupMissionCommandIsNotConstructed = errors.New(
	"PickupMissionCommand must be created via NewPickupMissionCommand constructor",
)

// PickupMissionCommand represents the carrier collecting the parcel.
type PickupMissionCommand struct { //nolint:recvcheck //using for validation
	missionActor

	guard guard.ConstructorGuard
}

func NewPickupMissionCommand(missionID, carrierID kernel.UUID) (PickupMissionCommand, error) {
	actor, err := newMissionActor(missionID, carrierID)
	if err != nil {
		return PickupMissionCommand{}, err
	}
	return PickupMissionCommand{missionActor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c PickupMissionCommand) Validate() error {
	return c.guard.Validate(ErrPickupMissionCommandIsNotConstructed)
}

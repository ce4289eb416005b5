package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrArriveAtPickupCommandIsNotConstructed = errors.New(
	"ArriveAtPickupCommand must be created via NewArriveAtPickupCommand constructor",
)

// ArriveAtPickupCommand represents a carrier reporting arrival at the pickup address.
type ArriveAtPickupCommand struct { //nolint:recvcheck //using for validation
	missionActor

	guard guard.ConstructorGuard
}

func NewArriveAtPickupCommand(missionID, carrierID kernel.UUID) (ArriveAtPickupCommand, error) {
	actor, err := newMissionActor(missionID, carrierID)
	if err != nil {
		return ArriveAtPickupCommand{}, err
	}
	return ArriveAtPickupCommand{missionActor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c ArriveAtPickupCommand) Validate() error {
	return c.guard.Validate(ErrArriveAtPickupCommandIsNotConstructed)
}

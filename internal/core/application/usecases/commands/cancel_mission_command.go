package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrCancelMissionCommandIsNotConstructed = errors.New(
	"CancelMissionCommand must be created via NewCancelMissionCommand constructor",
)

// CancelMissionCommand represents the carrier withdrawing before departure.
// The reason is optional.
type CancelMissionCommand struct { //nolint:recvcheck //using for validation
	missionActor
	reason string

	guard guard.ConstructorGuard
}

func NewCancelMissionCommand(missionID, carrierID kernel.UUID, reason string) (CancelMissionCommand, error) {
	actor, err := newMissionActor(missionID, carrierID)
	if err != nil {
		return CancelMissionCommand{}, err
	}
	return CancelMissionCommand{missionActor: actor, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelMissionCommand) Validate() error {
	return c.guard.Validate(ErrCancelMissionCommandIsNotConstructed)
}

func (c CancelMissionCommand) Reason() string { return c.reason }

package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrConfirmPackagingCommandIsNotConstructed = errors.New(
	"ConfirmPackagingCommand must be created via NewConfirmPackagingCommand constructor",
)

// ConfirmPackagingCommand represents the carrier's packaging photo. It may be
// sent again with a new photo until the vendor approves.
type ConfirmPackagingCommand struct { //nolint:recvcheck //using for validation
	missionActor
	photoURL string

	guard guard.ConstructorGuard
}

func NewConfirmPackagingCommand(missionID, carrierID kernel.UUID, photoURL string) (ConfirmPackagingCommand, error) {
	actor, actorErr := newMissionActor(missionID, carrierID)
	if err := errors.Join(actorErr, kernel.ValidateMediaURL("photoUrl", photoURL)); err != nil {
		return ConfirmPackagingCommand{}, err
	}

	return ConfirmPackagingCommand{
		missionActor: actor,
		photoURL:     photoURL,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPackagingCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPackagingCommandIsNotConstructed)
}

func (c ConfirmPackagingCommand) PhotoURL() string { return c.photoURL }

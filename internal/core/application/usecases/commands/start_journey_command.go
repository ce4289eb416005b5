package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var ErrStartJourneyCommandIsNotConstructed = errors.New(
	"StartJourneyCommand must be created via NewStartJourneyCommand constructor",
)

// StartJourneyCommand represents a carrier departing from origin towards the
// pickup address.
type StartJourneyCommand struct { //nolint:recvcheck //using for validation
	missionActor
	origin kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewStartJourneyCommand(missionID, carrierID kernel.UUID, originLat, originLon float64) (StartJourneyCommand, error) {
	actor, actorErr := newMissionActor(missionID, carrierID)

	origin, originErr := kernel.NewGeoPoint(originLat, originLon)
	if originErr != nil {
		originErr = errs.NewValueIsInvalidErrorWithCause("origin", originErr)
	}

	if err := errors.Join(actorErr, originErr); err != nil {
		return StartJourneyCommand{}, err
	}

	return StartJourneyCommand{
		missionActor: actor,
		origin:       origin,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c StartJourneyCommand) Validate() error {
	return c.guard.Validate(ErrStartJourneyCommandIsNotConstructed)
}

func (c StartJourneyCommand) Origin() kernel.GeoPoint { return c.origin }

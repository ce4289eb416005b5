package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/guard"
)

var ErrSubmitDeliveryProofCommandIsNotConstructed = errors.New(
	"SubmitDeliveryProofCommand must be created via NewSubmitDeliveryProofCommand constructor",
)

// SubmitDeliveryProofCommand represents the carrier's drop-off photo.
type SubmitDeliveryProofCommand struct { //nolint:recvcheck //using for validation
	missionActor
	proofURL string

	guard guard.ConstructorGuard
}

func NewSubmitDeliveryProofCommand(missionID, carrierID kernel.UUID, proofURL string) (SubmitDeliveryProofCommand, error) {
	actor, actorErr := newMissionActor(missionID, carrierID)
	if err := errors.Join(actorErr, kernel.ValidateMediaURL("proofUrl", proofURL)); err != nil {
		return SubmitDeliveryProofCommand{}, err
	}

	return SubmitDeliveryProofCommand{
		missionActor: actor,
		proofURL:     proofURL,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitDeliveryProofCommand) Validate() error {
	return c.guard.Validate(ErrSubmitDeliveryProofCommandIsNotConstructed)
}

func (c SubmitDeliveryProofCommand) ProofURL() string { return c.proofURL }

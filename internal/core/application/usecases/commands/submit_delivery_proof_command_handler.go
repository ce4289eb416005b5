package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// SubmitDeliveryProofCommandHandler stores the drop-off proof and opens the
// vendor's confirmation window. Mission and parcel stay PickedUp until the
// delivery is resolved.
type SubmitDeliveryProofCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewSubmitDeliveryProofCommandHandler(uowFactory UoWFactory, clk clock.Clock) SubmitDeliveryProofCommandHandler {
	return SubmitDeliveryProofCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h SubmitDeliveryProofCommandHandler) Handle(ctx context.Context, cmd SubmitDeliveryProofCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().SubmitDeliveryProof(m, p, cmd.CarrierID(), cmd.ProofURL(), now)
		})
}

package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// PickupMissionCommandHandler moves mission and parcel to PickedUp once both
// sides confirmed the packaging.
type PickupMissionCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewPickupMissionCommandHandler(uowFactory UoWFactory, clk clock.Clock) PickupMissionCommandHandler {
	return PickupMissionCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h PickupMissionCommandHandler) Handle(ctx context.Context, cmd PickupMissionCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().Pickup(m, p, cmd.CarrierID(), now)
		})
}

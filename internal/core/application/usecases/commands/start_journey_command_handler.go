package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// StartJourneyCommandHandler records departure and the estimated arrival at
// the pickup address, then tells the vendor.
type StartJourneyCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewStartJourneyCommandHandler(uowFactory UoWFactory, clk clock.Clock) StartJourneyCommandHandler {
	return StartJourneyCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h StartJourneyCommandHandler) Handle(ctx context.Context, cmd StartJourneyCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().StartJourney(m, p, cmd.CarrierID(), cmd.Origin(), now)
		})
}

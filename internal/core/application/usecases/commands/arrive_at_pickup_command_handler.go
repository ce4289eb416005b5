package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// ArriveAtPickupCommandHandler records the carrier's arrival. The mission
// status does not change.
type ArriveAtPickupCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewArriveAtPickupCommandHandler(uowFactory UoWFactory, clk clock.Clock) ArriveAtPickupCommandHandler {
	return ArriveAtPickupCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ArriveAtPickupCommandHandler) Handle(ctx context.Context, cmd ArriveAtPickupCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().ArriveAtPickup(m, p, cmd.CarrierID(), now)
		})
}

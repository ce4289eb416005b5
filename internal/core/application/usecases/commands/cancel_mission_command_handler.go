package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// CancelMissionCommandHandler cancels an Accepted mission and releases the
// parcel back to Pending for other carriers.
type CancelMissionCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewCancelMissionCommandHandler(uowFactory UoWFactory, clk clock.Clock) CancelMissionCommandHandler {
	return CancelMissionCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h CancelMissionCommandHandler) Handle(ctx context.Context, cmd CancelMissionCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().Cancel(m, p, cmd.CarrierID(), cmd.Reason(), now)
		})
}

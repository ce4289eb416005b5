package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// ConfirmPackagingCommandHandler stores the carrier's packaging photo on the
// parcel and asks the vendor to approve it.
type ConfirmPackagingCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewConfirmPackagingCommandHandler(uowFactory UoWFactory, clk clock.Clock) ConfirmPackagingCommandHandler {
	return ConfirmPackagingCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ConfirmPackagingCommandHandler) Handle(ctx context.Context, cmd ConfirmPackagingCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byMission(cmd.MissionID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().ConfirmPackagingByCarrier(m, p, cmd.CarrierID(), cmd.PhotoURL(), now)
		})
}

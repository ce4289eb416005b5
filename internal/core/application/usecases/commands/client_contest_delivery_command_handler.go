package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// ClientContestDeliveryCommandHandler records the vendor's dispute. The
// mission keeps its status, is no longer picked up by the sweep and is never
// settled automatically.
type ClientContestDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewClientContestDeliveryCommandHandler(uowFactory UoWFactory, clk clock.Clock) ClientContestDeliveryCommandHandler {
	return ClientContestDeliveryCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ClientContestDeliveryCommandHandler) Handle(ctx context.Context, cmd ClientContestDeliveryCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	result, err := runTransition(ctx, h.uowFactory, h.clock, byParcel(cmd.ParcelID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().ContestDelivery(m, p, cmd.VendorID(), cmd.Reason(), now)
		})
	if err != nil {
		return Result{}, alreadyResolved(ctx, h.uowFactory, cmd.ParcelID(), err)
	}
	return result, nil
}

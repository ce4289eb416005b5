package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// ConfirmPickupByCodeCommandHandler runs the pickup transition on the vendor's
// side after checking the pickup code. The packaging handshake still gates it.
type ConfirmPickupByCodeCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewConfirmPickupByCodeCommandHandler(uowFactory UoWFactory, clk clock.Clock) ConfirmPickupByCodeCommandHandler {
	return ConfirmPickupByCodeCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ConfirmPickupByCodeCommandHandler) Handle(ctx context.Context, cmd ConfirmPickupByCodeCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byParcel(cmd.ParcelID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().PickupByCode(m, p, cmd.VendorID(), cmd.Code(), now)
		})
}

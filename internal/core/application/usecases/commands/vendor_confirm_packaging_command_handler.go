package commands

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// VendorConfirmPackagingCommandHandler records the vendor's half of the
// packaging handshake on the parcel's current mission.
type VendorConfirmPackagingCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewVendorConfirmPackagingCommandHandler(uowFactory UoWFactory, clk clock.Clock) VendorConfirmPackagingCommandHandler {
	return VendorConfirmPackagingCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h VendorConfirmPackagingCommandHandler) Handle(ctx context.Context, cmd VendorConfirmPackagingCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	return runTransition(ctx, h.uowFactory, h.clock, byParcel(cmd.ParcelID()),
		func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error) {
			return services.NewHandoff().ConfirmPackagingByVendor(m, p, cmd.VendorID(), now)
		})
}

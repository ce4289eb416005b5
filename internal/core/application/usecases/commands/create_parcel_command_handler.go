package commands

import (
	"context"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/pkg/clock"
)

// CreateParcelCommandHandler stores a new Pending parcel with a fresh pickup code.
type CreateParcelCommandHandler struct {
	uowFactory ParcelUoWFactory
	clock      clock.Clock
}

func NewCreateParcelCommandHandler(uowFactory ParcelUoWFactory, clk clock.Clock) CreateParcelCommandHandler {
	return CreateParcelCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle returns the stored parcel, including the pickup code the vendor
// hands to the carrier.
func (h CreateParcelCommandHandler) Handle(ctx context.Context, cmd CreateParcelCommand) (parcel.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Snapshot{}, err
	}

	code, err := kernel.GeneratePickupCode()
	if err != nil {
		return parcel.Snapshot{}, err
	}

	p, err := parcel.NewParcel(cmd.ParcelID(), cmd.VendorID(), cmd.Pickup(), cmd.Dropoff(), code, h.clock.Now())
	if err != nil {
		return parcel.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return parcel.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ParcelRepository().Add(ctx, p); err != nil {
		return parcel.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return parcel.Snapshot{}, err
	}

	return p.Snapshot(), nil
}

package commands

import (
	"context"

	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// ClientConfirmDeliveryCommandHandler resolves a delivery on the vendor's
// confirmation: mission and parcel become Delivered, the carrier's statistics
// are updated and settlement is enqueued, all in one transaction.
//
// A confirmation racing the sweep or a contest loses on the mission version
// and reports errs.AlreadyResolvedError with the winning resolution.
type ClientConfirmDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewClientConfirmDeliveryCommandHandler(uowFactory UoWFactory, clk clock.Clock) ClientConfirmDeliveryCommandHandler {
	return ClientConfirmDeliveryCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ClientConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ClientConfirmDeliveryCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	result, err := h.confirm(ctx, cmd)
	if err != nil {
		return Result{}, alreadyResolved(ctx, h.uowFactory, cmd.ParcelID(), err)
	}
	return result, nil
}

func (h ClientConfirmDeliveryCommandHandler) confirm(ctx context.Context, cmd ClientConfirmDeliveryCommand) (Result, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	m, p, err := loadByParcel(ctx, uow, cmd.ParcelID())
	if err != nil {
		return Result{}, err
	}

	c, err := loadCarrier(ctx, uow.CarrierRepository(), m.CarrierID())
	if err != nil {
		return Result{}, err
	}

	effects, err := services.NewHandoff().ConfirmDelivery(m, p, c, cmd.VendorID(), cmd.Rating(), cmd.Comment(), h.clock.Now())
	if err != nil {
		return Result{}, err
	}

	if err = persist(ctx, uow, m, p); err != nil {
		return Result{}, err
	}
	if err = uow.CarrierRepository().Save(ctx, c); err != nil {
		return Result{}, err
	}
	if err = enqueue(ctx, uow.Outbox(), m.ID(), effects); err != nil {
		return Result{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Result{}, err
	}

	return newResult(m, p), nil
}

package commands

import (
	"context"

	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
)

// AcceptMissionCommandHandler assigns a carrier to a parcel and opens its mission.
//
// Concurrent accepts of one parcel race on the parcel's version and on the
// single active mission per parcel; exactly one commits, the others get
// errs.ConflictError, or errs.InvalidStateTransitionError when they read the
// parcel after the winner committed.
//
// Example:
//
//	handler := NewAcceptMissionCommandHandler(uowFactory, clock.System{})
//	cmd, _ := NewAcceptMissionCommand(parcelID, carrierID)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrConflict):
//	    // another carrier was faster
//	case err != nil:
//	    return err
//	}
//	fmt.Println("mission", result.Mission.ID)
type AcceptMissionCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewAcceptMissionCommandHandler(uowFactory UoWFactory, clk clock.Clock) AcceptMissionCommandHandler {
	return AcceptMissionCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

func (h AcceptMissionCommandHandler) Handle(ctx context.Context, cmd AcceptMissionCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.ParcelRepository().Get(ctx, cmd.ParcelID())
	if err != nil {
		return Result{}, err
	}

	m, effects, err := services.NewHandoff().Accept(p, cmd.CarrierID(), h.clock.Now())
	if err != nil {
		return Result{}, err
	}

	if err = uow.ParcelRepository().Update(ctx, p); err != nil {
		return Result{}, err
	}
	if err = uow.MissionRepository().Add(ctx, m); err != nil {
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

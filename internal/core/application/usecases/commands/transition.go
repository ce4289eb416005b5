package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/errs"
)

// Result is the state of a mission and its parcel after a committed transition.
type Result struct {
	Mission mission.Snapshot
	Parcel  parcel.Snapshot
}

func newResult(m *mission.Mission, p *parcel.Parcel) Result {
	return Result{Mission: m.Snapshot(), Parcel: p.Snapshot()}
}

// loadByMission reads a mission and the parcel it is for.
func loadByMission(ctx context.Context, uow UoW, missionID kernel.UUID) (*mission.Mission, *parcel.Parcel, error) {
	m, err := uow.MissionRepository().Get(ctx, missionID)
	if err != nil {
		return nil, nil, err
	}
	p, err := uow.ParcelRepository().Get(ctx, m.ParcelID())
	if err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

// loadByParcel reads a parcel and its current mission.
func loadByParcel(ctx context.Context, uow UoW, parcelID kernel.UUID) (*mission.Mission, *parcel.Parcel, error) {
	p, err := uow.ParcelRepository().Get(ctx, parcelID)
	if err != nil {
		return nil, nil, err
	}
	m, err := uow.MissionRepository().GetCurrentForParcel(ctx, parcelID)
	if err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

// loadCarrier returns the carrier's statistics, starting empty ones for a
// carrier completing a first delivery.
func loadCarrier(ctx context.Context, repo ports.CarrierRepository, id kernel.UUID) (*carrier.Carrier, error) {
	c, err := repo.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return carrier.NewCarrier(id)
	}
	return c, err
}

// persist writes the parcel before the mission. Keeping one order across
// handlers keeps row locks from crossing.
func persist(ctx context.Context, uow UoW, m *mission.Mission, p *parcel.Parcel) error {
	if err := uow.ParcelRepository().Update(ctx, p); err != nil {
		return err
	}
	return uow.MissionRepository().Update(ctx, m)
}

// enqueue records the effects of a transition in the outbox.
func enqueue(ctx context.Context, outbox ports.Outbox, missionID kernel.UUID, effects services.Effects) error {
	for _, n := range effects.Notifications {
		if err := outbox.EnqueueNotification(ctx, missionID, n); err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}
	}
	if effects.Settle {
		if err := outbox.EnqueueSettlement(ctx, missionID); err != nil {
			return fmt.Errorf("enqueue settlement: %w", err)
		}
	}
	return nil
}

// alreadyResolved turns a lost write race on a resolution into
// errs.AlreadyResolvedError when the competing writer resolved the parcel's
// mission. It must run after the losing transaction was rolled back.
func alreadyResolved(ctx context.Context, factory UoWFactory, parcelID kernel.UUID, err error) error {
	if !lostRace(err) {
		return err
	}

	current, getErr := factory.Create().MissionRepository().GetCurrentForParcel(ctx, parcelID)
	return resolvedOr(current, getErr, err)
}

// lostRace reports whether err may come from reading state a concurrent
// writer already changed: a failed conditional write, or a transition
// rejected on a row read after the competing commit.
func lostRace(err error) bool {
	return errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrInvalidStateTransition)
}

func resolvedOr(current *mission.Mission, getErr, err error) error {
	if getErr != nil {
		return err
	}
	if resolution := current.Resolution(); resolution != mission.Unresolved {
		return errs.NewAlreadyResolvedError(current.ID(), resolution.String())
	}
	return err
}

func validateID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

// transitionFunc applies one services.Handoff operation to a loaded pair.
type transitionFunc func(m *mission.Mission, p *parcel.Parcel, now time.Time) (services.Effects, error)

// runTransition executes fn in its own unit of work on the pair selected by
// load, then writes both aggregates and the effects.
func runTransition(
	ctx context.Context,
	factory UoWFactory,
	clk clock.Clock,
	load func(ctx context.Context, uow UoW) (*mission.Mission, *parcel.Parcel, error),
	fn transitionFunc,
) (Result, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	m, p, err := load(ctx, uow)
	if err != nil {
		return Result{}, err
	}

	effects, err := fn(m, p, clk.Now())
	if err != nil {
		return Result{}, err
	}

	if err = persist(ctx, uow, m, p); err != nil {
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

func byMission(missionID kernel.UUID) func(context.Context, UoW) (*mission.Mission, *parcel.Parcel, error) {
	return func(ctx context.Context, uow UoW) (*mission.Mission, *parcel.Parcel, error) {
		return loadByMission(ctx, uow, missionID)
	}
}

func byParcel(parcelID kernel.UUID) func(context.Context, UoW) (*mission.Mission, *parcel.Parcel, error) {
	return func(ctx context.Context, uow UoW) (*mission.Mission, *parcel.Parcel, error) {
		return loadByParcel(ctx, uow, parcelID)
	}
}

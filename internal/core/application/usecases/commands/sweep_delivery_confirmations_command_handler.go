package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/errs"

	"go.uber.org/multierr"
)

// SweepOutcome is what the sweep did with one mission. SweepSkipped means
// the mission was resolved by someone else first.
type SweepOutcome string

const (
	SweepConfirmed SweepOutcome = "CONFIRMED"
	SweepSkipped   SweepOutcome = "SKIPPED"
	SweepFailed    SweepOutcome = "FAILED"
)

// SweepItem reports one visited mission.
type SweepItem struct {
	MissionID kernel.UUID
	Outcome   SweepOutcome
	Err       error
}

// SweepReport summarises one sweep run.
type SweepReport struct {
	Items []SweepItem
}

// Visited returns how many missions the run looked at, whatever the outcome.
func (r SweepReport) Visited() int {
	return len(r.Items)
}

// Count returns how many missions ended with outcome.
func (r SweepReport) Count(outcome SweepOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// Err combines the failures of the run, nil when none failed.
func (r SweepReport) Err() error {
	var combined error
	for _, item := range r.Items {
		if item.Outcome == SweepFailed {
			combined = multierr.Append(combined, fmt.Errorf("mission %s: %w", item.MissionID, item.Err))
		}
	}
	return combined
}

// SweepDeliveryConfirmationsCommandHandler auto-confirms deliveries whose
// confirmation window expired without an answer from the vendor.
//
// Each mission is resolved in its own transaction, so a failure or a lost race
// on one mission leaves the others untouched. Running the sweep twice, or
// concurrently with a vendor confirmation, never resolves a mission twice.
// After a conflict the mission is read again: if it was resolved meanwhile the
// item is SweepSkipped, otherwise the conflict is reported as SweepFailed and
// the mission stays a candidate for the next run.
//
// Example:
//
//	handler := NewSweepDeliveryConfirmationsCommandHandler(uowFactory, clock.System{})
//	cmd, _ := NewSweepDeliveryConfirmationsCommand(100)
//	report, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	log.Printf("confirmed %d, failures: %v", report.Count(SweepConfirmed), report.Err())
type SweepDeliveryConfirmationsCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewSweepDeliveryConfirmationsCommandHandler(uowFactory UoWFactory, clk clock.Clock) SweepDeliveryConfirmationsCommandHandler {
	return SweepDeliveryConfirmationsCommandHandler{uowFactory: uowFactory, clock: clk}
}

// Handle returns an error only when the candidates cannot be listed.
// Per-mission failures are reported in SweepReport.
func (h SweepDeliveryConfirmationsCommandHandler) Handle(
	ctx context.Context,
	cmd SweepDeliveryConfirmationsCommand,
) (SweepReport, error) {
	if err := cmd.Validate(); err != nil {
		return SweepReport{}, err
	}

	now := h.clock.Now()
	ids, err := h.uowFactory.Create().MissionRepository().FindAwaitingAutoConfirmation(ctx, now, cmd.BatchSize())
	if err != nil {
		return SweepReport{}, fmt.Errorf("listing expired confirmation windows: %w", err)
	}

	report := SweepReport{Items: make([]SweepItem, 0, len(ids))}
	for _, id := range ids {
		if ctxErr := ctx.Err(); ctxErr != nil {
			report.Items = append(report.Items, SweepItem{MissionID: id, Outcome: SweepFailed, Err: ctxErr})
			continue
		}

		err = h.autoConfirm(ctx, id, now)
		if lostRace(err) {
			current, getErr := h.uowFactory.Create().MissionRepository().Get(ctx, id)
			err = resolvedOr(current, getErr, err)
		}
		report.Items = append(report.Items, SweepItem{MissionID: id, Outcome: outcomeOf(err), Err: err})
	}

	return report, nil
}

func (h SweepDeliveryConfirmationsCommandHandler) autoConfirm(ctx context.Context, missionID kernel.UUID, now time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	m, p, err := loadByMission(ctx, uow, missionID)
	if err != nil {
		return err
	}

	c, err := loadCarrier(ctx, uow.CarrierRepository(), m.CarrierID())
	if err != nil {
		return err
	}

	effects, err := services.NewHandoff().AutoConfirm(m, p, c, now)
	if err != nil {
		return err
	}

	if err = persist(ctx, uow, m, p); err != nil {
		return err
	}
	if err = uow.CarrierRepository().Save(ctx, c); err != nil {
		return err
	}
	if err = enqueue(ctx, uow.Outbox(), m.ID(), effects); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func outcomeOf(err error) SweepOutcome {
	switch {
	case err == nil:
		return SweepConfirmed
	case errors.Is(err, errs.ErrAlreadyResolved):
		return SweepSkipped
	default:
		return SweepFailed
	}
}

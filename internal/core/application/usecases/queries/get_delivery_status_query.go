// Package queries contains read-only operations over hand-off state.
package queries

import (
	"errors"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var ErrGetDeliveryStatusQueryIsNotConstructed = errors.New(
	"GetDeliveryStatusQuery must be created via NewGetDeliveryStatusQuery constructor",
)

// Reader exposes the repositories a query reads from. Queries never open a
// transaction.
type Reader interface {
	ParcelRepository() ports.ParcelRepository
	MissionRepository() ports.MissionRepository
}

// ReaderFactory creates readers bound to the connection pool.
type ReaderFactory interface {
	Create() Reader
}

// GetDeliveryStatusQuery asks for the confirmation state of a parcel's
// delivery on behalf of actorID, who must be the parcel's vendor or the
// carrier of its current mission.
//
// Example:
//
//	query, err := NewGetDeliveryStatusQuery(parcelID, actorID)
//	if err != nil {
//	    return err
//	}
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s, %d hours left\n", status.Status, status.HoursRemaining)
type GetDeliveryStatusQuery struct {
	parcelID kernel.UUID
	actorID  kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDeliveryStatusQuery(parcelID, actorID kernel.UUID) (GetDeliveryStatusQuery, error) {
	var parcelErr, actorErr error
	if err := parcelID.Validate(); err != nil {
		parcelErr = errs.NewValueIsRequiredErrorWithCause("parcelId", err)
	}
	if err := actorID.Validate(); err != nil {
		actorErr = errs.NewValueIsRequiredErrorWithCause("actorId", err)
	}
	if err := errors.Join(parcelErr, actorErr); err != nil {
		return GetDeliveryStatusQuery{}, err
	}

	return GetDeliveryStatusQuery{
		parcelID: parcelID,
		actorID:  actorID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryStatusQueryIsNotConstructed)
}

func (q GetDeliveryStatusQuery) ParcelID() kernel.UUID { return q.parcelID }
func (q GetDeliveryStatusQuery) ActorID() kernel.UUID  { return q.actorID }

// GetDeliveryStatusQueryResponse is the client-facing delivery status.
// MissionID is nil while no carrier holds the parcel. HoursRemaining is only
// meaningful for mission.DeliveryAwaitingConfirmation.
type GetDeliveryStatusQueryResponse struct {
	ParcelID       kernel.UUID
	MissionID      *kernel.UUID
	Status         mission.DeliveryStatus
	HoursRemaining int
	Deadline       *time.Time
}

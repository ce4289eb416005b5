package queries

import (
	"context"
	"errors"

	"handoff/internal/core/domain/model/mission"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/errs"
)

// GetDeliveryStatusQueryHandler derives the delivery status of a parcel from
// its current mission at the time of the call.
type GetDeliveryStatusQueryHandler struct {
	readers ReaderFactory
	clock   clock.Clock
}

func NewGetDeliveryStatusQueryHandler(readers ReaderFactory, clk clock.Clock) GetDeliveryStatusQueryHandler {
	return GetDeliveryStatusQueryHandler{readers: readers, clock: clk}
}

// Handle returns errs.ObjectNotFoundError for an unknown parcel and
// errs.UnauthorizedError when the actor is neither the vendor nor the
// assigned carrier. A parcel without a live mission reports PENDING.
func (h GetDeliveryStatusQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryStatusQuery,
) (GetDeliveryStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	reader := h.readers.Create()

	p, err := reader.ParcelRepository().Get(ctx, query.ParcelID())
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	m, err := reader.MissionRepository().GetCurrentForParcel(ctx, query.ParcelID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		if !p.IsOwnedBy(query.ActorID()) {
			return GetDeliveryStatusQueryResponse{}, errs.NewUnauthorizedError(query.ActorID(), "only the vendor may read an unassigned parcel")
		}
		return GetDeliveryStatusQueryResponse{ParcelID: p.ID(), Status: mission.DeliveryPending}, nil
	}
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	if !p.IsOwnedBy(query.ActorID()) && !m.IsAssignedTo(query.ActorID()) {
		return GetDeliveryStatusQueryResponse{}, errs.NewUnauthorizedError(query.ActorID(), "parcel belongs to another vendor and carrier")
	}

	view := m.DeliveryView(h.clock.Now())
	missionID := m.ID()
	return GetDeliveryStatusQueryResponse{
		ParcelID:       p.ID(),
		MissionID:      &missionID,
		Status:         view.Status,
		HoursRemaining: view.HoursRemaining,
		Deadline:       view.Deadline,
	}, nil
}

// Package ports defines the contracts between the hand-off core and its
// infrastructure: repositories, the transactional outbox, the unit of work and
// the external collaborators notified of committed transitions.
package ports

import (
	"context"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/parcel"
)

// ParcelRepository defines the persistence contract for parcel aggregates.
type ParcelRepository interface {
	// Add persists a new parcel.
	Add(ctx context.Context, aggregate *parcel.Parcel) error

	// Update writes the parcel if its stored version still equals
	// aggregate.Version() and bumps the version. A stale version returns
	// errs.ConflictError.
	Update(ctx context.Context, aggregate *parcel.Parcel) error

	// Get returns errs.ObjectNotFoundError when id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error)
}

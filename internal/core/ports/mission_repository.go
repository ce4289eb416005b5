package ports

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
)

// MissionRepository defines the persistence contract for mission aggregates.
type MissionRepository interface {
	// Add persists a new mission. A second active mission for the same parcel
	// is rejected by the store with errs.ConflictError.
	Add(ctx context.Context, aggregate *mission.Mission) error

	// Update is a conditional write on the mission version, like
	// ParcelRepository.Update.
	Update(ctx context.Context, aggregate *mission.Mission) error

	Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error)

	// GetCurrentForParcel returns the parcel's latest mission that was not
	// cancelled, or errs.ObjectNotFoundError.
	GetCurrentForParcel(ctx context.Context, parcelID kernel.UUID) (*mission.Mission, error)

	// FindAwaitingAutoConfirmation lists up to limit missions whose
	// confirmation deadline passed before now without any resolution,
	// oldest deadline first.
	FindAwaitingAutoConfirmation(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}

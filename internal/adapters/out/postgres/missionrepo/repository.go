package missionrepo

import (
	"context"
	"errors"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMissionRepository implements ports.MissionRepository using GORM.
type GormMissionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormMissionRepository(db *gorm.DB, tracker aggregateTracker) *GormMissionRepository {
	return &GormMissionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the mission at version 1. The active-mission index turns a
// second concurrent acceptance into errs.ConflictError.
func (r *GormMissionRepository) Add(ctx context.Context, aggregate *mission.Mission) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictErrorWithCause("parcel", aggregate.ParcelID().String(), err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormMissionRepository) Update(ctx context.Context, aggregate *mission.Mission) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&MissionDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(updateColumns(dto))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewConflictError("mission", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormMissionRepository) Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto MissionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("mission", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetCurrentForParcel returns the latest mission of the parcel that was not cancelled.
func (r *GormMissionRepository) GetCurrentForParcel(ctx context.Context, parcelID kernel.UUID) (*mission.Mission, error) {
	if err := parcelID.Validate(); err != nil {
		return nil, err
	}

	var dto MissionDTO
	err := r.db.WithContext(ctx).
		Where("parcel_id = ? AND status <> ?", parcelID.Bytes(), int(mission.Cancelled)).
		Order("accepted_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("mission for parcel", parcelID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindAwaitingAutoConfirmation selects missions whose window expired unanswered.
func (r *GormMissionRepository) FindAwaitingAutoConfirmation(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&MissionDTO{}).
		Where("status = ?", int(mission.PickedUp)).
		Where("delivered_at IS NOT NULL").
		Where("delivery_confirmation_deadline < ?", now.UTC()).
		Where("client_confirmed_at IS NULL AND client_contested_at IS NULL AND auto_confirmed = ?", false).
		Order("delivery_confirmation_deadline ASC").
		Limit(limit).
		Pluck("id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		kID, idErr := kernel.UUIDFrom(id)
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, kID)
	}
	return ids, nil
}

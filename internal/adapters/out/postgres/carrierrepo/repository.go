package carrierrepo

import (
	"context"
	"errors"

	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCarrierRepository implements ports.CarrierRepository using GORM.
type GormCarrierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormCarrierRepository(db *gorm.DB, tracker aggregateTracker) *GormCarrierRepository {
	return &GormCarrierRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormCarrierRepository) Get(ctx context.Context, id kernel.UUID) (*carrier.Carrier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CarrierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("carrier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Save inserts a carrier never stored before (version 0) and conditionally
// updates a loaded one. Two first deliveries racing on insert surface as
// errs.ConflictError.
func (r *GormCarrierRepository) Save(ctx context.Context, aggregate *carrier.Carrier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if dto.Version == 0 {
		dto.Version = 1
		if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.NewConflictErrorWithCause("carrier", aggregate.ID().String(), err)
			}
			return err
		}
		r.tracker.TrackAggregate(aggregate.ID(), aggregate)
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&CarrierDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"completed_deliveries": dto.CompletedDeliveries,
			"rating_count":         dto.RatingCount,
			"rating_sum":           dto.RatingSum,
			"average_rating":       dto.AverageRating,
			"version":              dto.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewConflictError("carrier", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

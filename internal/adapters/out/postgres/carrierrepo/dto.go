// Package carrierrepo persists carrier statistics with GORM.
package carrierrepo

import (
	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CarrierDTO struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompletedDeliveries int             `gorm:"not null;default:0"`
	RatingCount         int             `gorm:"not null;default:0"`
	RatingSum           int             `gorm:"not null;default:0"`
	AverageRating       decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0"`
	Version             int64           `gorm:"not null;default:1"`
}

func (CarrierDTO) TableName() string {
	return "carriers"
}

func fromDomain(c *carrier.Carrier) CarrierDTO {
	s := c.Snapshot()
	return CarrierDTO{
		ID:                  s.ID.Bytes(),
		CompletedDeliveries: s.CompletedDeliveries,
		RatingCount:         s.RatingCount,
		RatingSum:           s.RatingSum,
		AverageRating:       s.AverageRating,
		Version:             s.Version,
	}
}

func toDomain(dto CarrierDTO) (*carrier.Carrier, error) {
	id, err := kernel.UUIDFrom(dto.ID)
	if err != nil {
		return nil, err
	}
	return carrier.RestoreCarrier(carrier.Snapshot{
		ID:                  id,
		CompletedDeliveries: dto.CompletedDeliveries,
		RatingCount:         dto.RatingCount,
		RatingSum:           dto.RatingSum,
		AverageRating:       dto.AverageRating,
		Version:             dto.Version,
	})
}

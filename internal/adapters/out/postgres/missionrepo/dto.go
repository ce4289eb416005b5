// Package missionrepo persists mission aggregates with GORM.
package missionrepo

import (
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"

	"github.com/google/uuid"
)

// MissionDTO is the row shape of the missions table. The partial unique index
// allows one active (ACCEPTED, IN_PROGRESS or PICKED_UP) mission per parcel.
type MissionDTO struct {
	ID                           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ParcelID                     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_missions_active_parcel,where:status BETWEEN 1 AND 3"`
	CarrierID                    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status                       int       `gorm:"not null;index:ix_missions_sweep,priority:1"`
	AcceptedAt                   time.Time `gorm:"not null"`
	DepartedAt                   *time.Time
	EstimatedArrival             *time.Time
	ArrivedAt                    *time.Time
	PickedUpAt                   *time.Time
	DeliveredAt                  *time.Time
	DeliveryProofURL             string     `gorm:"size:2048"`
	DeliveryConfirmationDeadline *time.Time `gorm:"index:ix_missions_sweep,priority:2"`
	ClientConfirmedAt            *time.Time
	ClientContestedAt            *time.Time
	ContestReason                string `gorm:"size:1000"`
	AutoConfirmed                bool   `gorm:"not null;default:false"`
	Rating                       *int   `gorm:"type:smallint"`
	RatingComment                string `gorm:"size:2000"`
	CancelledAt                  *time.Time
	CancelReason                 string `gorm:"size:1000"`
	Version                      int64  `gorm:"not null;default:1"`
}

func (MissionDTO) TableName() string {
	return "missions"
}

func fromDomain(m *mission.Mission) MissionDTO {
	s := m.Snapshot()
	return MissionDTO{
		ID:                           s.ID.Bytes(),
		ParcelID:                     s.ParcelID.Bytes(),
		CarrierID:                    s.CarrierID.Bytes(),
		Status:                       int(s.Status),
		AcceptedAt:                   s.AcceptedAt.UTC(),
		DepartedAt:                   utc(s.DepartedAt),
		EstimatedArrival:             utc(s.EstimatedArrival),
		ArrivedAt:                    utc(s.ArrivedAt),
		PickedUpAt:                   utc(s.PickedUpAt),
		DeliveredAt:                  utc(s.DeliveredAt),
		DeliveryProofURL:             s.DeliveryProofURL,
		DeliveryConfirmationDeadline: utc(s.DeliveryConfirmationDeadline),
		ClientConfirmedAt:            utc(s.ClientConfirmedAt),
		ClientContestedAt:            utc(s.ClientContestedAt),
		ContestReason:                s.ContestReason,
		AutoConfirmed:                s.AutoConfirmed,
		Rating:                       s.Rating,
		RatingComment:                s.RatingComment,
		CancelledAt:                  utc(s.CancelledAt),
		CancelReason:                 s.CancelReason,
		Version:                      s.Version,
	}
}

func toDomain(dto MissionDTO) (*mission.Mission, error) {
	id, err := kernel.UUIDFrom(dto.ID)
	if err != nil {
		return nil, err
	}
	parcelID, err := kernel.UUIDFrom(dto.ParcelID)
	if err != nil {
		return nil, err
	}
	carrierID, err := kernel.UUIDFrom(dto.CarrierID)
	if err != nil {
		return nil, err
	}

	return mission.RestoreMission(mission.Snapshot{
		ID:                           id,
		ParcelID:                     parcelID,
		CarrierID:                    carrierID,
		Status:                       mission.Status(dto.Status),
		AcceptedAt:                   dto.AcceptedAt.UTC(),
		DepartedAt:                   utc(dto.DepartedAt),
		EstimatedArrival:             utc(dto.EstimatedArrival),
		ArrivedAt:                    utc(dto.ArrivedAt),
		PickedUpAt:                   utc(dto.PickedUpAt),
		DeliveredAt:                  utc(dto.DeliveredAt),
		DeliveryProofURL:             dto.DeliveryProofURL,
		DeliveryConfirmationDeadline: utc(dto.DeliveryConfirmationDeadline),
		ClientConfirmedAt:            utc(dto.ClientConfirmedAt),
		ClientContestedAt:            utc(dto.ClientContestedAt),
		ContestReason:                dto.ContestReason,
		AutoConfirmed:                dto.AutoConfirmed,
		Rating:                       dto.Rating,
		RatingComment:                dto.RatingComment,
		CancelledAt:                  utc(dto.CancelledAt),
		CancelReason:                 dto.CancelReason,
		Version:                      dto.Version,
	})
}

func updateColumns(dto MissionDTO) map[string]any {
	return map[string]any{
		"status":                         dto.Status,
		"departed_at":                    dto.DepartedAt,
		"estimated_arrival":              dto.EstimatedArrival,
		"arrived_at":                     dto.ArrivedAt,
		"picked_up_at":                   dto.PickedUpAt,
		"delivered_at":                   dto.DeliveredAt,
		"delivery_proof_url":             dto.DeliveryProofURL,
		"delivery_confirmation_deadline": dto.DeliveryConfirmationDeadline,
		"client_confirmed_at":            dto.ClientConfirmedAt,
		"client_contested_at":            dto.ClientContestedAt,
		"contest_reason":                 dto.ContestReason,
		"auto_confirmed":                 dto.AutoConfirmed,
		"rating":                         dto.Rating,
		"rating_comment":                 dto.RatingComment,
		"cancelled_at":                   dto.CancelledAt,
		"cancel_reason":                  dto.CancelReason,
		"version":                        dto.Version + 1,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

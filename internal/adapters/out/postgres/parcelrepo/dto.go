// Package parcelrepo persists parcel aggregates with GORM.
package parcelrepo

import (
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/parcel"

	"github.com/google/uuid"
)

// ParcelDTO is the row shape of the parcels table.
type ParcelDTO struct {
	ID                         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	VendorID                   uuid.UUID   `gorm:"type:uuid;not null;index"`
	CarrierID                  *uuid.UUID  `gorm:"type:uuid;index"`
	Status                     int         `gorm:"not null;index"`
	Pickup                     LocationDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff                    LocationDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	PickupCode                 string      `gorm:"size:6;not null"`
	PackagingPhotoURL          string      `gorm:"size:2048"`
	PackagingConfirmedAt       *time.Time
	VendorPackagingConfirmedAt *time.Time
	CreatedAt                  time.Time `gorm:"not null"`
	Version                    int64     `gorm:"not null;default:1"`
}

func (ParcelDTO) TableName() string {
	return "parcels"
}

// LocationDTO is an embedded address with its coordinates.
type LocationDTO struct {
	Address string `gorm:"size:500;not null"`
	Lat     float64
	Lon     float64
}

func fromDomain(p *parcel.Parcel) ParcelDTO {
	s := p.Snapshot()

	var carrierID *uuid.UUID
	if s.CarrierID != nil {
		raw := s.CarrierID.Bytes()
		carrierID = &raw
	}

	return ParcelDTO{
		ID:                         s.ID.Bytes(),
		VendorID:                   s.VendorID.Bytes(),
		CarrierID:                  carrierID,
		Status:                     int(s.Status),
		Pickup:                     LocationDTO{Address: s.PickupAddress, Lat: s.PickupLat, Lon: s.PickupLon},
		Dropoff:                    LocationDTO{Address: s.DropoffAddress, Lat: s.DropoffLat, Lon: s.DropoffLon},
		PickupCode:                 s.PickupCode,
		PackagingPhotoURL:          s.PackagingPhotoURL,
		PackagingConfirmedAt:       utc(s.PackagingConfirmedAt),
		VendorPackagingConfirmedAt: utc(s.VendorPackagingConfirmedAt),
		CreatedAt:                  s.CreatedAt.UTC(),
		Version:                    s.Version,
	}
}

func toDomain(dto ParcelDTO) (*parcel.Parcel, error) {
	id, err := kernel.UUIDFrom(dto.ID)
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFrom(dto.VendorID)
	if err != nil {
		return nil, err
	}

	var carrierID *kernel.UUID
	if dto.CarrierID != nil {
		cID, carrierErr := kernel.UUIDFrom(*dto.CarrierID)
		if carrierErr != nil {
			return nil, carrierErr
		}
		carrierID = &cID
	}

	return parcel.RestoreParcel(parcel.Snapshot{
		ID:                         id,
		VendorID:                   vendorID,
		CarrierID:                  carrierID,
		Status:                     parcel.Status(dto.Status),
		PickupAddress:              dto.Pickup.Address,
		PickupLat:                  dto.Pickup.Lat,
		PickupLon:                  dto.Pickup.Lon,
		DropoffAddress:             dto.Dropoff.Address,
		DropoffLat:                 dto.Dropoff.Lat,
		DropoffLon:                 dto.Dropoff.Lon,
		PickupCode:                 dto.PickupCode,
		PackagingPhotoURL:          dto.PackagingPhotoURL,
		PackagingConfirmedAt:       utc(dto.PackagingConfirmedAt),
		VendorPackagingConfirmedAt: utc(dto.VendorPackagingConfirmedAt),
		CreatedAt:                  dto.CreatedAt.UTC(),
		Version:                    dto.Version,
	})
}

// updateColumns lists the mutable columns written by a conditional update.
// Nil pointers are written explicitly so an unset carrier clears the column.
func updateColumns(dto ParcelDTO) map[string]any {
	return map[string]any{
		"carrier_id":                    dto.CarrierID,
		"status":                        dto.Status,
		"packaging_photo_url":           dto.PackagingPhotoURL,
		"packaging_confirmed_at":        dto.PackagingConfirmedAt,
		"vendor_packaging_confirmed_at": dto.VendorPackagingConfirmedAt,
		"version":                       dto.Version + 1,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

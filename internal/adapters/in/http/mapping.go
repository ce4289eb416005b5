package http

import (
	"time"

	"handoff/internal/adapters/in/http/api"
	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
)

func toPlace(p api.Place) commands.Place {
	place := commands.Place{Address: p.Address}
	if p.Lat != nil {
		place.Lat = *p.Lat
	}
	if p.Lon != nil {
		place.Lon = *p.Lon
	}
	return place
}

func fromPlace(address string, lat, lon float64) api.Place {
	return api.Place{Address: address, Lat: &lat, Lon: &lon}
}

// toParcel renders p for viewer. The pickup code is only shown to the vendor
// who hands it to the carrier.
func toParcel(p parcel.Snapshot, viewer kernel.UUID) api.Parcel {
	out := api.Parcel{
		ID:                         p.ID.Bytes(),
		VendorID:                   p.VendorID.Bytes(),
		Status:                     p.Status.String(),
		Pickup:                     fromPlace(p.PickupAddress, p.PickupLat, p.PickupLon),
		Dropoff:                    fromPlace(p.DropoffAddress, p.DropoffLat, p.DropoffLon),
		PackagingPhotoURL:          p.PackagingPhotoURL,
		PackagingConfirmedAt:       p.PackagingConfirmedAt,
		VendorPackagingConfirmedAt: p.VendorPackagingConfirmedAt,
		CreatedAt:                  p.CreatedAt,
	}
	if p.CarrierID != nil {
		carrierID := p.CarrierID.Bytes()
		out.CarrierID = &carrierID
	}
	if p.VendorID.IsEqual(viewer) {
		out.PickupCode = p.PickupCode
	}
	return out
}

func toMission(m mission.Snapshot, now time.Time) api.Mission {
	out := api.Mission{
		ID:                           m.ID.Bytes(),
		ParcelID:                     m.ParcelID.Bytes(),
		CarrierID:                    m.CarrierID.Bytes(),
		Status:                       m.Status.String(),
		AcceptedAt:                   m.AcceptedAt,
		DepartedAt:                   m.DepartedAt,
		EstimatedArrival:             m.EstimatedArrival,
		ArrivedAt:                    m.ArrivedAt,
		PickedUpAt:                   m.PickedUpAt,
		DeliveredAt:                  m.DeliveredAt,
		DeliveryProofURL:             m.DeliveryProofURL,
		DeliveryConfirmationDeadline: m.DeliveryConfirmationDeadline,
		ClientConfirmedAt:            m.ClientConfirmedAt,
		ClientContestedAt:            m.ClientContestedAt,
		ContestReason:                m.ContestReason,
		AutoConfirmed:                m.AutoConfirmed,
		Rating:                       m.Rating,
		RatingComment:                m.RatingComment,
		CancelledAt:                  m.CancelledAt,
		CancelReason:                 m.CancelReason,
	}
	if m.DeliveryConfirmationDeadline != nil && m.ClientConfirmedAt == nil && m.ClientContestedAt == nil {
		hours := mission.HoursRemaining(*m.DeliveryConfirmationDeadline, now)
		out.HoursRemaining = &hours
	}
	return out
}

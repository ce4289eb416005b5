package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Place defines model for Place.
type Place struct {
	Address string   `json:"address" validate:"required,max=500"`
	Lat     *float64 `json:"lat" validate:"required,latitude"`
	Lon     *float64 `json:"lon" validate:"required,longitude"`
}

// CreateParcelRequest defines model for CreateParcelRequest.
type CreateParcelRequest struct {
	Pickup  Place `json:"pickup" validate:"required"`
	Dropoff Place `json:"dropoff" validate:"required"`
}

// StartJourneyRequest defines model for StartJourneyRequest.
type StartJourneyRequest struct {
	OriginLat *float64 `json:"originLat" validate:"required,latitude"`
	OriginLon *float64 `json:"originLon" validate:"required,longitude"`
}

// PackagingRequest defines model for PackagingRequest.
type PackagingRequest struct {
	PhotoURL string `json:"photoUrl" validate:"required,url"`
}

// PickupCodeRequest defines model for PickupCodeRequest.
type PickupCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// DeliveryProofRequest defines model for DeliveryProofRequest.
type DeliveryProofRequest struct {
	ProofURL string `json:"proofUrl" validate:"required,url"`
}

// CancelRequest defines model for CancelRequest.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// ConfirmDeliveryRequest defines model for ConfirmDeliveryRequest.
type ConfirmDeliveryRequest struct {
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

// ContestDeliveryRequest defines model for ContestDeliveryRequest.
type ContestDeliveryRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// Parcel defines model for Parcel.
type Parcel struct {
	ID                         openapi_types.UUID  `json:"id"`
	VendorID                   openapi_types.UUID  `json:"vendorId"`
	CarrierID                  *openapi_types.UUID `json:"carrierId,omitempty"`
	Status                     string              `json:"status"`
	Pickup                     Place               `json:"pickup"`
	Dropoff                    Place               `json:"dropoff"`
	PickupCode                 string              `json:"pickupCode,omitempty"`
	PackagingPhotoURL          string              `json:"packagingPhotoUrl,omitempty"`
	PackagingConfirmedAt       *time.Time          `json:"packagingConfirmedAt,omitempty"`
	VendorPackagingConfirmedAt *time.Time          `json:"vendorPackagingConfirmedAt,omitempty"`
	CreatedAt                  time.Time           `json:"createdAt"`
}

// Mission defines model for Mission.
type Mission struct {
	ID                           openapi_types.UUID `json:"id"`
	ParcelID                     openapi_types.UUID `json:"parcelId"`
	CarrierID                    openapi_types.UUID `json:"carrierId"`
	Status                       string             `json:"status"`
	AcceptedAt                   time.Time          `json:"acceptedAt"`
	DepartedAt                   *time.Time         `json:"departedAt,omitempty"`
	EstimatedArrival             *time.Time         `json:"estimatedArrival,omitempty"`
	ArrivedAt                    *time.Time         `json:"arrivedAt,omitempty"`
	PickedUpAt                   *time.Time         `json:"pickedUpAt,omitempty"`
	DeliveredAt                  *time.Time         `json:"deliveredAt,omitempty"`
	DeliveryProofURL             string             `json:"deliveryProofUrl,omitempty"`
	DeliveryConfirmationDeadline *time.Time         `json:"deliveryConfirmationDeadline,omitempty"`
	HoursRemaining               *int               `json:"hoursRemaining,omitempty"`
	ClientConfirmedAt            *time.Time         `json:"clientConfirmedAt,omitempty"`
	ClientContestedAt            *time.Time         `json:"clientContestedAt,omitempty"`
	ContestReason                string             `json:"contestReason,omitempty"`
	AutoConfirmed                bool               `json:"autoConfirmed"`
	Rating                       *int               `json:"rating,omitempty"`
	RatingComment                string             `json:"ratingComment,omitempty"`
	CancelledAt                  *time.Time         `json:"cancelledAt,omitempty"`
	CancelReason                 string             `json:"cancelReason,omitempty"`
}

// Transition defines model for Transition.
type Transition struct {
	Mission Mission `json:"mission"`
	Parcel  Parcel  `json:"parcel"`
}

// DeliveryStatus defines model for DeliveryStatus.
type DeliveryStatus struct {
	ParcelID       openapi_types.UUID  `json:"parcelId"`
	MissionID      *openapi_types.UUID `json:"missionId,omitempty"`
	Status         string              `json:"status"`
	HoursRemaining int                 `json:"hoursRemaining"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
}

// SweepOutcome defines model for SweepOutcome.
type SweepOutcome struct {
	MissionID openapi_types.UUID `json:"missionId"`
	Outcome   string             `json:"outcome"`
	Error     string             `json:"error,omitempty"`
}

// SweepReport defines model for SweepReport.
type SweepReport struct {
	Processed int            `json:"processed"`
	Outcomes  []SweepOutcome `json:"outcomes"`
}

// RunDeliverySweepParams defines parameters for RunDeliverySweep.
type RunDeliverySweepParams struct {
	BatchSize *int `form:"batchSize,omitempty" json:"batchSize,omitempty"`
}

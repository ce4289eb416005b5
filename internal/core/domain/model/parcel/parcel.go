package parcel

import (
	"errors"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var (
	// ErrParcelIsNotConstructed is returned when a Parcel instance was not created
	// through NewParcel or RestoreParcel.
	ErrParcelIsNotConstructed = errors.New("Parcel must be created via NewParcel constructor")
)

// Parcel is a vendor's shipment. It carries the packaging handshake and the
// pickup code, and mirrors the status of its active mission.
//
// Parcel follows these invariants:
//   - A carrier is assigned iff the status is not Pending
//   - The vendor confirms packaging only after the carrier did, and only once
//   - Once the vendor confirmed, the carrier's photo is frozen
type Parcel struct {
	id        kernel.UUID
	vendorID  kernel.UUID
	carrierID *kernel.UUID
	status    Status

	pickup     Address
	dropoff    Address
	pickupCode kernel.PickupCode

	packagingPhotoURL          string
	packagingConfirmedAt       *time.Time
	vendorPackagingConfirmedAt *time.Time

	createdAt time.Time
	version   int64
	guard     guard.ConstructorGuard
}

// Snapshot is the flat persisted shape of a Parcel.
type Snapshot struct {
	ID                         kernel.UUID
	VendorID                   kernel.UUID
	CarrierID                  *kernel.UUID
	Status                     Status
	PickupAddress              string
	PickupLat                  float64
	PickupLon                  float64
	DropoffAddress             string
	DropoffLat                 float64
	DropoffLon                 float64
	PickupCode                 string
	PackagingPhotoURL          string
	PackagingConfirmedAt       *time.Time
	VendorPackagingConfirmedAt *time.Time
	CreatedAt                  time.Time
	Version                    int64
}

// NewParcel creates a Pending parcel owned by vendorID.
//
// Example:
//
//	code, _ := kernel.GeneratePickupCode()
//	p, err := parcel.NewParcel(kernel.NewUUID(), vendorID, pickup, dropoff, code, now)
func NewParcel(id, vendorID kernel.UUID, pickup, dropoff Address, code kernel.PickupCode, now time.Time) (*Parcel, error) {
	p := &Parcel{
		status:    Pending,
		pickup:    pickup,
		dropoff:   dropoff,
		createdAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setUUID(&p.id, "id", id),
		setUUID(&p.vendorID, "vendorId", vendorID),
		p.setPickupCode(code),
		validateAddress("pickup", pickup),
		validateAddress("dropoff", dropoff),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestoreParcel rehydrates a parcel from persistence.
func RestoreParcel(s Snapshot) (*Parcel, error) {
	p := &Parcel{
		status:                     s.Status,
		packagingPhotoURL:          s.PackagingPhotoURL,
		packagingConfirmedAt:       copyTime(s.PackagingConfirmedAt),
		vendorPackagingConfirmedAt: copyTime(s.VendorPackagingConfirmedAt),
		createdAt:                  s.CreatedAt,
		version:                    s.Version,
		guard:                      guard.NewConstructorGuard(),
	}
	if s.CarrierID != nil {
		id := *s.CarrierID
		p.carrierID = &id
	}

	code, codeErr := kernel.NewPickupCode(s.PickupCode)
	pickup, pickupErr := restoreAddress(s.PickupAddress, s.PickupLat, s.PickupLon)
	dropoff, dropoffErr := restoreAddress(s.DropoffAddress, s.DropoffLat, s.DropoffLon)
	p.pickupCode, p.pickup, p.dropoff = code, pickup, dropoff

	if err := errors.Join(
		setUUID(&p.id, "id", s.ID),
		setUUID(&p.vendorID, "vendorId", s.VendorID),
		s.Status.Validate(),
		s.Status.ValidateCanHaveCarrier(p.carrierID != nil),
		codeErr,
		pickupErr,
		dropoffErr,
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate ensures the Parcel was created through NewParcel or RestoreParcel.
func (p *Parcel) Validate() error {
	if p == nil {
		return ErrParcelIsNotConstructed
	}
	return p.guard.Validate(ErrParcelIsNotConstructed)
}

func (p *Parcel) ID() kernel.UUID               { return p.id }
func (p *Parcel) VendorID() kernel.UUID         { return p.vendorID }
func (p *Parcel) Status() Status                { return p.status }
func (p *Parcel) Pickup() Address               { return p.pickup }
func (p *Parcel) Dropoff() Address              { return p.dropoff }
func (p *Parcel) PickupCode() kernel.PickupCode { return p.pickupCode }
func (p *Parcel) PackagingPhotoURL() string     { return p.packagingPhotoURL }
func (p *Parcel) CreatedAt() time.Time          { return p.createdAt }
func (p *Parcel) Version() int64                { return p.version }

// CarrierID returns the assigned carrier, nil while Pending.
func (p *Parcel) CarrierID() *kernel.UUID {
	if p.carrierID == nil {
		return nil
	}
	id := *p.carrierID
	return &id
}

func (p *Parcel) PackagingConfirmedAt() *time.Time { return copyTime(p.packagingConfirmedAt) }

func (p *Parcel) VendorPackagingConfirmedAt() *time.Time {
	return copyTime(p.vendorPackagingConfirmedAt)
}

// IsOwnedBy reports whether vendorID created the parcel.
func (p *Parcel) IsOwnedBy(vendorID kernel.UUID) bool {
	return p.vendorID.IsEqual(vendorID)
}

// PackagingConfirmed reports whether both sides confirmed the packaging.
func (p *Parcel) PackagingConfirmed() bool {
	return p.packagingConfirmedAt != nil && p.vendorPackagingConfirmedAt != nil
}

// Snapshot flattens the parcel for persistence.
func (p *Parcel) Snapshot() Snapshot {
	return Snapshot{
		ID:                         p.id,
		VendorID:                   p.vendorID,
		CarrierID:                  p.CarrierID(),
		Status:                     p.status,
		PickupAddress:              p.pickup.Line(),
		PickupLat:                  p.pickup.Point().Lat(),
		PickupLon:                  p.pickup.Point().Lon(),
		DropoffAddress:             p.dropoff.Line(),
		DropoffLat:                 p.dropoff.Point().Lat(),
		DropoffLon:                 p.dropoff.Point().Lon(),
		PickupCode:                 p.pickupCode.String(),
		PackagingPhotoURL:          p.packagingPhotoURL,
		PackagingConfirmedAt:       copyTime(p.packagingConfirmedAt),
		VendorPackagingConfirmedAt: copyTime(p.vendorPackagingConfirmedAt),
		CreatedAt:                  p.createdAt,
		Version:                    p.version,
	}
}

// Accept assigns the carrier and moves the parcel to Accepted.
//
// This method enforces the following business rules:
//   - The parcel must be Pending
//   - The carrier cannot be the vendor
func (p *Parcel) Accept(carrierID kernel.UUID) error {
	if err := carrierID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("carrierId", err)
	}
	if p.IsOwnedBy(carrierID) {
		return errs.NewUnauthorizedError(carrierID, "a vendor cannot carry their own parcel")
	}

	newStatus, err := p.status.Accept()
	if err != nil {
		return err
	}

	p.status = newStatus
	p.carrierID = &carrierID
	return nil
}

// StartProgress mirrors the mission leaving for the pickup address.
func (p *Parcel) StartProgress() error {
	newStatus, err := p.status.StartProgress()
	if err != nil {
		return err
	}
	p.status = newStatus
	return nil
}

// MarkPickedUp moves the parcel to PickedUp once both packaging
// confirmations are present.
func (p *Parcel) MarkPickedUp() error {
	if p.packagingConfirmedAt == nil {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging not yet confirmed by carrier")
	}
	if p.vendorPackagingConfirmedAt == nil {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging not yet confirmed by vendor")
	}

	newStatus, err := p.status.PickUp()
	if err != nil {
		return err
	}
	p.status = newStatus
	return nil
}

// MarkDelivered mirrors a resolved delivery.
func (p *Parcel) MarkDelivered() error {
	newStatus, err := p.status.Deliver()
	if err != nil {
		return err
	}
	p.status = newStatus
	return nil
}

// Release returns the parcel to Pending after its mission was cancelled.
// Packaging confirmations describe the item itself and carry over to the
// next carrier.
func (p *Parcel) Release() error {
	newStatus, err := p.status.Release()
	if err != nil {
		return err
	}

	p.status = newStatus
	p.carrierID = nil
	return nil
}

// ConfirmPackagingByCarrier records the carrier's packaging photo. It may be
// repeated, replacing the photo, until the vendor confirms.
func (p *Parcel) ConfirmPackagingByCarrier(photoURL string, now time.Time) error {
	if err := kernel.ValidateMediaURL("photoUrl", photoURL); err != nil {
		return err
	}
	if p.status != Accepted && p.status != InProgress {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging can only be confirmed before pickup")
	}
	if p.vendorPackagingConfirmedAt != nil {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging already confirmed by vendor")
	}

	p.packagingPhotoURL = photoURL
	p.packagingConfirmedAt = timePtr(now)
	return nil
}

// ConfirmPackagingByVendor records the vendor's approval of the carrier's photo.
func (p *Parcel) ConfirmPackagingByVendor(now time.Time) error {
	if p.status != Accepted && p.status != InProgress {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging can only be confirmed before pickup")
	}
	if p.packagingConfirmedAt == nil {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging not yet confirmed by carrier")
	}
	if p.vendorPackagingConfirmedAt != nil {
		return errs.NewInvalidStateTransitionError("parcel", p.status.String(), "packaging already confirmed by vendor")
	}

	p.vendorPackagingConfirmedAt = timePtr(now)
	return nil
}

func (p *Parcel) setPickupCode(code kernel.PickupCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	p.pickupCode = code
	return nil
}

func setUUID(dst *kernel.UUID, name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	*dst = id
	return nil
}

func validateAddress(name string, a Address) error {
	if a.line == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

func restoreAddress(line string, lat, lon float64) (Address, error) {
	point, err := kernel.NewGeoPoint(lat, lon)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(line, point)
}

func timePtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := *t
	return &u
}

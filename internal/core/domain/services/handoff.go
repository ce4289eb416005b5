package services

import (
	"fmt"
	"time"

	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/pkg/errs"
)

// Notification types carried in Notification.Payload["type"].
const (
	KindMissionAccepted       = "mission.accepted"
	KindCarrierDeparted       = "mission.departed"
	KindCarrierArrived        = "mission.arrived"
	KindPackagingSubmitted    = "packaging.submitted"
	KindPackagingApproved     = "packaging.approved"
	KindParcelPickedUp        = "parcel.picked_up"
	KindConfirmationRequested = "delivery.confirmation_requested"
	KindMissionCancelled      = "mission.cancelled"
	KindDeliveryConfirmed     = "delivery.confirmed"
	KindDeliveryContested     = "delivery.contested"
	KindDeliveryAutoConfirmed = "delivery.auto_confirmed"
)

// Handoff is the domain service applying every mission transition to the
// mission and its parcel together. Each method either mutates both aggregates
// consistently and reports the side effects to emit, or returns an error; on
// error the caller must discard the aggregates.
//
// Actor checks:
//   - carrier operations require the mission to be assigned to the actor
//   - vendor operations require the parcel to be owned by the actor
//
// Handoff holds no state and is safe for concurrent use.
type Handoff struct{}

func NewHandoff() Handoff {
	return Handoff{}
}

// Accept assigns carrierID to a Pending parcel and creates its mission.
func (h Handoff) Accept(p *parcel.Parcel, carrierID kernel.UUID, now time.Time) (*mission.Mission, Effects, error) {
	if err := p.Validate(); err != nil {
		return nil, Effects{}, err
	}

	if err := p.Accept(carrierID); err != nil {
		return nil, Effects{}, err
	}

	m, err := mission.NewMission(kernel.NewUUID(), p.ID(), carrierID, now)
	if err != nil {
		return nil, Effects{}, err
	}

	return m, Effects{Notifications: []Notification{
		notify(p.VendorID(), KindMissionAccepted,
			"Carrier found",
			"A carrier accepted your parcel.",
			payload(m, p)),
	}}, nil
}

// StartJourney records departure from origin and mirrors InProgress on the parcel.
func (h Handoff) StartJourney(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, origin kernel.GeoPoint, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}

	eta, err := EstimateArrival(origin, p.Pickup().Point(), now)
	if err != nil {
		return Effects{}, err
	}

	if err = m.StartJourney(eta, now); err != nil {
		return Effects{}, err
	}
	if err = p.StartProgress(); err != nil {
		return Effects{}, err
	}

	withETA := payload(m, p)
	withETA["estimatedArrival"] = eta.UTC().Format(time.RFC3339)
	minutes := int(eta.Sub(now).Minutes())

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindCarrierDeparted,
			"Carrier on the way",
			fmt.Sprintf("Your carrier is on the way and should arrive in about %d min.", minutes),
			withETA),
	}}, nil
}

// ArriveAtPickup records arrival at the pickup address.
func (h Handoff) ArriveAtPickup(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}

	if err := m.ArriveAtPickup(now); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindCarrierArrived,
			"Carrier arrived",
			"Your carrier is at the pickup address.",
			payload(m, p)),
	}}, nil
}

// ConfirmPackagingByCarrier records the carrier's packaging photo.
func (h Handoff) ConfirmPackagingByCarrier(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, photoURL string, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}
	if err := m.Status().ValidateBeforePickup(); err != nil {
		return Effects{}, err
	}

	if err := p.ConfirmPackagingByCarrier(photoURL, now); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindPackagingSubmitted,
			"Check the packaging",
			"Your carrier sent a photo of the packaging. Please confirm it.",
			payload(m, p)),
	}}, nil
}

// ConfirmPackagingByVendor records the vendor's approval of the packaging.
func (h Handoff) ConfirmPackagingByVendor(m *mission.Mission, p *parcel.Parcel, vendorID kernel.UUID, now time.Time) (Effects, error) {
	if err := h.authorizeVendor(m, p, vendorID); err != nil {
		return Effects{}, err
	}
	if err := m.Status().ValidateBeforePickup(); err != nil {
		return Effects{}, err
	}

	if err := p.ConfirmPackagingByVendor(now); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(m.CarrierID(), KindPackagingApproved,
			"Packaging approved",
			"The vendor approved the packaging. You can pick up the parcel.",
			payload(m, p)),
	}}, nil
}

// Pickup marks the parcel collected by the carrier.
func (h Handoff) Pickup(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}
	return h.pickup(m, p, now)
}

// PickupByCode lets the vendor confirm the hand-off with the parcel's pickup
// code. The parcel must still be Accepted; the packaging gate applies.
func (h Handoff) PickupByCode(m *mission.Mission, p *parcel.Parcel, vendorID kernel.UUID, code string, now time.Time) (Effects, error) {
	if err := h.authorizeVendor(m, p, vendorID); err != nil {
		return Effects{}, err
	}
	if p.Status() != parcel.Accepted {
		return Effects{}, errs.NewInvalidStateTransitionError("parcel", p.Status().String(), "pickup by code requires an ACCEPTED parcel")
	}
	if !p.PickupCode().Matches(code) {
		return Effects{}, errs.NewValueIsInvalidErrorWithCause("pickupCode", fmt.Errorf("pickup code does not match"))
	}
	return h.pickup(m, p, now)
}

func (h Handoff) pickup(m *mission.Mission, p *parcel.Parcel, now time.Time) (Effects, error) {
	if err := m.Status().ValidateBeforePickup(); err != nil {
		return Effects{}, err
	}

	if err := p.MarkPickedUp(); err != nil {
		return Effects{}, err
	}
	if err := m.PickUp(now); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindParcelPickedUp,
			"Parcel picked up",
			"Your parcel is on its way to the drop-off address.",
			payload(m, p)),
	}}, nil
}

// SubmitDeliveryProof records the drop-off photo and asks the vendor to confirm.
func (h Handoff) SubmitDeliveryProof(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, proofURL string, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}

	if err := m.SubmitDeliveryProof(proofURL, now); err != nil {
		return Effects{}, err
	}

	withDeadline := payload(m, p)
	withDeadline["deadline"] = m.DeliveryConfirmationDeadline().Format(time.RFC3339)

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindConfirmationRequested,
			"Confirm your delivery",
			fmt.Sprintf("Your parcel was dropped off. Confirm or contest within %d hours.", int(mission.ConfirmationWindow.Hours())),
			withDeadline),
	}}, nil
}

// Cancel withdraws the carrier and returns the parcel to Pending.
func (h Handoff) Cancel(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID, reason string, now time.Time) (Effects, error) {
	if err := h.authorizeCarrier(m, p, carrierID); err != nil {
		return Effects{}, err
	}

	if err := m.Cancel(reason, now); err != nil {
		return Effects{}, err
	}
	if err := p.Release(); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(p.VendorID(), KindMissionCancelled,
			"Carrier cancelled",
			"Your carrier cancelled. The parcel is available to other carriers again.",
			payload(m, p)),
	}}, nil
}

// ConfirmDelivery resolves the delivery on the vendor's confirmation, updates
// the carrier's statistics and requests settlement.
func (h Handoff) ConfirmDelivery(
	m *mission.Mission,
	p *parcel.Parcel,
	c *carrier.Carrier,
	vendorID kernel.UUID,
	rating *kernel.Rating,
	comment string,
	now time.Time,
) (Effects, error) {
	if err := h.authorizeVendor(m, p, vendorID); err != nil {
		return Effects{}, err
	}
	if err := h.checkCarrier(m, c); err != nil {
		return Effects{}, err
	}

	if err := m.ConfirmByClient(rating, comment, now); err != nil {
		return Effects{}, err
	}
	if err := p.MarkDelivered(); err != nil {
		return Effects{}, err
	}
	if err := c.RecordDelivery(rating); err != nil {
		return Effects{}, err
	}

	return Effects{
		Settle: true,
		Notifications: []Notification{
			notify(m.CarrierID(), KindDeliveryConfirmed,
				"Delivery confirmed",
				"The vendor confirmed your delivery.",
				payload(m, p)),
		},
	}, nil
}

// ContestDelivery records the vendor's dispute. The mission leaves the sweep
// and no settlement is requested.
func (h Handoff) ContestDelivery(m *mission.Mission, p *parcel.Parcel, vendorID kernel.UUID, reason string, now time.Time) (Effects, error) {
	if err := h.authorizeVendor(m, p, vendorID); err != nil {
		return Effects{}, err
	}

	if err := m.ContestByClient(reason, now); err != nil {
		return Effects{}, err
	}

	return Effects{Notifications: []Notification{
		notify(m.CarrierID(), KindDeliveryContested,
			"Delivery contested",
			"The vendor contested your delivery.",
			payload(m, p)),
	}}, nil
}

// AutoConfirm resolves a delivery whose confirmation window expired unanswered.
func (h Handoff) AutoConfirm(m *mission.Mission, p *parcel.Parcel, c *carrier.Carrier, now time.Time) (Effects, error) {
	if err := h.checkLinked(m, p); err != nil {
		return Effects{}, err
	}
	if err := h.checkCarrier(m, c); err != nil {
		return Effects{}, err
	}

	if err := m.AutoConfirm(now); err != nil {
		return Effects{}, err
	}
	if err := p.MarkDelivered(); err != nil {
		return Effects{}, err
	}
	if err := c.RecordDelivery(nil); err != nil {
		return Effects{}, err
	}

	return Effects{
		Settle: true,
		Notifications: []Notification{
			notify(p.VendorID(), KindDeliveryAutoConfirmed,
				"Delivery confirmed automatically",
				"Your delivery was confirmed automatically after the confirmation window closed.",
				payload(m, p)),
			notify(m.CarrierID(), KindDeliveryAutoConfirmed,
				"Delivery confirmed",
				"Your delivery was confirmed automatically.",
				payload(m, p)),
		},
	}, nil
}

func (h Handoff) authorizeCarrier(m *mission.Mission, p *parcel.Parcel, carrierID kernel.UUID) error {
	if err := h.checkLinked(m, p); err != nil {
		return err
	}
	if !m.IsAssignedTo(carrierID) {
		return errs.NewUnauthorizedError(carrierID, "mission is assigned to another carrier")
	}
	return nil
}

func (h Handoff) authorizeVendor(m *mission.Mission, p *parcel.Parcel, vendorID kernel.UUID) error {
	if err := h.checkLinked(m, p); err != nil {
		return err
	}
	if !p.IsOwnedBy(vendorID) {
		return errs.NewUnauthorizedError(vendorID, "parcel belongs to another vendor")
	}
	return nil
}

func (h Handoff) checkLinked(m *mission.Mission, p *parcel.Parcel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if !m.ParcelID().IsEqual(p.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("missionId", fmt.Errorf("mission %s is not for parcel %s", m.ID(), p.ID()))
	}
	return nil
}

func (h Handoff) checkCarrier(m *mission.Mission, c *carrier.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.ID().IsEqual(m.CarrierID()) {
		return errs.NewValueIsInvalidErrorWithCause("carrierId", fmt.Errorf("carrier %s is not assigned to mission %s", c.ID(), m.ID()))
	}
	return nil
}

func payload(m *mission.Mission, p *parcel.Parcel) map[string]string {
	return map[string]string{
		"parcelId":  p.ID().String(),
		"missionId": m.ID().String(),
	}
}

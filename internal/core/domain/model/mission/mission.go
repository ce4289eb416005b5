package mission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var (
	// ErrMissionIsNotConstructed is returned when a Mission instance was not created
	// through NewMission or RestoreMission.
	ErrMissionIsNotConstructed = errors.New("Mission must be created via NewMission constructor")
)

const (
	maxReasonLength  = 1000
	maxCommentLength = 2000
)

// Mission is one carrier's assignment to one parcel. It is the aggregate root
// of the hand-off lifecycle from acceptance to a settled delivery.
//
// Mission follows these invariants:
//   - Status transitions follow the Status state machine
//   - Delivery proof is submitted at most once and fixes the confirmation deadline
//   - A delivery is resolved at most once: confirmed, contested or auto-confirmed
//   - Delivered and Cancelled missions are immutable
type Mission struct {
	id        kernel.UUID
	parcelID  kernel.UUID
	carrierID kernel.UUID
	status    Status

	acceptedAt       time.Time
	departedAt       *time.Time
	estimatedArrival *time.Time
	arrivedAt        *time.Time
	pickedUpAt       *time.Time

	// deliveredAt is set by the carrier's proof, not by the final transition.
	deliveredAt                  *time.Time
	deliveryProofURL             string
	deliveryConfirmationDeadline *time.Time

	// clientConfirmedAt is also set by the sweep together with autoConfirmed.
	clientConfirmedAt *time.Time
	clientContestedAt *time.Time
	contestReason     string
	autoConfirmed     bool
	rating            *kernel.Rating
	ratingComment     string

	cancelledAt  *time.Time
	cancelReason string

	version int64
	guard   guard.ConstructorGuard
}

// Snapshot is the flat persisted shape of a Mission.
type Snapshot struct {
	ID                           kernel.UUID
	ParcelID                     kernel.UUID
	CarrierID                    kernel.UUID
	Status                       Status
	AcceptedAt                   time.Time
	DepartedAt                   *time.Time
	EstimatedArrival             *time.Time
	ArrivedAt                    *time.Time
	PickedUpAt                   *time.Time
	DeliveredAt                  *time.Time
	DeliveryProofURL             string
	DeliveryConfirmationDeadline *time.Time
	ClientConfirmedAt            *time.Time
	ClientContestedAt            *time.Time
	ContestReason                string
	AutoConfirmed                bool
	Rating                       *int
	RatingComment                string
	CancelledAt                  *time.Time
	CancelReason                 string
	Version                      int64
}

// NewMission creates an Accepted mission for carrierID on parcelID.
//
// Example:
//
//	m, err := mission.NewMission(kernel.NewUUID(), parcelID, carrierID, now)
//	if err != nil {
//	    // Handle validation error
//	}
func NewMission(id, parcelID, carrierID kernel.UUID, now time.Time) (*Mission, error) {
	m := &Mission{
		status:     Accepted,
		acceptedAt: now.UTC(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setUUID(&m.id, "id", id),
		setUUID(&m.parcelID, "parcelId", parcelID),
		setUUID(&m.carrierID, "carrierId", carrierID),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RestoreMission rehydrates a mission from persistence.
func RestoreMission(s Snapshot) (*Mission, error) {
	m := &Mission{
		status:                       s.Status,
		acceptedAt:                   s.AcceptedAt,
		departedAt:                   copyTime(s.DepartedAt),
		estimatedArrival:             copyTime(s.EstimatedArrival),
		arrivedAt:                    copyTime(s.ArrivedAt),
		pickedUpAt:                   copyTime(s.PickedUpAt),
		deliveredAt:                  copyTime(s.DeliveredAt),
		deliveryProofURL:             s.DeliveryProofURL,
		deliveryConfirmationDeadline: copyTime(s.DeliveryConfirmationDeadline),
		clientConfirmedAt:            copyTime(s.ClientConfirmedAt),
		clientContestedAt:            copyTime(s.ClientContestedAt),
		contestReason:                s.ContestReason,
		autoConfirmed:                s.AutoConfirmed,
		ratingComment:                s.RatingComment,
		cancelledAt:                  copyTime(s.CancelledAt),
		cancelReason:                 s.CancelReason,
		version:                      s.Version,
		guard:                        guard.NewConstructorGuard(),
	}

	var ratingErr error
	if s.Rating != nil {
		r, err := kernel.NewRating(*s.Rating)
		ratingErr = err
		m.rating = &r
	}

	if err := errors.Join(
		setUUID(&m.id, "id", s.ID),
		setUUID(&m.parcelID, "parcelId", s.ParcelID),
		setUUID(&m.carrierID, "carrierId", s.CarrierID),
		s.Status.Validate(),
		ratingErr,
	); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate ensures the Mission was created through NewMission or RestoreMission.
func (m *Mission) Validate() error {
	if m == nil {
		return ErrMissionIsNotConstructed
	}
	return m.guard.Validate(ErrMissionIsNotConstructed)
}

func (m *Mission) ID() kernel.UUID          { return m.id }
func (m *Mission) ParcelID() kernel.UUID    { return m.parcelID }
func (m *Mission) CarrierID() kernel.UUID   { return m.carrierID }
func (m *Mission) Status() Status           { return m.status }
func (m *Mission) AcceptedAt() time.Time    { return m.acceptedAt }
func (m *Mission) Version() int64           { return m.version }
func (m *Mission) DeliveryProofURL() string { return m.deliveryProofURL }
func (m *Mission) AutoConfirmed() bool      { return m.autoConfirmed }
func (m *Mission) ContestReason() string    { return m.contestReason }
func (m *Mission) CancelReason() string     { return m.cancelReason }
func (m *Mission) RatingComment() string    { return m.ratingComment }

func (m *Mission) DepartedAt() *time.Time        { return copyTime(m.departedAt) }
func (m *Mission) EstimatedArrival() *time.Time  { return copyTime(m.estimatedArrival) }
func (m *Mission) ArrivedAt() *time.Time         { return copyTime(m.arrivedAt) }
func (m *Mission) PickedUpAt() *time.Time        { return copyTime(m.pickedUpAt) }
func (m *Mission) DeliveredAt() *time.Time       { return copyTime(m.deliveredAt) }
func (m *Mission) ClientConfirmedAt() *time.Time { return copyTime(m.clientConfirmedAt) }
func (m *Mission) ClientContestedAt() *time.Time { return copyTime(m.clientContestedAt) }
func (m *Mission) CancelledAt() *time.Time       { return copyTime(m.cancelledAt) }

// DeliveryConfirmationDeadline is nil until delivery proof is submitted.
func (m *Mission) DeliveryConfirmationDeadline() *time.Time {
	return copyTime(m.deliveryConfirmationDeadline)
}

// Rating returns the vendor's rating, nil when none was given.
func (m *Mission) Rating() *kernel.Rating {
	if m.rating == nil {
		return nil
	}
	r := *m.rating
	return &r
}

// IsAssignedTo reports whether carrierID is this mission's carrier.
func (m *Mission) IsAssignedTo(carrierID kernel.UUID) bool {
	return m.carrierID.IsEqual(carrierID)
}

// Resolution reports how the delivery was settled, Unresolved if it was not.
func (m *Mission) Resolution() Resolution {
	switch {
	case m.autoConfirmed:
		return ResolvedAutoConfirmed
	case m.clientContestedAt != nil:
		return ResolvedContested
	case m.clientConfirmedAt != nil:
		return ResolvedConfirmed
	default:
		return Unresolved
	}
}

// Snapshot flattens the mission for persistence.
func (m *Mission) Snapshot() Snapshot {
	var rating *int
	if m.rating != nil {
		v := m.rating.Int()
		rating = &v
	}
	return Snapshot{
		ID:                           m.id,
		ParcelID:                     m.parcelID,
		CarrierID:                    m.carrierID,
		Status:                       m.status,
		AcceptedAt:                   m.acceptedAt,
		DepartedAt:                   copyTime(m.departedAt),
		EstimatedArrival:             copyTime(m.estimatedArrival),
		ArrivedAt:                    copyTime(m.arrivedAt),
		PickedUpAt:                   copyTime(m.pickedUpAt),
		DeliveredAt:                  copyTime(m.deliveredAt),
		DeliveryProofURL:             m.deliveryProofURL,
		DeliveryConfirmationDeadline: copyTime(m.deliveryConfirmationDeadline),
		ClientConfirmedAt:            copyTime(m.clientConfirmedAt),
		ClientContestedAt:            copyTime(m.clientContestedAt),
		ContestReason:                m.contestReason,
		AutoConfirmed:                m.autoConfirmed,
		Rating:                       rating,
		RatingComment:                m.ratingComment,
		CancelledAt:                  copyTime(m.cancelledAt),
		CancelReason:                 m.cancelReason,
		Version:                      m.version,
	}
}

// StartJourney records departure and the estimated arrival at the pickup address.
//
// This method enforces the following business rules:
//   - The mission must be Accepted
//   - The estimated arrival cannot be before now
func (m *Mission) StartJourney(estimatedArrival, now time.Time) error {
	if estimatedArrival.Before(now) {
		return errs.NewValueIsInvalidErrorWithCause("estimatedArrival", fmt.Errorf("%s is before departure", estimatedArrival))
	}

	newStatus, err := m.status.StartJourney()
	if err != nil {
		return err
	}

	m.status = newStatus
	m.departedAt = timePtr(now)
	m.estimatedArrival = timePtr(estimatedArrival)
	return nil
}

// ArriveAtPickup records the carrier's arrival. Status is unchanged; the first
// arrival time is kept when called again.
func (m *Mission) ArriveAtPickup(now time.Time) error {
	if err := m.status.ValidateBeforePickup(); err != nil {
		return err
	}
	if m.arrivedAt == nil {
		m.arrivedAt = timePtr(now)
	}
	return nil
}

// PickUp marks the parcel collected. The packaging gate is checked by the
// caller against the parcel.
func (m *Mission) PickUp(now time.Time) error {
	newStatus, err := m.status.PickUp()
	if err != nil {
		return err
	}

	m.status = newStatus
	m.pickedUpAt = timePtr(now)
	return nil
}

// SubmitDeliveryProof records the drop-off photo and opens the confirmation window.
//
// This method enforces the following business rules:
//   - The mission must be PickedUp
//   - Proof can be submitted only once
//   - proofURL must be an absolute http(s) URL
//
// The status stays PickedUp until the delivery is confirmed.
func (m *Mission) SubmitDeliveryProof(proofURL string, now time.Time) error {
	if err := kernel.ValidateMediaURL("proofUrl", proofURL); err != nil {
		return err
	}
	if m.status != PickedUp {
		return errs.NewInvalidStateTransitionError("mission", m.status.String(), "mission must be PICKED_UP to submit delivery proof")
	}
	if m.deliveredAt != nil {
		return errs.NewInvalidStateTransitionError("mission", m.status.String(), "delivery proof already submitted")
	}

	m.deliveredAt = timePtr(now)
	m.deliveryProofURL = proofURL
	m.deliveryConfirmationDeadline = timePtr(now.Add(ConfirmationWindow))
	return nil
}

// Cancel withdraws the carrier before departure.
func (m *Mission) Cancel(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", len(reason), 0, maxReasonLength)
	}

	newStatus, err := m.status.Cancel()
	if err != nil {
		return err
	}

	m.status = newStatus
	m.cancelledAt = timePtr(now)
	m.cancelReason = reason
	return nil
}

// ConfirmByClient resolves the delivery on the vendor's confirmation and
// moves the mission to Delivered. rating may be nil.
func (m *Mission) ConfirmByClient(rating *kernel.Rating, comment string, now time.Time) error {
	if rating != nil {
		if err := rating.Validate(); err != nil {
			return err
		}
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return errs.NewValueIsOutOfRangeError("comment length", len(comment), 0, maxCommentLength)
	}
	if err := m.checkResolvable(); err != nil {
		return err
	}

	newStatus, err := m.status.Deliver()
	if err != nil {
		return err
	}

	m.status = newStatus
	m.clientConfirmedAt = timePtr(now)
	if rating != nil {
		r := *rating
		m.rating = &r
	}
	m.ratingComment = comment
	return nil
}

// ContestByClient resolves the delivery as disputed. The status is not
// advanced and the mission leaves the auto-confirmation sweep.
func (m *Mission) ContestByClient(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if len(reason) > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", len(reason), 0, maxReasonLength)
	}
	if err := m.checkResolvable(); err != nil {
		return err
	}

	m.clientContestedAt = timePtr(now)
	m.contestReason = reason
	return nil
}

// AutoConfirm resolves an unanswered delivery once its deadline has passed.
// clientConfirmedAt is set together with autoConfirmed.
func (m *Mission) AutoConfirm(now time.Time) error {
	if err := m.checkResolvable(); err != nil {
		return err
	}
	if !now.After(*m.deliveryConfirmationDeadline) {
		return errs.NewInvalidStateTransitionError("mission", m.status.String(), "confirmation window is still open")
	}

	newStatus, err := m.status.Deliver()
	if err != nil {
		return err
	}

	m.status = newStatus
	m.autoConfirmed = true
	m.clientConfirmedAt = timePtr(now)
	return nil
}

func (m *Mission) checkResolvable() error {
	if resolution := m.Resolution(); resolution != Unresolved {
		return errs.NewAlreadyResolvedError(m.id, resolution.String())
	}
	if m.deliveredAt == nil || m.deliveryConfirmationDeadline == nil {
		return errs.NewInvalidStateTransitionError("mission", m.status.String(), "delivery proof not yet submitted")
	}
	return nil
}

func setUUID(dst *kernel.UUID, name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	*dst = id
	return nil
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

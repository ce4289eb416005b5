package mission

import (
	"fmt"

	"handoff/internal/pkg/errs"
)

// Status represents the lifecycle state of a mission.
// It implements a state machine with defined transitions to ensure
// missions follow the hand-off workflow.
//
// State transitions:
//
//	Accepted ──> InProgress ──> PickedUp ──> Delivered
//	   │  │                        ▲
//	   │  └────────────────────────┘
//	   │      (pickup before departure)
//	   └──> Cancelled
//
// Delivered and Cancelled are terminal. Submitting delivery proof does not
// change the status; a confirmation (explicit or automatic) does.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Accepted is the initial status once a carrier takes a parcel.
	Accepted

	// InProgress indicates the carrier is travelling to the pickup address.
	InProgress

	// PickedUp indicates the carrier holds the parcel.
	PickedUp

	// Delivered indicates the drop-off was confirmed. Final.
	Delivered

	// Cancelled indicates the carrier withdrew before departing. Final.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Accepted:   "ACCEPTED",
		InProgress: "IN_PROGRESS",
		PickedUp:   "PICKED_UP",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
	}
}

// Validate checks if the Status value is one of the defined lifecycle states.
//
// Returns:
//   - nil if the status is valid
//   - error with details if the status is Unknown or out of range
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid mission status", s))
	}
	return nil
}

// String returns the wire name of the status, "UNKNOWN" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the mission can no longer change.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsActive reports whether the mission still holds its parcel assignment.
func (s Status) IsActive() bool {
	return s == Accepted || s == InProgress || s == PickedUp
}

// ValidateBeforePickup checks the mission has not yet collected the parcel.
//
// Valid statuses:
//   - Accepted
//   - InProgress
//
// This is the precondition shared by arrival, packaging confirmation and pickup.
func (s Status) ValidateBeforePickup() error {
	if s != Accepted && s != InProgress {
		return errs.NewInvalidStateTransitionError("mission", s.String(), "mission must be ACCEPTED or IN_PROGRESS")
	}
	return nil
}

// StartJourney transitions the status to InProgress.
//
// Valid transitions:
//   - Accepted -> InProgress
//
// Returns:
//   - (InProgress, nil) on valid transition
//   - (0, error) if transition is not allowed from current status
func (s Status) StartJourney() (Status, error) {
	if s != Accepted {
		return 0, errs.NewInvalidStateTransitionError("mission", s.String(), "mission must be ACCEPTED to start the journey")
	}
	return InProgress, nil
}

// PickUp transitions the status to PickedUp.
//
// Valid transitions:
//   - Accepted -> PickedUp (carrier was already at the pickup address)
//   - InProgress -> PickedUp
func (s Status) PickUp() (Status, error) {
	if err := s.ValidateBeforePickup(); err != nil {
		return 0, err
	}
	return PickedUp, nil
}

// Deliver transitions the status to Delivered.
//
// Valid transitions:
//   - PickedUp -> Delivered
func (s Status) Deliver() (Status, error) {
	if s != PickedUp {
		return 0, errs.NewInvalidStateTransitionError("mission", s.String(), "mission must be PICKED_UP to be delivered")
	}
	return Delivered, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Accepted -> Cancelled
//
// Once the carrier departed the mission can no longer be cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Accepted {
		return 0, errs.NewInvalidStateTransitionError("mission", s.String(), "only an ACCEPTED mission can be cancelled")
	}
	return Cancelled, nil
}

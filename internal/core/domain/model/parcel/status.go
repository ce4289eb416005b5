package parcel

import (
	"fmt"

	"handoff/internal/pkg/errs"
)

// Status represents the lifecycle state of a parcel. It mirrors the state of
// the parcel's active mission.
//
// State transitions:
//
//	Pending ──> Accepted ──> InProgress ──> PickedUp ──> Delivered
//	   ▲           │  │                        ▲
//	   └───────────┘  └────────────────────────┘
//	  (mission cancelled)  (pickup before departure)
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending is the initial status. The parcel waits for a carrier.
	Pending

	// Accepted indicates a carrier holds an active mission for the parcel.
	Accepted

	// InProgress indicates the carrier is on the way to the pickup address.
	InProgress

	// PickedUp indicates the carrier collected the parcel.
	PickedUp

	// Delivered is the final state once the delivery is confirmed.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Accepted:   "ACCEPTED",
		InProgress: "IN_PROGRESS",
		PickedUp:   "PICKED_UP",
		Delivered:  "DELIVERED",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s <= Unknown || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid parcel status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// ValidateCanHaveCarrier checks the carrier assignment is consistent with the
// status: Pending parcels have no carrier, every other status has one.
func (s Status) ValidateCanHaveCarrier(carrier bool) error {
	if carrier && s == Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a carrier", s.String()),
		)
	}
	if !carrier && s != Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no carrier", s.String()),
		)
	}
	return nil
}

// Accept transitions Pending -> Accepted.
func (s Status) Accept() (Status, error) {
	if s != Pending {
		return 0, transitionError(s, "parcel must be PENDING to be accepted")
	}
	return Accepted, nil
}

// StartProgress transitions Accepted -> InProgress.
func (s Status) StartProgress() (Status, error) {
	if s != Accepted {
		return 0, transitionError(s, "parcel must be ACCEPTED to start the journey")
	}
	return InProgress, nil
}

// PickUp transitions Accepted or InProgress -> PickedUp.
func (s Status) PickUp() (Status, error) {
	if s != Accepted && s != InProgress {
		return 0, transitionError(s, "parcel must be ACCEPTED or IN_PROGRESS to be picked up")
	}
	return PickedUp, nil
}

// Deliver transitions PickedUp -> Delivered.
func (s Status) Deliver() (Status, error) {
	if s != PickedUp {
		return 0, transitionError(s, "parcel must be PICKED_UP to be delivered")
	}
	return Delivered, nil
}

// Release transitions Accepted -> Pending after its mission was cancelled.
func (s Status) Release() (Status, error) {
	if s != Accepted {
		return 0, transitionError(s, "parcel must be ACCEPTED to be released")
	}
	return Pending, nil
}

func transitionError(s Status, reason string) error {
	return errs.NewInvalidStateTransitionError("parcel", s.String(), reason)
}

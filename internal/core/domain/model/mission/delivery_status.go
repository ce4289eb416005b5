package mission

import (
	"math"
	"time"
)

// ConfirmationWindow is how long the vendor has to confirm or contest a
// delivery after the carrier submitted proof. Set once, never recomputed.
const ConfirmationWindow = 12 * time.Hour

// Resolution records how a delivered mission was settled by the vendor or the sweep.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedConfirmed
	ResolvedContested
	ResolvedAutoConfirmed
)

func (r Resolution) String() string {
	switch r {
	case ResolvedConfirmed:
		return "CONFIRMED"
	case ResolvedContested:
		return "CONTESTED"
	case ResolvedAutoConfirmed:
		return "AUTO_CONFIRMED"
	default:
		return "UNRESOLVED"
	}
}

// DeliveryStatus is the client-facing view of the confirmation window.
type DeliveryStatus string

const (
	DeliveryPending              DeliveryStatus = "PENDING"
	DeliveryAwaitingConfirmation DeliveryStatus = "AWAITING_CONFIRMATION"
	DeliveryConfirmed            DeliveryStatus = "CONFIRMED"
	DeliveryContested            DeliveryStatus = "CONTESTED"
	DeliveryAutoConfirmed        DeliveryStatus = "AUTO_CONFIRMED"
)

// DeliveryView is the derived delivery status at a point in time.
type DeliveryView struct {
	Status         DeliveryStatus
	HoursRemaining int
	Deadline       *time.Time
}

// HoursRemaining returns the whole hours left until deadline, rounded up and
// floored at zero. A deadline already passed reports 0.
func HoursRemaining(deadline, now time.Time) int {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours()))
}

// DeliveryView derives the client-facing delivery status of m at now.
func (m *Mission) DeliveryView(now time.Time) DeliveryView {
	view := DeliveryView{Deadline: copyTime(m.deliveryConfirmationDeadline)}

	switch m.Resolution() {
	case ResolvedAutoConfirmed:
		view.Status = DeliveryAutoConfirmed
	case ResolvedConfirmed:
		view.Status = DeliveryConfirmed
	case ResolvedContested:
		view.Status = DeliveryContested
	case Unresolved:
		if m.deliveredAt == nil || m.deliveryConfirmationDeadline == nil {
			view.Status = DeliveryPending
			return view
		}
		view.Status = DeliveryAwaitingConfirmation
		view.HoursRemaining = HoursRemaining(*m.deliveryConfirmationDeadline, now)
	}
	return view
}

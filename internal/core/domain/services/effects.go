package services

import (
	"handoff/internal/core/domain/model/kernel"
)

// Notification is a push message produced by a transition. Delivery is best
// effort and never affects the transition itself.
type Notification struct {
	Recipient kernel.UUID
	Title     string
	Body      string
	Payload   map[string]string
}

// Effects lists the side effects a committed transition must emit.
type Effects struct {
	Notifications []Notification
	// Settle requests the settlement trigger for the mission.
	Settle bool
}

func notify(recipient kernel.UUID, kind, title, body string, payload map[string]string) Notification {
	p := map[string]string{"type": kind}
	for k, v := range payload {
		p[k] = v
	}
	return Notification{Recipient: recipient, Title: title, Body: body, Payload: p}
}

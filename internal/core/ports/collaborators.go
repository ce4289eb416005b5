package ports

import (
	"context"

	"handoff/internal/core/domain/model/kernel"
)

// NotificationDispatcher delivers push notifications. Callers log failures and
// never propagate them.
type NotificationDispatcher interface {
	Send(ctx context.Context, recipient kernel.UUID, title, body string, payload map[string]string) error
}

// SettlementTrigger starts payment release for a resolved delivery. The
// mission id is the idempotency key; implementations must tolerate redelivery.
type SettlementTrigger interface {
	OnDeliveryConfirmed(ctx context.Context, missionID kernel.UUID) error
}

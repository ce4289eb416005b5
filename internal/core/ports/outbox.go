package ports

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/services"
)

// OutboxKind tells the relay which collaborator receives a message.
type OutboxKind string

const (
	OutboxNotification OutboxKind = "notification"
	OutboxSettlement   OutboxKind = "settlement"
)

// Outbox records side effects inside the transaction of the transition that
// produced them.
type Outbox interface {
	EnqueueNotification(ctx context.Context, missionID kernel.UUID, n services.Notification) error

	// EnqueueSettlement is idempotent per mission: a second call for the same
	// mission is a no-op.
	EnqueueSettlement(ctx context.Context, missionID kernel.UUID) error
}

// OutboxMessage is a pending side effect read back by the relay.
type OutboxMessage struct {
	ID           kernel.UUID
	Kind         OutboxKind
	MissionID    kernel.UUID
	Notification *services.Notification
	AttemptCount int
	CreatedAt    time.Time
}

// OutboxStore is the relay's view of the outbox.
type OutboxStore interface {
	// FetchPending returns undispatched messages with fewer than maxAttempts
	// failed attempts, oldest first.
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error)
	MarkDispatched(ctx context.Context, id kernel.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id kernel.UUID, cause error) error
}

package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"handoff/internal/core/domain/model/kernel"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const SettlementEventType = "delivery.confirmed"

// SettlementMessage asks the payment service to release the carrier's payout.
type SettlementMessage struct {
	EventType      string    `json:"eventType"`
	MissionID      string    `json:"missionId"`
	IdempotencyKey string    `json:"idempotencyKey"`
	RequestedAt    time.Time `json:"requestedAt"`
}

// SettlementPublisher implements ports.SettlementTrigger on a topic. The
// consumer deduplicates on the idempotency key, so redelivery is harmless.
type SettlementPublisher struct {
	publisher Publisher
	timeout   time.Duration
	now       func() time.Time
}

func NewSettlementPublisher(publisher Publisher, timeout time.Duration, now func() time.Time) (*SettlementPublisher, error) {
	if publisher == nil {
		return nil, errors.New("settlement publisher requires a topic publisher")
	}
	if now == nil {
		now = time.Now
	}
	return &SettlementPublisher{publisher: publisher, timeout: timeout, now: now}, nil
}

// IdempotencyKey identifies the settlement of missionID.
func IdempotencyKey(missionID kernel.UUID) string {
	return "settlement:" + missionID.String()
}

func (p *SettlementPublisher) OnDeliveryConfirmed(ctx context.Context, missionID kernel.UUID) error {
	key := IdempotencyKey(missionID)
	data, err := json.Marshal(SettlementMessage{
		EventType:      SettlementEventType,
		MissionID:      missionID.String(),
		IdempotencyKey: key,
		RequestedAt:    p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode settlement: %w", err)
	}

	return publish(ctx, p.publisher, p.timeout, &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":            SettlementEventType,
			"mission_id":      missionID.String(),
			"idempotency_key": key,
		},
	})
}

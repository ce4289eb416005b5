// Package outboxrepo stores side effects of committed transitions in the
// outbox_messages table and reads them back for the relay.
package outboxrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/services"
	"handoff/internal/core/ports"

	"github.com/google/uuid"
)

const maxErrorLen = 1024

// MessageDTO is the row shape of the outbox_messages table.
type MessageDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind         string     `gorm:"size:32;not null"`
	AggregateID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DedupKey     string     `gorm:"size:128;not null;uniqueIndex"`
	Payload      string     `gorm:"type:text;not null"`
	CreatedAt    time.Time  `gorm:"not null;index:ix_outbox_pending,priority:2"`
	PublishedAt  *time.Time `gorm:"index:ix_outbox_pending,priority:1"`
	AttemptCount int        `gorm:"not null;default:0"`
	LastError    *string    `gorm:"size:1024"`
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

type notificationPayload struct {
	Recipient string            `json:"recipient"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Payload   map[string]string `json:"payload,omitempty"`
}

type settlementPayload struct {
	MissionID      string `json:"missionId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// SettlementDedupKey is the outbox key allowing one settlement per mission.
func SettlementDedupKey(missionID kernel.UUID) string {
	return "settlement:" + missionID.String()
}

func encodeNotification(n services.Notification) (string, error) {
	raw, err := json.Marshal(notificationPayload{
		Recipient: n.Recipient.String(),
		Title:     n.Title,
		Body:      n.Body,
		Payload:   n.Payload,
	})
	if err != nil {
		return "", fmt.Errorf("encoding notification: %w", err)
	}
	return string(raw), nil
}

func encodeSettlement(missionID kernel.UUID) (string, error) {
	raw, err := json.Marshal(settlementPayload{
		MissionID:      missionID.String(),
		IdempotencyKey: SettlementDedupKey(missionID),
	})
	if err != nil {
		return "", fmt.Errorf("encoding settlement: %w", err)
	}
	return string(raw), nil
}

func toMessage(dto MessageDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFrom(dto.ID)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	missionID, err := kernel.UUIDFrom(dto.AggregateID)
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	msg := ports.OutboxMessage{
		ID:           id,
		Kind:         ports.OutboxKind(dto.Kind),
		MissionID:    missionID,
		AttemptCount: dto.AttemptCount,
		CreatedAt:    dto.CreatedAt.UTC(),
	}

	switch msg.Kind {
	case ports.OutboxNotification:
		var p notificationPayload
		if err = json.Unmarshal([]byte(dto.Payload), &p); err != nil {
			return ports.OutboxMessage{}, fmt.Errorf("decoding notification %s: %w", dto.ID, err)
		}
		recipient, recipientErr := kernel.UUIDFromString(p.Recipient)
		if recipientErr != nil {
			return ports.OutboxMessage{}, recipientErr
		}
		msg.Notification = &services.Notification{
			Recipient: recipient,
			Title:     p.Title,
			Body:      p.Body,
			Payload:   p.Payload,
		}
	case ports.OutboxSettlement:
	default:
		return ports.OutboxMessage{}, fmt.Errorf("unknown outbox kind %q for %s", dto.Kind, dto.ID)
	}

	return msg, nil
}

func truncateError(message string) string {
	if len(message) <= maxErrorLen {
		return message
	}
	return message[:maxErrorLen]
}

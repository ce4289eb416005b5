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

// NotificationMessage is the JSON body published for one push notification.
type NotificationMessage struct {
	RecipientID string            `json:"recipientId"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// NotificationPublisher implements ports.NotificationDispatcher on a topic.
type NotificationPublisher struct {
	publisher Publisher
	timeout   time.Duration
}

func NewNotificationPublisher(publisher Publisher, timeout time.Duration) (*NotificationPublisher, error) {
	if publisher == nil {
		return nil, errors.New("notification publisher requires a topic publisher")
	}
	return &NotificationPublisher{publisher: publisher, timeout: timeout}, nil
}

func (p *NotificationPublisher) Send(ctx context.Context, recipient kernel.UUID, title, body string, payload map[string]string) error {
	data, err := json.Marshal(NotificationMessage{
		RecipientID: recipient.String(),
		Title:       title,
		Body:        body,
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	attrs := map[string]string{"recipient_id": recipient.String()}
	if kind := payload["type"]; kind != "" {
		attrs["type"] = kind
	}
	return publish(ctx, p.publisher, p.timeout, &gcppubsub.Message{Data: data, Attributes: attrs})
}

// Package logsink implements the collaborator ports by writing structured log
// entries. It is used for local development and when no Pub/Sub topic is
// configured.
package logsink

import (
	"context"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/logger"
)

// NotificationLogger implements ports.NotificationDispatcher.
type NotificationLogger struct {
	log *logger.Logger
}

func NewNotificationLogger(log *logger.Logger) *NotificationLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationLogger{log: log}
}

func (n *NotificationLogger) Send(ctx context.Context, recipient kernel.UUID, title, body string, payload map[string]string) error {
	fields := map[string]any{
		"recipient_id": recipient.String(),
		"title":        title,
		"body":         body,
	}
	for k, v := range payload {
		fields["payload_"+k] = v
	}
	n.log.Info(n.log.WithFields(ctx, fields), "notification")
	return nil
}

// SettlementLogger implements ports.SettlementTrigger.
type SettlementLogger struct {
	log *logger.Logger
}

func NewSettlementLogger(log *logger.Logger) *SettlementLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &SettlementLogger{log: log}
}

func (s *SettlementLogger) OnDeliveryConfirmed(ctx context.Context, missionID kernel.UUID) error {
	s.log.Info(s.log.WithField(ctx, "mission_id", missionID.String()), "settlement requested")
	return nil
}
